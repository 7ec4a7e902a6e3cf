package effects_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[A any](t *testing.T, execute effects.Executor[A]) []A {
	t.Helper()
	var got []A
	require.NoError(t, execute(context.Background(), func(a A) { got = append(got, a) }))
	return got
}

func TestMap_PreservesIdentityAndTiming(t *testing.T) {
	format := func(n int) string { return "n=" + strconv.Itoa(n) }

	debounced, ok := effects.Map(effects.Debounced("search", 300*time.Millisecond, effects.SendAll(1, 2)), format).(effects.DebouncedEffect[string])
	require.True(t, ok)
	assert.Equal(t, "search", debounced.ID)
	assert.Equal(t, 300*time.Millisecond, debounced.Delay)
	assert.Equal(t, []string{"n=1", "n=2"}, collect(t, debounced.Execute))

	throttled, ok := effects.Map(effects.Throttled("tick", time.Second, effects.SendAll(3)), format).(effects.ThrottledEffect[string])
	require.True(t, ok)
	assert.Equal(t, "tick", throttled.ID)
	assert.Equal(t, time.Second, throttled.Interval)
	assert.Equal(t, []string{"n=3"}, collect(t, throttled.Execute))

	cancellable, ok := effects.Map(effects.Cancellable("load", effects.SendAll(4)), format).(effects.CancellableEffect[string])
	require.True(t, ok)
	assert.Equal(t, "load", cancellable.ID)
	assert.Equal(t, []string{"n=4"}, collect(t, cancellable.Execute))

	delayed, ok := effects.Map(effects.AfterDelay(time.Minute, effects.SendAll(5)), format).(effects.AfterDelayEffect[string])
	require.True(t, ok)
	assert.Equal(t, time.Minute, delayed.Delay)

	run, ok := effects.Map(effects.Run(effects.SendAll(6)), format).(effects.RunEffect[string])
	require.True(t, ok)
	assert.Equal(t, []string{"n=6"}, collect(t, run.Execute))

	cancel, ok := effects.Map(effects.Cancel[int]("load"), format).(effects.CancelEffect[string])
	require.True(t, ok)
	assert.Equal(t, "load", cancel.ID)
}

func TestMap_StructuralCases(t *testing.T) {
	toString := func(n int) string { return strconv.Itoa(n) }

	assert.True(t, effects.IsNone(effects.Map(effects.None[int](), toString)))
	assert.True(t, effects.IsNone(effects.Map[int, string](nil, toString)))

	fired := false
	ff, ok := effects.Map(effects.FireAndForget[int](func(context.Context) error {
		fired = true
		return nil
	}), toString).(effects.FireAndForgetEffect[string])
	require.True(t, ok)
	require.NoError(t, ff.Execute(context.Background()))
	assert.True(t, fired)

	batch, ok := effects.Map(effects.Batch(
		effects.Run(effects.SendAll(1)),
		effects.Cancel[int]("x"),
	), toString).(effects.BatchEffect[string])
	require.True(t, ok)
	require.Len(t, batch.Effects, 2)
	assert.Equal(t, effects.KindRun, batch.Effects[0].Kind())
	assert.Equal(t, effects.KindCancel, batch.Effects[1].Kind())
}

func TestMap_Subscription(t *testing.T) {
	cleaned := false
	var emit effects.Send[int]
	sub := effects.Subscription[int]("feed", func(send effects.Send[int]) func() {
		emit = send
		return func() { cleaned = true }
	})

	mapped, ok := effects.Map(sub, func(n int) string { return strconv.Itoa(n * 10) }).(effects.SubscriptionEffect[string])
	require.True(t, ok)
	assert.Equal(t, "feed", mapped.ID)

	var got []string
	cleanup := mapped.Setup(func(s string) { got = append(got, s) })
	emit(4)
	cleanup()

	assert.Equal(t, []string{"40"}, got)
	assert.True(t, cleaned)
}
