package effects_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, effects.Send[int]) error { return nil }

func TestBatch_Normalizes(t *testing.T) {
	run := effects.Run[int](noop)

	assert.True(t, effects.IsNone(effects.Batch[int]()))
	assert.True(t, effects.IsNone(effects.Batch(effects.None[int](), nil)))

	single := effects.Batch(effects.None[int](), run)
	assert.Equal(t, effects.KindRun, single.Kind())

	cancel := effects.Cancel[int]("x")
	batch, ok := effects.Batch(run, effects.None[int](), cancel).(effects.BatchEffect[int])
	require.True(t, ok)
	require.Len(t, batch.Effects, 2)
	assert.Equal(t, effects.KindRun, batch.Effects[0].Kind())
	assert.Equal(t, effects.KindCancel, batch.Effects[1].Kind())
}

func TestEffect_IsTypedByAction(t *testing.T) {
	var eff any = effects.RunEffect[int]{}

	_, ok := eff.(effects.Effect[int])
	assert.True(t, ok)
	_, ok = eff.(effects.Effect[string])
	assert.False(t, ok, "an unmapped child effect must not pass as a parent effect")

	_, ok = any(effects.Cancel[int]("x")).(effects.Effect[any])
	assert.False(t, ok)
}

func TestConstructors_DoNotRunCode(t *testing.T) {
	ran := false
	execute := func(context.Context, effects.Send[int]) error {
		ran = true
		return nil
	}

	effs := []effects.Effect[int]{
		effects.Run[int](execute),
		effects.Cancellable[int]("c", execute),
		effects.Debounced[int]("d", time.Second, execute),
		effects.Throttled[int]("t", time.Second, execute),
		effects.AfterDelay[int](time.Second, execute),
		effects.Subscription[int]("s", func(effects.Send[int]) func() {
			ran = true
			return nil
		}),
		effects.FireAndForget[int](func(context.Context) error {
			ran = true
			return nil
		}),
	}

	assert.False(t, ran)
	kinds := make([]effects.Kind, len(effs))
	for i, eff := range effs {
		kinds[i] = eff.Kind()
	}
	assert.Equal(t, []effects.Kind{
		effects.KindRun, effects.KindCancellable, effects.KindDebounced, effects.KindThrottled,
		effects.KindAfterDelay, effects.KindSubscription, effects.KindFireAndForget,
	}, kinds)
}

func TestConstructors_RejectInvalidArguments(t *testing.T) {
	cases := map[string]func(){
		"negative debounce":   func() { effects.Debounced[int]("d", -time.Millisecond, noop) },
		"negative throttle":   func() { effects.Throttled[int]("t", -time.Millisecond, noop) },
		"negative delay":      func() { effects.AfterDelay[int](-time.Millisecond, noop) },
		"empty cancellable":   func() { effects.Cancellable[int]("", noop) },
		"empty cancel":        func() { effects.Cancel[int]("") },
		"nil executor":        func() { effects.Run[int](nil) },
		"nil setup":           func() { effects.Subscription[int]("s", nil) },
		"nil task":            func() { effects.FireAndForget[int](nil) },
		"negative transition": func() { effects.NewTransition[int]("x", time.Second, -time.Second) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				err, ok := r.(error)
				require.True(t, ok)
				assert.ErrorIs(t, err, effects.ErrInvalidArgument)
			}()
			fn()
		})
	}

	assert.NotPanics(t, func() { effects.Debounced[int]("zero", 0, noop) })
}

func TestSendAll(t *testing.T) {
	var got []int
	err := effects.SendAll(1, 2, 3)(context.Background(), func(a int) { got = append(got, a) })

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestExecutionError(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("wrapped: %w", &effects.ExecutionError{Kind: effects.KindCancellable, ID: "search", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, `wrapped: cancellable effect "search" failed: timeout`)

	anonymous := &effects.ExecutionError{Kind: effects.KindRun, Err: cause}
	assert.EqualError(t, anonymous, "run effect failed: timeout")
}
