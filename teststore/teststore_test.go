package teststore_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_store/deps"
	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/teststore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state struct {
	Loading bool
	Value   int
	Query   string
	Results []string
	Ticks   []time.Duration
	Flashes int
}

type action interface{ isAction() }

type startLoading struct{}
type loadComplete struct{ Value int }
type queryChanged struct{ Query string }
type searched struct {
	Query   string
	Results []string
}
type tick struct{}
type ticked struct{ At time.Duration }
type explode struct{}
type flash struct{}
type flashed struct{}

func (startLoading) isAction() {}
func (loadComplete) isAction() {}
func (queryChanged) isAction() {}
func (searched) isAction()     {}
func (tick) isAction()         {}
func (ticked) isAction()       {}
func (explode) isAction()      {}
func (flash) isAction()        {}
func (flashed) isAction()      {}

type env struct {
	Clock *teststore.VirtualClock
	Start time.Time
}

func reducer(s state, a action, d env) (state, effects.Effect[action]) {
	switch a := a.(type) {
	case startLoading:
		s.Loading = true
		return s, effects.Run(effects.SendAll[action](loadComplete{Value: 42}))
	case loadComplete:
		s.Loading = false
		s.Value = a.Value
		return s, effects.None[action]()
	case queryChanged:
		s.Query = a.Query
		query := a.Query
		return s, effects.Debounced("search", 300*time.Millisecond,
			effects.SendAll[action](searched{Query: query, Results: []string{query + "1", query + "2"}}))
	case searched:
		s.Results = a.Results
		return s, effects.None[action]()
	case tick:
		return s, effects.Throttled("tick", 100*time.Millisecond, func(_ context.Context, send effects.Send[action]) error {
			send(ticked{At: d.Clock.Now().Sub(d.Start)})
			return nil
		})
	case ticked:
		s.Ticks = append(append([]time.Duration(nil), s.Ticks...), a.At)
		return s, effects.None[action]()
	case explode:
		return s, effects.Run(func(context.Context, effects.Send[action]) error {
			return errors.New("exploded")
		})
	case flash:
		return s, effects.Animated[action](0, flashed{})
	case flashed:
		s.Flashes++
		return s, effects.None[action]()
	default:
		return s, effects.None[action]()
	}
}

func newTestStore(t testing.TB) *teststore.TestStore[state, action, env] {
	clock := teststore.NewVirtualClock(teststore.DefaultStartTime)
	return teststore.New(t, state{}, reducer, env{Clock: clock, Start: teststore.DefaultStartTime},
		teststore.WithClock(clock))
}

// recordingT captures failures instead of failing the surrounding test.
type recordingT struct {
	testing.TB
	mu     sync.Mutex
	errors []string
}

func (r *recordingT) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

func TestLoadEndToEnd(t *testing.T) {
	ts := newTestStore(t)

	ts.Send(startLoading{}, func(s *state) { s.Loading = true })
	ts.Receive(loadComplete{Value: 42}, func(s *state) {
		s.Loading = false
		s.Value = 42
	})

	assert.True(t, ts.AssertNoPendingActions())
	assert.Equal(t, 42, ts.State().Value)
	assert.Equal(t, []action{startLoading{}, loadComplete{Value: 42}}, ts.History())
	ts.Finish()
}

func TestDebounce_OnlyLastQueryIsSearched(t *testing.T) {
	ts := newTestStore(t)

	ts.Send(queryChanged{Query: "g"}, func(s *state) { s.Query = "g" })
	ts.AdvanceTime(100 * time.Millisecond)
	ts.Send(queryChanged{Query: "go"}, func(s *state) { s.Query = "go" })
	ts.AdvanceTime(100 * time.Millisecond)
	ts.Send(queryChanged{Query: "gop"}, func(s *state) { s.Query = "gop" })

	ts.AdvanceTime(299 * time.Millisecond)
	assert.Empty(t, ts.PendingActions())

	ts.AdvanceTime(time.Millisecond)
	ts.Receive(searched{Query: "gop"}, func(s *state) { s.Results = []string{"gop1", "gop2"} })
	ts.Finish()
}

func TestThrottle_LeadingAndTrailing(t *testing.T) {
	ts := newTestStore(t)

	ts.Send(tick{})
	ts.Receive(ticked{}, func(s *state) { s.Ticks = []time.Duration{0} })

	ts.AdvanceTime(10 * time.Millisecond)
	ts.Send(tick{})
	ts.AdvanceTime(10 * time.Millisecond)
	ts.Send(tick{})

	ts.ReceiveWithin(time.Second, ticked{At: 100 * time.Millisecond}, func(s *state) {
		s.Ticks = append(s.Ticks, 100*time.Millisecond)
	})
	assert.Equal(t, 100*time.Millisecond, ts.Clock().Elapsed())

	ts.AdvanceTime(time.Second)
	ts.Finish()
}

func TestReceiveFunc(t *testing.T) {
	ts := newTestStore(t)

	ts.Send(startLoading{})
	ok := ts.ReceiveFunc("loadComplete above 40", func(a action) bool {
		done, isDone := a.(loadComplete)
		return isDone && done.Value > 40
	})

	assert.True(t, ok)
	ts.Finish()
}

func TestReceive_PartialMatchIgnoresZeroFields(t *testing.T) {
	ts := newTestStore(t)

	ts.Send(startLoading{})
	assert.True(t, ts.Receive(loadComplete{}))
	ts.Finish()
}

func TestFailures_AreReported(t *testing.T) {
	t.Run("nothing pending", func(t *testing.T) {
		rt := &recordingT{TB: t}
		ts := newTestStore(rt)

		assert.False(t, ts.Receive(loadComplete{Value: 42}))
		require.Len(t, rt.failures(), 1)
		assert.Contains(t, rt.failures()[0], "no action was pending")
	})

	t.Run("mismatch is still applied", func(t *testing.T) {
		rt := &recordingT{TB: t}
		ts := newTestStore(rt)

		ts.Send(startLoading{})
		assert.False(t, ts.Receive(loadComplete{Value: 7}))

		require.Len(t, rt.failures(), 1)
		assert.Contains(t, rt.failures()[0], "loadComplete{Value:7}")
		assert.Contains(t, rt.failures()[0], "loadComplete{Value:42}")
		assert.Equal(t, 42, ts.State().Value)
	})

	t.Run("unexpected state", func(t *testing.T) {
		rt := &recordingT{TB: t}
		ts := newTestStore(rt)

		ts.Send(queryChanged{Query: "x"}, func(s *state) { s.Query = "y" })
		require.Len(t, rt.failures(), 1)
		assert.Contains(t, rt.failures()[0], "unexpected state after Send")
	})

	t.Run("unreceived actions", func(t *testing.T) {
		rt := &recordingT{TB: t}
		ts := newTestStore(rt)

		ts.Send(startLoading{})
		ts.Finish()

		require.Len(t, rt.failures(), 1)
		assert.Contains(t, rt.failures()[0], "1 action(s) sent by effects were not received")
		assert.Contains(t, rt.failures()[0], "loadComplete{Value:42}")
	})

	t.Run("unhandled effect error", func(t *testing.T) {
		rt := &recordingT{TB: t}
		ts := newTestStore(rt)

		ts.Send(explode{})
		require.Len(t, rt.failures(), 1)
		assert.Contains(t, rt.failures()[0], "exploded")
	})

	t.Run("receive within times out", func(t *testing.T) {
		rt := &recordingT{TB: t}
		ts := newTestStore(rt)

		ts.Send(queryChanged{Query: "q"})
		assert.False(t, ts.ReceiveWithin(100*time.Millisecond, searched{}))
		assert.Equal(t, 100*time.Millisecond, ts.Clock().Elapsed())
		require.Len(t, rt.failures(), 1)
	})
}

func TestAnimated_ZeroDurationIsReceivedWithoutAdvancing(t *testing.T) {
	ts := newTestStore(t)

	ts.Send(flash{})
	assert.Empty(t, ts.PendingActions())

	ts.Receive(flashed{}, func(s *state) { s.Flashes = 1 })
	assert.Equal(t, time.Duration(0), ts.Clock().Elapsed())
	ts.Finish()
}

func TestVirtualClock(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := teststore.NewVirtualClock(start)
	var _ deps.Clock = clock
	assert.Equal(t, start, clock.Now())

	ts := teststore.New(t, state{}, reducer, env{Clock: clock, Start: start}, teststore.WithClock(clock))
	ts.AdvanceTime(time.Minute)

	assert.Equal(t, start.Add(time.Minute), clock.Now())
	assert.Same(t, clock, ts.Clock())
}

func TestDestroy_StopsTimers(t *testing.T) {
	ts := newTestStore(t)

	ts.Send(queryChanged{Query: "q"})
	assert.Equal(t, []string{"search"}, ts.ActiveEffects())

	ts.Destroy()
	ts.AdvanceTime(time.Second)
	assert.Empty(t, ts.PendingActions())
	assert.Empty(t, ts.ActiveEffects())
}
