// Package teststore runs a reducer deterministically for tests.
//
// A TestStore interprets effects exactly like a store.Store, but over virtual
// time: effect executors run synchronously after every step, timers fire only
// when the test advances time, and every action an effect sends is parked in
// a FIFO queue until the test receives it. Actions left unreceived fail the
// test at Finish.
//
//	ts := teststore.New(t, State{}, reducer, deps)
//	ts.Send(StartLoading{}, func(s *State) { s.Loading = true })
//	ts.Receive(LoadComplete{Value: 42}, func(s *State) {
//		s.Loading = false
//		s.Value = 42
//	})
//	ts.Finish()
package teststore

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_store/internal/history"
	"github.com/on-the-ground/effect_ive_store/internal/interpreter"
	"github.com/on-the-ground/effect_ive_store/internal/registry"
	"github.com/on-the-ground/effect_ive_store/internal/scheduler"
	"github.com/on-the-ground/effect_ive_store/store"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// DefaultStartTime is where virtual time begins unless WithStartTime or
// WithClock says otherwise.
var DefaultStartTime = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type options struct {
	start          time.Time
	clock          *VirtualClock
	logger         *zap.Logger
	maxHistorySize int
}

type Option func(*options)

func WithStartTime(start time.Time) Option {
	return func(o *options) {
		o.start = start
	}
}

// WithClock drives clock with the store's virtual time. The clock's start
// time becomes the store's.
func WithClock(clock *VirtualClock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMaxHistorySize(n int) Option {
	return func(o *options) {
		o.maxHistorySize = n
	}
}

// StateUpdate receives a copy of the state before a step and mutates it into
// the state the step is expected to produce.
type StateUpdate[S any] func(expected *S)

type TestStore[S, A, D any] struct {
	t       testing.TB
	reducer store.Reducer[S, A, D]
	deps    D
	sched   *scheduler.Virtual
	interp  *interpreter.Interpreter[A]
	clock   *VirtualClock
	logger  *zap.Logger

	mu      sync.Mutex
	state   S
	pending []A
	history *history.Ring[A]
}

func New[S, A, D any](
	t testing.TB,
	initial S,
	reducer store.Reducer[S, A, D],
	deps D,
	opts ...Option,
) *TestStore[S, A, D] {
	t.Helper()

	o := options{start: DefaultStartTime, maxHistorySize: history.DefaultMaxSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock != nil {
		o.start = o.clock.start
	}
	if o.logger == nil {
		o.logger = zaptest.NewLogger(t)
	}

	sched := scheduler.NewVirtual(o.start)
	clock := o.clock
	if clock == nil {
		clock = NewVirtualClock(o.start)
	}
	clock.bind(sched)

	ts := &TestStore[S, A, D]{
		t:       t,
		reducer: reducer,
		deps:    deps,
		sched:   sched,
		clock:   clock,
		logger:  o.logger,
		state:   initial,
		history: history.New[A](o.maxHistorySize),
	}
	ts.interp = interpreter.New[A](interpreter.Options{
		Scheduler: sched,
		Registry:  registry.New(registry.DefaultShards),
		Logger:    o.logger,
		OnError: func(err error) {
			t.Helper()
			t.Errorf("unhandled effect error: %v", err)
		},
	})
	t.Cleanup(ts.Destroy)
	return ts
}

// Send applies action like store.Store.Dispatch and runs the effect
// executors it started. Each update mutates a copy of the previous state into
// the expected one, which must equal the resulting state.
func (ts *TestStore[S, A, D]) Send(action A, updates ...StateUpdate[S]) {
	ts.t.Helper()
	if ts.interp.Destroyed() {
		ts.t.Errorf("Send(%s) on a destroyed test store", describe(action))
		return
	}
	ts.step(fmt.Sprintf("Send(%s)", describe(action)), action, updates)
}

// Receive takes the next action sent by an effect, checks that it matches
// expected and applies it. Only actions already pending, or sent by timers
// due at the current virtual time, count; see ReceiveWithin to let virtual
// time pass first.
//
// Matching compares the dynamic type and every exported field that expected
// sets to a non-zero value. A mismatching action is still applied so the
// rest of the test sees consistent state. Receive reports whether the action
// matched.
func (ts *TestStore[S, A, D]) Receive(expected A, updates ...StateUpdate[S]) bool {
	ts.t.Helper()
	return ts.ReceiveWithin(0, expected, updates...)
}

// ReceiveWithin is Receive that first advances virtual time, timer by timer
// and for at most timeout, until some action is pending.
func (ts *TestStore[S, A, D]) ReceiveWithin(timeout time.Duration, expected A, updates ...StateUpdate[S]) bool {
	ts.t.Helper()
	return ts.receive(timeout, describe(expected), func(actual A) bool {
		return matches(expected, actual)
	}, updates)
}

// ReceiveFunc is Receive with a custom matcher; desc names the expected action
// in failure messages.
func (ts *TestStore[S, A, D]) ReceiveFunc(desc string, match func(A) bool, updates ...StateUpdate[S]) bool {
	ts.t.Helper()
	return ts.receive(0, desc, match, updates)
}

func (ts *TestStore[S, A, D]) receive(
	timeout time.Duration,
	desc string,
	match func(A) bool,
	updates []StateUpdate[S],
) bool {
	ts.t.Helper()

	if !ts.waitForPending(timeout) {
		ts.t.Errorf("expected to receive %s, but no action was pending after %v", desc, timeout)
		return false
	}
	action := ts.pop()

	matched := match(action)
	if !matched {
		ts.t.Errorf("received unexpected action\nexpected: %s\nactual:   %s", desc, describe(action))
	}
	ts.step(fmt.Sprintf("Receive(%s)", describe(action)), action, updates)
	return matched
}

// waitForPending fires timers that are already due, zero-delay ones included,
// before advancing up to timeout.
func (ts *TestStore[S, A, D]) waitForPending(timeout time.Duration) bool {
	return ts.sched.AdvanceUntil(max(timeout, 0), ts.hasPending)
}

func (ts *TestStore[S, A, D]) step(label string, action A, updates []StateUpdate[S]) {
	ts.t.Helper()

	ts.mu.Lock()
	before := ts.state
	ts.mu.Unlock()

	after, eff := ts.reducer(before, action, ts.deps)

	ts.mu.Lock()
	ts.state = after
	ts.history.Append(action)
	ts.mu.Unlock()

	ts.interp.Execute(eff, ts.enqueue)
	ts.sched.RunPending()

	if len(updates) == 0 {
		return
	}
	expected := before
	for _, update := range updates {
		update(&expected)
	}
	assert.Equal(ts.t, expected, after, "unexpected state after %s", label)
}

func (ts *TestStore[S, A, D]) enqueue(action A) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.pending = append(ts.pending, action)
}

func (ts *TestStore[S, A, D]) pop() A {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	action := ts.pending[0]
	var zero A
	ts.pending[0] = zero
	ts.pending = ts.pending[1:]
	return action
}

func (ts *TestStore[S, A, D]) hasPending() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.pending) > 0
}

// AdvanceTime moves virtual time forward by d, firing due timers in the order
// they are due and running the executors they start.
func (ts *TestStore[S, A, D]) AdvanceTime(d time.Duration) {
	ts.t.Helper()
	if d < 0 {
		ts.t.Errorf("AdvanceTime(%v): negative duration", d)
		return
	}
	ts.sched.Advance(d)
}

// PendingActions returns the actions sent by effects and not yet received.
func (ts *TestStore[S, A, D]) PendingActions() []A {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]A(nil), ts.pending...)
}

// AssertNoPendingActions fails the test, naming each one, if effects sent
// actions that were never received.
func (ts *TestStore[S, A, D]) AssertNoPendingActions() bool {
	ts.t.Helper()
	ts.sched.RunPending()

	pending := ts.PendingActions()
	if len(pending) == 0 {
		return true
	}
	lines := make([]string, len(pending))
	for i, a := range pending {
		lines[i] = "  - " + describe(a)
	}
	ts.t.Errorf("%d action(s) sent by effects were not received:\n%s", len(pending), strings.Join(lines, "\n"))
	return false
}

// Finish asserts that nothing is left to receive and destroys the store.
func (ts *TestStore[S, A, D]) Finish() {
	ts.t.Helper()
	ts.AssertNoPendingActions()
	ts.Destroy()
}

func (ts *TestStore[S, A, D]) State() S {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.state
}

func (ts *TestStore[S, A, D]) History() []A {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.history.Snapshot()
}

// Clock follows the store's virtual time.
func (ts *TestStore[S, A, D]) Clock() *VirtualClock {
	return ts.clock
}

// ActiveEffects lists the ids of effects that are still registered.
func (ts *TestStore[S, A, D]) ActiveEffects() []string {
	return ts.interp.ActiveIDs()
}

// Destroy cancels every effect and runs subscription cleanups. It is
// idempotent and runs automatically when the test ends.
func (ts *TestStore[S, A, D]) Destroy() {
	ts.interp.Destroy()
}
