// Package store runs reducers: it owns the current state, applies every
// dispatched action through the reducer, notifies listeners and hands the
// returned effect to the interpreter, whose actions come back through
// Dispatch.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/internal/history"
	"github.com/on-the-ground/effect_ive_store/internal/interpreter"
	"github.com/on-the-ground/effect_ive_store/internal/registry"
	"github.com/on-the-ground/effect_ive_store/internal/scheduler"
	"go.uber.org/zap"
)

// Reducer computes the next state for an action and describes the side
// effects to run. It must not block or perform the effects itself. Actions it
// does not handle return the state unchanged with effects.None.
type Reducer[S, A, D any] func(state S, action A, deps D) (S, effects.Effect[A])

type listener[T any] struct {
	id uint64
	fn T
}

type Store[S, A, D any] struct {
	id      string
	reducer Reducer[S, A, D]
	deps    D
	opts    options
	logger  *zap.Logger
	sched   *scheduler.Real
	interp  *interpreter.Interpreter[A]

	mu              sync.Mutex
	state           S
	queue           []A
	draining        bool
	destroyed       bool
	history         *history.Ring[A]
	nextListenerID  uint64
	stateListeners  []listener[func(S)]
	actionListeners []listener[func(A, S)]
}

func New[S, A, D any](initial S, reducer Reducer[S, A, D], deps D, opts ...Option) *Store[S, A, D] {
	if reducer == nil {
		panic("store: nil reducer")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.New().String()
	logger := o.resolveLogger().With(zap.String("store", id))
	sched := scheduler.NewReal(logger)

	s := &Store[S, A, D]{
		id:      id,
		reducer: reducer,
		deps:    deps,
		opts:    o,
		logger:  logger,
		sched:   sched,
		state:   initial,
		history: history.New[A](o.maxHistorySize),
	}
	s.interp = interpreter.New[A](interpreter.Options{
		Scheduler: sched,
		Registry:  registry.New(o.registryShards),
		Logger:    logger,
		Metrics:   o.metrics,
		OnError:   o.onError,
	})

	logger.Debug("store created", zap.Int("max_history_size", s.history.Cap()))
	return s
}

func (s *Store[S, A, D]) ID() string {
	return s.id
}

// State returns the current snapshot.
func (s *Store[S, A, D]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action and starts the effect the reducer returns.
//
// Actions are applied one at a time. A Dispatch that arrives while another
// one is in progress, whether from a listener or from an effect goroutine, is
// queued and applied by the dispatch in progress before that one returns.
// A reducer panic propagates to the caller.
func (s *Store[S, A, D]) Dispatch(action A) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		s.logger.Debug("dispatch after destroy dropped", zap.String("action", actionName(action)))
		return
	}
	s.queue = append(s.queue, action)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	drained := false
	defer func() {
		if !drained {
			// the reducer panicked; leave the queue to the next Dispatch
			s.mu.Lock()
			s.draining = false
			s.mu.Unlock()
		}
	}()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 || s.destroyed {
			// cleared under the same lock that saw the empty queue, so no
			// concurrent Dispatch can enqueue without a drainer
			s.queue = nil
			s.draining = false
			drained = true
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		var zero A
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.apply(next)
	}
}

func (s *Store[S, A, D]) apply(action A) {
	current := s.State()

	start := time.Now()
	nextState, eff := s.reducer(current, action, s.deps)
	s.opts.metrics.ReducerDuration(time.Since(start))
	s.opts.metrics.ActionDispatched(actionName(action))

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.state = nextState
	s.history.Append(action)
	stateListeners := append([]listener[func(S)](nil), s.stateListeners...)
	actionListeners := append([]listener[func(A, S)](nil), s.actionListeners...)
	s.mu.Unlock()

	for _, l := range stateListeners {
		l.fn(nextState)
	}
	for _, l := range actionListeners {
		l.fn(action, nextState)
	}

	s.interp.Execute(eff, s.Dispatch)
}

// Subscribe calls fn with the new state after every dispatch. The returned
// function removes the listener; calling it again does nothing.
func (s *Store[S, A, D]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return func() {}
	}
	s.nextListenerID++
	id := s.nextListenerID
	s.stateListeners = append(s.stateListeners, listener[func(S)]{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.stateListeners = removeListener(s.stateListeners, id)
	}
}

// SubscribeToActions calls fn with every applied action and the state it
// produced, after all state listeners ran.
func (s *Store[S, A, D]) SubscribeToActions(fn func(A, S)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return func() {}
	}
	s.nextListenerID++
	id := s.nextListenerID
	s.actionListeners = append(s.actionListeners, listener[func(A, S)]{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.actionListeners = removeListener(s.actionListeners, id)
	}
}

func removeListener[T any](ls []listener[T], id uint64) []listener[T] {
	for i, l := range ls {
		if l.id == id {
			return append(ls[:i:i], ls[i+1:]...)
		}
	}
	return ls
}

// History returns the most recent actions, oldest first.
func (s *Store[S, A, D]) History() []A {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Snapshot()
}

// ActiveEffects lists the ids of effects that are still registered.
func (s *Store[S, A, D]) ActiveEffects() []string {
	return s.interp.ActiveIDs()
}

// Wait blocks until every running effect goroutine has returned or ctx is
// done. Pending timers are not waited for.
func (s *Store[S, A, D]) Wait(ctx context.Context) error {
	return s.sched.Wait(ctx)
}

// Destroy cancels every effect, runs subscription cleanups, drops listeners
// and ignores later dispatches. It is idempotent.
func (s *Store[S, A, D]) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	s.queue = nil
	s.stateListeners = nil
	s.actionListeners = nil
	s.mu.Unlock()

	s.interp.Destroy()
	s.logger.Debug("store destroyed")
}

// Select projects the current state through fn.
func Select[S, A, D, T any](s *Store[S, A, D], fn func(S) T) T {
	return fn(s.State())
}

func actionName(action any) string {
	return fmt.Sprintf("%T", action)
}
