package interpreter

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/internal/registry"
	"github.com/on-the-ground/effect_ive_store/internal/scheduler"
	"go.uber.org/zap"
)

const anonymousPrefix = "effect_ive_store/after_delay/"

// anonymousID keys an AfterDelay timer in the registry so destroy can reach
// it, without exposing an id user code could cancel.
func anonymousID() string {
	return anonymousPrefix + uuid.New().String()
}

func (in *Interpreter[A]) cancellable(e effects.CancellableEffect[A], send effects.Send[A]) {
	kind := effects.KindCancellable
	ctx, cancel := context.WithCancel(in.ctx)
	entry := registry.NewEntry(e.ID, string(kind), func() {
		cancel()
		in.metrics.EffectCancelled(string(kind))
	})

	in.reg.Register(entry)
	in.metrics.EffectStarted(string(kind))

	in.sched.Go(func() {
		defer func() {
			// completion frees the id only while it still points at this run
			in.reg.Release(entry)
			cancel()
		}()
		in.runExecutor(ctx, kind, e.ID, e.Execute, send)
	})
}

// delayed backs Debounced and AfterDelay: a keyed timer that replaces any
// registration under id and runs execute once it fires.
func (in *Interpreter[A]) delayed(
	kind effects.Kind,
	id string,
	delay time.Duration,
	execute effects.Executor[A],
	send effects.Send[A],
) {
	ctx, cancel := context.WithCancel(in.ctx)
	slot := &timerSlot{}
	entry := registry.NewEntry(id, string(kind), func() {
		slot.Stop()
		cancel()
		in.metrics.EffectCancelled(string(kind))
	})

	in.reg.Register(entry)
	in.metrics.EffectStarted(string(kind))

	slot.Set(func() scheduler.Timer {
		return in.sched.AfterFunc(delay, func() {
			if !in.reg.Release(entry) {
				return
			}
			in.sched.Go(func() {
				defer cancel()
				in.runExecutor(ctx, kind, id, execute, send)
			})
		})
	})
}

func (in *Interpreter[A]) subscription(e effects.SubscriptionEffect[A], send effects.Send[A]) {
	kind := effects.KindSubscription
	ctx, cancel := context.WithCancel(in.ctx)
	cleanup := &cleanupSlot{}
	entry := registry.NewEntry(e.ID, string(kind), func() {
		cancel()
		cleanup.Run()
		in.metrics.EffectCancelled(string(kind))
	})

	// the previous subscription is torn down before the new one is set up
	in.reg.Register(entry)
	in.metrics.EffectStarted(string(kind))

	var teardown func()
	err := call(func() error {
		teardown = e.Setup(in.guard(ctx, kind, e.ID, send))
		return nil
	})
	if err != nil {
		in.reg.Release(entry)
		cancel()
		in.metrics.EffectFailed(string(kind))
		in.onError(&effects.ExecutionError{Kind: kind, ID: e.ID, Err: err})
		return
	}
	cleanup.Set(teardown)
	in.logger.Debug("subscription started", zap.String("id", e.ID))
}

// timerSlot holds a timer that may be stopped before it is even created.
type timerSlot struct {
	mu      sync.Mutex
	timer   scheduler.Timer
	stopped bool
}

// Set creates the timer unless the slot was already stopped.
func (s *timerSlot) Set(start func() scheduler.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.timer = start()
}

// Reset replaces the timer, stopping the previous one.
func (s *timerSlot) Reset(start func() scheduler.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = start()
}

func (s *timerSlot) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

// cleanupSlot runs a subscription cleanup exactly once, whether disposal
// happens before or after the cleanup is known.
type cleanupSlot struct {
	mu      sync.Mutex
	cleanup func()
	ran     bool
}

func (s *cleanupSlot) Set(cleanup func()) {
	s.mu.Lock()
	if !s.ran {
		s.cleanup = cleanup
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	if cleanup != nil {
		cleanup()
	}
}

func (s *cleanupSlot) Run() {
	s.mu.Lock()
	if s.ran {
		s.mu.Unlock()
		return
	}
	s.ran = true
	cleanup := s.cleanup
	s.cleanup = nil
	s.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}
}
