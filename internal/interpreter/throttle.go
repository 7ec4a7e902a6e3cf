package interpreter

import (
	"context"
	"sync"
	"time"

	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/internal/registry"
	"github.com/on-the-ground/effect_ive_store/internal/scheduler"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"
)

// openWindow returns the throttle window starting at now.
func openWindow(now time.Time, interval time.Duration) timespan.TimeSpan {
	return timespan.BetweenTimes(now, now.Add(interval))
}

// windowOpen reports whether now falls in window, start inclusive and end
// exclusive. A zero-length window is never open.
func windowOpen(window timespan.TimeSpan, now time.Time) bool {
	return !now.Before(window.Start()) && now.Before(window.End())
}

type throttledCall[A any] struct {
	execute effects.Executor[A]
	send    effects.Send[A]
}

// throttle is the registry state of one throttled id. A window opens with
// every execution and closes with a timer; at most one call waits for the
// close and runs as the trailing execution.
type throttle[A any] struct {
	mu       sync.Mutex
	window   timespan.TimeSpan
	pending  *throttledCall[A]
	closer   timerSlot
	closed   bool
	inflight int

	ctx    context.Context
	cancel context.CancelFunc
}

func (in *Interpreter[A]) throttled(e effects.ThrottledEffect[A], send effects.Send[A]) {
	call := &throttledCall[A]{execute: e.Execute, send: send}
	for {
		th, entry, created := in.throttleFor(e.ID)
		if created {
			in.metrics.EffectStarted(string(effects.KindThrottled))
		}
		if in.admit(th, entry, e, call) {
			return
		}
		// the window closed between lookup and admission; start over with a
		// fresh registration
	}
}

// throttleFor returns the live throttle under id, installing a new one when
// the id is free or held by another kind of effect.
func (in *Interpreter[A]) throttleFor(id string) (*throttle[A], *registry.Entry, bool) {
	var (
		th      *throttle[A]
		created bool
	)
	entry := in.reg.Compute(id, func(cur *registry.Entry) *registry.Entry {
		if cur != nil && cur.Kind == string(effects.KindThrottled) {
			if existing, ok := cur.State.(*throttle[A]); ok {
				th = existing
				return cur
			}
		}
		ctx, cancel := context.WithCancel(in.ctx)
		th = &throttle[A]{ctx: ctx, cancel: cancel}
		next := registry.NewEntry(id, string(effects.KindThrottled), func() {
			th.closer.Stop()
			th.mu.Lock()
			th.closed = true
			th.pending = nil
			th.mu.Unlock()
			cancel()
			in.metrics.EffectCancelled(string(effects.KindThrottled))
		})
		next.State = th
		created = true
		return next
	})
	return th, entry, created
}

// admit runs call now when no window is open, or parks it as the trailing
// call otherwise. It returns false when th no longer accepts calls.
func (in *Interpreter[A]) admit(
	th *throttle[A],
	entry *registry.Entry,
	e effects.ThrottledEffect[A],
	call *throttledCall[A],
) bool {
	now := in.sched.Now()

	th.mu.Lock()
	if th.closed {
		th.mu.Unlock()
		return false
	}
	if windowOpen(th.window, now) {
		th.pending = call
		th.mu.Unlock()
		in.logger.Debug("throttled call deferred",
			zap.String("id", e.ID),
			zap.Time("window_end", th.window.End()),
		)
		return true
	}
	// window elapsed; the newest call wins over any leftover pending one
	th.pending = nil
	th.window = openWindow(now, e.Interval)
	th.inflight++
	th.mu.Unlock()

	in.scheduleClose(th, entry, e)
	in.runThrottled(th, e.ID, call)
	return true
}

func (in *Interpreter[A]) scheduleClose(th *throttle[A], entry *registry.Entry, e effects.ThrottledEffect[A]) {
	th.closer.Reset(func() scheduler.Timer {
		return in.sched.AfterFunc(e.Interval, func() {
			in.closeWindow(th, entry, e)
		})
	})
}

// closeWindow fires at the end of a window: the pending call, if any, runs and
// opens the next window; otherwise the registration is released.
func (in *Interpreter[A]) closeWindow(th *throttle[A], entry *registry.Entry, e effects.ThrottledEffect[A]) {
	now := in.sched.Now()

	th.mu.Lock()
	if th.closed {
		th.mu.Unlock()
		return
	}
	if windowOpen(th.window, now) {
		// a newer leading call reopened the window; its own timer closes it
		th.mu.Unlock()
		return
	}
	call := th.pending
	if call == nil {
		th.closed = true
		in.reg.Release(entry)
		idle := th.inflight == 0
		th.mu.Unlock()
		if idle {
			th.cancel()
		}
		return
	}
	th.pending = nil
	th.window = openWindow(now, e.Interval)
	th.inflight++
	th.mu.Unlock()

	in.scheduleClose(th, entry, e)
	in.runThrottled(th, e.ID, call)
}

func (in *Interpreter[A]) runThrottled(th *throttle[A], id string, call *throttledCall[A]) {
	in.sched.Go(func() {
		defer func() {
			th.mu.Lock()
			th.inflight--
			done := th.closed && th.inflight == 0
			th.mu.Unlock()
			if done {
				th.cancel()
			}
		}()
		in.runExecutor(th.ctx, effects.KindThrottled, id, call.execute, call.send)
	})
}
