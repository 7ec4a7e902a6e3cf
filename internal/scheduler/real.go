package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

var _ Scheduler = (*Real)(nil)

// Real runs work on goroutines and time.AfterFunc timers.
//
// It supervises every goroutine it starts: each one is counted so Wait can
// join them, and a panic escaping fn is logged instead of crashing the
// process. Goroutines may be started from timer callbacks at any moment, so
// the count is kept under a mutex rather than in a sync.WaitGroup.
type Real struct {
	mu      sync.Mutex
	active  int
	waiters []chan struct{}
	logger  *zap.Logger
}

func NewReal(logger *zap.Logger) *Real {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Real{logger: logger}
}

func (r *Real) Now() time.Time {
	return time.Now()
}

func (r *Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() {
		defer r.recoverPanic()
		fn()
	})
}

func (r *Real) Go(fn func()) {
	r.mu.Lock()
	r.active++
	r.mu.Unlock()

	go func() {
		defer r.done()
		defer r.recoverPanic()
		fn()
	}()
}

// Wait blocks until no started goroutine is running or ctx is done.
// Timers that have not fired yet are not waited for.
func (r *Real) Wait(ctx context.Context) error {
	r.mu.Lock()
	if r.active == 0 {
		r.mu.Unlock()
		return nil
	}
	idle := make(chan struct{})
	r.waiters = append(r.waiters, idle)
	r.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Real) done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active--
	if r.active == 0 {
		for _, ch := range r.waiters {
			close(ch)
		}
		r.waiters = nil
	}
}

func (r *Real) recoverPanic() {
	if rec := recover(); rec != nil {
		r.logger.Error("panic in scheduled routine", zap.Any("error", rec))
	}
}
