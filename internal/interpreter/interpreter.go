// Package interpreter executes effect values against a scheduler and a
// cancellation registry. Store and TestStore share it; only the scheduler and
// the Send they pass in differ.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/internal/registry"
	"github.com/on-the-ground/effect_ive_store/internal/scheduler"
	"github.com/on-the-ground/effect_ive_store/observability"
	"go.uber.org/zap"
)

type Options struct {
	Scheduler scheduler.Scheduler
	Registry  *registry.Registry
	Logger    *zap.Logger
	Metrics   observability.Metrics
	// OnError receives every *effects.ExecutionError. Defaults to logging it.
	OnError func(err error)
}

type Interpreter[A any] struct {
	sched   scheduler.Scheduler
	reg     *registry.Registry
	logger  *zap.Logger
	metrics observability.Metrics
	onError func(error)

	ctx       context.Context
	cancel    context.CancelFunc
	destroyed atomic.Bool
}

func New[A any](opts Options) *Interpreter[A] {
	if opts.Scheduler == nil {
		panic("interpreter: nil scheduler")
	}
	if opts.Registry == nil {
		opts.Registry = registry.New(registry.DefaultShards)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.Noop{}
	}
	in := &Interpreter[A]{
		sched:   opts.Scheduler,
		reg:     opts.Registry,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		onError: opts.OnError,
	}
	if in.onError == nil {
		in.onError = func(err error) {
			in.logger.Error("unhandled effect error", zap.Error(err))
		}
	}
	in.ctx, in.cancel = context.WithCancel(context.Background())
	return in
}

// Execute starts eff. Actions produced by the effect are passed to send, from
// whatever goroutine the scheduler runs the effect on.
func (in *Interpreter[A]) Execute(eff effects.Effect[A], send effects.Send[A]) {
	if in.destroyed.Load() {
		if !effects.IsNone(eff) {
			in.logger.Debug("effect ignored after destroy", zap.String("kind", string(eff.Kind())))
		}
		return
	}

	switch e := eff.(type) {
	case nil, effects.NoneEffect[A]:
		return

	case effects.RunEffect[A]:
		in.metrics.EffectStarted(string(effects.KindRun))
		ctx := in.ctx
		in.sched.Go(func() {
			in.runExecutor(ctx, effects.KindRun, "", e.Execute, send)
		})

	case effects.FireAndForgetEffect[A]:
		in.metrics.EffectStarted(string(effects.KindFireAndForget))
		ctx := in.ctx
		in.sched.Go(func() {
			if ctx.Err() != nil {
				return
			}
			if err := call(func() error { return e.Execute(ctx) }); err != nil {
				in.logger.Debug("fire-and-forget effect failed", zap.Error(err))
			}
		})

	case effects.BatchEffect[A]:
		for _, member := range e.Effects {
			in.Execute(member, send)
		}

	case effects.CancellableEffect[A]:
		in.cancellable(e, send)

	case effects.DebouncedEffect[A]:
		in.delayed(effects.KindDebounced, e.ID, e.Delay, e.Execute, send)

	case effects.ThrottledEffect[A]:
		in.throttled(e, send)

	case effects.AfterDelayEffect[A]:
		in.delayed(effects.KindAfterDelay, anonymousID(), e.Delay, e.Execute, send)

	case effects.SubscriptionEffect[A]:
		in.subscription(e, send)

	case effects.CancelEffect[A]:
		if entry, ok := in.reg.Cancel(e.ID); ok {
			in.logger.Debug("effect cancelled", zap.String("id", e.ID), zap.String("kind", entry.Kind))
		}

	default:
		panic(fmt.Sprintf("exhaustive match fallback, effect type: %T", eff))
	}
}

// Destroy cancels every live registration and refuses further effects.
// It is idempotent.
func (in *Interpreter[A]) Destroy() {
	if !in.destroyed.CompareAndSwap(false, true) {
		return
	}
	in.cancel()
	drained := in.reg.CancelAll()
	in.logger.Debug("interpreter destroyed", zap.Int("cancelled", len(drained)))
}

func (in *Interpreter[A]) Destroyed() bool {
	return in.destroyed.Load()
}

// ActiveIDs lists the ids with a live registration.
func (in *Interpreter[A]) ActiveIDs() []string {
	return in.reg.IDs()
}

// guard drops actions sent once ctx is done, so a superseded or cancelled
// effect can never feed a late result into the store.
func (in *Interpreter[A]) guard(ctx context.Context, kind effects.Kind, id string, send effects.Send[A]) effects.Send[A] {
	return func(action A) {
		if ctx.Err() != nil {
			in.logger.Debug("dropped action from cancelled effect",
				zap.String("kind", string(kind)),
				zap.String("id", id),
				zap.String("action", fmt.Sprintf("%T", action)),
			)
			return
		}
		send(action)
	}
}

func (in *Interpreter[A]) runExecutor(
	ctx context.Context,
	kind effects.Kind,
	id string,
	execute effects.Executor[A],
	send effects.Send[A],
) {
	if ctx.Err() != nil {
		return
	}
	err := call(func() error {
		return execute(ctx, in.guard(ctx, kind, id, send))
	})
	if err == nil {
		return
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return
	}
	in.metrics.EffectFailed(string(kind))
	in.onError(&effects.ExecutionError{Kind: kind, ID: id, Err: err})
}

// call runs fn, turning a panic into an error wrapping ErrEffectPanicked.
func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", effects.ErrEffectPanicked, r)
		}
	}()
	return fn()
}
