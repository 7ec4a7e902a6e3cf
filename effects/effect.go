package effects

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidArgument is raised (via panic) when an effect constructor receives
// a value it can never interpret, such as a negative duration or an empty id.
var ErrInvalidArgument = errors.New("invalid effect argument")

// Kind identifies the variant of an Effect.
type Kind string

const (
	KindNone          Kind = "none"
	KindRun           Kind = "run"
	KindFireAndForget Kind = "fire_and_forget"
	KindBatch         Kind = "batch"
	KindCancellable   Kind = "cancellable"
	KindDebounced     Kind = "debounced"
	KindThrottled     Kind = "throttled"
	KindAfterDelay    Kind = "after_delay"
	KindSubscription  Kind = "subscription"
	KindCancel        Kind = "cancel"
)

// Send feeds an action back into the runtime that interprets the effect.
type Send[A any] func(action A)

// Executor is the asynchronous body of Run, Cancellable, Debounced, Throttled
// and AfterDelay effects. ctx is cancelled when the effect is superseded,
// cancelled by id or the owning store is destroyed.
type Executor[A any] func(ctx context.Context, send Send[A]) error

// Task is the body of a fire-and-forget effect. Its error is never actionable.
type Task func(ctx context.Context) error

// Setup starts a long-living subscription and returns its cleanup.
type Setup[A any] func(send Send[A]) (cleanup func())

// Effect is a sealed sum type describing work for the runtime to perform.
// Only the variants declared in this package implement it.
type Effect[A any] interface {
	Kind() Kind
	sealedEffect(A)
}

var (
	_ Effect[any] = NoneEffect[any]{}
	_ Effect[any] = RunEffect[any]{}
	_ Effect[any] = FireAndForgetEffect[any]{}
	_ Effect[any] = BatchEffect[any]{}
	_ Effect[any] = CancellableEffect[any]{}
	_ Effect[any] = DebouncedEffect[any]{}
	_ Effect[any] = ThrottledEffect[any]{}
	_ Effect[any] = AfterDelayEffect[any]{}
	_ Effect[any] = SubscriptionEffect[any]{}
	_ Effect[any] = CancelEffect[any]{}
)

// NoneEffect performs no work.
type NoneEffect[A any] struct{}

func (NoneEffect[A]) Kind() Kind     { return KindNone }
func (NoneEffect[A]) sealedEffect(A) {}

// RunEffect executes asynchronously and may send any number of actions.
type RunEffect[A any] struct {
	Execute Executor[A]
}

func (RunEffect[A]) Kind() Kind     { return KindRun }
func (RunEffect[A]) sealedEffect(A) {}

// FireAndForgetEffect executes asynchronously without access to Send.
type FireAndForgetEffect[A any] struct {
	Execute Task
}

func (FireAndForgetEffect[A]) Kind() Kind     { return KindFireAndForget }
func (FireAndForgetEffect[A]) sealedEffect(A) {}

// BatchEffect starts every member without waiting for its siblings.
type BatchEffect[A any] struct {
	Effects []Effect[A]
}

func (BatchEffect[A]) Kind() Kind     { return KindBatch }
func (BatchEffect[A]) sealedEffect(A) {}

// CancellableEffect supersedes any in-flight registration under ID.
type CancellableEffect[A any] struct {
	ID      string
	Execute Executor[A]
}

func (CancellableEffect[A]) Kind() Kind     { return KindCancellable }
func (CancellableEffect[A]) sealedEffect(A) {}

// DebouncedEffect runs only the last call made within Delay of the previous one.
type DebouncedEffect[A any] struct {
	ID      string
	Delay   time.Duration
	Execute Executor[A]
}

func (DebouncedEffect[A]) Kind() Kind     { return KindDebounced }
func (DebouncedEffect[A]) sealedEffect(A) {}

// ThrottledEffect runs at most once per Interval with leading and trailing calls.
type ThrottledEffect[A any] struct {
	ID       string
	Interval time.Duration
	Execute  Executor[A]
}

func (ThrottledEffect[A]) Kind() Kind     { return KindThrottled }
func (ThrottledEffect[A]) sealedEffect(A) {}

// AfterDelayEffect is a single-shot timer that no id can reach.
type AfterDelayEffect[A any] struct {
	Delay   time.Duration
	Execute Executor[A]
}

func (AfterDelayEffect[A]) Kind() Kind     { return KindAfterDelay }
func (AfterDelayEffect[A]) sealedEffect(A) {}

// SubscriptionEffect stays active until Cancel(ID) runs or the store is destroyed.
type SubscriptionEffect[A any] struct {
	ID    string
	Setup Setup[A]
}

func (SubscriptionEffect[A]) Kind() Kind     { return KindSubscription }
func (SubscriptionEffect[A]) sealedEffect(A) {}

// CancelEffect disposes whatever is registered under ID.
type CancelEffect[A any] struct {
	ID string
}

func (CancelEffect[A]) Kind() Kind     { return KindCancel }
func (CancelEffect[A]) sealedEffect(A) {}

// None returns the effect that does nothing.
func None[A any]() Effect[A] {
	return NoneEffect[A]{}
}

// IsNone reports whether eff performs no work.
func IsNone[A any](eff Effect[A]) bool {
	if eff == nil {
		return true
	}
	_, ok := eff.(NoneEffect[A])
	return ok
}

func Run[A any](execute Executor[A]) Effect[A] {
	mustExecutor(execute)
	return RunEffect[A]{Execute: execute}
}

func FireAndForget[A any](execute Task) Effect[A] {
	if execute == nil {
		panic(fmt.Errorf("%w: nil task", ErrInvalidArgument))
	}
	return FireAndForgetEffect[A]{Execute: execute}
}

// Batch combines effects to be started together.
//
// nil and None members are dropped; an empty batch collapses to None and a
// single remaining member is returned as is.
func Batch[A any](effs ...Effect[A]) Effect[A] {
	members := make([]Effect[A], 0, len(effs))
	for _, eff := range effs {
		if IsNone(eff) {
			continue
		}
		members = append(members, eff)
	}
	switch len(members) {
	case 0:
		return None[A]()
	case 1:
		return members[0]
	default:
		return BatchEffect[A]{Effects: members}
	}
}

func Cancellable[A any](id string, execute Executor[A]) Effect[A] {
	mustID(id)
	mustExecutor(execute)
	return CancellableEffect[A]{ID: id, Execute: execute}
}

func Debounced[A any](id string, delay time.Duration, execute Executor[A]) Effect[A] {
	mustID(id)
	mustDuration(delay)
	mustExecutor(execute)
	return DebouncedEffect[A]{ID: id, Delay: delay, Execute: execute}
}

func Throttled[A any](id string, interval time.Duration, execute Executor[A]) Effect[A] {
	mustID(id)
	mustDuration(interval)
	mustExecutor(execute)
	return ThrottledEffect[A]{ID: id, Interval: interval, Execute: execute}
}

func AfterDelay[A any](delay time.Duration, execute Executor[A]) Effect[A] {
	mustDuration(delay)
	mustExecutor(execute)
	return AfterDelayEffect[A]{Delay: delay, Execute: execute}
}

func Subscription[A any](id string, setup Setup[A]) Effect[A] {
	mustID(id)
	if setup == nil {
		panic(fmt.Errorf("%w: nil subscription setup", ErrInvalidArgument))
	}
	return SubscriptionEffect[A]{ID: id, Setup: setup}
}

func Cancel[A any](id string) Effect[A] {
	mustID(id)
	return CancelEffect[A]{ID: id}
}

// SendAll returns an executor that sends the given actions in order and completes.
func SendAll[A any](actions ...A) Executor[A] {
	return func(_ context.Context, send Send[A]) error {
		for _, action := range actions {
			send(action)
		}
		return nil
	}
}

func mustID(id string) {
	if id == "" {
		panic(fmt.Errorf("%w: empty effect id", ErrInvalidArgument))
	}
}

func mustDuration(d time.Duration) {
	if d < 0 {
		panic(fmt.Errorf("%w: negative duration %s", ErrInvalidArgument, d))
	}
}

func mustExecutor[A any](execute Executor[A]) {
	if execute == nil {
		panic(fmt.Errorf("%w: nil executor", ErrInvalidArgument))
	}
}

// ErrEffectPanicked is wrapped by the ExecutionError reported for an effect
// body that panicked.
var ErrEffectPanicked = errors.New("effect panicked")

// ExecutionError reports an effect body that returned an error or panicked.
// The runtime never retries it.
type ExecutionError struct {
	Kind Kind
	ID   string
	Err  error
}

func (e *ExecutionError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s effect failed: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s effect %q failed: %v", e.Kind, e.ID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
