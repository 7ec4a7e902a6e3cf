package effects

import (
	"context"
	"fmt"
)

// Map lifts an effect producing actions of type A into one producing actions
// of type B. Ids, durations and execution semantics are left untouched: only
// the actions flowing through Send are transformed by f.
func Map[A, B any](eff Effect[A], f func(A) B) Effect[B] {
	switch e := eff.(type) {
	case nil, NoneEffect[A]:
		return None[B]()
	case RunEffect[A]:
		return RunEffect[B]{Execute: mapExecutor(e.Execute, f)}
	case FireAndForgetEffect[A]:
		return FireAndForgetEffect[B]{Execute: e.Execute}
	case BatchEffect[A]:
		members := make([]Effect[B], len(e.Effects))
		for i, member := range e.Effects {
			members[i] = Map(member, f)
		}
		return BatchEffect[B]{Effects: members}
	case CancellableEffect[A]:
		return CancellableEffect[B]{ID: e.ID, Execute: mapExecutor(e.Execute, f)}
	case DebouncedEffect[A]:
		return DebouncedEffect[B]{ID: e.ID, Delay: e.Delay, Execute: mapExecutor(e.Execute, f)}
	case ThrottledEffect[A]:
		return ThrottledEffect[B]{ID: e.ID, Interval: e.Interval, Execute: mapExecutor(e.Execute, f)}
	case AfterDelayEffect[A]:
		return AfterDelayEffect[B]{Delay: e.Delay, Execute: mapExecutor(e.Execute, f)}
	case SubscriptionEffect[A]:
		setup := e.Setup
		return SubscriptionEffect[B]{
			ID: e.ID,
			Setup: func(send Send[B]) func() {
				return setup(mapSend(send, f))
			},
		}
	case CancelEffect[A]:
		return CancelEffect[B]{ID: e.ID}
	default:
		panic(fmt.Sprintf("exhaustive match fallback, effect type: %T", eff))
	}
}

func mapExecutor[A, B any](execute Executor[A], f func(A) B) Executor[B] {
	return func(ctx context.Context, send Send[B]) error {
		return execute(ctx, mapSend(send, f))
	}
}

func mapSend[A, B any](send Send[B], f func(A) B) Send[A] {
	return func(action A) {
		send(f(action))
	}
}
