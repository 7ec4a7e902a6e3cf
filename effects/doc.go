// Package effects provides the effect algebra of effect_ive_store.
//
// Reducers never perform side effects themselves. They return an Effect: an
// immutable value describing work for the runtime to do on their behalf.
// Nothing runs when an effect is constructed; the store (or the test store)
// interprets it after the new state has been committed and observed.
//
// # Variants
//
//   - None: no work.
//   - Run: asynchronous work that may send actions back.
//   - FireAndForget: asynchronous work without access to Send.
//   - Batch: several effects started together.
//   - Cancellable, Debounced, Throttled: work keyed by an id; a newer
//     registration under the same id deterministically supersedes the older.
//   - AfterDelay: an unkeyed single-shot timer.
//   - Subscription: a long-living source torn down by Cancel or on destroy.
//   - Cancel: disposes whatever is registered under an id.
//
// All keyed variants share one id namespace.
//
// # Composition
//
// Map rewrites the action type carried by an effect tree without changing any
// id, duration or lifetime, which is what lets child features be embedded in
// larger state and action trees.
//
// Example:
//
//	func reduce(s State, a Action, d Deps) (State, effects.Effect[Action]) {
//	    switch a := a.(type) {
//	    case QueryChanged:
//	        s.Query = a.Query
//	        return s, effects.Debounced("search", 300*time.Millisecond,
//	            func(ctx context.Context, send effects.Send[Action]) error {
//	                results, err := d.API.Search(ctx, a.Query)
//	                if err != nil {
//	                    send(SearchFailed{Err: err})
//	                    return nil
//	                }
//	                send(SearchCompleted{Results: results})
//	                return nil
//	            })
//	    }
//	    return s, effects.None[Action]()
//	}
package effects
