package compose

import (
	"maps"
	"slices"

	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/store"
)

// Combined is the state of CombineReducers: one slice per reducer key.
type Combined map[string]any

// CombineReducers runs every reducer on its own slice for every action, in
// key order. The result is a new map only when some slice changed, and the
// unchanged slices keep their values. Effects are batched in key order.
func CombineReducers[A, D any](reducers map[string]store.Reducer[any, A, D]) store.Reducer[Combined, A, D] {
	keys := slices.Sorted(maps.Keys(reducers))

	return func(state Combined, action A, deps D) (Combined, effects.Effect[A]) {
		var (
			next Combined
			effs []effects.Effect[A]
		)
		for _, key := range keys {
			current := state[key]
			updated, eff := reducers[key](current, action, deps)
			if !effects.IsNone(eff) {
				effs = append(effs, eff)
			}
			if Same(current, updated) {
				continue
			}
			if next == nil {
				next = make(Combined, len(state))
				maps.Copy(next, state)
			}
			next[key] = updated
		}
		if next == nil {
			next = state
		}
		return next, effects.Batch(effs...)
	}
}

// Slice adapts a typed reducer for CombineReducers. A missing slice starts
// from the zero S and stays missing until the reducer changes it; a slice of
// another type panics.
func Slice[S, A, D any](reducer store.Reducer[S, A, D]) store.Reducer[any, A, D] {
	return func(state any, action A, deps D) (any, effects.Effect[A]) {
		var typed S
		if state != nil {
			typed = mustAs[S](state, "Slice state")
		}
		next, eff := reducer(typed, action, deps)
		if Same(typed, next) {
			return state, eff
		}
		return next, eff
	}
}

// Get reads the slice under key.
func Get[S any](state Combined, key string) (S, bool) {
	slice, ok := state[key].(S)
	return slice, ok
}
