// Package compose embeds reducers written for a part of the state and action
// space into reducers for the whole tree.
//
// Effects returned by embedded reducers are lifted with effects.Map, which
// keeps their ids, delays and lifetimes: a debounced child effect is still
// debounced under the same id after scoping.
package compose

import (
	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/presentation"
	"github.com/on-the-ground/effect_ive_store/store"
)

// Scope runs child on the substate extracted by toChildState for actions that
// toChildAction accepts. Other actions return the parent unchanged. When the
// child returns its state unchanged (see Same), the parent value itself is
// returned.
func Scope[PS, PA, CS, CA, D any](
	toChildState func(PS) CS,
	fromChildState func(PS, CS) PS,
	toChildAction func(PA) (CA, bool),
	fromChildAction func(CA) PA,
	child store.Reducer[CS, CA, D],
) store.Reducer[PS, PA, D] {
	return func(parent PS, action PA, deps D) (PS, effects.Effect[PA]) {
		childAction, ok := toChildAction(action)
		if !ok {
			return parent, effects.None[PA]()
		}
		childState := toChildState(parent)
		next, eff := child(childState, childAction, deps)
		lifted := effects.Map(eff, fromChildAction)
		if Same(childState, next) {
			return parent, lifted
		}
		return fromChildState(parent, next), lifted
	}
}

// ScopeAction embeds a reducer over the same state but a narrower action type.
func ScopeAction[S, PA, CA, D any](
	toChildAction func(PA) (CA, bool),
	fromChildAction func(CA) PA,
	child store.Reducer[S, CA, D],
) store.Reducer[S, PA, D] {
	return func(state S, action PA, deps D) (S, effects.Effect[PA]) {
		childAction, ok := toChildAction(action)
		if !ok {
			return state, effects.None[PA]()
		}
		next, eff := child(state, childAction, deps)
		return next, effects.Map(eff, fromChildAction)
	}
}

// IfLet is Scope for optional substate: while toChildState reports the child
// absent, even child actions leave the parent unchanged.
func IfLet[PS, PA, CS, CA, D any](
	toChildState func(PS) (CS, bool),
	fromChildState func(PS, CS) PS,
	toChildAction func(PA) (CA, bool),
	fromChildAction func(CA) PA,
	child store.Reducer[CS, CA, D],
) store.Reducer[PS, PA, D] {
	return func(parent PS, action PA, deps D) (PS, effects.Effect[PA]) {
		childAction, ok := toChildAction(action)
		if !ok {
			return parent, effects.None[PA]()
		}
		childState, present := toChildState(parent)
		if !present {
			return parent, effects.None[PA]()
		}
		next, eff := child(childState, childAction, deps)
		lifted := effects.Map(eff, fromChildAction)
		if Same(childState, next) {
			return parent, lifted
		}
		return fromChildState(parent, next), lifted
	}
}

// IfLetPresentation runs child on the presented content while the
// presentation is Presenting or Presented. The presentation status is never
// changed by the child.
func IfLetPresentation[PS, PA, C, CA, D any](
	toPresentation func(PS) presentation.State[C],
	fromPresentation func(PS, presentation.State[C]) PS,
	toChildAction func(PA) (CA, bool),
	fromChildAction func(CA) PA,
	child store.Reducer[C, CA, D],
) store.Reducer[PS, PA, D] {
	return IfLet(
		func(parent PS) (C, bool) {
			p := toPresentation(parent)
			if !p.IsActive() || p.Content == nil {
				var zero C
				return zero, false
			}
			return *p.Content, true
		},
		func(parent PS, content C) PS {
			p := toPresentation(parent)
			p.Content = &content
			return fromPresentation(parent, p)
		},
		toChildAction,
		fromChildAction,
		child,
	)
}
