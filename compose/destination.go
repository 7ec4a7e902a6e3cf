package compose

import (
	"fmt"
	"maps"
	"slices"

	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/store"
)

// DestinationState is the state of the one feature currently presented out
// of a fixed set of cases. A nil *DestinationState means nothing is presented.
type DestinationState struct {
	Case  string
	State any
}

// DestinationAction routes Action to the reducer of Case.
type DestinationAction struct {
	Case   string
	Action any
}

// Destination is a set of named case reducers sharing dependencies D.
type Destination[D any] struct {
	cases map[string]store.Reducer[any, any, D]
	names []string
}

// CreateDestination derives a destination from its case reducers, typically
// built with CaseReducer.
func CreateDestination[D any](cases map[string]store.Reducer[any, any, D]) *Destination[D] {
	if len(cases) == 0 {
		panic(fmt.Errorf("%w: destination without cases", effects.ErrInvalidArgument))
	}
	return &Destination[D]{
		cases: maps.Clone(cases),
		names: slices.Sorted(maps.Keys(cases)),
	}
}

func (d *Destination[D]) mustCase(name string) store.Reducer[any, any, D] {
	reducer, ok := d.cases[name]
	if !ok {
		panic(fmt.Errorf("%w: unknown destination case %q", effects.ErrInvalidArgument, name))
	}
	return reducer
}

// Reducer runs the reducer of the presented case. Actions for other cases,
// or arriving while nothing is presented, are ignored.
func (d *Destination[D]) Reducer() store.Reducer[*DestinationState, DestinationAction, D] {
	return func(state *DestinationState, action DestinationAction, deps D) (*DestinationState, effects.Effect[DestinationAction]) {
		if state == nil || state.Case != action.Case {
			return state, effects.None[DestinationAction]()
		}
		reducer := d.mustCase(state.Case)

		next, eff := reducer(state.State, action.Action, deps)
		name := state.Case
		lifted := effects.Map(eff, func(a any) DestinationAction {
			return DestinationAction{Case: name, Action: a}
		})
		if Same(state.State, next) {
			return state, lifted
		}
		return &DestinationState{Case: name, State: next}, lifted
	}
}

// Present returns the destination state presenting name with initial state.
func (d *Destination[D]) Present(name string, initial any) *DestinationState {
	d.mustCase(name)
	return &DestinationState{Case: name, State: initial}
}

// Dismiss returns the state with nothing presented.
func (d *Destination[D]) Dismiss() *DestinationState {
	return nil
}

// Send wraps action for the case name.
func (d *Destination[D]) Send(name string, action any) DestinationAction {
	d.mustCase(name)
	return DestinationAction{Case: name, Action: action}
}

func (d *Destination[D]) Cases() []string {
	return slices.Clone(d.names)
}

// Is reports whether state presents name.
func (d *Destination[D]) Is(state *DestinationState, name string) bool {
	return state != nil && state.Case == name
}

// CaseReducer adapts a typed reducer to a destination case. State or action
// values of another type panic.
func CaseReducer[S, A, D any](reducer store.Reducer[S, A, D]) store.Reducer[any, any, D] {
	return func(state any, action any, deps D) (any, effects.Effect[any]) {
		typed := mustAs[S](state, "CaseReducer state")
		next, eff := reducer(typed, mustAs[A](action, "CaseReducer action"), deps)
		lifted := effects.Map(eff, func(a A) any { return a })
		if Same(typed, next) {
			return state, lifted
		}
		return next, lifted
	}
}

// CaseState returns the state of name when state presents it.
func CaseState[S any](state *DestinationState, name string) (S, bool) {
	if state == nil || state.Case != name {
		var zero S
		return zero, false
	}
	typed, ok := state.State.(S)
	return typed, ok
}
