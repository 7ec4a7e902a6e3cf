package effects

import (
	"time"
)

// Animated sends completed once d has elapsed. Like AfterDelay it cannot be
// cancelled by id; use a Transition when the animation must be abortable.
func Animated[A any](d time.Duration, completed A) Effect[A] {
	return AfterDelay(d, SendAll(completed))
}

// Transition describes a keyed show/hide animation pair.
//
// Both phases share ID, so starting one phase supersedes a pending timer of
// the other and Cancel(ID) aborts whichever is in flight.
type Transition[A any] struct {
	ID              string
	PresentDuration time.Duration
	DismissDuration time.Duration
}

// NewTransition panics with ErrInvalidArgument on an empty id or a negative
// duration.
func NewTransition[A any](id string, present, dismiss time.Duration) Transition[A] {
	mustID(id)
	mustDuration(present)
	mustDuration(dismiss)
	return Transition[A]{ID: id, PresentDuration: present, DismissDuration: dismiss}
}

// Present sends completed after PresentDuration.
func (t Transition[A]) Present(completed A) Effect[A] {
	return Debounced(t.ID, t.PresentDuration, SendAll(completed))
}

// Dismiss sends completed after DismissDuration.
func (t Transition[A]) Dismiss(completed A) Effect[A] {
	return Debounced(t.ID, t.DismissDuration, SendAll(completed))
}

// Cancel aborts the in-flight phase, if any.
func (t Transition[A]) Cancel() Effect[A] {
	return Cancel[A](t.ID)
}
