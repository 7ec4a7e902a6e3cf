// Package presentation is a reusable lifecycle for anything shown and hidden
// with a timed animation: sheets, toasts, menus, navigation destinations.
//
//	Idle --Present--> Presenting --PresentationCompleted--> Presented
//	Presented --Dismiss--> Dismissing --DismissalCompleted--> Idle
//
// The completion actions are sent by a keyed transition, so a dismissal can
// abort an animation that is still running.
package presentation

import (
	"fmt"
	"time"

	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/store"
)

type Status int

const (
	Idle Status = iota
	Presenting
	Presented
	Dismissing
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Presenting:
		return "presenting"
	case Presented:
		return "presented"
	case Dismissing:
		return "dismissing"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is the presentation state of content of type C. Content is nil
// exactly when Status is Idle.
type State[C any] struct {
	Status  Status
	Content *C
	// DismissRequested records a Dismiss received while presenting; the
	// dismissal starts as soon as the presentation completes.
	DismissRequested bool
}

// IsActive reports whether content is on its way in or fully shown.
func (s State[C]) IsActive() bool {
	return s.Status == Presenting || s.Status == Presented
}

// Action is the closed set of presentation actions for content C.
type Action[C any] interface {
	presentationAction(C)
}

// Present starts showing Content. Ignored unless Idle.
type Present[C any] struct{ Content C }

// PresentationCompleted is sent when the presenting animation finishes.
type PresentationCompleted[C any] struct{}

// Dismiss starts hiding the content.
type Dismiss[C any] struct{}

// DismissalCompleted is sent when the dismissing animation finishes.
type DismissalCompleted[C any] struct{}

// Reset returns to Idle at once, aborting any running animation.
type Reset[C any] struct{}

func (Present[C]) presentationAction(C)               {}
func (PresentationCompleted[C]) presentationAction(C) {}
func (Dismiss[C]) presentationAction(C)               {}
func (DismissalCompleted[C]) presentationAction(C)    {}
func (Reset[C]) presentationAction(C)                 {}

type Config struct {
	// ID keys the animation timers. Machines running in one store need
	// distinct ids.
	ID              string
	PresentDuration time.Duration
	DismissDuration time.Duration
}

// Reducer builds the presentation machine for cfg. It panics on an empty id
// or a negative duration.
func Reducer[C, D any](cfg Config) store.Reducer[State[C], Action[C], D] {
	transition := effects.NewTransition[Action[C]](cfg.ID, cfg.PresentDuration, cfg.DismissDuration)
	none := effects.None[Action[C]]

	return func(s State[C], action Action[C], _ D) (State[C], effects.Effect[Action[C]]) {
		switch a := action.(type) {
		case Present[C]:
			if s.Status != Idle {
				return s, none()
			}
			content := a.Content
			return State[C]{Status: Presenting, Content: &content},
				transition.Present(PresentationCompleted[C]{})

		case PresentationCompleted[C]:
			if s.Status != Presenting {
				return s, none()
			}
			if s.DismissRequested {
				return State[C]{Status: Dismissing, Content: s.Content},
					transition.Dismiss(DismissalCompleted[C]{})
			}
			return State[C]{Status: Presented, Content: s.Content}, none()

		case Dismiss[C]:
			switch s.Status {
			case Presented:
				return State[C]{Status: Dismissing, Content: s.Content},
					transition.Dismiss(DismissalCompleted[C]{})
			case Presenting:
				s.DismissRequested = true
				return s, none()
			default:
				return s, none()
			}

		case DismissalCompleted[C]:
			if s.Status != Dismissing {
				return s, none()
			}
			return State[C]{Status: Idle}, none()

		case Reset[C]:
			if s.Status == Idle {
				return s, none()
			}
			return State[C]{Status: Idle}, transition.Cancel()

		default:
			return s, none()
		}
	}
}
