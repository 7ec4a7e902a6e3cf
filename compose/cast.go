package compose

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnexpectedType is raised (via panic) when an adapted reducer receives a
// state or action of another type than the one it was built for.
var ErrUnexpectedType = errors.New("unexpected state or action type")

func mustAs[T any](v any, where string) T {
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Errorf("%w: %s got %T, want %v", ErrUnexpectedType, where, v, reflect.TypeFor[T]()))
	}
	return typed
}
