// Package deps holds dependency contracts reducers commonly need and a
// layered key/value bag for passing dependencies into a store.
//
// The store never inspects its dependencies; a Bag is only one convenient
// shape for them.
package deps

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

var (
	ErrNoSuchDependency = errors.New("no such dependency")
	// ErrDependencyType is returned when a dependency exists under the key
	// but holds a value of another type.
	ErrDependencyType = errors.New("dependency has unexpected type")
)

// Clock is read by reducers and effects that need the current time. Test
// harnesses substitute a clock that follows virtual time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// Bag is an immutable set of named dependencies. A lookup that misses falls
// back to the parent bag, if any.
type Bag struct {
	values map[string]any
	parent *Bag
}

// NewBag copies values into a root bag.
func NewBag(values map[string]any) *Bag {
	return &Bag{values: normalize(values)}
}

// With returns a child bag whose values shadow the ones in b.
func (b *Bag) With(values map[string]any) *Bag {
	return &Bag{values: normalize(values), parent: b}
}

func normalize(values map[string]any) map[string]any {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return copied
}

// Lookup finds key in b or its ancestors.
func (b *Bag) Lookup(key string) (any, bool) {
	for cur := b; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Get returns the dependency under key asserted to T. The error wraps
// ErrNoSuchDependency or ErrDependencyType.
func Get[T any](b *Bag, key string) (T, error) {
	var zero T
	v, ok := b.Lookup(key)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNoSuchDependency, key)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T, want %v", ErrDependencyType, key, v, reflect.TypeFor[T]())
	}
	return typed, nil
}

// MustGet is Get for dependencies whose absence is a programming error.
func MustGet[T any](b *Bag, key string) T {
	typed, err := Get[T](b, key)
	if err != nil {
		panic(err)
	}
	return typed
}

// Find is Get without an error: ok is false when key is missing or holds
// another type.
func Find[T any](b *Bag, key string) (T, bool) {
	v, _ := b.Lookup(key)
	typed, ok := v.(T)
	return typed, ok
}

const ClockKey = "clock"

// ClockOf returns the Clock stored under ClockKey, or SystemClock.
func ClockOf(b *Bag) Clock {
	if c, ok := Find[Clock](b, ClockKey); ok {
		return c
	}
	return SystemClock{}
}
