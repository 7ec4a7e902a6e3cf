package teststore

import (
	"fmt"
	"reflect"

	"github.com/stretchr/testify/assert"
)

// matches reports whether actual has the dynamic type of expected and agrees
// with every exported field expected sets to a non-zero value. Values that
// are not structs, or pointers to structs, must be equal.
func matches(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}
	ev, av := reflect.ValueOf(expected), reflect.ValueOf(actual)
	if ev.Type() != av.Type() {
		return false
	}
	if ev.Kind() == reflect.Pointer {
		if ev.IsNil() || av.IsNil() {
			return ev.IsNil() == av.IsNil()
		}
		ev, av = ev.Elem(), av.Elem()
	}
	if ev.Kind() != reflect.Struct {
		return assert.ObjectsAreEqual(expected, actual)
	}

	for i := 0; i < ev.NumField(); i++ {
		field := ev.Type().Field(i)
		if !field.IsExported() {
			continue
		}
		ef := ev.Field(i)
		if ef.IsZero() {
			continue
		}
		if !assert.ObjectsAreEqual(ef.Interface(), av.Field(i).Interface()) {
			return false
		}
	}
	return true
}

func describe(action any) string {
	if action == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T%+v", action, action)
}
