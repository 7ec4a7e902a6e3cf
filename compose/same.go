package compose

import "reflect"

// Same reports whether b is the value a, so a reducer that returned it made
// no change. Pointers, maps and channels compare by identity, slices by
// backing array and length. Other values compare deeply.
//
// Non-nil funcs are never the same, including funcs nested in struct or
// array values, so such a state always counts as changed and its parent is
// rebuilt. Keep func-carrying state behind a pointer to preserve identity.
func Same[T any](a, b T) bool {
	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Func:
		return false
	default:
		return reflect.DeepEqual(va.Interface(), vb.Interface())
	}
}
