package reactive

import "reflect"

// Comparer decides whether two values are equal. Equal writes are dropped
// and equal recomputations do not notify observers.
type Comparer[T any] func(a, b T) bool

// DefaultComparer uses == for basic comparable types and reflect.DeepEqual
// for everything else.
func DefaultComparer[T any]() Comparer[T] {
	return defaultEquals[T]
}

// IdentityComparer uses ==. Pointers compare by identity.
func IdentityComparer[T comparable]() Comparer[T] {
	return func(a, b T) bool { return a == b }
}

// StructuralComparer uses reflect.DeepEqual, so a fresh slice or struct with
// the same contents counts as unchanged.
func StructuralComparer[T any]() Comparer[T] {
	return func(a, b T) bool { return reflect.DeepEqual(a, b) }
}

// defaultEquals provides type-appropriate equality checking.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return sameAs(av, b)
	case int8:
		return sameAs(av, b)
	case int16:
		return sameAs(av, b)
	case int32:
		return sameAs(av, b)
	case int64:
		return sameAs(av, b)
	case uint:
		return sameAs(av, b)
	case uint8:
		return sameAs(av, b)
	case uint16:
		return sameAs(av, b)
	case uint32:
		return sameAs(av, b)
	case uint64:
		return sameAs(av, b)
	case float32:
		return sameAs(av, b)
	case float64:
		return sameAs(av, b)
	case string:
		return sameAs(av, b)
	case bool:
		return sameAs(av, b)
	case error:
		// Errors compare by identity; DeepEqual would look inside.
		bv, ok := any(b).(error)
		if !ok || reflect.TypeOf(av) != reflect.TypeOf(bv) || !reflect.TypeOf(av).Comparable() {
			return false
		}
		return av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}

// sameAs reports whether b holds a V equal to av. T may be an interface
// type, so b's dynamic type is not guaranteed to match a's.
func sameAs[V comparable, T any](av V, b T) bool {
	bv, ok := any(b).(V)
	return ok && av == bv
}
