// Package common provides small shared types used across packages.
//
//nolint:revive // "common" is an appropriate name for shared utilities package
package common

// Optional holds a value that may be absent.
//
// Unlike a *T, an Optional is a plain value: copying it copies the held value,
// so two copies never alias each other. The zero value is absent.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// Value returns the value.
// Panics if the value is not set (IsSet() == false).
func (o Optional[T]) Value() T {
	if !o.set {
		panic("Optional.Value() called on unset value: use IsSet() or Get() first")
	}
	return o.value
}

// Or returns the value, or def when absent.
func (o Optional[T]) Or(def T) T {
	if !o.set {
		return def
	}
	return o.value
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
// This is useful for serialization with omitempty.
func (o Optional[T]) Ptr() *T {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}
