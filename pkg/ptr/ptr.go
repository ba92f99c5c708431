// Package ptr provides small helpers for working with pointers.
package ptr

// Of returns a pointer to the given value.
func Of[T any](v T) *T { return &v }

// Deref returns the value pointed to, or the zero value for nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T

		return zero
	}

	return *p
}

// DerefOr returns the value pointed to, or fallback for nil.
func DerefOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}

	return *p
}
