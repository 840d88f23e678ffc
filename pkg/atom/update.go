package atom

// Update is the argument to Set: either a direct value or a function
// deriving the next value from the current one.
type Update[T any] struct {
	value  T
	derive func(T) T
}

// Value returns an Update that sets v.
func Value[T any](v T) Update[T] {
	return Update[T]{value: v}
}

// Derive returns an Update that computes the next value from the current
// one. A nil fn leaves the value unchanged.
func Derive[T any](fn func(T) T) Update[T] {
	if fn == nil {
		fn = func(v T) T { return v }
	}
	return Update[T]{derive: fn}
}

// resolve produces the concrete next value, reading the current value
// through current only for derived updates.
func (u Update[T]) resolve(current func() (T, error)) (T, error) {
	if u.derive == nil {
		return u.value, nil
	}
	v, err := current()
	if err != nil {
		var zero T
		return zero, err
	}
	return u.derive(v), nil
}
