package atom

import "slices"

// Operation is the atom operation a value is flowing through.
type Operation string

const (
	OpGet Operation = "get"
	OpSet Operation = "set"
)

// Result is a middleware callback's synchronous outcome.
//
// The zero Result is Deferred: the value passes through unchanged.
type Result[T any] struct {
	value       T
	transformed bool
}

// Transformed replaces the value flowing through the pipeline with v.
func Transformed[T any](v T) Result[T] {
	return Result[T]{value: v, transformed: true}
}

// Deferred leaves the value unchanged. Callbacks that only observe, or
// that hand work to another goroutine, return Deferred.
func Deferred[T any]() Result[T] {
	return Result[T]{}
}

// IsDeferred reports whether r leaves the value unchanged.
func (r Result[T]) IsDeferred() bool {
	return !r.transformed
}

// Callback is a middleware function. Returning an error aborts the
// operation; for Set nothing is written and no subscriber is notified.
type Callback[T any] func(value T, op Operation) (Result[T], error)

// Registration scopes a callback to a set of operations.
type Registration[T any] struct {
	Label      string
	Operations []Operation
	Callback   Callback[T]
}

// Applies reports whether r runs for op.
func (r Registration[T]) Applies(op Operation) bool {
	return slices.Contains(r.Operations, op)
}

// Middleware is accepted by Options.Middleware and AddMiddleware: a bare
// Callback, which runs for both operations, or a Registration.
type Middleware[T any] interface {
	registration() Registration[T]
}

func (c Callback[T]) registration() Registration[T] {
	return Registration[T]{
		Operations: []Operation{OpGet, OpSet},
		Callback:   c,
	}
}

func (r Registration[T]) registration() Registration[T] {
	r.Operations = slices.Clone(r.Operations)
	return r
}

// OnGet scopes cb to Get.
func OnGet[T any](cb Callback[T]) Registration[T] {
	return Registration[T]{Operations: []Operation{OpGet}, Callback: cb}
}

// OnSet scopes cb to Set.
func OnSet[T any](cb Callback[T]) Registration[T] {
	return Registration[T]{Operations: []Operation{OpSet}, Callback: cb}
}

// Detached returns a callback that runs fn on a new goroutine and returns
// Deferred immediately. fn is never awaited or cancelled.
func Detached[T any](fn func(value T, op Operation)) Callback[T] {
	return func(value T, op Operation) (Result[T], error) {
		go fn(value, op)
		return Deferred[T](), nil
	}
}
