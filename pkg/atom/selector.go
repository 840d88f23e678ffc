package atom

import (
	"sync"

	"github.com/google/go-cmp/cmp"
)

// Selector is a read-only projection of an atom.
type Selector[T, S any] struct {
	atom    *Atom[T]
	project func(T) S
	opts    []cmp.Option
}

// NewSelector returns a selector projecting a's value through project.
// opts tune the equality check used to suppress unchanged projections.
func NewSelector[T, S any](a *Atom[T], project func(T) S, opts ...cmp.Option) *Selector[T, S] {
	return &Selector[T, S]{atom: a, project: project, opts: opts}
}

// Get returns the projection of the atom's current value.
func (s *Selector[T, S]) Get() (S, error) {
	v, err := s.atom.Get()
	if err != nil {
		var zero S
		return zero, err
	}
	return s.project(v), nil
}

// Subscribe calls fn with each new projection. Writes that leave the
// projection equal to the previous one are not reported.
func (s *Selector[T, S]) Subscribe(fn func(S)) (unsubscribe func()) {
	var (
		mu   sync.Mutex
		last S
		seen bool
	)

	if current, err := s.Get(); err == nil {
		last, seen = current, true
	}

	return s.atom.Subscribe(func(v T) {
		next := s.project(v)

		mu.Lock()
		if seen && cmp.Equal(last, next, s.opts...) {
			mu.Unlock()
			return
		}
		last, seen = next, true
		mu.Unlock()

		fn(next)
	})
}
