package containers

import (
	"iter"

	"github.com/go-digitaltwin/go-statetree"
)

// Suspense shows a fallback component until a pending component is produced.
// It starts Loading, delegating polls to the fallback; once the pending
// Source yields a component it becomes Ready for good, drops the fallback and
// delegates to the new component instead.
//
// The pending Source is typically a *statetree.Future; only its first value is
// used.
type Suspense[F, C statetree.Component] struct {
	fallback  F
	pending   statetree.Source[C]
	component C
	ready     bool
}

// NewSuspense returns a loading Suspense; pending must not be nil.
func NewSuspense[F, C statetree.Component](fallback F, pending statetree.Source[C]) *Suspense[F, C] {
	if pending == nil {
		panic("containers: NewSuspense called with a nil Source")
	}
	return &Suspense[F, C]{fallback: fallback, pending: pending}
}

// Ready reports whether the pending component was produced.
func (s *Suspense[F, C]) Ready() bool { return s.ready }

// Component returns the produced component once Ready.
func (s *Suspense[F, C]) Component() (c C, ok bool) {
	return s.component, s.ready
}

// Fallback returns the fallback component while loading.
func (s *Suspense[F, C]) Fallback() (f F, ok bool) {
	return s.fallback, !s.ready
}

// Poll first tries to resolve the pending component. The poll that observes
// the resolution already delegates to the new component.
func (s *Suspense[F, C]) Poll(w statetree.Waker) statetree.Summary {
	if !s.ready {
		if c, ok := s.pending.Next(w); ok {
			s.resolve(c)
		}
	}
	if s.ready {
		return s.component.Poll(w)
	}
	return s.fallback.Poll(w)
}

func (s *Suspense[F, C]) resolve(c C) {
	closeComponent(s.fallback)
	closeComponent(s.pending)
	var zero F
	s.fallback = zero
	s.pending = nil
	s.component = c
	s.ready = true
}

// Children implements statetree.Parent; it yields whichever component is
// currently active.
func (s *Suspense[F, C]) Children() iter.Seq[statetree.Component] {
	return func(yield func(statetree.Component) bool) {
		if s.ready {
			yield(s.component)
		} else {
			yield(s.fallback)
		}
	}
}

// Close closes the active component and, while loading, the pending Source if
// it implements io.Closer.
func (s *Suspense[F, C]) Close() error {
	if s.ready {
		closeComponent(s.component)
		return nil
	}
	closeComponent(s.fallback)
	closeComponent(s.pending)
	return nil
}
