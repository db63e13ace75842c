package containers

import (
	"iter"

	"github.com/go-digitaltwin/go-statetree"
)

// Boxed holds any single component behind the statetree.Component interface,
// so that a parent does not need to know the concrete type of its child.
type Boxed struct {
	updated *structure
	c       statetree.Component
}

// NewBoxed returns a Boxed holding c; c must not be nil.
func NewBoxed(h statetree.Waker, c statetree.Component) *Boxed {
	if c == nil {
		panic("containers: NewBoxed called with a nil component")
	}
	return &Boxed{updated: newStructure(h), c: c}
}

// Get returns the boxed component.
func (b *Boxed) Get() statetree.Component { return b.c }

// Set replaces the boxed component with c, closing the previous one, and marks
// b changed; c must not be nil.
func (b *Boxed) Set(c statetree.Component) {
	if c == nil {
		panic("containers: Boxed.Set called with a nil component")
	}
	if !same(b.c, c) {
		closeComponent(b.c)
	}
	b.c = c
	b.updated.MarkChanged()
}

// Poll implements statetree.Component.
func (b *Boxed) Poll(w statetree.Waker) statetree.Summary {
	return b.updated.Poll(w) | b.c.Poll(w)
}

// Children implements statetree.Parent.
func (b *Boxed) Children() iter.Seq[statetree.Component] {
	return func(yield func(statetree.Component) bool) {
		yield(b.c)
	}
}

// Close closes the boxed component.
func (b *Boxed) Close() error {
	closeComponent(b.c)
	return b.updated.Close()
}
