package statetree

import (
	"iter"
)

// Parent is implemented by components that own other components, such as
// Composite and the adapters of the containers package.
type Parent interface {
	Children() iter.Seq[Component]
}

// A Visitor's Visit method is invoked for each component encountered by Walk.
// If the result visitor w is not nil, Walk visits each child of the component
// with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(c Component) (w Visitor)
}

// Walk traverses a tree of components in depth-first order: It starts by
// calling v.Visit(root); root must not be nil. If the visitor w returned by
// v.Visit(root) is not nil and root is a Parent, Walk is invoked recursively
// with visitor w for each child, followed by a call of w.Visit(nil).
//
// Walk does not poll; it only observes the current shape of the tree.
func Walk(v Visitor, root Component) {
	if v = v.Visit(root); v == nil {
		return
	}
	if p, ok := root.(Parent); ok {
		for child := range p.Children() {
			Walk(v, child)
		}
	}
	v.Visit(nil)
}

type inspector func(Component) bool

func (f inspector) Visit(c Component) Visitor {
	if f(c) {
		return f
	}
	return nil
}

// Inspect traverses a tree of components in depth-first order: It starts by
// calling f(root); root must not be nil. If f returns true, Inspect invokes f
// recursively for each child of root, followed by a call of f(nil).
func Inspect(root Component, f func(Component) bool) {
	Walk(inspector(f), root)
}

// Count returns the number of components in the tree rooted at root, root
// included.
func Count(root Component) int {
	n := 0
	Inspect(root, func(c Component) bool {
		if c != nil {
			n++
		}
		return true
	})
	return n
}
