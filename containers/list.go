package containers

import (
	"iter"
	"slices"

	"github.com/go-digitaltwin/go-statetree"
)

// List is an ordered sequence of components. Operations that change its length
// or order mark it changed; changes inside an element are reported by that
// element's own poll.
type List[C statetree.Component] struct {
	updated *structure
	items   []C
}

// NewList returns a List holding the given components.
func NewList[C statetree.Component](h statetree.Waker, items ...C) *List[C] {
	return &List[C]{updated: newStructure(h), items: slices.Clone(items)}
}

// Len returns the number of components.
func (l *List[C]) Len() int { return len(l.items) }

// At returns the i'th component. It panics if i is out of range.
func (l *List[C]) At(i int) C { return l.items[i] }

// All returns an iterator over the components and their indices, in order.
func (l *List[C]) All() iter.Seq2[int, C] {
	return slices.All(l.items)
}

// Push appends c to the end of the list.
func (l *List[C]) Push(c C) {
	l.items = append(l.items, c)
	l.updated.MarkChanged()
}

// Append appends every component in cs, in order.
func (l *List[C]) Append(cs ...C) {
	if len(cs) == 0 {
		return
	}
	l.items = append(l.items, cs...)
	l.updated.MarkChanged()
}

// Insert inserts c at index i, shifting later components. It panics if i is
// out of range.
func (l *List[C]) Insert(i int, c C) {
	l.items = slices.Insert(l.items, i, c)
	l.updated.MarkChanged()
}

// Remove removes and returns the i'th component without closing it. It panics
// if i is out of range.
func (l *List[C]) Remove(i int) C {
	c := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	l.updated.MarkChanged()
	return c
}

// Pop removes and returns the last component without closing it.
func (l *List[C]) Pop() (c C, ok bool) {
	if len(l.items) == 0 {
		return c, false
	}
	return l.Remove(len(l.items) - 1), true
}

// Drain removes the components in l[i:j] and returns them without closing them.
// It panics if the range is invalid.
func (l *List[C]) Drain(i, j int) []C {
	drained := slices.Clone(l.items[i:j])
	if len(drained) == 0 {
		return nil
	}
	l.items = slices.Delete(l.items, i, j)
	l.updated.MarkChanged()
	return drained
}

// Swap exchanges the components at indices i and j.
func (l *List[C]) Swap(i, j int) {
	if i == j {
		return
	}
	l.items[i], l.items[j] = l.items[j], l.items[i]
	l.updated.MarkChanged()
}

// Retain keeps only the components for which keep returns true, preserving
// their order, and closes the others. It marks the list changed only if a
// component was removed.
func (l *List[C]) Retain(keep func(C) bool) {
	kept := l.items[:0]
	removed := 0
	for _, c := range l.items {
		if keep(c) {
			kept = append(kept, c)
			continue
		}
		closeComponent(c)
		removed++
	}
	if removed == 0 {
		return
	}
	clear(l.items[len(kept):])
	l.items = kept
	l.updated.MarkChanged()
}

// Clear removes and closes every component.
func (l *List[C]) Clear() {
	if len(l.items) == 0 {
		return
	}
	for _, c := range l.items {
		closeComponent(c)
	}
	clear(l.items)
	l.items = l.items[:0]
	l.updated.MarkChanged()
}

// Poll implements statetree.Component. Elements are polled in index order.
func (l *List[C]) Poll(w statetree.Waker) statetree.Summary {
	s := l.updated.Poll(w)
	for _, c := range l.items {
		s |= c.Poll(w)
	}
	return s
}

// Children implements statetree.Parent.
func (l *List[C]) Children() iter.Seq[statetree.Component] {
	return func(yield func(statetree.Component) bool) {
		for _, c := range l.items {
			if !yield(c) {
				return
			}
		}
	}
}

// Close closes every component.
func (l *List[C]) Close() error {
	for _, c := range l.items {
		closeComponent(c)
	}
	return l.updated.Close()
}
