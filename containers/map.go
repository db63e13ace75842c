package containers

import (
	"iter"
	"maps"

	"github.com/go-digitaltwin/go-statetree"
)

// Map associates keys with components. Inserting, replacing and removing
// entries mark it changed; changes inside a component are reported by that
// component's own poll.
//
// Iteration order, including the order in which values are polled, is
// unspecified.
type Map[K comparable, C statetree.Component] struct {
	updated *structure
	m       map[K]C
}

// NewMap returns a Map holding a copy of the entries of m, which may be nil.
func NewMap[K comparable, C statetree.Component](h statetree.Waker, m map[K]C) *Map[K, C] {
	newMap := make(map[K]C, len(m))
	maps.Copy(newMap, m)
	return &Map[K, C]{updated: newStructure(h), m: newMap}
}

// Len returns the number of entries.
func (m *Map[K, C]) Len() int { return len(m.m) }

// Get returns the component stored under k, if any.
func (m *Map[K, C]) Get(k K) (c C, ok bool) {
	c, ok = m.m[k]
	return c, ok
}

// Keys returns an iterator over the keys.
func (m *Map[K, C]) Keys() iter.Seq[K] { return maps.Keys(m.m) }

// All returns an iterator over the entries.
func (m *Map[K, C]) All() iter.Seq2[K, C] { return maps.All(m.m) }

// Insert stores c under k. A different component previously stored under k is
// closed. Inserting the component already stored under k is not a change.
func (m *Map[K, C]) Insert(k K, c C) {
	if old, ok := m.m[k]; ok {
		if same(old, c) {
			return
		}
		closeComponent(old)
	}
	m.m[k] = c
	m.updated.MarkChanged()
}

// Delete removes the entry under k and returns its component without closing
// it.
func (m *Map[K, C]) Delete(k K) (c C, ok bool) {
	c, ok = m.m[k]
	if !ok {
		return c, false
	}
	delete(m.m, k)
	m.updated.MarkChanged()
	return c, true
}

// Entry gives fn access to the entry under k. fn receives the current component
// (and whether one exists) and returns the component to store and whether to
// keep the entry at all. The map is marked changed only if fn inserted,
// replaced or removed the entry; replaced and removed components are closed.
func (m *Map[K, C]) Entry(k K, fn func(c C, ok bool) (C, bool)) {
	old, had := m.m[k]
	c, keep := fn(old, had)
	switch {
	case keep && had && same(old, c):
		return
	case keep:
		if had {
			closeComponent(old)
		}
		m.m[k] = c
	case had:
		closeComponent(old)
		delete(m.m, k)
	default:
		return
	}
	m.updated.MarkChanged()
}

// Retain keeps only the entries for which keep returns true and closes the
// others. It marks the map changed only if an entry was removed.
func (m *Map[K, C]) Retain(keep func(K, C) bool) {
	removed := 0
	for k, c := range m.m {
		if keep(k, c) {
			continue
		}
		closeComponent(c)
		delete(m.m, k)
		removed++
	}
	if removed > 0 {
		m.updated.MarkChanged()
	}
}

// Clear removes and closes every entry.
func (m *Map[K, C]) Clear() {
	if len(m.m) == 0 {
		return
	}
	for _, c := range m.m {
		closeComponent(c)
	}
	clear(m.m)
	m.updated.MarkChanged()
}

// Poll implements statetree.Component.
func (m *Map[K, C]) Poll(w statetree.Waker) statetree.Summary {
	s := m.updated.Poll(w)
	for _, c := range m.m {
		s |= c.Poll(w)
	}
	return s
}

// Children implements statetree.Parent.
func (m *Map[K, C]) Children() iter.Seq[statetree.Component] {
	return func(yield func(statetree.Component) bool) {
		for _, c := range m.m {
			if !yield(c) {
				return
			}
		}
	}
}

// Close closes every component.
func (m *Map[K, C]) Close() error {
	for _, c := range m.m {
		closeComponent(c)
	}
	return m.updated.Close()
}
