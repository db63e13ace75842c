package containers

import (
	"iter"

	"github.com/go-digitaltwin/go-statetree"
)

// Option holds at most one component. The zero value is not usable; call
// NewOption or Some.
type Option[C statetree.Component] struct {
	updated *structure
	c       C
	ok      bool
}

// NewOption returns an empty Option.
func NewOption[C statetree.Component](h statetree.Waker) *Option[C] {
	return &Option[C]{updated: newStructure(h)}
}

// Some returns an Option holding c.
func Some[C statetree.Component](h statetree.Waker, c C) *Option[C] {
	return &Option[C]{updated: newStructure(h), c: c, ok: true}
}

// Get returns the held component, if any.
func (o *Option[C]) Get() (c C, ok bool) {
	return o.c, o.ok
}

// IsSome reports whether o holds a component.
func (o *Option[C]) IsSome() bool { return o.ok }

// Set replaces the slot's content with c, closing the previous component. It
// always marks o changed, even when reinstating the same component.
func (o *Option[C]) Set(c C) {
	o.replace(c, true)
}

// Clear empties the slot, closing the previous component. Like Set, it always
// marks o changed, even if the slot was already empty.
func (o *Option[C]) Clear() {
	var zero C
	o.replace(zero, false)
}

func (o *Option[C]) replace(c C, ok bool) {
	if o.ok && !(ok && same(o.c, c)) {
		closeComponent(o.c)
	}
	o.c, o.ok = c, ok
	o.updated.MarkChanged()
}

// Take removes and returns the held component without closing it. It marks o
// changed only if the slot was occupied.
func (o *Option[C]) Take() (c C, ok bool) {
	if !o.ok {
		return c, false
	}
	c = o.c
	var zero C
	o.c, o.ok = zero, false
	o.updated.MarkChanged()
	return c, true
}

// Poll implements statetree.Component.
func (o *Option[C]) Poll(w statetree.Waker) statetree.Summary {
	s := o.updated.Poll(w)
	if o.ok {
		s |= o.c.Poll(w)
	}
	return s
}

// Children implements statetree.Parent.
func (o *Option[C]) Children() iter.Seq[statetree.Component] {
	return func(yield func(statetree.Component) bool) {
		if o.ok {
			yield(o.c)
		}
	}
}

// Close closes the held component, if any.
func (o *Option[C]) Close() error {
	if o.ok {
		closeComponent(o.c)
	}
	return o.updated.Close()
}
