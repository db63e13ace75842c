package statetree

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// Role tags a child of a Composite with the way it is polled.
type Role uint8

const (
	// RoleComponent children are nested components; they are polled first.
	RoleComponent Role = iota + 1
	// RoleState children are tracked cells; they are polled second.
	RoleState
	// RoleStream children are stream cells; they are drained last.
	RoleStream
)

func (r Role) String() string {
	switch r {
	case RoleComponent:
		return "component"
	case RoleState:
		return "state"
	case RoleStream:
		return "stream"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// field is one entry of a Composite's registration list.
type field struct {
	name string
	role Role
	// poll is set for component and state children.
	poll func(Waker) Summary
	// next is set for stream children; it yields a single value, if any, and
	// runs the field's callback with it.
	next func(Waker) bool
	// node and closer expose the child to Walk and Close respectively; either
	// may be nil.
	node   Component
	closer io.Closer
}

// A Builder collects the children of a Composite, each tagged with its Role and
// an optional callback, using fluent calls.
//
// The zero value is ready to use. Do not copy a non-zero Builder.
type Builder struct {
	fields   []field
	names    map[string]struct{}
	onChange func(Summary)
	// address of receiver - to detect copies by value.
	addr *Builder
}

// Component registers a nested component. When c reports a non-empty Summary,
// the Summary is merged into the composite's result and passed to fn (which
// may be nil).
func (b *Builder) Component(name string, c Component, fn func(Summary)) *Builder {
	b.copyCheck()
	if c == nil {
		panic(fmt.Sprintf("statetree: nil component registered as %q", name))
	}
	b.add(field{
		name: name,
		role: RoleComponent,
		poll: func(w Waker) Summary {
			s := c.Poll(w)
			if !s.Empty() && fn != nil {
				fn(s)
			}
			return s
		},
		node:   c,
		closer: asCloser(c),
	})
	return b
}

// State registers a tracked state child, usually a *Cell. When c reports a
// change, State is set on the composite's result and fn (which may be nil) is
// called.
func (b *Builder) State(name string, c Component, fn func()) *Builder {
	b.copyCheck()
	if c == nil {
		panic(fmt.Sprintf("statetree: nil state registered as %q", name))
	}
	b.add(field{
		name: name,
		role: RoleState,
		poll: func(w Waker) Summary {
			if c.Poll(w).Empty() {
				return 0
			}
			if fn != nil {
				fn()
			}
			return State
		},
		node:   c,
		closer: asCloser(c),
	})
	return b
}

// StreamField registers a stream child with b. Every value yielded by s sets
// Stream on the composite's result and is passed to fn (which may be nil).
//
// StreamField is a function rather than a method of Builder because methods
// cannot have type parameters.
func StreamField[T any](b *Builder, name string, s *StreamCell[T], fn func(T)) *Builder {
	b.copyCheck()
	if s == nil {
		panic(fmt.Sprintf("statetree: nil stream registered as %q", name))
	}
	b.add(field{
		name: name,
		role: RoleStream,
		next: func(w Waker) bool {
			v, ok := s.Poll(w)
			if ok && fn != nil {
				fn(v)
			}
			return ok
		},
		closer: s,
	})
	return b
}

// OnChange sets the callback invoked once per poll, after every child was
// polled, if any child changed.
func (b *Builder) OnChange(fn func(Summary)) *Builder {
	b.copyCheck()
	b.onChange = fn
	return b
}

// Build returns a Composite over the registered children. A Composite must
// track something: Build panics if no child was registered.
//
// Children are ordered by role (components, then state, then streams) and by
// registration order within a role. The Builder may be reused afterwards.
func (b *Builder) Build() *Composite {
	b.copyCheck()
	if len(b.fields) == 0 {
		panic("statetree: Composite built without any tracked child")
	}
	c := &Composite{onChange: b.onChange}
	c.fields = make([]field, 0, len(b.fields))
	for _, r := range []Role{RoleComponent, RoleState, RoleStream} {
		for _, f := range b.fields {
			if f.role == r {
				c.fields = append(c.fields, f)
			}
		}
	}
	return c
}

// Reset resets the Builder to be empty.
func (b *Builder) Reset() {
	b.fields = nil
	b.names = nil
	b.onChange = nil
	b.addr = nil
}

func (b *Builder) add(f field) {
	if f.name == "" {
		panic("statetree: child registered without a name")
	}
	if _, dup := b.names[f.name]; dup {
		panic(fmt.Sprintf("statetree: child %q registered twice", f.name))
	}
	if b.names == nil {
		b.names = make(map[string]struct{})
	}
	b.names[f.name] = struct{}{}
	b.fields = append(b.fields, f)
}

func (b *Builder) copyCheck() {
	if b.addr == nil {
		b.addr = b
	} else if b.addr != b {
		panic("statetree: illegal use of non-zero Builder copied by value")
	}
}

func asCloser(c Component) io.Closer {
	if x, ok := c.(io.Closer); ok {
		return x
	}
	return nil
}

// A Composite aggregates a fixed set of named children into a single
// Component. Construct one with a Builder.
type Composite struct {
	fields   []field
	onChange func(Summary)
	closed   bool
}

// Poll polls every child and returns the union of their changes:
//
//  1. nested components, merging their Summary and calling their callback;
//  2. state children, setting State and calling their callback;
//  3. stream children, drained until pending, setting Stream and calling their
//     callback once per value;
//  4. the OnChange callback, once, if anything changed.
//
// Callback side effects may depend on this order; it is part of the contract.
func (c *Composite) Poll(w Waker) Summary {
	if c.closed {
		panic("statetree: poll of a closed Composite")
	}
	var result Summary
	for _, f := range c.fields {
		switch f.role {
		case RoleComponent, RoleState:
			result |= f.poll(w)
		case RoleStream:
			for f.next(w) {
				result |= Stream
			}
		}
	}
	if !result.Empty() && c.onChange != nil {
		c.onChange(result)
	}
	return result
}

// Children implements Parent. Stream children are not components and are
// skipped.
func (c *Composite) Children() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		for _, f := range c.fields {
			if f.node == nil {
				continue
			}
			if !yield(f.node) {
				return
			}
		}
	}
}

// Len returns the number of registered children.
func (c *Composite) Len() int { return len(c.fields) }

// Close closes every child that implements io.Closer, in polling order, and
// returns the joined errors. Polling a closed Composite panics.
func (c *Composite) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var errs []error
	for _, f := range c.fields {
		if f.closer == nil {
			continue
		}
		if err := f.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s %q: %w", f.role, f.name, err))
		}
	}
	return errors.Join(errs...)
}
