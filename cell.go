package statetree

import (
	"sync"
)

// marker tracks whether a Cell changed since it was last polled.
type marker uint8

const (
	changed   marker = iota // reported as changed on the next poll
	unchanged               // polled, nobody waiting
	awaiting                // polled and pending; Cell.waiter is set
)

// A Cell tracks changes to a single value. Every write marks the cell changed;
// the next poll reports that change once and resets the marker. Multiple writes
// between two polls collapse into a single report: a Cell is a level-triggered
// dirty flag, not a counter, and intermediate values are not retained.
//
// A new Cell is changed, so its first poll always reports a change.
//
// A Cell has a single owner at a time, but writes may come from any goroutine
// so long as they do not race with each other logically; the Cell itself is
// safe for concurrent use.
type Cell[T any] struct {
	mu     sync.Mutex
	state  marker
	waiter Waker // valid while state == awaiting
	handle Waker // woken on changes nobody is waiting for
	closed bool
	value  T
}

// NewCell returns a changed Cell holding v. The handle h is woken when the
// cell changes while no poll is waiting on it, which happens between a poll
// that reported a change and the next poll; it is usually Context.Waker() and
// may be nil.
func NewCell[T any](h Waker, v T) *Cell[T] {
	return &Cell[T]{handle: h, value: v}
}

// Get returns the current value. Reading never marks the cell changed.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the value and marks the cell changed, even if v equals the
// current value.
func (c *Cell[T]) Set(v T) {
	c.Update(func(p *T) { *p = v })
}

// Update grants fn write access to the value and marks the cell changed. The
// function must not call methods of c.
func (c *Cell[T]) Update(fn func(v *T)) {
	c.mu.Lock()
	fn(&c.value)
	w := c.invalidate()
	c.mu.Unlock()
	wake(w)
}

// MarkChanged marks the cell changed without writing to it. Use it when a value
// held by the cell mutated itself through a path other than Update.
func (c *Cell[T]) MarkChanged() {
	c.mu.Lock()
	w := c.invalidate()
	c.mu.Unlock()
	wake(w)
}

// invalidate transitions the marker to changed and returns the Waker to invoke
// once the lock is released.
func (c *Cell[T]) invalidate() Waker {
	if c.closed {
		return nil
	}
	switch c.state {
	case awaiting:
		w := c.waiter
		c.waiter = nil
		c.state = changed
		return w
	case unchanged:
		c.state = changed
		return c.handle
	default:
		return nil
	}
}

// PollChanged reports whether the cell changed since the last poll. If it did
// not, w replaces any previously stored Waker and is woken on the next change.
//
// Polling a closed cell panics.
func (c *Cell[T]) PollChanged(w Waker) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		panic("statetree: poll of a closed Cell")
	}
	if c.state == changed {
		c.state = unchanged
		c.waiter = nil
		return true
	}
	c.state = awaiting
	c.waiter = w
	return false
}

// Poll implements Component; a change is reported as State.
func (c *Cell[T]) Poll(w Waker) Summary {
	if c.PollChanged(w) {
		return State
	}
	return 0
}

// Close releases the cell. If a poll is waiting on it, its Waker is invoked
// once. Close is idempotent and always returns nil.
func (c *Cell[T]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	var w Waker
	if c.state == awaiting {
		w = c.waiter
	}
	c.waiter = nil
	c.mu.Unlock()
	wake(w)
	return nil
}
