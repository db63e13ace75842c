package statetree

import (
	"sync/atomic"
)

// A Waker is an opaque handle used to request another poll. Implementations
// must allow Wake to be called any number of times, from any goroutine.
type Waker interface {
	Wake()
}

// The WakerFunc type is an adapter to allow the use of ordinary functions as
// wakers.
type WakerFunc func()

// Wake calls f().
func (f WakerFunc) Wake() { f() }

// wake invokes w unless it is nil.
func wake(w Waker) {
	if w != nil {
		w.Wake()
	}
}

// A Signal coalesces wake requests into a single downstream notification. Any
// number of calls to Wake that occur between two calls to Reset invoke the
// registered Waker at most once.
//
// A Signal is the only object meant to be shared across a tree of components;
// it is safe for concurrent use. The zero value is an unscheduled Signal with no
// registered Waker.
type Signal struct {
	scheduled atomic.Bool
	waker     atomic.Pointer[registration]
}

// registration boxes a Waker so that it fits an atomic.Pointer.
type registration struct {
	w Waker
}

// NewSignal returns an unscheduled Signal with no registered Waker.
func NewSignal() *Signal {
	return new(Signal)
}

// Register stores w as the Waker to invoke on the next winning Wake, replacing
// any previously registered one. Registering nil removes the stored Waker.
func (s *Signal) Register(w Waker) {
	if w == nil {
		s.waker.Store(nil)
		return
	}
	s.waker.Store(&registration{w: w})
}

// Wake flips the Signal from unscheduled to scheduled. Only the caller that
// wins that transition invokes the registered Waker; concurrent and later
// callers return immediately until the next Reset.
//
// Wake never blocks, unless the registered Waker does.
func (s *Signal) Wake() {
	if !s.scheduled.CompareAndSwap(false, true) {
		return
	}
	if r := s.waker.Load(); r != nil {
		r.w.Wake()
	}
}

// Reset flips the Signal back to unscheduled and reports whether a wake was
// pending. A driver calls Reset immediately before polling so that a wake
// arriving during the poll schedules a follow-up poll instead of being
// absorbed.
func (s *Signal) Reset() bool {
	return s.scheduled.CompareAndSwap(true, false)
}

// Scheduled reports whether a wake is pending.
func (s *Signal) Scheduled() bool {
	return s.scheduled.Load()
}

// Context is handed to the functions that construct a tree of components. It
// replaces any ambient lookup: cells receive their wake handle explicitly from
// the Context that built them.
type Context struct {
	signal *Signal
}

// NewContext returns a Context bound to the given Signal; s must not be nil.
func NewContext(s *Signal) *Context {
	if s == nil {
		panic("statetree: NewContext called with a nil Signal")
	}
	return &Context{signal: s}
}

// Signal wakes the driver unconditionally, whether or not any cell changed.
func (cx *Context) Signal() {
	cx.signal.Wake()
}

// Waker returns the shared wake handle. Pass it to cell and container
// constructors, or use it to poll sources owned outside the tree.
func (cx *Context) Waker() Waker {
	return cx.signal
}
