package statetree

import (
	"context"
	"io"
	"sync"
)

// A Source produces discrete values asynchronously. Next returns the next
// available value; if none is available it arranges for w to be woken once one
// arrives and returns ok == false.
type Source[T any] interface {
	Next(w Waker) (v T, ok bool)
}

// Binder is implemented by sources that accept a fallback Waker, used when a
// value arrives before any poll registered one.
type Binder interface {
	Bind(h Waker)
}

// A StreamCell forwards the values of a Source into a tree of components. Unlike
// a Cell, it has no change marker: "changed" means the source yielded a value,
// and every value is delivered separately. Callers that want every value
// available in one turn poll until ok == false.
type StreamCell[T any] struct {
	src    Source[T]
	closed bool
}

// NewStreamCell returns a StreamCell reading from src. If src implements
// Binder, it is bound to the wake handle h.
func NewStreamCell[T any](h Waker, src Source[T]) *StreamCell[T] {
	if src == nil {
		panic("statetree: NewStreamCell called with a nil Source")
	}
	if b, ok := src.(Binder); ok && h != nil {
		b.Bind(h)
	}
	return &StreamCell[T]{src: src}
}

// Poll drives the source once.
func (s *StreamCell[T]) Poll(w Waker) (v T, ok bool) {
	if s.closed {
		panic("statetree: poll of a closed StreamCell")
	}
	return s.src.Next(w)
}

// Close closes the underlying source if it implements io.Closer.
func (s *StreamCell[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// A Queue is an unbounded FIFO Source. Values are pushed from any goroutine and
// consumed by polling; each Push wakes the Waker registered by the last empty
// poll (or the bound handle, before the first poll).
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	waiter Waker
	closed bool
}

// NewQueue returns an empty Queue whose fallback Waker is h (may be nil).
func NewQueue[T any](h Waker) *Queue[T] {
	return &Queue[T]{waiter: h}
}

// Bind implements Binder. It only takes effect while no poll has registered a
// Waker.
func (q *Queue[T]) Bind(h Waker) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.waiter == nil {
		q.waiter = h
	}
}

// Push appends v and wakes the waiting poll. Values pushed after Close are
// dropped.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, v)
	w := q.waiter
	q.mu.Unlock()
	wake(w)
}

// Next implements Source.
func (q *Queue[T]) Next(w Waker) (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		if w != nil {
			q.waiter = w
		}
		return v, false
	}
	v = q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

// Len returns the number of buffered values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close drops buffered values and stops accepting new ones.
func (q *Queue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.items = nil
	q.waiter = nil
	return nil
}

// Pipe returns a Queue fed by ch. Forwarding stops when ch is closed or ctx is
// done.
func Pipe[T any](ctx context.Context, h Waker, ch <-chan T) *Queue[T] {
	q := NewQueue[T](h)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-ch:
				if !ok {
					return
				}
				q.Push(v)
			}
		}
	}()
	return q
}

// A Future is a Source that yields exactly one value, once resolved. After
// that value has been consumed, Next reports ok == false forever.
type Future[T any] struct {
	mu       sync.Mutex
	value    T
	resolved bool
	consumed bool
	waiter   Waker
}

// NewFuture returns an unresolved Future whose fallback Waker is h.
func NewFuture[T any](h Waker) *Future[T] {
	return &Future[T]{waiter: h}
}

// Spawn runs fn on a new goroutine and returns a Future resolved with its
// result.
func Spawn[T any](ctx context.Context, h Waker, fn func(context.Context) T) *Future[T] {
	f := NewFuture[T](h)
	go func() {
		f.Resolve(fn(ctx))
	}()
	return f
}

// Resolve sets the value of f and wakes the waiting poll. Resolving a Future
// more than once panics.
func (f *Future[T]) Resolve(v T) {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		panic("statetree: Future resolved twice")
	}
	f.value = v
	f.resolved = true
	w := f.waiter
	f.waiter = nil
	f.mu.Unlock()
	wake(w)
}

// Bind implements Binder.
func (f *Future[T]) Bind(h Waker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.waiter == nil && !f.resolved {
		f.waiter = h
	}
}

// Next implements Source.
func (f *Future[T]) Next(w Waker) (v T, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.resolved {
		if w != nil {
			f.waiter = w
		}
		return v, false
	}
	if f.consumed {
		return v, false
	}
	f.consumed = true
	v = f.value
	var zero T
	f.value = zero
	return v, true
}
