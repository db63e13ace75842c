package statetree

import (
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"
)

// counter is a Waker that counts its invocations.
type counter struct {
	n atomic.Int64
}

func (c *counter) Wake()        { c.n.Add(1) }
func (c *counter) count() int64 { return c.n.Load() }

func TestSignalCoalescesConcurrentWakes(t *testing.T) {
	var w counter
	s := NewSignal()
	s.Register(&w)

	var g errgroup.Group
	for range 64 {
		g.Go(func() error {
			s.Wake()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := w.count(); got != 1 {
		t.Errorf("Waker invoked %d times by concurrent wakes, want 1", got)
	}
	if !s.Scheduled() {
		t.Error("Scheduled() = false after Wake, want true")
	}
}

func TestSignalReset(t *testing.T) {
	var w counter
	s := NewSignal()
	s.Register(&w)

	if s.Reset() {
		t.Error("Reset() of a new Signal = true, want false")
	}

	s.Wake()
	if !s.Reset() {
		t.Error("Reset() after Wake = false, want true")
	}
	if s.Reset() {
		t.Error("second Reset() = true, want false")
	}

	// Once reset, the next wake wins again.
	s.Wake()
	s.Wake()
	if got := w.count(); got != 2 {
		t.Errorf("Waker invoked %d times across two rounds, want 2", got)
	}
}

func TestSignalRegisterReplacesWaker(t *testing.T) {
	var first, second counter
	s := NewSignal()
	s.Register(&first)
	s.Register(&second)

	s.Wake()
	if first.count() != 0 || second.count() != 1 {
		t.Errorf("wakes = (%d, %d), want (0, 1)", first.count(), second.count())
	}

	// Without a registered Waker, a wake still schedules the Signal.
	s.Register(nil)
	s.Reset()
	s.Wake()
	if !s.Scheduled() {
		t.Error("Scheduled() = false after Wake without a Waker, want true")
	}
	if second.count() != 1 {
		t.Errorf("unregistered Waker invoked %d times, want 1", second.count())
	}
}

func TestContext(t *testing.T) {
	var w counter
	s := NewSignal()
	s.Register(&w)
	cx := NewContext(s)

	cx.Signal()
	cx.Waker().Wake()
	if got := w.count(); got != 1 {
		t.Errorf("Waker invoked %d times, want 1", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("NewContext(nil) did not panic")
		}
	}()
	NewContext(nil)
}
