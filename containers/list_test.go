package containers

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-digitaltwin/go-statetree"
	"github.com/go-digitaltwin/go-statetree/componenttest"
)

func TestListConformance(t *testing.T) {
	t.Run("push", func(t *testing.T) {
		componenttest.Run(t, func(h statetree.Waker) componenttest.Harness {
			l := NewList[*statetree.Cell[int]](h)
			return componenttest.Harness{
				Component: l,
				Touch:     func() { l.Push(statetree.NewCell(h, 0)) },
			}
		})
	})
	t.Run("element", func(t *testing.T) {
		componenttest.Run(t, func(h statetree.Waker) componenttest.Harness {
			a, b := statetree.NewCell(h, 0), statetree.NewCell(h, 0)
			return componenttest.Harness{
				Component: NewList(h, a, b),
				Touch:     func() { b.Set(b.Get() + 1) },
			}
		})
	})
}

// A structural change is reported even when no element changed.
func TestListStructuralChange(t *testing.T) {
	l := NewList(nil, newCell(0))
	settle(t, l)

	l.Push(newCell(1))
	if s := l.Poll(nop); s != statetree.State {
		t.Errorf("Poll() after Push = %v, want %v", s, statetree.State)
	}
}

func TestListMutations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *List[*statetree.Cell[int]])
		want   statetree.Summary
	}{
		{"push", func(l *List[*statetree.Cell[int]]) { l.Push(newCell(9)) }, statetree.State},
		{"append", func(l *List[*statetree.Cell[int]]) { l.Append(newCell(9), newCell(10)) }, statetree.State},
		{"append-nothing", func(l *List[*statetree.Cell[int]]) { l.Append() }, 0},
		{"insert", func(l *List[*statetree.Cell[int]]) { l.Insert(1, newCell(9)) }, statetree.State},
		{"remove", func(l *List[*statetree.Cell[int]]) { l.Remove(0) }, statetree.State},
		{"pop", func(l *List[*statetree.Cell[int]]) { l.Pop() }, statetree.State},
		{"drain", func(l *List[*statetree.Cell[int]]) { l.Drain(0, 2) }, statetree.State},
		{"drain-nothing", func(l *List[*statetree.Cell[int]]) { l.Drain(1, 1) }, 0},
		{"swap", func(l *List[*statetree.Cell[int]]) { l.Swap(0, 2) }, statetree.State},
		{"swap-self", func(l *List[*statetree.Cell[int]]) { l.Swap(1, 1) }, 0},
		{"retain-some", func(l *List[*statetree.Cell[int]]) {
			l.Retain(func(c *statetree.Cell[int]) bool { return c.Get() != 1 })
		}, statetree.State},
		{"retain-all", func(l *List[*statetree.Cell[int]]) {
			l.Retain(func(*statetree.Cell[int]) bool { return true })
		}, 0},
		{"clear", func(l *List[*statetree.Cell[int]]) { l.Clear() }, statetree.State},
		{"read", func(l *List[*statetree.Cell[int]]) {
			for range l.All() {
			}
			_ = l.At(0)
			_ = l.Len()
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewList(nil, newCell(0), newCell(1), newCell(2))
			settle(t, l)

			tt.mutate(l)
			if got := l.Poll(nop); got != tt.want {
				t.Errorf("Poll() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListEmptyMutations(t *testing.T) {
	l := NewList[*statetree.Cell[int]](nil)
	settle(t, l)

	if _, ok := l.Pop(); ok {
		t.Error("Pop() of an empty List returned a component")
	}
	l.Clear()
	l.Retain(func(*statetree.Cell[int]) bool { return false })
	if s := l.Poll(nop); !s.Empty() {
		t.Errorf("Poll() = %v, want pending", s)
	}
}

func TestListOwnership(t *testing.T) {
	a, b, c, d := newCell(0), newCell(1), newCell(2), newCell(3)
	l := NewList(nil, a, b, c, d)

	// Components handed back to the caller stay open.
	if got := l.Remove(0); got != a || isClosed(a) {
		t.Error("Remove closed or lost the returned component")
	}
	if got, ok := l.Pop(); !ok || got != d || isClosed(d) {
		t.Error("Pop closed or lost the returned component")
	}

	// Components dropped by the list are closed.
	l.Retain(func(x *statetree.Cell[int]) bool { return x != b })
	if !isClosed(b) {
		t.Error("Retain did not close the removed component")
	}
	if isClosed(c) {
		t.Error("Retain closed a kept component")
	}
	l.Clear()
	if !isClosed(c) {
		t.Error("Clear did not close the removed component")
	}
	if n := l.Len(); n != 0 {
		t.Errorf("Len() after Clear = %d, want 0", n)
	}
}

func TestListPollOrder(t *testing.T) {
	var got []string
	l := NewList(nil, newProbe("a", &got), newProbe("b", &got))
	l.Insert(1, newProbe("c", &got))
	l.Swap(0, 2)

	l.Poll(nop)
	if diff := cmp.Diff([]string{"b", "c", "a"}, got); diff != "" {
		t.Errorf("poll order mismatch (-want +got):\n%s", diff)
	}
}
