package containers

import (
	"sync/atomic"
	"testing"

	"github.com/go-digitaltwin/go-statetree"
)

var nop = statetree.WakerFunc(func() {})

// counter is a Waker that counts its invocations.
type counter struct {
	n atomic.Int64
}

func (c *counter) Wake()        { c.n.Add(1) }
func (c *counter) count() int64 { return c.n.Load() }

// settle polls c until it reports nothing, so that the next poll only reports
// what the test does in between.
func settle(t *testing.T, c statetree.Component) {
	t.Helper()
	for range 3 {
		if c.Poll(nop).Empty() {
			return
		}
	}
	t.Fatal("component never settled")
}

// newCell returns a cell whose initial change was already observed.
func newCell(v int) *statetree.Cell[int] {
	c := statetree.NewCell[int](nil, v)
	c.Poll(nop)
	return c
}

// isClosed reports whether c was closed, consuming any pending change.
func isClosed(c *statetree.Cell[int]) (closed bool) {
	defer func() {
		if recover() != nil {
			closed = true
		}
	}()
	c.PollChanged(nil)
	return false
}

// probe is a leaf that records when it is polled.
type probe struct {
	*statetree.Cell[int]
	name string
	log  *[]string
}

func newProbe(name string, log *[]string) *probe {
	return &probe{Cell: newCell(0), name: name, log: log}
}

func (p *probe) Poll(w statetree.Waker) statetree.Summary {
	*p.log = append(*p.log, p.name)
	return p.Cell.Poll(w)
}

func TestSame(t *testing.T) {
	a, b := newCell(0), newCell(0)
	tests := []struct {
		name string
		x, y any
		want bool
	}{
		{"identical", a, a, true},
		{"distinct", a, b, false},
		{"nil", nil, nil, true},
		{"one-nil", a, nil, false},
		{"incomparable", []int{1}, []int{1}, false},
	}
	for _, tt := range tests {
		if got := same(tt.x, tt.y); got != tt.want {
			t.Errorf("same(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
