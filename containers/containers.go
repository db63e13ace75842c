package containers

import (
	"io"
	"reflect"

	"github.com/go-digitaltwin/go-statetree"
)

// structure is the cell every adapter marks when its shape changes.
type structure = statetree.Cell[struct{}]

func newStructure(h statetree.Waker) *structure {
	return statetree.NewCell(h, struct{}{})
}

// closeComponent closes c if it implements io.Closer. Close errors are
// dropped: the component is being discarded and polling never fails.
func closeComponent(c any) {
	if x, ok := c.(io.Closer); ok {
		_ = x.Close()
	}
}

// same reports whether a and b are the very same component, so that an
// adapter does not close a component that is being reinstated.
func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	return a == b
}
