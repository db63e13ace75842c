package statetree

import (
	"strings"
)

// Summary is the result of a single poll: a set of flags that categorise what
// changed since the previous poll. The zero Summary means nothing changed and
// the caller should wait to be woken ("pending").
type Summary uint8

const (
	// State is set when a tracked cell, or a component containing one, changed.
	State Summary = 1 << iota
	// Stream is set when a stream cell yielded at least one value.
	Stream
)

// Empty reports whether s is the pending Summary.
func (s Summary) Empty() bool { return s == 0 }

// Has reports whether all flags of f are set in s.
func (s Summary) Has(f Summary) bool { return f != 0 && s&f == f }

func (s Summary) String() string {
	if s == 0 {
		return "pending"
	}
	var parts []string
	if s&State != 0 {
		parts = append(parts, "state")
	}
	if s&Stream != 0 {
		parts = append(parts, "stream")
	}
	if rest := s &^ (State | Stream); rest != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}

// Component is the capability shared by every node of a tree: it can be polled
// for changes. Poll returns the union of all changes observed since the
// previous call, or the empty Summary after arranging for w to be woken once
// something changes.
//
// Poll is never called concurrently on the same component. Components may
// also implement io.Closer; owners close the components they drop.
type Component interface {
	Poll(w Waker) Summary
}
