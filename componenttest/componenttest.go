/*
Package componenttest provides a conformance suite for implementations of
[statetree.Component].

Every component, leaf or adapter, must observe the same polling contract: a new
component reports a change on its first poll, then stays pending until
mutated. Any number of mutations between two polls wake the driver exactly
once and are reported by a single poll. Closing a component that a poll is
waiting on wakes the driver. [Run] checks these properties against a component
supplied by the caller, through a [statetree.Signal] standing in for a driver.
*/
package componenttest

import (
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/go-digitaltwin/go-statetree"
)

// Harness exposes a component under test.
type Harness struct {
	// Component is the component under test. It must be freshly constructed with
	// the wake handle given to the setup function.
	Component statetree.Component
	// Touch performs a single mutation that Component must report as a
	// statetree.State change on its next poll.
	Touch func()
}

// An observation records what happened during a single step of the suite.
type observation struct {
	// wakes counts the calls to the driver's Waker since the previous step.
	wakes int64
	// summary is the result of the step's poll; it is left empty when the step
	// does not poll.
	summary statetree.Summary
}

// A check is any function that returns unexpected problems with the given
// observation.
type check func(observation) (problem string)

// Checks that the step's poll reported the given flags (and maybe others).
func reported(want statetree.Summary) check {
	return func(o observation) string {
		if !o.summary.Has(want) {
			return fmt.Sprintf("Poll() = %v, want %v", o.summary, want)
		}
		return ""
	}
}

// Checks that the step's poll reported nothing.
func pending() check {
	return func(o observation) string {
		if !o.summary.Empty() {
			return fmt.Sprintf("Poll() = %v, want pending", o.summary)
		}
		return ""
	}
}

// Checks that the driver was woken exactly n times since the previous step.
func woke(n int64) check {
	return func(o observation) string {
		if o.wakes != n {
			return fmt.Sprintf("driver woken %d times, want %d", o.wakes, n)
		}
		return ""
	}
}

type step struct {
	name     string
	location string
	// act runs before observing; it may be nil.
	act func(h Harness)
	// poll is false for steps after which the component can no longer be polled.
	poll   bool
	checks []check
}

var steps = []step{
	{
		name:     "first-poll",
		location: locateSource(),
		poll:     true,
		checks:   []check{woke(0), reported(statetree.State)},
	},
	{
		name:     "settled",
		location: locateSource(),
		poll:     true,
		checks:   []check{woke(0), pending()},
	},
	{
		name:     "touch",
		location: locateSource(),
		act:      func(h Harness) { h.Touch() },
		poll:     true,
		checks:   []check{woke(1), reported(statetree.State)},
	},
	{
		name:     "idle",
		location: locateSource(),
		poll:     true,
		checks:   []check{woke(0), pending()},
	},
	{
		name:     "coalesce",
		location: locateSource(),
		act: func(h Harness) {
			h.Touch()
			h.Touch()
			h.Touch()
		},
		poll:   true,
		checks: []check{woke(1), reported(statetree.State)},
	},
	{
		name:     "quiet",
		location: locateSource(),
		poll:     true,
		checks:   []check{woke(0), pending()},
	},
}

// The last step runs only for components that implement io.Closer.
var closing = step{
	name:     "close",
	location: locateSource(),
	act: func(h Harness) {
		_ = h.Component.(io.Closer).Close()
	},
	checks: []check{woke(1)},
}

// Run checks the polling contract of the component returned by setup. The
// setup function receives the wake handle the component's cells must be bound
// to.
//
// All steps run in order, on the same component, because each step depends on
// the state left by the previous one; a step cannot pass if the previous one
// failed, so Run stops at the first failing step.
func Run(t *testing.T, setup func(h statetree.Waker) Harness) {
	t.Helper()

	var wakes atomic.Int64
	signal := statetree.NewSignal()
	signal.Register(statetree.WakerFunc(func() { wakes.Add(1) }))

	h := setup(signal)
	if h.Component == nil || h.Touch == nil {
		t.Fatal("Harness must provide both a Component and a Touch function")
	}

	all := steps
	if _, ok := h.Component.(io.Closer); ok {
		all = append(all[:len(all):len(all)], closing)
	}
	for _, s := range all {
		// We encourage developers to read the source code directly, especially when
		// failures are not clear enough.
		t.Logf("Read the source for step %v at %v", s.name, s.location)
		if s.act != nil {
			s.act(h)
		}
		// Wakes are counted between polls, so they are collected before the Signal is
		// reset for the next poll, the same way a driver would.
		o := observation{wakes: wakes.Swap(0)}
		if s.poll {
			signal.Reset()
			o.summary = h.Component.Poll(signal)
		}
		failed := false
		for _, c := range s.checks {
			if problem := c(o); problem != "" {
				t.Errorf("Check %v: %v", s.name, problem)
				failed = true
			}
		}
		if failed {
			return
		}
	}
}

// Call this function to set the location of every step in the source file.
// The returned string is used to guide developers of components to the
// appropriate step.
func locateSource() (path string) {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		panic("runtime.Caller failed")
	}
	return fmt.Sprintf("%v:%v", file, line)
}
