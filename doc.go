// Package statetree provides primitives for incremental change propagation in a
// tree of stateful components. Each component reports, with minimal overhead,
// which of its parts changed since it was last asked. A driver then recomputes
// only what those changes affect.
//
// The leaves of a tree are a Cell, which tracks a single value with a
// level-triggered dirty flag, and a StreamCell, which forwards discrete values
// from an asynchronous Source. A Composite aggregates named children, each
// tagged with a Role, and may invoke callbacks when specific children change.
// The containers package adapts variable collections of components (optional,
// list, map, boxed and loading/ready) to the same Component contract.
//
// Nothing here blocks or spawns work on its own. A driver polls the root of
// the tree with a Waker. When a poll finds nothing changed, every leaf keeps
// that Waker and invokes it on its next change. A Signal coalesces those
// invocations, so that any number of changes between two polls wake the
// driver once. The driver package provides such a loop.
//
// Polling never fails. An empty Summary means nothing changed. Misuse, such
// as polling a closed cell or building a Composite without children, panics
// at the point of misuse.
package statetree
