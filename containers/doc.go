/*
Package containers adapts variable collections of components to the
[statetree.Component] contract: an optional slot ([Option]), an ordered list
([List]), a keyed map ([Map]), a polymorphic box ([Boxed]) and a
loading/ready pair ([Suspense]).

Except for Suspense, every adapter owns a structural [statetree.Cell] that is
marked changed when the shape of the collection changes (insertion, removal,
reassignment or reordering), independently of changes inside its elements. Its
poll result is the union of the structural cell's result and the results of
all contained components. Structural changes are reported as
[statetree.State].

Operations only mark the structural cell when they actually alter the
collection; removing from an empty list or retaining every element is not a
change. The exceptions are [Option.Set], [Option.Clear] and [Boxed.Set], which
always mark.

Adapters close (see [io.Closer]) the components they drop: replaced, retained
out or cleared. Components handed back to the caller, such as the result of
[List.Remove], change ownership and are left open.
*/
package containers
