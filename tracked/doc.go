// Package tracked provides deterministic reference-counted handles over
// dynamically allocated blocks.
//
// # Overview
//
// A Ptr[T] is a handle bound to a block of one or more T. Every live binding
// is counted in a Record held by the Registry for T; when a sweep observes a
// count of zero the block is released through the allocator that produced it.
// No tracing is involved, so reclamation happens at a predictable point, and
// reference cycles are never reclaimed.
//
// # Lifecycle
//
//	p := tracked.Bind(new(Config))     // count 1
//	q := p.Clone()                     // count 2
//	p.Release()                        // count 1, sweep frees nothing
//	q.Release()                        // count 0, sweep frees the block
//
// Go has no copy constructors or destructors, so the lifecycle is explicit:
//
//   - Bind, BindArray, New, NewArray: create a binding
//   - Clone: copy a binding (the only valid way to share a block)
//   - Reset, ResetArray, Assign: rebind, decrementing the previous block
//   - Release: unbind and sweep the whole registry
//
// # Sweeps
//
// Release always sweeps every record of the registry, not just the handle's
// own, so one release can free blocks unrelated to it. Reassignment (Reset,
// ResetArray, Assign) also sweeps unless Options.DeferReassignSweep is set, in
// which case a block orphaned by reassignment waits for the next Release or
// Collect.
//
// # Registries
//
// Default[T] returns the process-wide registry for T, created lazily on first
// use. Shutdown forces every count to zero and sweeps each default registry;
// call it once when the program exits. Reset[T] and ResetAll additionally
// forget the registries and exist for test isolation. NewRegistry creates an
// isolated registry, optionally backed by an off-heap allocator:
//
//	m, err := alloc.NewMmap[Sample]()
//	if err != nil {
//	    return err
//	}
//	reg := tracked.NewRegistry(tracked.Options[Sample]{Allocator: m})
//	buf, err := reg.NewArray(4096)
//	if err != nil {
//	    return err
//	}
//	defer buf.Release()
//
// # Errors
//
// Out-of-range indexing returns ErrOutOfRange and is recoverable. Broken
// bookkeeping (a bound handle whose record is missing, or a binding whose
// shape disagrees with its record) panics with a *Fault; Catch converts that
// panic back into a value for tests and diagnostics.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. Handles of one element
// type share a registry, so all handles of a type must be used from one
// goroutine or under external synchronization.
package tracked
