// Package alloc provides typed block allocators for memory tracked by the
// tracked package.
//
// # Overview
//
// A tracked handle only decides *when* a block is released; an Allocator
// decides *how* the block was obtained and how it is given back. Every
// allocator distinguishes scalar blocks (New/Free) from array blocks
// (NewArray/FreeArray), and rejects a free through the wrong form.
//
// # Implementations
//
// Heap: Go-heap blocks from new(T) and make([]T, n)
//
//   - Free zeroes the block and drops the allocator's reference
//   - Adopt registers a block that was allocated elsewhere on the Go heap
//   - Works for every element type
//
// Mmap: anonymous private mappings outside the Go heap
//
//   - golang.org/x/sys/unix on Unix, VirtualAlloc on Windows
//   - Page-granular; Free unmaps the pages immediately
//
// Libc: the C library's calloc/free, bound through purego without cgo
//
//   - Available on Linux and macOS
//
// Off-heap allocators refuse element types that contain Go pointers
// (ErrPointerType): the Go collector never scans that memory.
//
// # Usage Example
//
//	m, err := alloc.NewMmap[float64]()
//	if err != nil {
//	    return err
//	}
//	block, err := m.NewArray(512)
//	if err != nil {
//	    return err
//	}
//	block[0] = 1.5
//	err = m.FreeArray(block)
//
// # Accounting
//
// Each allocator keeps atomic counters readable at any time through Stats.
// After every block has been freed, Allocs == Frees and LiveBytes == 0.
//
// # Thread Safety
//
// Allocator instances are not thread-safe apart from Stats. Callers must
// synchronize access externally.
//
// # Related Packages
//
//   - github.com/joshuapare/gcptr/tracked: Reference-counted handles over allocated blocks
//   - github.com/joshuapare/gcptr/cursor: Bounds-checked traversal over a block
package alloc
