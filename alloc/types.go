package alloc

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/gcptr/internal/bounds"
)

// Allocator defines typed block allocation and release.
//
// Implementations:
//   - Heap: Go-heap blocks, any element type
//   - Mmap: anonymous mappings, pointer-free element types
//   - Libc: calloc/free via purego, pointer-free element types
//
// Scalar and array forms must be paired: a block obtained from New is
// released with Free, a block from NewArray with FreeArray.
type Allocator[T any] interface {
	// New allocates a single zeroed element.
	New() (*T, error)

	// NewArray allocates n zeroed elements. n must be >= 1.
	NewArray(n int) ([]T, error)

	// Free releases a block obtained from New.
	Free(p *T) error

	// FreeArray releases a block obtained from NewArray.
	FreeArray(block []T) error

	// Stats returns a snapshot of the allocator's counters.
	Stats() Stats

	// Name identifies the backend in logs and dumps.
	Name() string
}

// Stats is a point-in-time snapshot of allocator accounting.
type Stats struct {
	Allocs     int64 // Blocks handed out
	Frees      int64 // Blocks given back
	LiveBytes  int64 // Bytes currently handed out
	FreeErrors int64 // Free calls that failed
}

// Live returns the number of blocks currently handed out.
func (s Stats) Live() int64 { return s.Allocs - s.Frees }

// counters holds the atomic side of Stats.
type counters struct {
	allocs     atomic.Int64
	frees      atomic.Int64
	liveBytes  atomic.Int64
	freeErrors atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Allocs:     c.allocs.Load(),
		Frees:      c.frees.Load(),
		LiveBytes:  c.liveBytes.Load(),
		FreeErrors: c.freeErrors.Load(),
	}
}

func (c *counters) onAlloc(size int) {
	c.allocs.Add(1)
	c.liveBytes.Add(int64(size))
}

func (c *counters) onFree(size int) {
	c.frees.Add(1)
	c.liveBytes.Add(-int64(size))
}

func (c *counters) onFreeError() {
	c.freeErrors.Add(1)
}

// block describes one live allocation.
type block struct {
	n     int
	array bool
	size  int
	mem   []byte // backing memory for off-heap allocators; nil for heap
	keep  any    // keeps a heap block reachable until freed
}

// ledger maps block base addresses to live allocations.
type ledger struct {
	live map[uintptr]block
	counters
}

func newLedger() ledger {
	return ledger{live: make(map[uintptr]block)}
}

func (l *ledger) add(addr uintptr, b block) {
	l.live[addr] = b
	l.onAlloc(b.size)
}

// take removes addr from the live set, validating the free form.
func (l *ledger) take(addr uintptr, array bool) (block, error) {
	b, ok := l.live[addr]
	if !ok {
		l.onFreeError()
		return block{}, fmt.Errorf("%w: %#x", ErrDoubleFree, addr)
	}
	if b.array != array {
		l.onFreeError()
		return block{}, fmt.Errorf("%w: %#x allocated as array=%v", ErrFormMismatch, addr, b.array)
	}
	delete(l.live, addr)
	return b, nil
}

// elemSize returns unsafe.Sizeof of T.
func elemSize[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// blockBytes computes the byte size of n elements of T.
func blockBytes[T any](n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: count %d", ErrInvalidSize, n)
	}
	es := elemSize[T]()
	if es == 0 {
		return 0, fmt.Errorf("%w: zero-sized element type", ErrInvalidSize)
	}
	size, err := bounds.BlockSize(n, es)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSize, err)
	}
	return size, nil
}

// addrOf returns the base address of a block.
func addrOf[T any](block []T) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(block)))
}

// checkPointerFree rejects element types the Go collector would need to scan.
func checkPointerFree[T any]() error {
	t := reflect.TypeFor[T]()
	if hasPointers(t) {
		return fmt.Errorf("%w: %s", ErrPointerType, t)
	}
	return nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
