package tracked

import (
	"errors"
	"unsafe"

	"github.com/joshuapare/gcptr/alloc"
)

func addrOf[T any](p *T) uintptr {
	return uintptr(unsafe.Pointer(p))
}

var errInjected = errors.New("injected free failure")

// failingAllocator wraps a heap allocator and fails every free while
// failFree is set.
type failingAllocator[T any] struct {
	*alloc.Heap[T]
	failFree bool
	frees    int
}

func newFailingAllocator[T any]() *failingAllocator[T] {
	return &failingAllocator[T]{Heap: alloc.NewHeap[T]()}
}

func (f *failingAllocator[T]) Name() string { return "failing" }

func (f *failingAllocator[T]) Free(p *T) error {
	f.frees++
	if f.failFree {
		return errInjected
	}
	return f.Heap.Free(p)
}

func (f *failingAllocator[T]) FreeArray(block []T) error {
	f.frees++
	if f.failFree {
		return errInjected
	}
	return f.Heap.FreeArray(block)
}
