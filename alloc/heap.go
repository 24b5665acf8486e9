package alloc

import (
	"fmt"
	"unsafe"
)

// Heap allocates blocks on the Go heap.
//
// Releasing a block zeroes it and drops the allocator's reference so the Go
// collector can reclaim it. The memory itself is returned by the Go runtime,
// not by Free.
type Heap[T any] struct {
	led ledger
}

// NewHeap creates a heap allocator for T.
func NewHeap[T any]() *Heap[T] {
	return &Heap[T]{led: newLedger()}
}

// Name implements Allocator.
func (h *Heap[T]) Name() string { return "heap" }

// New implements Allocator.
func (h *Heap[T]) New() (*T, error) {
	p := new(T)
	if err := h.adopt(unsafe.Slice(p, 1), false); err != nil {
		return nil, err
	}
	return p, nil
}

// NewArray implements Allocator.
func (h *Heap[T]) NewArray(n int) ([]T, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: count %d", ErrInvalidSize, n)
	}
	b := make([]T, n)
	if err := h.adopt(b, true); err != nil {
		return nil, err
	}
	return b, nil
}

// Adopt registers a block that was allocated on the Go heap by other means
// (new, make, composite literal escaping to the heap), so it can later be
// released through Free or FreeArray.
func (h *Heap[T]) Adopt(b []T, array bool) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty block", ErrInvalidSize)
	}
	if !array && len(b) != 1 {
		return fmt.Errorf("%w: scalar block of length %d", ErrInvalidSize, len(b))
	}
	return h.adopt(b, array)
}

func (h *Heap[T]) adopt(b []T, array bool) error {
	addr := addrOf(b)
	if _, ok := h.led.live[addr]; ok {
		return fmt.Errorf("alloc: heap block %#x already live", addr)
	}
	h.led.add(addr, block{
		n:     len(b),
		array: array,
		size:  len(b) * elemSize[T](),
		keep:  b,
	})
	return nil
}

// Free implements Allocator.
func (h *Heap[T]) Free(p *T) error {
	if p == nil {
		return nil
	}
	return h.release(unsafe.Slice(p, 1), false)
}

// FreeArray implements Allocator.
func (h *Heap[T]) FreeArray(b []T) error {
	if len(b) == 0 {
		return nil
	}
	return h.release(b, true)
}

func (h *Heap[T]) release(b []T, array bool) error {
	rec, err := h.led.take(addrOf(b), array)
	if err != nil {
		return err
	}
	clear(rec.keep.([]T))
	h.led.onFree(rec.size)
	return nil
}

// Stats implements Allocator.
func (h *Heap[T]) Stats() Stats { return h.led.snapshot() }

var _ Allocator[int] = (*Heap[int])(nil)
