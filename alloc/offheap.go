package alloc

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/gcptr/internal/logger"
)

// rawMemory is the platform half of an off-heap allocator: it hands out and
// takes back untyped byte ranges.
type rawMemory interface {
	acquire(size int) ([]byte, error)
	release(mem []byte) error
}

// offHeap implements Allocator for any rawMemory. Embedded by Mmap and Libc.
type offHeap[T any] struct {
	name string
	raw  rawMemory
	led  ledger
}

func newOffHeap[T any](name string, raw rawMemory) (*offHeap[T], error) {
	if err := checkPointerFree[T](); err != nil {
		return nil, err
	}
	if elemSize[T]() == 0 {
		return nil, fmt.Errorf("%w: zero-sized element type", ErrInvalidSize)
	}
	return &offHeap[T]{name: name, raw: raw, led: newLedger()}, nil
}

// Name implements Allocator.
func (o *offHeap[T]) Name() string { return o.name }

// New implements Allocator.
func (o *offHeap[T]) New() (*T, error) {
	b, err := o.alloc(1, false)
	if err != nil {
		return nil, err
	}
	return &b[0], nil
}

// NewArray implements Allocator.
func (o *offHeap[T]) NewArray(n int) ([]T, error) {
	return o.alloc(n, true)
}

func (o *offHeap[T]) alloc(n int, array bool) ([]T, error) {
	size, err := blockBytes[T](n)
	if err != nil {
		return nil, err
	}
	mem, err := o.raw.acquire(size)
	if err != nil {
		return nil, fmt.Errorf("alloc: %s acquire %d bytes: %w", o.name, size, err)
	}
	b := unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(mem))), n)
	o.led.add(addrOf(b), block{n: n, array: array, size: size, mem: mem})
	logger.Debug("alloc: acquired", "backend", o.name, "bytes", size, "array", array)
	return b, nil
}

// Free implements Allocator.
func (o *offHeap[T]) Free(p *T) error {
	if p == nil {
		return nil
	}
	return o.free(uintptr(unsafe.Pointer(p)), false)
}

// FreeArray implements Allocator.
func (o *offHeap[T]) FreeArray(b []T) error {
	if len(b) == 0 {
		return nil
	}
	return o.free(addrOf(b), true)
}

func (o *offHeap[T]) free(addr uintptr, array bool) error {
	rec, err := o.led.take(addr, array)
	if err != nil {
		return err
	}
	if err := o.raw.release(rec.mem); err != nil {
		o.led.onFreeError()
		return fmt.Errorf("alloc: %s release %#x: %w", o.name, addr, err)
	}
	o.led.onFree(rec.size)
	logger.Debug("alloc: released", "backend", o.name, "bytes", rec.size, "array", array)
	return nil
}

// Stats implements Allocator.
func (o *offHeap[T]) Stats() Stats { return o.led.snapshot() }

// Mmap allocates each block in its own anonymous private mapping.
type Mmap[T any] struct {
	*offHeap[T]
}

// NewMmap creates a mapping-backed allocator for the pointer-free type T.
func NewMmap[T any]() (*Mmap[T], error) {
	if !mmapSupported {
		return nil, ErrUnsupported
	}
	o, err := newOffHeap[T]("mmap", mapper{})
	if err != nil {
		return nil, err
	}
	return &Mmap[T]{o}, nil
}

// Libc allocates blocks with the C library's calloc and releases them with free.
type Libc[T any] struct {
	*offHeap[T]
}

// NewLibc creates a libc-backed allocator for the pointer-free type T. The C
// library is loaded on first use.
func NewLibc[T any]() (*Libc[T], error) {
	if err := loadLibc(); err != nil {
		return nil, err
	}
	o, err := newOffHeap[T]("libc", libc{})
	if err != nil {
		return nil, err
	}
	return &Libc[T]{o}, nil
}

var (
	_ Allocator[int] = (*Mmap[int])(nil)
	_ Allocator[int] = (*Libc[int])(nil)
)
