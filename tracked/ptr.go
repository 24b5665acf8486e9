package tracked

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/joshuapare/gcptr/cursor"
)

// Ptr is a reference-counted handle to a tracked block of T.
//
// The zero value is an unbound handle on the default registry for T. A Ptr
// is a view, not an owner: the block lives as long as its record's count is
// non-zero. Every binding must be paired with exactly one Release.
//
// Copy a Ptr only with Clone or Assign. A plain Go assignment (q := p)
// duplicates the view without counting it, and releasing both copies is a
// bookkeeping breach.
type Ptr[T any] struct {
	reg     *Registry[T]
	block   []T // len 1 for scalar bindings, nil when unbound
	isArray bool
	epoch   uint64
}

// Bind binds p on the default registry for T. See Registry.Bind.
func Bind[T any](p *T) Ptr[T] { return Default[T]().Bind(p) }

// BindArray binds block on the default registry for T. See Registry.BindArray.
func BindArray[T any](block []T) Ptr[T] { return Default[T]().BindArray(block) }

// New allocates a zeroed T from the default registry's allocator and binds it.
func New[T any]() (Ptr[T], error) { return Default[T]().New() }

// NewArray allocates n zeroed elements from the default registry's allocator
// and binds them.
func NewArray[T any](n int) (Ptr[T], error) { return Default[T]().NewArray(n) }

// Bind returns a handle bound to the scalar at p. p must come from new(T) or
// another Go-heap allocation and must not be freed by the caller afterwards.
// A nil p yields an unbound handle.
//
// If p is already tracked its count is incremented; binding a tracked array
// base address as a scalar is a Fault.
func (r *Registry[T]) Bind(p *T) Ptr[T] {
	if p == nil {
		return Ptr[T]{reg: r, epoch: r.epoch}
	}
	block := unsafe.Slice(p, 1)
	r.acquire("Bind", block, false)
	return Ptr[T]{reg: r, block: block, epoch: r.epoch}
}

// BindArray returns a handle bound to the whole of block as an array of
// len(block) elements. An empty block yields an unbound handle.
//
// If the base address is already tracked, its record must be an array of the
// same length; any other shape is a Fault.
func (r *Registry[T]) BindArray(block []T) Ptr[T] {
	if len(block) == 0 {
		return Ptr[T]{reg: r, epoch: r.epoch}
	}
	block = block[:len(block):len(block)]
	r.acquire("BindArray", block, true)
	return Ptr[T]{reg: r, block: block, isArray: true, epoch: r.epoch}
}

// New allocates a zeroed T from the registry's allocator and binds it.
func (r *Registry[T]) New() (Ptr[T], error) {
	p, err := r.alloc.New()
	if err != nil {
		return Ptr[T]{}, fmt.Errorf("tracked: new %s: %w", r.name, err)
	}
	block := unsafe.Slice(p, 1)
	r.adoptFresh("New", block, false)
	return Ptr[T]{reg: r, block: block, epoch: r.epoch}, nil
}

// NewArray allocates n zeroed elements from the registry's allocator and
// binds them as an array.
func (r *Registry[T]) NewArray(n int) (Ptr[T], error) {
	block, err := r.alloc.NewArray(n)
	if err != nil {
		return Ptr[T]{}, fmt.Errorf("tracked: new %s[%d]: %w", r.name, n, err)
	}
	r.adoptFresh("NewArray", block, true)
	return Ptr[T]{reg: r, block: block, isArray: true, epoch: r.epoch}, nil
}

func (r *Registry[T]) adoptFresh(op string, block []T, isArray bool) {
	if rec := r.find(baseAddr(block)); rec != nil {
		fault(op, r.name, rec.addr, "allocator %s returned an address that is still tracked", r.alloc.Name())
	}
	r.insert(block, isArray, r.alloc)
}

func (p *Ptr[T]) registry() *Registry[T] {
	if p.reg == nil {
		p.reg = Default[T]()
		p.epoch = p.reg.epoch
	}
	return p.reg
}

func (p *Ptr[T]) bound() bool { return p.block != nil }

// detached reports whether p was bound before its registry was shut down.
func (p *Ptr[T]) detached() bool { return p.reg != nil && p.epoch != p.reg.epoch }

// drop decrements p's current binding, if any, and leaves p unbound.
func (p *Ptr[T]) drop(op string) {
	if p.bound() && !p.detached() {
		p.reg.unbind(op, baseAddr(p.block))
	}
	p.block = nil
	p.isArray = false
}

// Clone returns a new handle bound to the same block, incrementing its count.
// Cloning a bound handle whose record is missing is a Fault.
func (p *Ptr[T]) Clone() Ptr[T] {
	r := p.registry()
	if !p.bound() {
		return Ptr[T]{reg: r, epoch: r.epoch}
	}
	if p.detached() {
		fault("Clone", r.name, baseAddr(p.block), "handle outlived a registry shutdown")
	}
	r.retain("Clone", baseAddr(p.block), p.isArray, len(p.block))
	return Ptr[T]{reg: r, block: p.block, isArray: p.isArray, epoch: r.epoch}
}

// Reset rebinds p to the scalar at addr (nil unbinds). The previous binding
// is decremented; see Bind for the rules on addr.
func (p *Ptr[T]) Reset(addr *T) {
	r := p.registry()
	var block []T
	if addr != nil {
		block = unsafe.Slice(addr, 1)
		r.acquire("Reset", block, false)
	}
	p.drop("Reset")
	p.block, p.epoch = block, r.epoch
	r.afterReassign()
}

// ResetArray rebinds p to block as an array (empty unbinds). The previous
// binding is decremented; see BindArray for the rules on block.
func (p *Ptr[T]) ResetArray(block []T) {
	r := p.registry()
	if len(block) == 0 {
		block = nil
	} else {
		block = block[:len(block):len(block)]
		r.acquire("ResetArray", block, true)
	}
	p.drop("ResetArray")
	p.block, p.isArray, p.epoch = block, block != nil, r.epoch
	r.afterReassign()
}

// Assign rebinds p to q's block, incrementing it and decrementing p's
// previous binding. p adopts q's registry. Assigning a handle to itself is a
// no-op.
func (p *Ptr[T]) Assign(q *Ptr[T]) {
	if p == q {
		return
	}
	next := q.Clone()
	old := p.registry()
	p.drop("Assign")
	*p = next
	old.afterReassign()
	if next.reg != old {
		next.reg.afterReassign()
	}
}

func (r *Registry[T]) afterReassign() {
	if !r.deferReassignSweep {
		r.Collect()
	}
}

// Release unbinds p and sweeps its registry. The sweep covers every record,
// so releasing one handle may free blocks unrelated to it. Releasing an
// unbound handle only sweeps.
func (p *Ptr[T]) Release() {
	r := p.registry()
	p.drop("Release")
	p.epoch = r.epoch
	r.Collect()
}

// IsNil reports whether p is unbound.
func (p *Ptr[T]) IsNil() bool { return !p.bound() }

// IsArray reports whether p is bound as an array.
func (p *Ptr[T]) IsArray() bool { return p.isArray }

// Len returns the number of addressable elements: the array length, 1 for a
// scalar binding, 0 when unbound.
func (p *Ptr[T]) Len() int { return len(p.block) }

// Refs returns the count recorded for p's block, or 0 when unbound or detached.
func (p *Ptr[T]) Refs() uint {
	if !p.bound() || p.detached() {
		return 0
	}
	n, _ := p.reg.RefCount(baseAddr(p.block))
	return n
}

// Get returns a pointer to the first (for scalars, the only) element, or nil
// when unbound.
func (p *Ptr[T]) Get() *T {
	if !p.bound() {
		return nil
	}
	return &p.block[0]
}

// Value returns a copy of the first element. It panics when p is unbound, as
// dereferencing a nil pointer would.
func (p *Ptr[T]) Value() T {
	return *p.Get()
}

// At returns a pointer to element i. Array bindings accept 0 <= i < Len();
// scalar bindings accept only 0. Other indices fail with ErrOutOfRange.
func (p *Ptr[T]) At(i int) (*T, error) {
	if !p.bound() {
		return nil, ErrNilPtr
	}
	if i < 0 || i >= len(p.block) {
		return nil, fmt.Errorf("%w: index %d, length %d", ErrOutOfRange, i, len(p.block))
	}
	return &p.block[i], nil
}

// Begin returns a cursor at the first element of p's range.
func (p *Ptr[T]) Begin() cursor.Cursor[T] { return cursor.Begin(p.block) }

// End returns a cursor one past the last element of p's range.
func (p *Ptr[T]) End() cursor.Cursor[T] { return cursor.End(p.block) }

// All iterates over p's elements with their indices.
func (p *Ptr[T]) All() iter.Seq2[int, *T] {
	span := p.block
	return func(yield func(int, *T) bool) {
		for i := range span {
			if !yield(i, &span[i]) {
				return
			}
		}
	}
}

// Addr returns the bound base address, or 0 when unbound.
func (p *Ptr[T]) Addr() uintptr {
	if !p.bound() {
		return 0
	}
	return baseAddr(p.block)
}

// Unsafe returns the raw pointer for code outside the tracked system. The
// caller must not free it or bind it through another raw path.
func (p *Ptr[T]) Unsafe() *T { return p.Get() }

// Slice returns the bound range as a slice; same caveats as Unsafe.
func (p *Ptr[T]) Slice() []T { return p.block }

// String describes the binding for debugging.
func (p *Ptr[T]) String() string {
	switch {
	case !p.bound():
		return "Ptr(nil)"
	case p.isArray:
		return fmt.Sprintf("Ptr(%#x[%d] refs=%d)", p.Addr(), len(p.block), p.Refs())
	default:
		return fmt.Sprintf("Ptr(%#x refs=%d)", p.Addr(), p.Refs())
	}
}
