package tracked

import (
	"log/slog"
	"reflect"
	"slices"
	"strconv"
	"unsafe"

	"github.com/joshuapare/gcptr/alloc"
	"github.com/joshuapare/gcptr/internal/logger"
)

// Options configures a Registry.
type Options[T any] struct {
	// Allocator backs New and NewArray. If nil, a Go-heap allocator is used.
	// Blocks bound from raw addresses are always adopted by the registry's
	// heap allocator, whatever this is set to.
	Allocator alloc.Allocator[T]

	// Logger receives bind/free debug records and free failures.
	// If nil, the package-wide internal logger is used.
	Logger *slog.Logger

	// DeferReassignSweep skips the sweep after Reset, ResetArray and Assign,
	// so a block whose count dropped to zero on reassignment is only freed by
	// the next Release or Collect. Default: sweep after every unbinding.
	DeferReassignSweep bool

	// Name labels the registry in dumps and logs.
	// Default: the element type's name.
	Name string
}

// record is the bookkeeping for one tracked allocation.
type record[T any] struct {
	addr    uintptr
	refs    uint
	isArray bool
	length  int // element count when isArray, 0 otherwise
	block   []T
	owner   alloc.Allocator[T]
}

// RecordInfo is a read-only snapshot of one record.
type RecordInfo struct {
	Addr      uintptr
	Refs      uint
	IsArray   bool
	Len       int
	Allocator string
}

// Stats counts registry activity since creation.
type Stats struct {
	Live       int // Records currently held
	Inserted   int // Records ever created
	Freed      int // Records released by sweeps
	FreeErrors int // Allocator frees that failed during a sweep
	Sweeps     int // Collect runs, including the one inside Shutdown
}

// Registry tracks the allocations bound to handles of one element type.
//
// Records are kept in insertion order and looked up by linear scan. A
// Registry is not safe for concurrent use.
type Registry[T any] struct {
	name    string
	records []*record[T]

	alloc alloc.Allocator[T]
	heap  *alloc.Heap[T]
	log   *slog.Logger

	deferReassignSweep bool

	// epoch advances on Shutdown; handles bound in an earlier epoch are
	// detached from the registry.
	epoch uint64

	stats Stats
}

// NewRegistry creates an isolated registry. Most programs use the
// process-wide registry returned by Default instead.
func NewRegistry[T any](opts Options[T]) *Registry[T] {
	heap := alloc.NewHeap[T]()
	r := &Registry[T]{
		name:               opts.Name,
		alloc:              opts.Allocator,
		heap:               heap,
		log:                opts.Logger,
		deferReassignSweep: opts.DeferReassignSweep,
	}
	if r.name == "" {
		r.name = reflect.TypeFor[T]().String()
	}
	if r.alloc == nil {
		r.alloc = heap
	}
	return r
}

// Name returns the registry's label.
func (r *Registry[T]) Name() string { return r.name }

// Allocator returns the allocator backing New and NewArray.
func (r *Registry[T]) Allocator() alloc.Allocator[T] { return r.alloc }

// Live returns the number of records currently held.
func (r *Registry[T]) Live() int { return len(r.records) }

// Stats returns the registry's counters.
func (r *Registry[T]) Stats() Stats {
	s := r.stats
	s.Live = len(r.records)
	return s
}

// Records returns a snapshot of every record in registry order.
func (r *Registry[T]) Records() []RecordInfo {
	out := make([]RecordInfo, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, RecordInfo{
			Addr:      rec.addr,
			Refs:      rec.refs,
			IsArray:   rec.isArray,
			Len:       rec.length,
			Allocator: rec.owner.Name(),
		})
	}
	return out
}

// RefCount returns the recorded count for addr, and whether addr is tracked.
func (r *Registry[T]) RefCount(addr uintptr) (uint, bool) {
	if rec := r.find(addr); rec != nil {
		return rec.refs, true
	}
	return 0, false
}

func (r *Registry[T]) logger() *slog.Logger {
	if r.log != nil {
		return r.log
	}
	return logger.L
}

// find returns the record for addr, or nil.
func (r *Registry[T]) find(addr uintptr) *record[T] {
	for _, rec := range r.records {
		if rec.addr == addr {
			return rec
		}
	}
	return nil
}

// insert adds a record with count 1.
func (r *Registry[T]) insert(block []T, isArray bool, owner alloc.Allocator[T]) *record[T] {
	rec := &record[T]{
		addr:    baseAddr(block),
		refs:    1,
		isArray: isArray,
		block:   block,
		owner:   owner,
	}
	if isArray {
		rec.length = len(block)
	}
	r.records = append(r.records, rec)
	r.stats.Inserted++
	r.logger().Debug("tracked: record inserted",
		"registry", r.name, "addr", hexAddr(rec.addr), "array", isArray, "len", rec.length, "allocator", owner.Name())
	return rec
}

// remove drops the record at index i, preserving order.
func (r *Registry[T]) remove(i int) {
	r.records = slices.Delete(r.records, i, i+1)
}

// acquire binds block: increments its record, or inserts one adopted by the
// heap allocator when the address is new.
func (r *Registry[T]) acquire(op string, block []T, isArray bool) {
	addr := baseAddr(block)
	if rec := r.find(addr); rec != nil {
		r.checkShape(op, rec, isArray, len(block))
		rec.refs++
		return
	}
	if err := r.heap.Adopt(block, isArray); err != nil {
		fault(op, r.name, addr, "heap adoption failed: %v", err)
	}
	r.insert(block, isArray, r.heap)
}

// retain increments the record of an already-bound handle.
func (r *Registry[T]) retain(op string, addr uintptr, isArray bool, length int) {
	rec := r.find(addr)
	if rec == nil {
		fault(op, r.name, addr, "no record for bound address")
	}
	r.checkShape(op, rec, isArray, length)
	rec.refs++
}

// unbind decrements the record for addr.
func (r *Registry[T]) unbind(op string, addr uintptr) {
	rec := r.find(addr)
	if rec == nil {
		fault(op, r.name, addr, "no record for bound address")
	}
	if rec.refs == 0 {
		fault(op, r.name, addr, "reference count already zero")
	}
	rec.refs--
}

func (r *Registry[T]) checkShape(op string, rec *record[T], isArray bool, length int) {
	if rec.isArray != isArray {
		fault(op, r.name, rec.addr, "binding array=%v, record array=%v", isArray, rec.isArray)
	}
	if isArray && rec.length != length {
		fault(op, r.name, rec.addr, "binding length %d, record length %d", length, rec.length)
	}
}

func baseAddr[T any](block []T) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(block)))
}

type hexAddr uintptr

func (a hexAddr) LogValue() slog.Value {
	return slog.StringValue("0x" + strconv.FormatUint(uint64(a), 16))
}
