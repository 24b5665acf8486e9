package tracked

import (
	"errors"
	"fmt"

	"github.com/joshuapare/gcptr/cursor"
)

var (
	// ErrOutOfRange indicates an index outside a handle's or cursor's range.
	// It is the same value as cursor.ErrOutOfRange.
	ErrOutOfRange = cursor.ErrOutOfRange

	// ErrNilPtr indicates element access through an unbound handle.
	ErrNilPtr = errors.New("tracked: nil handle")

	// ErrInvariant is the cause of every Fault.
	ErrInvariant = errors.New("tracked: invariant breach")
)

// Fault reports a breach of the registry's bookkeeping invariants: a bound
// handle whose record is missing, or a binding whose array shape disagrees
// with its record. Continuing after a Fault risks double frees or leaks, so
// it is raised with panic rather than returned.
type Fault struct {
	Op     string  // Handle operation that detected the breach
	Type   string  // Element type of the registry
	Addr   uintptr // Address involved
	Reason string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("tracked: invariant breach in %s (%s at %#x): %s", f.Op, f.Type, f.Addr, f.Reason)
}

// Unwrap returns ErrInvariant.
func (f *Fault) Unwrap() error { return ErrInvariant }

func fault(op, typ string, addr uintptr, format string, args ...any) {
	panic(&Fault{Op: op, Type: typ, Addr: addr, Reason: fmt.Sprintf(format, args...)})
}

// Catch runs fn and returns the Fault it raised, or nil. Panics that are not
// Faults propagate unchanged.
//
//	if f := tracked.Catch(func() { p.Release() }); f != nil {
//	    log.Printf("bookkeeping broken: %v", f)
//	}
func Catch(fn func()) (f *Fault) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if got, ok := r.(*Fault); ok {
			f = got
			return
		}
		panic(r)
	}()
	fn()
	return nil
}
