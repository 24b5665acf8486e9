// Package cursor provides a bounds-checked, non-owning random-access cursor
// over a contiguous range of elements.
//
// A Cursor never extends the lifetime of the memory it walks: it does not
// take part in reference counting, so it must not be used after the block it
// was produced from has been released. Copying a Cursor copies its position;
// both copies keep addressing the same range.
//
//	for c := cursor.Begin(block); c.Less(cursor.End(block)); c.Next() {
//	    v, err := c.Get()
//	    ...
//	}
package cursor

import (
	"errors"
	"fmt"
	"math"

	"github.com/joshuapare/gcptr/internal/bounds"
)

// ErrOutOfRange indicates an access outside the cursor's [begin, end) range.
var ErrOutOfRange = errors.New("cursor: out of range")

// Cursor is a position within a [begin, end) range of T.
//
// The position may move outside the range (before begin or past end); only
// element access is checked.
type Cursor[T any] struct {
	span []T
	pos  int
}

// New returns a cursor over span positioned at pos.
func New[T any](span []T, pos int) Cursor[T] {
	return Cursor[T]{span: span, pos: pos}
}

// Begin returns a cursor at the first element of span.
func Begin[T any](span []T) Cursor[T] {
	return Cursor[T]{span: span}
}

// End returns a cursor one past the last element of span.
func End[T any](span []T) Cursor[T] {
	return Cursor[T]{span: span, pos: len(span)}
}

// Len returns the length of the range.
func (c Cursor[T]) Len() int { return len(c.span) }

// Pos returns the position relative to begin.
func (c Cursor[T]) Pos() int { return c.pos }

// Valid reports whether the cursor can be dereferenced.
func (c Cursor[T]) Valid() bool { return bounds.InRange(c.pos, len(c.span)) }

// Get returns a pointer to the element at the current position.
func (c Cursor[T]) Get() (*T, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: position %d, length %d", ErrOutOfRange, c.pos, len(c.span))
	}
	return &c.span[c.pos], nil
}

// Value returns a copy of the element at the current position.
func (c Cursor[T]) Value() (T, error) {
	p, err := c.Get()
	if err != nil {
		var zero T
		return zero, err
	}
	return *p, nil
}

// At returns a pointer to the element at index i counted from begin,
// independent of the current position.
func (c Cursor[T]) At(i int) (*T, error) {
	if !bounds.InRange(i, len(c.span)) {
		return nil, fmt.Errorf("%w: index %d, length %d", ErrOutOfRange, i, len(c.span))
	}
	return &c.span[i], nil
}

// Next advances by one position and returns the updated cursor.
func (c *Cursor[T]) Next() Cursor[T] {
	c.pos++
	return *c
}

// Prev retreats by one position and returns the updated cursor.
func (c *Cursor[T]) Prev() Cursor[T] {
	c.pos--
	return *c
}

// Add returns a cursor offset by n positions. The receiver is unchanged.
// An offset that would overflow int saturates at the end the cursor was
// moving towards, which is never dereferenceable.
func (c Cursor[T]) Add(n int) Cursor[T] {
	pos, ok := bounds.AddOverflowSafe(c.pos, n)
	if !ok {
		if n > 0 {
			pos = len(c.span)
		} else {
			pos = -1
		}
	}
	return Cursor[T]{span: c.span, pos: pos}
}

// Sub returns a cursor offset by -n positions.
func (c Cursor[T]) Sub(n int) Cursor[T] {
	if n == math.MinInt {
		return c.Add(math.MaxInt).Add(1)
	}
	return c.Add(-n)
}

// Distance returns the number of positions from o to c. Both cursors must
// come from the same range; the result is meaningless otherwise.
func (c Cursor[T]) Distance(o Cursor[T]) int {
	return c.pos - o.pos
}

// Compare returns -1, 0 or +1 ordering c against o by position.
func (c Cursor[T]) Compare(o Cursor[T]) int {
	switch {
	case c.pos < o.pos:
		return -1
	case c.pos > o.pos:
		return 1
	default:
		return 0
	}
}

// Equal reports whether both cursors are at the same position.
func (c Cursor[T]) Equal(o Cursor[T]) bool { return c.pos == o.pos }

// Less reports whether c is before o.
func (c Cursor[T]) Less(o Cursor[T]) bool { return c.pos < o.pos }

// LessEq reports whether c is before or at o.
func (c Cursor[T]) LessEq(o Cursor[T]) bool { return c.pos <= o.pos }

// Greater reports whether c is after o.
func (c Cursor[T]) Greater(o Cursor[T]) bool { return c.pos > o.pos }

// GreaterEq reports whether c is at or after o.
func (c Cursor[T]) GreaterEq(o Cursor[T]) bool { return c.pos >= o.pos }
