package alloc

import "errors"

var (
	// ErrInvalidSize indicates a zero, negative or overflowing block size.
	ErrInvalidSize = errors.New("alloc: invalid block size")

	// ErrPointerType indicates an element type containing Go pointers was
	// requested from an off-heap allocator.
	ErrPointerType = errors.New("alloc: element type contains Go pointers")

	// ErrDoubleFree indicates a block that is not live in this allocator:
	// either already freed or never allocated here.
	ErrDoubleFree = errors.New("alloc: block not live (double free or foreign block)")

	// ErrFormMismatch indicates a scalar free of an array block or vice versa.
	ErrFormMismatch = errors.New("alloc: free form does not match allocation form")

	// ErrUnsupported indicates the backend is not available on this platform.
	ErrUnsupported = errors.New("alloc: backend not supported on this platform")
)
