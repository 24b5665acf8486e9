//go:build !(linux || darwin)

package alloc

func loadLibc() error { return ErrUnsupported }

// libc is a stub on platforms where purego cannot load the C library.
type libc struct{}

func (libc) acquire(int) ([]byte, error) { return nil, ErrUnsupported }

func (libc) release([]byte) error { return ErrUnsupported }
