//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package alloc

const mmapSupported = false

// mapper is a stub on platforms without anonymous mappings.
type mapper struct{}

func (mapper) acquire(int) ([]byte, error) { return nil, ErrUnsupported }

func (mapper) release([]byte) error { return ErrUnsupported }
