//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package alloc

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/gcptr/internal/bounds"
)

const mmapSupported = true

// mapper maps anonymous private pages.
type mapper struct{}

func (mapper) acquire(size int) ([]byte, error) {
	length, ok := bounds.AlignUp(size, unix.Getpagesize())
	if !ok {
		return nil, ErrInvalidSize
	}
	mem, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return mem, nil
}

func (mapper) release(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	// Munmap requires the slice exactly as Mmap returned it.
	err := unix.Munmap(mem)
	if errors.Is(err, unix.EINVAL) {
		return ErrDoubleFree
	}
	return err
}
