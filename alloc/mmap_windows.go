//go:build windows

package alloc

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const mmapSupported = true

// mapper reserves and commits private pages with VirtualAlloc.
type mapper struct{}

func (mapper) acquire(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func (mapper) release(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	return windows.VirtualFree(uintptr(unsafe.Pointer(unsafe.SliceData(mem))), 0, windows.MEM_RELEASE)
}
