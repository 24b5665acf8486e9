//go:build linux || darwin

package alloc

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	libcOnce sync.Once
	libcErr  error
)

// Function bindings
var (
	libcCalloc func(count, size uintptr) unsafe.Pointer
	libcFree   func(p unsafe.Pointer)
)

// libcPath returns the platform-specific C library filename.
func libcPath() string {
	if runtime.GOOS == "darwin" {
		return "/usr/lib/libSystem.B.dylib"
	}
	return "libc.so.6"
}

func loadLibc() error {
	libcOnce.Do(func() {
		lib, err := purego.Dlopen(libcPath(), purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			libcErr = fmt.Errorf("%w: load libc: %v", ErrUnsupported, err)
			return
		}
		purego.RegisterLibFunc(&libcCalloc, lib, "calloc")
		purego.RegisterLibFunc(&libcFree, lib, "free")
	})
	return libcErr
}

// libc hands out zeroed C heap memory.
type libc struct{}

func (libc) acquire(size int) ([]byte, error) {
	p := libcCalloc(1, uintptr(size))
	if p == nil {
		return nil, fmt.Errorf("calloc(%d) returned NULL", size)
	}
	return unsafe.Slice((*byte)(p), size), nil
}

func (libc) release(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	libcFree(unsafe.Pointer(unsafe.SliceData(mem)))
	return nil
}
