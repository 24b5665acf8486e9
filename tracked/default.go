package tracked

import (
	"io"
	"reflect"
	"slices"

	"github.com/joshuapare/gcptr/internal/logger"
)

// registryHandle is the type-erased view of a default registry.
type registryHandle interface {
	Name() string
	Live() int
	Shutdown() int
	Dump(w io.Writer) error
}

// defaults holds one lazily created registry per element type, in creation
// order. Like the registries themselves it is not safe for concurrent use.
var defaults struct {
	byType map[reflect.Type]registryHandle
	order  []reflect.Type
}

// Default returns the process-wide registry for T, creating it on first use.
func Default[T any]() *Registry[T] {
	t := reflect.TypeFor[T]()
	if r, ok := defaults.byType[t]; ok {
		return r.(*Registry[T])
	}
	if defaults.byType == nil {
		defaults.byType = make(map[reflect.Type]registryHandle)
	}
	r := NewRegistry(Options[T]{})
	defaults.byType[t] = r
	defaults.order = append(defaults.order, t)
	logger.Debug("tracked: registry initialized", "registry", r.name)
	return r
}

// Live returns the number of records in the default registry for T.
func Live[T any]() int { return Default[T]().Live() }

// Collect sweeps the default registry for T.
func Collect[T any]() bool { return Default[T]().Collect() }

// Dump writes the default registry for T to w. See Registry.Dump.
func Dump[T any](w io.Writer) error { return Default[T]().Dump(w) }

// DumpAll writes every default registry to w in creation order.
func DumpAll(w io.Writer) error {
	for _, t := range defaults.order {
		if err := defaults.byType[t].Dump(w); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown releases every block tracked by any default registry, whatever
// the state of outstanding handles. Call it once at process exit, usually
// deferred from main:
//
//	func main() {
//	    defer tracked.Shutdown()
//	    ...
//	}
//
// Registries stay usable afterwards. Returns the number of records released.
func Shutdown() int {
	n := 0
	for _, t := range defaults.order {
		n += defaults.byType[t].Shutdown()
	}
	return n
}

// Reset shuts down the default registry for T and forgets it, so the next
// use creates a fresh one. Intended for test isolation.
func Reset[T any]() {
	t := reflect.TypeFor[T]()
	r, ok := defaults.byType[t]
	if !ok {
		return
	}
	r.Shutdown()
	delete(defaults.byType, t)
	defaults.order = slices.DeleteFunc(defaults.order, func(ot reflect.Type) bool { return ot == t })
}

// ResetAll resets every default registry. Intended for test isolation.
func ResetAll() {
	Shutdown()
	defaults.byType = nil
	defaults.order = nil
}
