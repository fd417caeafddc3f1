package memsys

import (
	"fmt"
	"sort"
	"sync"
)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes an engine available under the given name, following the
// database/sql driver convention. Engine packages call Register from an init
// function. Register panics if the factory is nil or the name is taken.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if f == nil {
		panic("memsys: Register factory is nil")
	}

	if _, dup := factories[name]; dup {
		panic("memsys: Register called twice for engine " + name)
	}

	factories[name] = f
}

// NewEngine instantiates the named engine with the given configuration file,
// output directory, and completion callbacks.
func NewEngine(
	name, configFile, outputDir string,
	cb Callbacks,
) (Engine, error) {
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("memsys: unknown engine %q (registered: %v)",
			name, List())
	}

	return f(configFile, outputDir, cb)
}

// List returns the names of all registered engines in sorted order.
func List() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
