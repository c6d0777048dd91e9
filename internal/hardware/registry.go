package hardware

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
)

// Factory constructs a backend instance from its configuration block.
type Factory func(cfg config.GPIOModuleConfig) (Module, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a backend available under a type identifier string.
// Backends call Register from their package init; the binary selects which
// backends exist via blank imports in main.
//
// Register panics if the identifier is already taken — two backends
// claiming the same kind is a programming error, not a runtime condition.
func Register(kind string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("hardware: backend %q registered twice", kind))
	}
	factories[kind] = factory
}

// Open instantiates the backend named by cfg.Type.
//
// Returns:
//   - Module: The opened backend
//   - error: ErrUnknownBackend if no factory is registered for cfg.Type,
//     or the factory's error if opening the device fails
func Open(cfg config.GPIOModuleConfig) (Module, error) {
	factoriesMu.RLock()
	factory, ok := factories[cfg.Type]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownBackend, cfg.Type, Kinds())
	}

	mod, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s backend %q: %w", cfg.Type, cfg.Name, err)
	}
	return mod, nil
}

// Kinds returns the sorted list of registered backend type identifiers.
func Kinds() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	kinds := make([]string, 0, len(factories))
	for kind := range factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
