package providers

import (
	"fmt"
	"sync"

	"sqldash/internal/domain"
	"sqldash/internal/services/auth"
	"sqldash/internal/util"
)

// Factory builds a metrics backend from an auth store.
type Factory func(store auth.Store) (domain.Provider, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds a backend factory under a normalized name. Registering
// the same name twice is a programming error and panics.
func Register(name string, factory Factory) {
	normalizedName := util.NormalizeKey(name)
	if normalizedName == "" {
		panic("providers: empty backend name")
	}
	if factory == nil {
		panic("providers: nil factory")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[normalizedName]; exists {
		panic(fmt.Sprintf("providers: backend %q already registered", name))
	}

	registry[normalizedName] = factory
}

// Get builds the named backend.
func Get(name string, store auth.Store) (domain.Provider, error) {
	normalizedName := util.NormalizeKey(name)
	mu.RLock()
	factory, ok := registry[normalizedName]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("providers: unknown backend %q", name)
	}

	provider, err := factory(store)
	if err != nil {
		return nil, err
	}

	return provider, nil
}

// Reset clears the backend registry. Intended for use in tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = map[string]Factory{}
}

// List returns the names of all registered backends.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	return names
}
