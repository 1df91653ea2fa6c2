package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new backend instance.
type Factory func() (Backend, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)

	// Priority order for Default (first that opens wins).
	backendPriority = []string{NameWGPU, NameTrace}
)

// Register registers a backend factory with the given name.
// It is typically called from init() in backend packages.
//
// Register panics if factory is nil or if name is already registered.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("backend: Register factory is nil")
	}
	if _, dup := backends[name]; dup {
		panic("backend: Register called twice for " + name)
	}
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is primarily useful for testing. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// New creates a backend by name.
// The error mentions a forgotten import when the name is not registered.
func New(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("backend: unknown backend %q (forgotten import?)", name)
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend: open %q: %w", name, err)
	}
	return b, nil
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Default creates the best available backend.
// Backends in the priority list are tried first, then the rest in name order.
// Errors from backends that failed to open are joined into the result.
func Default() (Backend, error) {
	names := Available()
	ordered := make([]string, 0, len(names))
	for _, name := range backendPriority {
		if IsRegistered(name) {
			ordered = append(ordered, name)
		}
	}
	for _, name := range names {
		if !contains(backendPriority, name) {
			ordered = append(ordered, name)
		}
	}

	var errs []error
	for _, name := range ordered {
		b, err := New(name)
		if err == nil {
			return b, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(append([]error{ErrBackendNotAvailable}, errs...)...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
