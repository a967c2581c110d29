package backend

import (
	"sync"
)

// Factory creates a new backend instance.
type Factory func() Backend

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// Vulkan > wgpu > null (Vulkan has the full present path, null is
	// the last-resort mock).
	backendPriority = []string{BackendVulkan, BackendWGPU, BackendNull}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns a list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := backends[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available backend based on priority.
// Returns nil if no backends are registered.
func Default() Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			if b := factory(); b != nil {
				return b
			}
		}
	}

	// Fallback: return first available
	for _, factory := range backends {
		if b := factory(); b != nil {
			return b
		}
	}

	return nil
}

// MustDefault returns the default backend or panics.
func MustDefault() Backend {
	b := Default()
	if b == nil {
		panic("backend: no backend available")
	}
	return b
}

// InitDefault walks the priority list and initializes the first
// backend whose Init succeeds. Backends that fail to initialize (e.g.,
// the Vulkan loader is missing) are closed and skipped. This is the
// selection path used by driver bring-up when no explicit backend is
// requested.
func InitDefault() (Backend, error) {
	registryMu.RLock()
	var candidates []Factory
	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			candidates = append(candidates, factory)
		}
	}
	registryMu.RUnlock()

	var firstErr error
	for _, factory := range candidates {
		b := factory()
		if b == nil {
			continue
		}
		if err := b.Init(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			b.Close()
			continue
		}
		return b, nil
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return nil, ErrBackendNotAvailable
}
