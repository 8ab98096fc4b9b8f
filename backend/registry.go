package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/rdraw"
)

// registry holds registered device factories.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for device selection (first that opens wins).
	// GPU devices come before the software fallback.
	priority = []string{WGPU, Software}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions in backend packages.
// If a factory with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a factory from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open creates a device from the named backend.
func Open(name string) (rdraw.Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	dev, err := factory()
	if err != nil {
		return nil, fmt.Errorf("open %s device: %w", name, err)
	}
	return dev, nil
}

// Default opens the best available device based on priority, falling back
// to any other registered backend. Failures of higher-priority backends are
// logged and skipped.
func Default() (rdraw.Device, error) {
	var errs []error
	tried := make(map[string]bool)
	try := func(name string) rdraw.Device {
		tried[name] = true
		dev, err := Open(name)
		if err != nil {
			rdraw.Logger().Warn("backend: device unavailable", "backend", name, "error", err)
			errs = append(errs, err)
			return nil
		}
		rdraw.Logger().Info("backend: device selected", "backend", name, "device", dev.Name())
		return dev
	}

	for _, name := range priority {
		if IsRegistered(name) {
			if dev := try(name); dev != nil {
				return dev, nil
			}
		}
	}
	for _, name := range Available() {
		if !tried[name] {
			if dev := try(name); dev != nil {
				return dev, nil
			}
		}
	}
	return nil, errors.Join(append([]error{ErrBackendNotAvailable}, errs...)...)
}
