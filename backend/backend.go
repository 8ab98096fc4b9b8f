package backend

import (
	"errors"

	"github.com/gogpu/rdraw"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered
	// or none of the registered backends could create a device.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Registered backend names.
const (
	// WGPU is the gogpu/wgpu HAL device.
	WGPU = "wgpu"
	// Software is the CPU device.
	Software = "software"
)

// Factory creates a device. Factories are called once per request and may
// fail, for example when no GPU adapter is present.
type Factory func() (rdraw.Device, error)
