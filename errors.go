package rdraw

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory is returned when the device cannot provide GPU-visible
	// memory for a transient buffer. The draw is abandoned.
	ErrOutOfMemory = errors.New("rdraw: out of GPU memory")

	// ErrInvalidTarget is returned when a read-back rectangle leaves the
	// bound target or when no target can be bound.
	ErrInvalidTarget = errors.New("rdraw: invalid render target")

	// ErrNoWindow is returned when the default target is requested on a
	// renderer that was created without a window.
	ErrNoWindow = fmt.Errorf("%w: no window surface", ErrInvalidTarget)

	// ErrUnsupportedBlendMode is returned for a blend mode outside
	// None, Blend, Add and Mod.
	ErrUnsupportedBlendMode = errors.New("rdraw: unsupported blend mode")

	// ErrInvalidArgument is returned for nil textures and non-positive sizes.
	ErrInvalidArgument = errors.New("rdraw: invalid argument")

	// ErrRendererClosed is returned by every operation after Close.
	ErrRendererClosed = errors.New("rdraw: renderer closed")

	// ErrBufferLocked is returned when a transient buffer is locked twice.
	ErrBufferLocked = errors.New("rdraw: buffer already locked")

	// ErrBufferReleased is returned when a released transient buffer is touched.
	ErrBufferReleased = errors.New("rdraw: buffer released")
)
