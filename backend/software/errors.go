// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import "errors"

var (
	// ErrUseAfterFree is reported by Finish when a recorded draw reads a
	// buffer that was destroyed before the draw executed.
	ErrUseAfterFree = errors.New("software: buffer used after free")

	// ErrDoubleFree is reported by Finish when a buffer was destroyed twice.
	ErrDoubleFree = errors.New("software: buffer destroyed twice")

	// ErrForeignSurface is returned for surfaces created by another device.
	ErrForeignSurface = errors.New("software: surface not owned by this device")

	// ErrNoTarget is returned when a draw or clear is recorded before a
	// target is bound.
	ErrNoTarget = errors.New("software: no render target bound")
)
