// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software implements rdraw.Device on the CPU.
//
// The device behaves like a GPU with an asynchronous command queue: draws,
// clears and state changes are recorded and executed only when Finish is
// called. Vertex buffers are read at execution time, so a buffer destroyed
// before the frame retires is detected and reported as a use-after-free
// fault by Finish. Double frees are reported the same way.
//
// Importing the package registers the device with the backend registry:
//
//	import _ "github.com/gogpu/rdraw/backend/software"
package software
