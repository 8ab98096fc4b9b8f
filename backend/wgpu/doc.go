// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements rdraw.Device on the gogpu/wgpu hardware
// abstraction layer.
//
// Commands are recorded as they arrive and encoded into a single command
// buffer at Finish. Consecutive commands on the same target share one
// render pass; a clear starts a new pass with a clear load operation.
// Finish submits the buffer with a fence and waits for it, after which the
// per-draw uniform and index buffers and any buffers destroyed by the
// caller are released.
//
// Render pipelines are created lazily and kept in an LRU cache keyed by
// shader program, topology, blend state and target format (see
// WithPipelineCacheSize). Evicted pipelines are destroyed after the next
// fence. Two WGSL programs are used:
//
//   - solid: one vec2 position attribute, flat uniform color
//   - textured: position and texcoord attributes, a sampled texture
//     multiplied by the uniform modulation color
//
// Texcoords are in texels and divided by the bound texture size in the
// vertex stage.
//
// # Creating a device
//
// New wraps an existing hal.Device and hal.Queue. NewFromProvider takes
// them from a gpucontext.DeviceProvider that also exposes HAL handles,
// sharing the host application's GPU. NewStandalone opens a Vulkan adapter
// of its own and is what the backend registry uses:
//
//	dev, err := backend.Open(backend.WGPU)
package wgpu
