// Package rdraw is a hardware-accelerated 2D rendering backend.
//
// # Overview
//
// rdraw turns an immediate-mode drawing API (clear, points, lines, filled
// rectangles, textured quads with rotation and flip, pixel read-back) into
// state changes and draw submissions on a GPU device whose command execution
// is asynchronous to the CPU.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/rdraw"
//	    "github.com/gogpu/rdraw/backend/software"
//	)
//
//	dev := software.New()
//	win, _ := rdraw.NewOffscreenWindow(dev, 320, 240)
//	r, _ := rdraw.New(dev, rdraw.WithWindow(win))
//
//	r.Clear(rdraw.Black)
//	r.SetDrawColor(rdraw.RGBA8(255, 0, 0, 255))
//	r.FillRects([]rdraw.FRect{{X: 10, Y: 10, W: 100, H: 50}})
//	r.Present()
//
// # Architecture
//
// A GPURenderer is built from small components:
//   - Geometry builder: pure functions producing quad, point and rect vertices
//   - Allocator: fresh GPU-visible vertex memory per draw
//   - Blend translator: symbolic BlendMode to device BlendState
//   - Submitter: binds target, shader, attributes, uniforms and blend state
//   - TargetManager: the single active render target and its viewport
//   - FrameManager: releases a frame's buffers after the device retires it
//
// # Buffer lifetime
//
// Every vertex buffer belongs to exactly one draw and is tracked on the
// frame's release list. The device may still be reading a buffer long after
// the draw call returns, so buffers are destroyed only at Present (or Close),
// after Device.Finish reports that all recorded work has retired.
//
// # Backends
//
// Devices live in sub-packages:
//   - backend/software: CPU device with a deferred command queue
//   - backend/wgpu: gogpu/wgpu HAL device (Vulkan, Metal, DX12, GLES)
//
// The backend package keeps a registry of device factories.
//
// # Logging
//
// rdraw is silent by default. See [SetLogger].
package rdraw
