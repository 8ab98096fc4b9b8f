// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rdraw"
	"github.com/gogpu/wgpu/hal"
)

// surfaceFormat is the format of every surface the device creates.
const surfaceFormat = gputypes.TextureFormatRGBA8Unorm

const surfaceUsage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst

// gpuSurface is a 2D texture and its default view.
type gpuSurface struct {
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
	// usage is the usage of the last submitted command touching the
	// texture; zero until the first one.
	usage gputypes.TextureUsage
}

func (s *gpuSurface) alive() bool {
	return s != nil && s.view != nil
}

func (s *gpuSurface) extent() hal.Extent3D {
	return hal.Extent3D{Width: uint32(s.width), Height: uint32(s.height), DepthOrArrayLayers: 1}
}

func (s *gpuSurface) destroy(device hal.Device) {
	if s.view != nil {
		device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.tex != nil {
		device.DestroyTexture(s.tex)
		s.tex = nil
	}
}

func surfaceOf(s *rdraw.Surface) (*gpuSurface, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil surface", rdraw.ErrInvalidArgument)
	}
	gs, ok := s.Handle.(*gpuSurface)
	if !ok || gs == nil || gs.tex == nil {
		return nil, ErrForeignSurface
	}
	return gs, nil
}

// NewSurface creates an RGBA8 texture usable as sampler input, render
// target and copy source or destination.
func (d *Device) NewSurface(width, height int) (*rdraw.Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: surface %dx%d", rdraw.ErrInvalidArgument, width, height)
	}
	gs := &gpuSurface{width: width, height: height}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "rdraw_surface",
		Size:          gs.extent(),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        surfaceFormat,
		Usage:         surfaceUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create texture: %v", rdraw.ErrOutOfMemory, err)
	}
	gs.tex = tex
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "rdraw_surface_view",
		Format:        surfaceFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	gs.view = view
	return &rdraw.Surface{
		Width:  width,
		Height: height,
		Format: surfaceFormat,
		Usage:  surfaceUsage,
		Handle: gs,
	}, nil
}

// WriteSurface uploads tightly packed RGBA8 rows.
func (d *Device) WriteSurface(s *rdraw.Surface, pix []byte) error {
	gs, err := surfaceOf(s)
	if err != nil {
		return err
	}
	if len(pix) != gs.width*gs.height*4 {
		return fmt.Errorf("%w: %d bytes for %dx%d surface",
			rdraw.ErrInvalidArgument, len(pix), gs.width, gs.height)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	size := gs.extent()
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: gs.tex, MipLevel: 0},
		pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(gs.width * 4),
			RowsPerImage: uint32(gs.height),
		},
		&size,
	)
	gs.usage = gputypes.TextureUsageCopyDst
	return nil
}

// DestroySurface frees the texture once no recorded command can reference
// it.
func (d *Device) DestroySurface(s *rdraw.Surface) {
	gs, err := surfaceOf(s)
	s.Handle = nil
	if err != nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.ops) == 0 && len(d.late) == 0 {
		gs.destroy(d.device)
		return
	}
	d.dead = append(d.dead, gs)
}
