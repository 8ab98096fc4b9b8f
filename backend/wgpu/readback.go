// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rdraw"
	"github.com/gogpu/wgpu/hal"
)

// copyRowAlignment is the required BytesPerRow alignment of texture to
// buffer copies.
const copyRowAlignment = 256

func alignedRowBytes(width int) uint32 {
	row := uint32(width * 4)
	return (row + copyRowAlignment - 1) &^ (copyRowAlignment - 1)
}

// ReadPixels copies the whole surface into a staging buffer, waits for the
// copy and crops r into dst as RGBA8, top row first. Recorded commands are
// not flushed; callers Finish first.
func (d *Device) ReadPixels(s *rdraw.Surface, r image.Rectangle, dst []byte) error {
	gs, err := surfaceOf(s)
	if err != nil {
		return err
	}
	bounds := image.Rect(0, 0, gs.width, gs.height)
	if !r.In(bounds) {
		return fmt.Errorf("%w: read %v of %v", rdraw.ErrInvalidTarget, r, bounds)
	}
	if len(dst) < r.Dx()*r.Dy()*4 {
		return fmt.Errorf("%w: destination holds %d bytes", rdraw.ErrInvalidArgument, len(dst))
	}
	if r.Empty() {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var res frameResources
	defer res.destroy(d.device)

	rowBytes := alignedRowBytes(gs.width)
	stagingSize := uint64(rowBytes) * uint64(gs.height)
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "rdraw_readback",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	res.buffers = append(res.buffers, staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "rdraw_readback"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("rdraw_readback"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	usage := usageTracker{}
	if barriers := usage.barrier(nil, gs, gputypes.TextureUsageCopySrc); len(barriers) > 0 {
		encoder.TransitionTextures(barriers)
		d.stats.Barriers += uint64(len(barriers))
	}
	encoder.CopyTextureToBuffer(gs.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: rowBytes, RowsPerImage: uint32(gs.height)},
		TextureBase:  hal.ImageCopyTexture{Texture: gs.tex, MipLevel: 0},
		Size:         gs.extent(),
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	res.commands = append(res.commands, cmdBuf)

	submitted, err := d.submitAndWait(cmdBuf, &res)
	if submitted {
		usage.commit()
	}
	if err != nil {
		return err
	}

	pix := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(staging, 0, pix); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	cropRows(dst, pix, int(rowBytes), r)
	return nil
}

// cropRows copies r out of src, whose rows are stride bytes apart, into
// tightly packed dst.
func cropRows(dst, src []byte, stride int, r image.Rectangle) {
	row := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := y*stride + r.Min.X*4
		copy(dst[(y-r.Min.Y)*row:], src[off:off+row])
	}
}
