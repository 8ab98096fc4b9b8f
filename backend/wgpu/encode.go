// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rdraw"
	"github.com/gogpu/wgpu/hal"
	"honnef.co/go/safeish"
)

// drawState is the device state captured by each recorded command.
type drawState struct {
	target   *gpuSurface
	viewport [4]float32
	scissor  image.Rectangle
	blend    rdraw.BlendState
	shader   rdraw.ShaderKind
	texture  *gpuSurface
	sampler  rdraw.Sampler
	attribs  [2]*buffer
	// target_size, texture_size, color.
	uniforms [uniformFloats]float32
}

func defaultState() drawState {
	bs, _ := rdraw.TranslateBlendMode(rdraw.BlendModeNone)
	st := drawState{blend: bs, sampler: rdraw.DefaultSampler()}
	copy(st.uniforms[8:], []float32{1, 1, 1, 1})
	return st
}

type opKind int

const (
	opDraw opKind = iota
	opClear
)

type op struct {
	kind      opKind
	state     drawState
	primitive rdraw.Primitive
	count     int
	instances int
	clear     rdraw.Color
}

// frameResources are the per-draw GPU objects of one submission.
type frameResources struct {
	buffers    []hal.Buffer
	bindGroups []hal.BindGroup
	commands   []hal.CommandBuffer
}

func (r *frameResources) destroy(device hal.Device) {
	for _, bg := range r.bindGroups {
		device.DestroyBindGroup(bg)
	}
	for _, b := range r.buffers {
		device.DestroyBuffer(b)
	}
	for _, cb := range r.commands {
		device.FreeCommandBuffer(cb)
	}
	r.bindGroups = nil
	r.buffers = nil
	r.commands = nil
}

// usageTracker follows texture usages while a command buffer is encoded.
// The surfaces are updated only once the buffer has been submitted.
type usageTracker map[*gpuSurface]gputypes.TextureUsage

func (u usageTracker) current(s *gpuSurface) gputypes.TextureUsage {
	if v, ok := u[s]; ok {
		return v
	}
	return s.usage
}

// barrier appends the transition of s to usage, if s is not there yet.
func (u usageTracker) barrier(list []hal.TextureBarrier, s *gpuSurface, usage gputypes.TextureUsage) []hal.TextureBarrier {
	old := u.current(s)
	if old == usage {
		return list
	}
	u[s] = usage
	return append(list, hal.TextureBarrier{
		Texture: s.tex,
		Usage:   hal.TextureUsageTransition{OldUsage: old, NewUsage: usage},
	})
}

func (u usageTracker) commit() {
	for s, v := range u {
		s.usage = v
	}
}

// Finish encodes every recorded command into one command buffer, submits
// it and waits for the GPU. Buffers retired by the caller are freed once
// the submission has completed. If the buffer never reaches the queue the
// commands stay recorded for the next Finish.
func (d *Device) Finish() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.ops) == 0 {
		if d.settle() {
			d.freeRetired()
		}
		return nil
	}

	var res frameResources
	defer res.destroy(d.device)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "rdraw_frame"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("rdraw_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	usage := usageTracker{}
	errs := d.encodeOps(encoder, d.ops, usage, &res)
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	res.commands = append(res.commands, cmdBuf)

	submitted, err := d.submitAndWait(cmdBuf, &res)
	if !submitted {
		return err
	}
	d.ops = nil
	usage.commit()
	if err != nil {
		return err
	}
	d.freeRetired()
	return errors.Join(errs...)
}

// encodeOps records ops into encoder. Consecutive draws on one target share
// a render pass; the barriers for a pass are recorded before it begins.
func (d *Device) encodeOps(encoder hal.CommandEncoder, ops []op, usage usageTracker, res *frameResources) []error {
	var errs []error
	var rp hal.RenderPassEncoder
	var current *gpuSurface
	endPass := func() {
		if rp != nil {
			rp.End()
			rp = nil
			current = nil
		}
	}
	for i := range ops {
		o := &ops[i]
		target := o.state.target
		if !target.alive() {
			errs = append(errs, fmt.Errorf("wgpu: %s on a destroyed target", o.kind))
			continue
		}
		if o.kind == opClear || rp == nil || current != target {
			endPass()
			if barriers := passBarriers(ops[i:], target, usage); len(barriers) > 0 {
				encoder.TransitionTextures(barriers)
				d.stats.Barriers += uint64(len(barriers))
			}
			load, c := gputypes.LoadOpLoad, rdraw.Transparent
			if o.kind == opClear {
				load, c = gputypes.LoadOpClear, o.clear
			}
			rp = d.beginPass(encoder, target, load, c)
			current = target
		}
		if o.kind != opDraw {
			continue
		}
		if err := d.encodeDraw(rp, o, res); err != nil {
			errs = append(errs, err)
			continue
		}
		d.stats.DrawsEncoded++
	}
	endPass()
	return errs
}

// passBarriers returns the transitions needed by the pass that starts with
// ops[0] on target: every surface its draws sample becomes a texture
// binding and the target becomes a render attachment.
func passBarriers(ops []op, target *gpuSurface, usage usageTracker) []hal.TextureBarrier {
	var list []hal.TextureBarrier
	for j := range ops {
		o := &ops[j]
		if j > 0 && (o.kind == opClear || (o.state.target.alive() && o.state.target != target)) {
			break
		}
		tex := o.state.texture
		if o.kind == opDraw && o.state.shader == rdraw.ShaderTextured && tex.alive() && tex != target {
			list = usage.barrier(list, tex, gputypes.TextureUsageTextureBinding)
		}
	}
	return usage.barrier(list, target, gputypes.TextureUsageRenderAttachment)
}

func (k opKind) String() string {
	if k == opClear {
		return "clear"
	}
	return "draw"
}

func (d *Device) beginPass(encoder hal.CommandEncoder, target *gpuSurface, load gputypes.LoadOp, c rdraw.Color) hal.RenderPassEncoder {
	d.stats.Passes++
	return encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "rdraw_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       target.view,
				LoadOp:     load,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)},
			},
		},
	})
}

// submitAndWait submits cmdBuf and blocks until the GPU signals its fence.
// submitted reports whether cmdBuf reached the queue. When the wait fails
// the GPU may still read res, so it is moved to the retired lists and freed
// after a later fence. The caller must hold d.mu.
func (d *Device) submitAndWait(cmdBuf hal.CommandBuffer, res *frameResources) (submitted bool, err error) {
	fence, err := d.device.CreateFence()
	if err != nil {
		return false, fmt.Errorf("create fence: %w", err)
	}
	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		d.device.DestroyFence(fence)
		return false, fmt.Errorf("submit: %w", err)
	}
	d.stats.Submits++

	start := time.Now()
	ok, err := d.device.Wait(fence, 1, d.fenceTimeout)
	if err == nil && ok {
		d.device.DestroyFence(fence)
		// Submissions complete in order, so earlier late fences have
		// signalled too.
		d.settle()
		rdraw.Logger().Debug("wgpu: submission complete", "elapsed", time.Since(start))
		return true, nil
	}

	d.stats.Timeouts++
	d.late = append(d.late, fence)
	d.retire(res)
	rdraw.Logger().Warn("wgpu: submission not complete", "timeout", d.fenceTimeout, "pending", len(d.late))
	if err != nil {
		return true, fmt.Errorf("wait for GPU: %w", err)
	}
	return true, fmt.Errorf("%w after %v", ErrFenceTimeout, d.fenceTimeout)
}

// retire hands the objects of res to freeRetired.
func (d *Device) retire(res *frameResources) {
	d.retired = append(d.retired, res.buffers...)
	d.oldBindGroups = append(d.oldBindGroups, res.bindGroups...)
	d.oldCommands = append(d.oldCommands, res.commands...)
	res.buffers, res.bindGroups, res.commands = nil, nil, nil
}

// settle waits for submissions that timed out earlier and reports whether
// the GPU has retired all of them. The caller must hold d.mu.
func (d *Device) settle() bool {
	if len(d.late) == 0 {
		return true
	}
	last := d.late[len(d.late)-1]
	ok, err := d.device.Wait(last, 1, d.fenceTimeout)
	if err != nil || !ok {
		return false
	}
	for _, f := range d.late {
		d.device.DestroyFence(f)
	}
	d.late = d.late[:0]
	return true
}

// encodeDraw records one draw into rp. Uniform and index buffers created
// for the draw are added to res.
func (d *Device) encodeDraw(rp hal.RenderPassEncoder, o *op, res *frameResources) error {
	st := &o.state
	textured := st.shader == rdraw.ShaderTextured

	pos := st.attribs[rdraw.AttribPosition]
	if pos == nil || pos.raw == nil {
		return fmt.Errorf("wgpu: draw without position buffer")
	}
	var tc *buffer
	if textured {
		tc = st.attribs[rdraw.AttribTexCoord]
		if tc == nil || !st.texture.alive() {
			return fmt.Errorf("wgpu: textured draw without texture or texcoords")
		}
		if st.texture == st.target {
			return fmt.Errorf("%w: draw samples its own target", rdraw.ErrInvalidArgument)
		}
	}
	if o.count > pos.elemCount || (tc != nil && o.count > tc.elemCount) {
		return fmt.Errorf("wgpu: draw of %d vertices overruns buffer", o.count)
	}

	scissor := st.scissor.Intersect(image.Rect(0, 0, st.target.width, st.target.height))
	if scissor.Empty() {
		return nil
	}

	pipeline, prog, err := d.pipeline(pipelineKey{
		shader:   st.shader,
		topology: topology(o.primitive),
		blend:    st.blend,
		format:   surfaceFormat,
	})
	if err != nil {
		return err
	}

	bindGroup, err := d.bindGroup(prog, st, res)
	if err != nil {
		return err
	}

	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	vp := st.viewport
	rp.SetViewport(vp[0], vp[1], vp[2], vp[3], 0, 1)
	rp.SetScissorRect(uint32(scissor.Min.X), uint32(scissor.Min.Y), uint32(scissor.Dx()), uint32(scissor.Dy()))
	rp.SetVertexBuffer(0, pos.raw, 0)
	if tc != nil {
		rp.SetVertexBuffer(1, tc.raw, 0)
	}

	instances := uint32(o.instances)
	if o.primitive != rdraw.PrimitiveQuads {
		rp.Draw(uint32(o.count), instances, 0, 0)
		return nil
	}
	quads := o.count / 4
	if quads == 0 {
		return nil
	}
	indices, err := d.uploadBuffer("rdraw_quad_indices", quadIndices(quads),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst, res)
	if err != nil {
		return err
	}
	rp.SetIndexBuffer(indices, gputypes.IndexFormatUint32, 0)
	rp.DrawIndexed(uint32(quads*6), instances, 0, 0, 0)
	return nil
}

// bindGroup uploads the uniform block of st and binds it, plus the texture
// and sampler for the textured program.
func (d *Device) bindGroup(prog *program, st *drawState, res *frameResources) (hal.BindGroup, error) {
	ubuf, err := d.uploadBuffer("rdraw_uniforms", safeish.SliceCast[[]byte](st.uniforms[:]),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, res)
	if err != nil {
		return nil, err
	}
	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{
			Buffer: ubuf.NativeHandle(), Offset: 0, Size: uniformSize,
		}},
	}
	if prog.kind == rdraw.ShaderTextured {
		smp, err := d.sampler(st.sampler)
		if err != nil {
			return nil, err
		}
		entries = append(entries,
			gputypes.BindGroupEntry{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: st.texture.view.NativeHandle(),
			}},
			gputypes.BindGroupEntry{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: smp.NativeHandle(),
			}},
		)
	}
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "rdraw_" + prog.kind.String() + "_bind",
		Layout:  prog.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	res.bindGroups = append(res.bindGroups, bg)
	return bg, nil
}

// uploadBuffer creates a buffer holding data and tracks it in res.
func (d *Device) uploadBuffer(label string, data []byte, usage gputypes.BufferUsage, res *frameResources) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	res.buffers = append(res.buffers, buf)
	return buf, nil
}

// quadIndices returns two triangles (0,1,2) and (0,2,3) per quad.
func quadIndices(quads int) []byte {
	idx := make([]uint32, 0, quads*6)
	for q := range quads {
		base := uint32(q * 4)
		idx = append(idx, base, base+1, base+2, base, base+2, base+3)
	}
	return safeish.SliceCast[[]byte](idx)
}
