// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rdraw"
	"github.com/gogpu/wgpu/hal"
)

// vertexStride is the size of one vec2<f32> attribute.
const vertexStride = 8

// program is a shader module with its bind group and pipeline layouts.
type program struct {
	kind       rdraw.ShaderKind
	shader     hal.ShaderModule
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
}

func (p *program) destroy(device hal.Device) {
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.layout != nil {
		device.DestroyBindGroupLayout(p.layout)
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
	}
}

// pipelineKey identifies a cached render pipeline.
type pipelineKey struct {
	shader   rdraw.ShaderKind
	topology gputypes.PrimitiveTopology
	blend    rdraw.BlendState
	format   gputypes.TextureFormat
}

func topology(p rdraw.Primitive) gputypes.PrimitiveTopology {
	switch p {
	case rdraw.PrimitivePoints:
		return gputypes.PrimitiveTopologyPointList
	case rdraw.PrimitiveLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	}
	// Quads are expanded to two indexed triangles each.
	return gputypes.PrimitiveTopologyTriangleList
}

// program returns the shader program for kind, creating it on first use.
// The caller must hold d.mu.
func (d *Device) program(kind rdraw.ShaderKind) (*program, error) {
	if p := d.programs[kind]; p != nil {
		return p, nil
	}
	shader, err := createShader(d.device, kind, d.spirv)
	if err != nil {
		return nil, err
	}
	p := &program{kind: kind, shader: shader}

	entries := []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
	}
	if kind == rdraw.ShaderTextured {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	layout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "rdraw_" + kind.String() + "_layout",
		Entries: entries,
	})
	if err != nil {
		p.destroy(d.device)
		return nil, fmt.Errorf("create %s bind group layout: %w", kind, err)
	}
	p.layout = layout

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "rdraw_" + kind.String() + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		p.destroy(d.device)
		return nil, fmt.Errorf("create %s pipeline layout: %w", kind, err)
	}
	p.pipeLayout = pipeLayout

	d.programs[kind] = p
	return p, nil
}

// vertexLayout returns one buffer layout per attribute slot used by kind.
func vertexLayout(kind rdraw.ShaderKind) []gputypes.VertexBufferLayout {
	layouts := []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: rdraw.AttribPosition},
			},
		},
	}
	if kind == rdraw.ShaderTextured {
		layouts = append(layouts, gputypes.VertexBufferLayout{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: rdraw.AttribTexCoord},
			},
		})
	}
	return layouts
}

// pipeline returns the render pipeline for key, creating it on first use.
// The caller must hold d.mu.
func (d *Device) pipeline(key pipelineKey) (hal.RenderPipeline, *program, error) {
	prog, err := d.program(key.shader)
	if err != nil {
		return nil, nil, err
	}
	p, err := d.pipelines.GetOrCreate(key, func() (hal.RenderPipeline, error) {
		return d.createPipeline(key, prog)
	})
	if err != nil {
		return nil, nil, err
	}
	return p, prog, nil
}

func (d *Device) createPipeline(key pipelineKey, prog *program) (hal.RenderPipeline, error) {
	writeMask := key.blend.WriteMask
	if writeMask == 0 {
		writeMask = gputypes.ColorWriteMaskAll
	}
	d.nextID++
	p, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("rdraw_%s_%d", key.shader, d.nextID),
		Layout: prog.pipeLayout,
		Vertex: hal.VertexState{
			Module:     prog.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(key.shader),
		},
		Fragment: &hal.FragmentState{
			Module:     prog.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    key.format,
					Blend:     key.blend.GPUBlend(),
					WriteMask: writeMask,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: key.topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", key.shader, err)
	}
	rdraw.Logger().Debug("wgpu: pipeline created",
		"shader", key.shader, "topology", key.topology, "blend", key.blend.BlendEnable)
	return p, nil
}

// sampler returns the HAL sampler for smp, creating it on first use.
// The caller must hold d.mu.
func (d *Device) sampler(smp rdraw.Sampler) (hal.Sampler, error) {
	return d.samplers.GetOrCreate(smp, func() (hal.Sampler, error) {
		s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
			Label:        "rdraw_sampler",
			AddressModeU: smp.AddressMode,
			AddressModeV: smp.AddressMode,
			AddressModeW: smp.AddressMode,
			MagFilter:    smp.Filter,
			MinFilter:    smp.Filter,
			MipmapFilter: gputypes.FilterModeNearest,
		})
		if err != nil {
			return nil, fmt.Errorf("create sampler: %w", err)
		}
		return s, nil
	})
}
