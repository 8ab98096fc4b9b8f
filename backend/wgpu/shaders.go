// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/rdraw"
	"github.com/gogpu/wgpu/hal"
)

// uniformFloats is the size of the per-draw uniform block in float32s:
// target size, texture size, color (each vec4).
const uniformFloats = 12

const uniformSize = uniformFloats * 4

// uniformBlock mirrors the Uniforms struct of both programs.
const uniformBlock = `
struct Uniforms {
    target_size: vec4<f32>,
    texture_size: vec4<f32>,
    color: vec4<f32>,
}

@group(0) @binding(0) var<uniform> u: Uniforms;

fn to_clip(p: vec2<f32>) -> vec4<f32> {
    let x = p.x / u.target_size.x * 2.0 - 1.0;
    let y = 1.0 - p.y / u.target_size.y * 2.0;
    return vec4<f32>(x, y, 0.0, 1.0);
}
`

// solidShaderSource draws geometry in the uniform color.
const solidShaderSource = uniformBlock + `
@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return to_clip(position);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return u.color;
}
`

// texturedShaderSource samples a texture at texel coordinates and
// multiplies it by the uniform modulation color.
const texturedShaderSource = uniformBlock + `
@group(0) @binding(1) var t_color: texture_2d<f32>;
@group(0) @binding(2) var s_color: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@location(0) position: vec2<f32>, @location(1) texcoord: vec2<f32>) -> VertexOutput {
    var v: VertexOutput;
    v.position = to_clip(position);
    v.uv = texcoord / u.texture_size.xy;
    return v;
}

@fragment
fn fs_main(frag: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(t_color, s_color, frag.uv) * u.color;
}
`

// shaderSource returns the WGSL program for kind.
func shaderSource(kind rdraw.ShaderKind) string {
	if kind == rdraw.ShaderTextured {
		return texturedShaderSource
	}
	return solidShaderSource
}

// compileSPIRV compiles WGSL to SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}
	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// createShader creates the module for kind, as SPIR-V when spirv is set
// and as WGSL otherwise.
func createShader(device hal.Device, kind rdraw.ShaderKind, spirv bool) (hal.ShaderModule, error) {
	src := shaderSource(kind)
	desc := &hal.ShaderModuleDescriptor{Label: "rdraw_" + kind.String()}
	if spirv {
		code, err := compileSPIRV(src)
		if err != nil {
			return nil, fmt.Errorf("%s shader: %w", kind, err)
		}
		desc.Source = hal.ShaderSource{SPIRV: code}
	} else {
		desc.Source = hal.ShaderSource{WGSL: src}
	}
	module, err := device.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("create %s shader: %w", kind, err)
	}
	return module, nil
}
