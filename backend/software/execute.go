// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rdraw"
	"github.com/gogpu/rdraw/internal/blend"
	"github.com/gogpu/rdraw/internal/raster"
)

// surface is RGBA8 pixel storage, first memory row first.
type surface struct {
	width, height int
	pix           []byte
}

func (s *surface) bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

func (s *surface) offset(x, y int) int {
	return (y*s.width + x) * 4
}

func (s *surface) at(x, y int) blend.Color {
	off := s.offset(x, y)
	return blend.Unpack(s.pix[off : off+4])
}

func surfaceOf(s *rdraw.Surface) (*surface, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil surface", rdraw.ErrInvalidArgument)
	}
	surf, ok := s.Handle.(*surface)
	if !ok || surf == nil {
		return nil, ErrForeignSurface
	}
	return surf, nil
}

// pipelineState is the device state captured by each recorded command.
type pipelineState struct {
	target      *surface
	viewport    [4]float32
	scissor     image.Rectangle
	blend       rdraw.BlendState
	shader      rdraw.ShaderKind
	texture     *surface
	sampler     rdraw.Sampler
	attribs     [2]*buffer
	targetSize  [4]float32
	textureSize [4]float32
	color       [4]float32
}

func defaultState() pipelineState {
	bs, _ := rdraw.TranslateBlendMode(rdraw.BlendModeNone)
	return pipelineState{
		blend:   bs,
		sampler: rdraw.DefaultSampler(),
		color:   [4]float32{1, 1, 1, 1},
	}
}

type commandKind int

const (
	cmdDraw commandKind = iota
	cmdClear
)

type command struct {
	kind      commandKind
	state     pipelineState
	primitive rdraw.Primitive
	count     int
	clear     rdraw.Color
}

func (d *Device) execute(c *command) {
	st := &c.state
	if st.target == nil || st.target.pix == nil {
		d.fault(fmt.Errorf("software: %v command on a destroyed target", c.kind))
		return
	}
	switch c.kind {
	case cmdClear:
		var px [4]byte
		blend.Pack(px[:], blend.Color{c.clear.R, c.clear.G, c.clear.B, c.clear.A})
		for i := 0; i < len(st.target.pix); i += 4 {
			copy(st.target.pix[i:i+4], px[:])
		}
	case cmdDraw:
		if err := d.executeDraw(c); err != nil {
			d.fault(err)
			return
		}
		d.stats.DrawsExecuted++
	}
}

func (k commandKind) String() string {
	if k == cmdClear {
		return "clear"
	}
	return "draw"
}

// vertex is a transformed vertex with its texcoord.
type vertex struct {
	pos raster.Vec2
	tc  [2]float32
}

func (d *Device) executeDraw(c *command) error {
	st := &c.state
	pos := st.attribs[rdraw.AttribPosition]
	if pos == nil {
		return fmt.Errorf("software: draw without position buffer")
	}
	if pos.destroyed {
		return fmt.Errorf("%w: position buffer %d", ErrUseAfterFree, pos.id)
	}
	textured := st.shader == rdraw.ShaderTextured
	var tc *buffer
	if textured {
		tc = st.attribs[rdraw.AttribTexCoord]
		if tc == nil || st.texture == nil || st.texture.pix == nil {
			return fmt.Errorf("software: textured draw without texture or texcoords")
		}
		if tc.destroyed {
			return fmt.Errorf("%w: texcoord buffer %d", ErrUseAfterFree, tc.id)
		}
	}
	if c.count > pos.elemCount || (tc != nil && c.count > tc.elemCount) {
		return fmt.Errorf("software: draw of %d vertices overruns buffer", c.count)
	}

	verts := make([]vertex, c.count)
	for i := range verts {
		x, y := pos.vec2(i)
		verts[i].pos = st.toWindow(x, y)
		if tc != nil {
			verts[i].tc[0], verts[i].tc[1] = tc.vec2(i)
		}
	}

	clip := st.scissor.Intersect(st.target.bounds())
	eq := blend.Equation{
		Enable:    st.blend.BlendEnable,
		Color:     st.blend.Color,
		Alpha:     st.blend.Alpha,
		WriteMask: st.blend.WriteMask,
	}
	color := blend.Color(st.color)
	plot := func(x, y int, src blend.Color) {
		off := st.target.offset(x, y)
		px := st.target.pix[off : off+4]
		blend.Pack(px, eq.Apply(src, blend.Unpack(px)))
	}
	solid := func(x, y int) { plot(x, y, color) }

	switch c.primitive {
	case rdraw.PrimitivePoints:
		for _, v := range verts {
			raster.Point(v.pos, clip, solid)
		}
	case rdraw.PrimitiveLineStrip:
		if len(verts) == 1 {
			raster.Point(verts[0].pos, clip, solid)
		}
		for i := 0; i+1 < len(verts); i++ {
			raster.Line(verts[i].pos, verts[i+1].pos, clip, i+2 == len(verts), solid)
		}
	case rdraw.PrimitiveQuads:
		for q := 0; q+3 < len(verts); q += 4 {
			v := verts[q : q+4]
			for _, tri := range [2][3]int{{0, 1, 2}, {0, 2, 3}} {
				a, b, cc := v[tri[0]], v[tri[1]], v[tri[2]]
				raster.Triangle(a.pos, b.pos, cc.pos, clip, func(x, y int, l0, l1, l2 float32) {
					if !textured {
						plot(x, y, color)
						return
					}
					u := a.tc[0]*l0 + b.tc[0]*l1 + cc.tc[0]*l2
					w := a.tc[1]*l0 + b.tc[1]*l1 + cc.tc[1]*l2
					plot(x, y, blend.Mul(st.sample(u, w), color))
				})
			}
		}
	default:
		return fmt.Errorf("software: unknown primitive %v", c.primitive)
	}
	return nil
}

// toWindow applies the vertex program and the viewport transform.
func (st *pipelineState) toWindow(x, y float32) raster.Vec2 {
	cx := x/st.targetSize[0]*2 - 1
	cy := 1 - y/st.targetSize[1]*2
	vp := st.viewport
	return raster.Vec2{
		X: vp[0] + (cx+1)/2*vp[2],
		Y: vp[1] + (1-cy)/2*vp[3],
	}
}

// sample reads the bound texture at texel coordinates (u, v).
func (st *pipelineState) sample(u, v float32) blend.Color {
	t := st.texture
	if st.sampler.Filter != gputypes.FilterModeLinear {
		x := clampInt(int(math.Floor(float64(u))), t.width)
		y := clampInt(int(math.Floor(float64(v))), t.height)
		return t.at(x, y)
	}
	fx := float64(u) - 0.5
	fy := float64(v) - 0.5
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	ax := float32(fx - x0)
	ay := float32(fy - y0)
	ix, iy := int(x0), int(y0)
	c00 := t.at(clampInt(ix, t.width), clampInt(iy, t.height))
	c10 := t.at(clampInt(ix+1, t.width), clampInt(iy, t.height))
	c01 := t.at(clampInt(ix, t.width), clampInt(iy+1, t.height))
	c11 := t.at(clampInt(ix+1, t.width), clampInt(iy+1, t.height))
	var out blend.Color
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*ax
		bot := c01[i] + (c11[i]-c01[i])*ax
		out[i] = top + (bot-top)*ay
	}
	return out
}

func clampInt(v, n int) int {
	return min(max(v, 0), n-1)
}
