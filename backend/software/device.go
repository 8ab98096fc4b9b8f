// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rdraw"
	"github.com/gogpu/rdraw/backend"
)

// Name is the registry name of the software device.
const Name = "software"

func init() {
	backend.Register(backend.Software, func() (rdraw.Device, error) {
		return New(), nil
	})
}

// Stats counts device activity since creation.
type Stats struct {
	BuffersAllocated uint64
	BuffersDestroyed uint64
	LiveBuffers      int
	LiveBytes        int
	DrawsRecorded    uint64
	DrawsExecuted    uint64
	Clears           uint64
	Finishes         uint64
	Faults           uint64
}

// Option configures a Device.
type Option func(*Device)

// WithMemoryLimit caps the total size of live vertex buffers in bytes.
// Allocations beyond the cap fail with rdraw.ErrOutOfMemory.
func WithMemoryLimit(bytes int) Option {
	return func(d *Device) {
		d.memoryLimit = bytes
	}
}

// Device is a CPU implementation of rdraw.Device.
type Device struct {
	mu sync.Mutex

	memoryLimit int
	nextID      uint64

	state   pipelineState
	pending []command
	faults  []error
	stats   Stats
}

var (
	_ rdraw.Device           = (*Device)(nil)
	_ rdraw.SurfaceAllocator = (*Device)(nil)
)

// New returns a software device.
func New(opts ...Option) *Device {
	d := &Device{}
	for _, opt := range opts {
		opt(d)
	}
	d.state = defaultState()
	return d
}

// Name returns "software".
func (d *Device) Name() string { return Name }

// NewBuffer allocates zeroed vertex memory.
func (d *Device) NewBuffer(elemSize, elemCount int, usage rdraw.BufferUsage) (rdraw.DeviceBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if elemSize <= 0 || elemCount <= 0 || elemSize%4 != 0 {
		return nil, fmt.Errorf("%w: buffer of %d x %d bytes", rdraw.ErrInvalidArgument, elemCount, elemSize)
	}
	size := elemSize * elemCount
	if d.memoryLimit > 0 && d.stats.LiveBytes+size > d.memoryLimit {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			rdraw.ErrOutOfMemory, size, d.stats.LiveBytes, d.memoryLimit)
	}
	d.nextID++
	b := &buffer{
		dev:       d,
		id:        d.nextID,
		elemSize:  elemSize,
		elemCount: elemCount,
		usage:     usage,
		data:      make([]float32, size/4),
	}
	d.stats.BuffersAllocated++
	d.stats.LiveBuffers++
	d.stats.LiveBytes += size
	return b, nil
}

func (d *Device) destroyBuffer(b *buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if b.destroyed {
		d.fault(fmt.Errorf("%w: buffer %d", ErrDoubleFree, b.id))
		return
	}
	b.destroyed = true
	b.data = nil
	d.stats.BuffersDestroyed++
	d.stats.LiveBuffers--
	d.stats.LiveBytes -= b.bytes()
}

func (d *Device) fault(err error) {
	d.faults = append(d.faults, err)
	d.stats.Faults++
	rdraw.Logger().Warn("software: device fault", "error", err)
}

// BindTarget makes cb the destination of subsequent draws.
func (d *Device) BindTarget(cb rdraw.ColorBuffer) error {
	s, err := surfaceOf(&cb.Surface)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.target = s
	return nil
}

func (d *Device) SetViewport(x, y, w, h float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.viewport = [4]float32{x, y, w, h}
}

func (d *Device) SetScissor(r image.Rectangle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.scissor = r
}

func (d *Device) SetBlendState(bs rdraw.BlendState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.blend = bs
}

func (d *Device) BindShader(kind rdraw.ShaderKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.shader = kind
}

func (d *Device) BindTexture(unit int, s *rdraw.Surface, smp rdraw.Sampler) {
	if unit != 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.texture, _ = surfaceOf(s)
	d.state.sampler = smp
}

func (d *Device) BindAttributeBuffer(slot int, b rdraw.DeviceBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if slot < 0 || slot >= len(d.state.attribs) {
		return
	}
	sb, _ := b.(*buffer)
	d.state.attribs[slot] = sb
}

func (d *Device) SetUniform(stage rdraw.ShaderStage, index int, v [4]float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case stage == rdraw.StageVertex && index == rdraw.UniformTargetSize:
		d.state.targetSize = v
	case stage == rdraw.StageVertex && index == rdraw.UniformTextureSize:
		d.state.textureSize = v
	case stage == rdraw.StagePixel && index == rdraw.UniformColor:
		d.state.color = v
	}
}

// Draw records a draw with a snapshot of the current state. Attribute
// buffers are referenced, not copied, and are read when the draw executes.
func (d *Device) Draw(p rdraw.Primitive, count, instances int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.target == nil {
		return ErrNoTarget
	}
	if count <= 0 || instances <= 0 {
		return nil
	}
	d.pending = append(d.pending, command{
		kind:      cmdDraw,
		state:     d.state,
		primitive: p,
		count:     count,
	})
	d.stats.DrawsRecorded++
	return nil
}

// Clear records a clear of the whole bound target.
func (d *Device) Clear(c rdraw.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.target == nil {
		return ErrNoTarget
	}
	d.pending = append(d.pending, command{
		kind:  cmdClear,
		state: d.state,
		clear: c,
	})
	d.stats.Clears++
	return nil
}

// Finish executes every recorded command in order. Faults detected during
// execution, and double frees recorded since the previous Finish, are
// returned joined.
func (d *Device) Finish() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.pending {
		d.execute(&d.pending[i])
		d.pending[i] = command{}
	}
	d.pending = d.pending[:0]
	d.stats.Finishes++

	if len(d.faults) == 0 {
		return nil
	}
	err := errors.Join(d.faults...)
	d.faults = nil
	return err
}

// Pending returns the number of recorded, unexecuted commands.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stats returns a snapshot of the device counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// ReadPixels copies r of s into dst as RGBA8, top row first.
func (d *Device) ReadPixels(s *rdraw.Surface, r image.Rectangle, dst []byte) error {
	surf, err := surfaceOf(s)
	if err != nil {
		return err
	}
	if !r.In(surf.bounds()) {
		return fmt.Errorf("%w: read %v of %v", rdraw.ErrInvalidTarget, r, surf.bounds())
	}
	if len(dst) < r.Dx()*r.Dy()*4 {
		return fmt.Errorf("%w: destination holds %d bytes", rdraw.ErrInvalidArgument, len(dst))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	row := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := surf.offset(r.Min.X, y)
		copy(dst[(y-r.Min.Y)*row:], surf.pix[off:off+row])
	}
	return nil
}

// NewSurface allocates a zeroed RGBA8 surface.
func (d *Device) NewSurface(width, height int) (*rdraw.Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: surface %dx%d", rdraw.ErrInvalidArgument, width, height)
	}
	s := &surface{
		width:  width,
		height: height,
		pix:    make([]byte, width*height*4),
	}
	return &rdraw.Surface{
		Width:  width,
		Height: height,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage: gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
		Handle: s,
	}, nil
}

// WriteSurface replaces the surface contents.
func (d *Device) WriteSurface(s *rdraw.Surface, pix []byte) error {
	surf, err := surfaceOf(s)
	if err != nil {
		return err
	}
	if len(pix) != len(surf.pix) {
		return fmt.Errorf("%w: %d bytes for %dx%d surface",
			rdraw.ErrInvalidArgument, len(pix), surf.width, surf.height)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(surf.pix, pix)
	return nil
}

// DestroySurface drops the surface storage.
func (d *Device) DestroySurface(s *rdraw.Surface) {
	if surf, err := surfaceOf(s); err == nil {
		d.mu.Lock()
		surf.pix = nil
		d.mu.Unlock()
	}
	s.Handle = nil
}

// Release drops recorded commands.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
	d.state = defaultState()
}
