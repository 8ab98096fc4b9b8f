// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/rdraw"
	"github.com/gogpu/rdraw/backend"
	"github.com/gogpu/rdraw/internal/cache"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL for NewStandalone.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Name is the registry name of the wgpu device.
const Name = "wgpu"

// DefaultFenceTimeout bounds how long Finish and ReadPixels wait for the GPU.
const DefaultFenceTimeout = 5 * time.Second

// DefaultPipelineCacheSize is the number of render pipelines kept before the
// least recently used one is retired.
const DefaultPipelineCacheSize = 32

// samplerCacheSize bounds the sampler cache.
const samplerCacheSize = 16

var (
	// ErrNoAdapter is returned by NewStandalone when no GPU can be opened.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter available")

	// ErrNoHALProvider is returned when a provider does not expose HAL handles.
	ErrNoHALProvider = errors.New("wgpu: provider does not expose HAL types")

	// ErrBufferDestroyed is returned when a destroyed buffer is locked.
	ErrBufferDestroyed = errors.New("wgpu: buffer destroyed")

	// ErrForeignSurface is returned for surfaces created by another device.
	ErrForeignSurface = errors.New("wgpu: surface was not created by this device")

	// ErrNoTarget is returned when drawing before a target is bound.
	ErrNoTarget = errors.New("wgpu: no render target bound")

	// ErrFenceTimeout is returned when the GPU does not signal in time.
	ErrFenceTimeout = errors.New("wgpu: timed out waiting for GPU")
)

func init() {
	backend.Register(backend.WGPU, func() (rdraw.Device, error) {
		return NewStandalone()
	})
}

// Stats counts device activity since creation.
type Stats struct {
	BuffersAllocated uint64
	BuffersDestroyed uint64
	LiveBuffers      int
	DrawsRecorded    uint64
	DrawsEncoded     uint64
	Passes           uint64
	Barriers         uint64
	Submits          uint64
	Timeouts         uint64
	Pipelines        int
	PipelineEvicts   uint64
}

// Option configures a Device.
type Option func(*Device)

// WithFenceTimeout sets how long Finish and ReadPixels wait for the GPU.
func WithFenceTimeout(d time.Duration) Option {
	return func(dev *Device) {
		if d > 0 {
			dev.fenceTimeout = d
		}
	}
}

// WithPipelineCacheSize bounds the render pipeline cache. Zero keeps every
// pipeline until Release.
func WithPipelineCacheSize(n int) Option {
	return func(dev *Device) {
		if n >= 0 {
			dev.pipelineCap = n
		}
	}
}

// WithSPIRV compiles the shader programs to SPIR-V with naga instead of
// handing WGSL to the HAL.
func WithSPIRV() Option {
	return func(dev *Device) {
		dev.spirv = true
	}
}

// Device implements rdraw.Device on a HAL device and queue.
type Device struct {
	mu sync.Mutex

	device   hal.Device
	queue    hal.Queue
	instance hal.Instance
	owned    bool
	adapter  string

	fenceTimeout time.Duration
	spirv        bool
	pipelineCap  int

	programs  [2]*program
	pipelines *cache.LRU[pipelineKey, hal.RenderPipeline]
	samplers  *cache.LRU[rdraw.Sampler, hal.Sampler]

	state   drawState
	ops     []op
	retired []hal.Buffer
	dead    []*gpuSurface

	// Evicted pipelines and samplers wait for the next fence like buffers.
	oldPipelines []hal.RenderPipeline
	oldSamplers  []hal.Sampler

	// Submissions whose fence timed out, oldest first, and the per-frame
	// objects they may still read.
	late          []hal.Fence
	oldBindGroups []hal.BindGroup
	oldCommands   []hal.CommandBuffer

	nextID uint64
	stats  Stats
}

var (
	_ rdraw.Device           = (*Device)(nil)
	_ rdraw.SurfaceAllocator = (*Device)(nil)
)

// New returns a device recording into the given HAL device and queue. The
// caller keeps ownership of both.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil HAL device or queue", rdraw.ErrInvalidArgument)
	}
	d := &Device{
		device:       device,
		queue:        queue,
		fenceTimeout: DefaultFenceTimeout,
		pipelineCap:  DefaultPipelineCacheSize,
		state:        defaultState(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.pipelines = cache.New(d.pipelineCap, func(key pipelineKey, p hal.RenderPipeline) {
		d.oldPipelines = append(d.oldPipelines, p)
		rdraw.Logger().Debug("wgpu: pipeline evicted", "shader", key.shader, "topology", key.topology)
	})
	d.samplers = cache.New(samplerCacheSize, func(_ rdraw.Sampler, s hal.Sampler) {
		d.oldSamplers = append(d.oldSamplers, s)
	})
	return d, nil
}

// NewFromProvider shares the GPU of a host application. The provider must
// also implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	d, err := New(device, queue, opts...)
	if err != nil {
		return nil, err
	}
	rdraw.Logger().Debug("wgpu: sharing provider device", "surfaceFormat", provider.SurfaceFormat())
	return d, nil
}

// NewStandalone opens a Vulkan adapter, preferring discrete and integrated
// GPUs, and owns the resulting device.
func NewStandalone(opts ...Option) (*Device, error) {
	api, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", ErrNoAdapter, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %v", ErrNoAdapter, err)
	}
	d, err := New(openDev.Device, openDev.Queue, opts...)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	d.owned = true
	d.adapter = selected.Info.Name
	rdraw.Logger().Info("wgpu: device opened", "adapter", d.adapter)
	return d, nil
}

// Name returns "wgpu".
func (d *Device) Name() string { return Name }

// Adapter returns the adapter name of a standalone device.
func (d *Device) Adapter() string { return d.adapter }

// NewBuffer creates a vertex buffer and its CPU shadow.
func (d *Device) NewBuffer(elemSize, elemCount int, usage rdraw.BufferUsage) (rdraw.DeviceBuffer, error) {
	if elemSize <= 0 || elemCount <= 0 || elemSize%4 != 0 {
		return nil, fmt.Errorf("%w: buffer of %d x %d bytes", rdraw.ErrInvalidArgument, elemCount, elemSize)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	size := uint64(elemSize) * uint64(elemCount)
	d.nextID++
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("rdraw_vertex_%d", d.nextID),
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create vertex buffer: %v", rdraw.ErrOutOfMemory, err)
	}
	d.stats.BuffersAllocated++
	d.stats.LiveBuffers++
	return &buffer{
		dev:       d,
		id:        d.nextID,
		elemSize:  elemSize,
		elemCount: elemCount,
		usage:     usage,
		raw:       raw,
		shadow:    make([]float32, size/4),
	}, nil
}

func (d *Device) destroyBuffer(b *buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b.destroyed {
		rdraw.Logger().Warn("wgpu: buffer destroyed twice", "id", b.id)
		return
	}
	b.destroyed = true
	b.shadow = nil
	d.retired = append(d.retired, b.raw)
	d.stats.BuffersDestroyed++
	d.stats.LiveBuffers--
}

// BindTarget makes cb the destination of subsequent commands.
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
	gb, _ := b.(*buffer)
	d.state.attribs[slot] = gb
}

func (d *Device) SetUniform(stage rdraw.ShaderStage, index int, v [4]float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case stage == rdraw.StageVertex && index == rdraw.UniformTargetSize:
		copy(d.state.uniforms[0:4], v[:])
	case stage == rdraw.StageVertex && index == rdraw.UniformTextureSize:
		copy(d.state.uniforms[4:8], v[:])
	case stage == rdraw.StagePixel && index == rdraw.UniformColor:
		copy(d.state.uniforms[8:12], v[:])
	}
}

// Draw records a draw with a snapshot of the current state.
func (d *Device) Draw(p rdraw.Primitive, count, instances int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.target == nil {
		return ErrNoTarget
	}
	if count <= 0 || instances <= 0 {
		return nil
	}
	if d.state.attribs[rdraw.AttribPosition] == nil {
		return fmt.Errorf("%w: draw without position buffer", rdraw.ErrInvalidArgument)
	}
	d.ops = append(d.ops, op{
		kind:      opDraw,
		state:     d.state,
		primitive: p,
		count:     count,
		instances: instances,
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
	d.ops = append(d.ops, op{kind: opClear, state: d.state, clear: c})
	return nil
}

// Pending returns the number of recorded, unsubmitted commands.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ops)
}

// Stats returns a snapshot of the device counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.stats
	cs := d.pipelines.Stats()
	st.Pipelines = cs.Len
	st.PipelineEvicts = cs.Evictions
	return st
}

// Release frees every GPU object owned by the device. A standalone device
// also closes its HAL device and instance.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ops = nil
	d.settle()
	d.pipelines.Purge(nil)
	d.samplers.Purge(nil)
	d.freeRetired()
	for _, f := range d.late {
		d.device.DestroyFence(f)
	}
	d.late = nil
	for i, p := range d.programs {
		if p != nil {
			p.destroy(d.device)
			d.programs[i] = nil
		}
	}
	d.state = defaultState()
	if d.owned {
		d.device.Destroy()
		d.instance.Destroy()
		d.owned = false
	}
}

// freeRetired destroys buffers and surfaces released by the caller and
// pipelines and samplers evicted from their caches. The caller must hold
// d.mu and no submitted work may reference them.
func (d *Device) freeRetired() {
	for _, bg := range d.oldBindGroups {
		d.device.DestroyBindGroup(bg)
	}
	d.oldBindGroups = d.oldBindGroups[:0]
	for _, cb := range d.oldCommands {
		d.device.FreeCommandBuffer(cb)
	}
	d.oldCommands = d.oldCommands[:0]
	for _, p := range d.oldPipelines {
		d.device.DestroyRenderPipeline(p)
	}
	d.oldPipelines = d.oldPipelines[:0]
	for _, s := range d.oldSamplers {
		d.device.DestroySampler(s)
	}
	d.oldSamplers = d.oldSamplers[:0]

	for _, raw := range d.retired {
		d.device.DestroyBuffer(raw)
	}
	d.retired = d.retired[:0]
	for _, s := range d.dead {
		s.destroy(d.device)
	}
	d.dead = d.dead[:0]
}
