package rdraw

import (
	"image"

	"github.com/gogpu/gputypes"
)

// ShaderKind selects one of the two fixed shader programs.
type ShaderKind int

const (
	// ShaderSolid takes a position attribute and a flat color uniform.
	ShaderSolid ShaderKind = iota
	// ShaderTextured takes position and texcoord attributes, samples a
	// texture and multiplies it by a modulation uniform.
	ShaderTextured
)

func (k ShaderKind) String() string {
	if k == ShaderTextured {
		return "textured"
	}
	return "solid"
}

// ShaderStage identifies the uniform bank a value is written to.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StagePixel
)

// Fixed attribute slots and uniform indices shared by both programs.
const (
	AttribPosition = 0
	AttribTexCoord = 1

	// Vertex stage.
	UniformTargetSize  = 0
	UniformTextureSize = 1

	// Pixel stage.
	UniformColor = 0
)

// Primitive is the topology of a draw.
type Primitive int

const (
	// PrimitiveQuads draws one quad per four vertices.
	PrimitiveQuads Primitive = iota
	PrimitivePoints
	PrimitiveLineStrip
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveQuads:
		return "quads"
	case PrimitivePoints:
		return "points"
	case PrimitiveLineStrip:
		return "line-strip"
	}
	return "unknown"
}

// BufferUsage describes how a transient buffer is accessed.
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageCPUWrite
	BufferUsageCPURead
	BufferUsageGPURead
)

// Surface describes GPU memory that can be sampled or rendered to.
// Handle is private to the backend that created the surface.
type Surface struct {
	Width  int
	Height int
	Format gputypes.TextureFormat
	Usage  gputypes.TextureUsage
	Handle any
}

// Bounds returns the surface rectangle anchored at the origin.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// ColorBuffer is a render attachment built from a surface.
type ColorBuffer struct {
	Surface    Surface
	ViewSlices int
}

// NewColorBuffer builds the attachment descriptor for s. The surface usage
// is forced to texture-binding plus render-attachment and a single view
// slice is used.
func NewColorBuffer(s *Surface) ColorBuffer {
	cb := ColorBuffer{Surface: *s, ViewSlices: 1}
	cb.Surface.Usage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment
	return cb
}

// Sampler describes how a texture is filtered and addressed.
type Sampler struct {
	AddressMode gputypes.AddressMode
	Filter      gputypes.FilterMode
}

// DefaultSampler clamps at the edges and filters linearly.
func DefaultSampler() Sampler {
	return Sampler{
		AddressMode: gputypes.AddressModeClampToEdge,
		Filter:      gputypes.FilterModeLinear,
	}
}

// DeviceBuffer is GPU-visible vertex memory.
//
// Lock maps the buffer for CPU writes and Unlock hands it back to the GPU.
// The slice returned by Lock must not be retained past Unlock.
type DeviceBuffer interface {
	Lock() ([]float32, error)
	Unlock()
	// ElemSize is the element size in bytes.
	ElemSize() int
	// Len is the number of elements.
	Len() int
	Destroy()
}

// Device is the capability set a backend exposes to the renderer.
//
// Commands recorded through the state setters and Draw execute
// asynchronously. Finish flushes them and returns once the device has
// retired every recorded command, after which buffers referenced by those
// commands may be destroyed.
type Device interface {
	Name() string

	// NewBuffer returns fresh GPU-visible memory or an error wrapping
	// ErrOutOfMemory.
	NewBuffer(elemSize, elemCount int, usage BufferUsage) (DeviceBuffer, error)

	BindTarget(cb ColorBuffer) error
	SetViewport(x, y, w, h float32)
	SetScissor(r image.Rectangle)
	SetBlendState(bs BlendState)
	BindShader(kind ShaderKind)
	BindTexture(unit int, s *Surface, smp Sampler)
	BindAttributeBuffer(slot int, b DeviceBuffer)
	SetUniform(stage ShaderStage, index int, v [4]float32)
	Draw(p Primitive, count, instances int) error

	// Clear fills the bound target, ignoring viewport, scissor and blending.
	Clear(c Color) error

	Finish() error

	// ReadPixels copies r from s into dst as tightly packed RGBA8 rows,
	// top row first. Callers must Finish before reading.
	ReadPixels(s *Surface, r image.Rectangle, dst []byte) error

	Release()
}

// SurfaceAllocator is implemented by devices that can create surfaces for
// textures and offscreen windows.
type SurfaceAllocator interface {
	NewSurface(width, height int) (*Surface, error)
	// WriteSurface uploads tightly packed RGBA8 rows, first memory row first.
	WriteSurface(s *Surface, pix []byte) error
	DestroySurface(s *Surface)
}
