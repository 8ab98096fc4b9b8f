package rdraw

import (
	"errors"
	"fmt"
	"image"
	"testing"
)

// fakeBuffer is a DeviceBuffer that counts its lifecycle calls.
type fakeBuffer struct {
	dev       *fakeDevice
	elemSize  int
	elemCount int
	data      []float32
	locks     int
	unlocks   int
	destroys  int
}

func (b *fakeBuffer) Lock() ([]float32, error) {
	if b.destroys > 0 {
		return nil, errors.New("fake: lock after destroy")
	}
	b.locks++
	return b.data, nil
}

func (b *fakeBuffer) Unlock()       { b.unlocks++ }
func (b *fakeBuffer) ElemSize() int { return b.elemSize }
func (b *fakeBuffer) Len() int      { return b.elemCount }
func (b *fakeBuffer) Destroy()      { b.destroys++ }

type fakeSurface struct {
	pix []byte
}

type fakeDraw struct {
	primitive Primitive
	count     int
	shader    ShaderKind
	blend     BlendState
	scissor   image.Rectangle
	viewport  [4]float32
	position  []float32
	texCoord  []float32
}

// fakeDevice records every call made by the renderer. Draws are not
// rasterized.
type fakeDevice struct {
	calls    []string
	buffers  []*fakeBuffer
	draws    []fakeDraw
	clears   []Color
	uniforms map[string][4]float32

	target   ColorBuffer
	viewport [4]float32
	scissor  image.Rectangle
	blend    BlendState
	shader   ShaderKind
	attribs  [2]*fakeBuffer

	finishes     int
	finishErr    error
	newBufferErr error
	reads        int
	released     bool
}

var (
	_ Device           = (*fakeDevice)(nil)
	_ SurfaceAllocator = (*fakeDevice)(nil)
)

func newFakeDevice() *fakeDevice {
	return &fakeDevice{uniforms: make(map[string][4]float32)}
}

func (d *fakeDevice) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

// count returns how many recorded calls start with name.
func (d *fakeDevice) count(name string) int {
	n := 0
	for _, c := range d.calls {
		if len(c) >= len(name) && c[:len(name)] == name {
			n++
		}
	}
	return n
}

func (d *fakeDevice) reset() { d.calls = nil }

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) NewBuffer(elemSize, elemCount int, usage BufferUsage) (DeviceBuffer, error) {
	d.record("NewBuffer(%d,%d)", elemSize, elemCount)
	if d.newBufferErr != nil {
		return nil, d.newBufferErr
	}
	b := &fakeBuffer{
		dev:       d,
		elemSize:  elemSize,
		elemCount: elemCount,
		data:      make([]float32, elemSize*elemCount/4),
	}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) BindTarget(cb ColorBuffer) error {
	if _, ok := cb.Surface.Handle.(*fakeSurface); !ok {
		return errors.New("fake: foreign surface")
	}
	d.record("BindTarget")
	d.target = cb
	return nil
}

func (d *fakeDevice) SetViewport(x, y, w, h float32) {
	d.record("SetViewport")
	d.viewport = [4]float32{x, y, w, h}
}

func (d *fakeDevice) SetScissor(r image.Rectangle) {
	d.record("SetScissor")
	d.scissor = r
}

func (d *fakeDevice) SetBlendState(bs BlendState) {
	d.record("SetBlendState")
	d.blend = bs
}

func (d *fakeDevice) BindShader(kind ShaderKind) {
	d.record("BindShader(%s)", kind)
	d.shader = kind
}

func (d *fakeDevice) BindTexture(unit int, s *Surface, smp Sampler) {
	d.record("BindTexture(%d)", unit)
}

func (d *fakeDevice) BindAttributeBuffer(slot int, b DeviceBuffer) {
	d.record("BindAttributeBuffer(%d)", slot)
	d.attribs[slot], _ = b.(*fakeBuffer)
}

func (d *fakeDevice) SetUniform(stage ShaderStage, index int, v [4]float32) {
	key := fmt.Sprintf("%d/%d", stage, index)
	d.record("SetUniform(%s)", key)
	d.uniforms[key] = v
}

func (d *fakeDevice) Draw(p Primitive, count, instances int) error {
	d.record("Draw(%s,%d)", p, count)
	fd := fakeDraw{
		primitive: p,
		count:     count,
		shader:    d.shader,
		blend:     d.blend,
		scissor:   d.scissor,
		viewport:  d.viewport,
	}
	if b := d.attribs[AttribPosition]; b != nil {
		fd.position = append([]float32(nil), b.data...)
	}
	if b := d.attribs[AttribTexCoord]; b != nil && d.shader == ShaderTextured {
		fd.texCoord = append([]float32(nil), b.data...)
	}
	d.draws = append(d.draws, fd)
	return nil
}

func (d *fakeDevice) Clear(c Color) error {
	d.record("Clear")
	d.clears = append(d.clears, c)
	return nil
}

func (d *fakeDevice) Finish() error {
	d.record("Finish")
	d.finishes++
	return d.finishErr
}

func (d *fakeDevice) ReadPixels(s *Surface, r image.Rectangle, dst []byte) error {
	d.record("ReadPixels")
	d.reads++
	fs := s.Handle.(*fakeSurface)
	row := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := (y*s.Width + r.Min.X) * 4
		copy(dst[(y-r.Min.Y)*row:], fs.pix[off:off+row])
	}
	return nil
}

func (d *fakeDevice) Release() { d.released = true }

func (d *fakeDevice) NewSurface(width, height int) (*Surface, error) {
	return &Surface{
		Width:  width,
		Height: height,
		Handle: &fakeSurface{pix: make([]byte, width*height*4)},
	}, nil
}

func (d *fakeDevice) WriteSurface(s *Surface, pix []byte) error {
	copy(s.Handle.(*fakeSurface).pix, pix)
	return nil
}

func (d *fakeDevice) DestroySurface(s *Surface) {
	s.Handle = nil
}

// newFakeRenderer returns a renderer presenting to a w x h offscreen
// window on a fake device.
func newFakeRenderer(t *testing.T, w, h int) (*GPURenderer, *fakeDevice) {
	t.Helper()
	dev := newFakeDevice()
	win, err := NewOffscreenWindow(dev, w, h)
	if err != nil {
		t.Fatalf("NewOffscreenWindow() error = %v", err)
	}
	r, err := New(dev, WithWindow(win))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	dev.reset()
	return r, dev
}
