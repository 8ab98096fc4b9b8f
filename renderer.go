package rdraw

import (
	"fmt"
	"image"

	"github.com/gogpu/rdraw/pixfmt"
)

// Renderer is the immediate-mode drawing surface held by the host.
//
// All methods must be called from the goroutine that owns the renderer.
// Drawing methods record GPU work and return immediately; the work is
// retired at Present or before ReadPixels.
type Renderer interface {
	// Clear fills the whole target with c, ignoring viewport and clip.
	Clear(c Color) error
	// DrawPoints draws one pixel per point in the draw color.
	DrawPoints(points []FPoint) error
	// DrawLines draws a connected line strip through points.
	DrawLines(points []FPoint) error
	// FillRects fills each rectangle in the draw color.
	FillRects(rects []FRect) error
	// Copy draws the src region of tex into dst. An empty src selects the
	// whole texture.
	Copy(tex Texture, src image.Rectangle, dst FRect) error
	// CopyRotated is Copy with flip applied and then a rotation of angle
	// degrees around center, which is relative to dst's origin. A nil
	// center selects the centre of dst.
	CopyRotated(tex Texture, src image.Rectangle, dst FRect, angle float64, center *FPoint, flip Flip) error

	// SetTarget redirects drawing into tex, or back to the window when tex
	// is nil.
	SetTarget(tex Texture) error
	Target() Texture
	// ReadPixels returns the pixels of r in the bound target, top row
	// first, encoded in format. An empty r selects the whole target.
	ReadPixels(r image.Rectangle, format pixfmt.Format) ([]byte, error)
	// Present retires the frame, shows it and releases its buffers.
	Present() error

	// Do executes one recorded command.
	Do(cmd DrawCommand) error

	SetDrawColor(c Color)
	DrawColor() Color
	SetDrawBlendMode(m BlendMode) error
	DrawBlendMode() BlendMode
	SetViewport(r image.Rectangle) error
	Viewport() image.Rectangle
	SetClipRect(r *image.Rectangle) error
	ClipRect() *image.Rectangle
	OutputSize() (width, height int, err error)
	Info() Info
	Close() error
}

// GPURenderer implements Renderer on top of a Device.
type GPURenderer struct {
	device  Device
	window  Window
	frame   *FrameManager
	alloc   *Allocator
	targets *TargetManager
	submit  *Submitter

	drawColor Color
	drawBlend BlendMode
	closed    bool
}

var _ Renderer = (*GPURenderer)(nil)

// New creates a renderer drawing on device. When a window is configured
// its surface is bound as the initial target; otherwise the caller must
// SetTarget a texture before drawing.
func New(device Device, opts ...Option) (*GPURenderer, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: nil device", ErrInvalidArgument)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if _, err := TranslateBlendMode(o.drawBlend); err != nil {
		return nil, err
	}

	frame := NewFrameManager()
	targets := NewTargetManager(device, o.window)
	r := &GPURenderer{
		device:    device,
		window:    o.window,
		frame:     frame,
		alloc:     NewAllocator(device, frame),
		targets:   targets,
		submit:    NewSubmitter(device, targets),
		drawColor: o.drawColor,
		drawBlend: o.drawBlend,
	}
	if o.window != nil {
		if err := targets.Bind(nil); err != nil {
			return nil, fmt.Errorf("bind window target: %w", err)
		}
	}
	Logger().Info("rdraw: renderer created", "device", device.Name(), "window", o.window != nil)
	return r, nil
}

// ready reports whether the renderer can draw.
func (r *GPURenderer) ready() error {
	if r.closed {
		return ErrRendererClosed
	}
	if r.targets.Binding() == nil {
		return fmt.Errorf("%w: no target bound", ErrInvalidTarget)
	}
	return nil
}

func (r *GPURenderer) blendState(m BlendMode) (BlendState, error) {
	bs, err := TranslateBlendMode(m)
	if err != nil {
		Logger().Error("rdraw: draw rejected", "blendMode", int(m), "error", err)
		return BlendState{}, err
	}
	return bs, nil
}

// Clear fills the bound target with c.
func (r *GPURenderer) Clear(c Color) error {
	if err := r.ready(); err != nil {
		return err
	}
	if err := r.targets.Sync(); err != nil {
		return err
	}
	return r.device.Clear(c)
}

// DrawPoints draws points in the draw color.
func (r *GPURenderer) DrawPoints(points []FPoint) error {
	if err := r.ready(); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	return r.drawSolid(PrimitivePoints, PointVertices(r.targets.Origin(), points), len(points))
}

// DrawLines draws a line strip through points in the draw color.
func (r *GPURenderer) DrawLines(points []FPoint) error {
	if err := r.ready(); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	return r.drawSolid(PrimitiveLineStrip, PointVertices(r.targets.Origin(), points), len(points))
}

// FillRects fills rects in the draw color.
func (r *GPURenderer) FillRects(rects []FRect) error {
	if err := r.ready(); err != nil {
		return err
	}
	if len(rects) == 0 {
		return nil
	}
	return r.drawSolid(PrimitiveQuads, RectVertices(r.targets.Origin(), rects), 4*len(rects))
}

func (r *GPURenderer) drawSolid(p Primitive, verts []float32, count int) error {
	bs, err := r.blendState(r.drawBlend)
	if err != nil {
		return err
	}
	pos, err := r.alloc.allocateVertices(verts)
	if err != nil {
		return err
	}
	return r.submit.Submit(&drawCall{
		primitive: p,
		count:     count,
		shader:    ShaderSolid,
		position:  pos,
		color:     r.drawColor,
		blend:     bs,
	})
}

// Copy draws src of tex into dst.
func (r *GPURenderer) Copy(tex Texture, src image.Rectangle, dst FRect) error {
	if err := r.ready(); err != nil {
		return err
	}
	src, err := sourceRect(tex, src)
	if err != nil {
		return err
	}
	return r.drawTextured(tex, QuadVertices(r.targets.Origin(), dst), src)
}

// CopyRotated draws src of tex into dst, mirrored and rotated.
func (r *GPURenderer) CopyRotated(tex Texture, src image.Rectangle, dst FRect, angle float64, center *FPoint, flip Flip) error {
	if err := r.ready(); err != nil {
		return err
	}
	src, err := sourceRect(tex, src)
	if err != nil {
		return err
	}
	pivot := dst.Center()
	if center != nil {
		pivot = *center
	}
	return r.drawTextured(tex, RotatedQuadVertices(r.targets.Origin(), dst, angle, pivot, flip), src)
}

func sourceRect(tex Texture, src image.Rectangle) (image.Rectangle, error) {
	if tex == nil || tex.Surface() == nil {
		return image.Rectangle{}, fmt.Errorf("%w: nil texture", ErrInvalidArgument)
	}
	if src.Empty() {
		return image.Rect(0, 0, tex.Width(), tex.Height()), nil
	}
	return src, nil
}

// drawTextured allocates the position and texcoord buffers of one quad and
// submits it. Each buffer is locked and unlocked through its own handle.
func (r *GPURenderer) drawTextured(tex Texture, quad [8]float32, src image.Rectangle) error {
	bs, err := r.blendState(tex.BlendMode())
	if err != nil {
		return err
	}
	pos, err := r.alloc.allocateVertices(quad[:])
	if err != nil {
		return err
	}
	tc := QuadTexCoords(src)
	texCoord, err := r.alloc.allocateVertices(tc[:])
	if err != nil {
		return err
	}
	return r.submit.Submit(&drawCall{
		primitive: PrimitiveQuads,
		count:     4,
		shader:    ShaderTextured,
		position:  pos,
		texCoord:  texCoord,
		texture:   tex,
		color:     tex.Modulation(),
		blend:     bs,
	})
}

// SetTarget binds tex, or the window when tex is nil.
func (r *GPURenderer) SetTarget(tex Texture) error {
	if r.closed {
		return ErrRendererClosed
	}
	return r.targets.Bind(tex)
}

// Target returns the bound texture, or nil for the window.
func (r *GPURenderer) Target() Texture {
	if b := r.targets.Binding(); b != nil {
		return b.Texture
	}
	return nil
}

// Present finishes the frame, presents the window and releases the frame's
// transient buffers.
func (r *GPURenderer) Present() error {
	if r.closed {
		return ErrRendererClosed
	}
	if err := r.frame.Flush(r.device); err != nil {
		return err
	}
	if r.window != nil {
		if err := r.window.Present(); err != nil {
			return fmt.Errorf("present window: %w", err)
		}
	}
	return nil
}

// SetDrawColor sets the color of points, lines and rectangles.
func (r *GPURenderer) SetDrawColor(c Color) { r.drawColor = c }

// DrawColor returns the draw color.
func (r *GPURenderer) DrawColor() Color { return r.drawColor }

// SetDrawBlendMode sets the blend mode of points, lines and rectangles.
func (r *GPURenderer) SetDrawBlendMode(m BlendMode) error {
	if _, err := TranslateBlendMode(m); err != nil {
		return err
	}
	r.drawBlend = m
	return nil
}

// DrawBlendMode returns the draw blend mode.
func (r *GPURenderer) DrawBlendMode() BlendMode { return r.drawBlend }

// SetViewport sets the logical viewport. Its origin offsets all geometry.
func (r *GPURenderer) SetViewport(rect image.Rectangle) error {
	if err := r.ready(); err != nil {
		return err
	}
	r.targets.SetViewport(rect)
	return nil
}

// Viewport returns the logical viewport.
func (r *GPURenderer) Viewport() image.Rectangle {
	return r.targets.Viewport()
}

// SetClipRect restricts drawing to rect, relative to the viewport.
func (r *GPURenderer) SetClipRect(rect *image.Rectangle) error {
	if err := r.ready(); err != nil {
		return err
	}
	r.targets.SetClipRect(rect)
	return nil
}

// ClipRect returns the clip rectangle or nil.
func (r *GPURenderer) ClipRect() *image.Rectangle {
	return r.targets.ClipRect()
}

// OutputSize returns the size of the bound target.
func (r *GPURenderer) OutputSize() (int, int, error) {
	if err := r.ready(); err != nil {
		return 0, 0, err
	}
	b := r.targets.Binding()
	return b.Width, b.Height, nil
}

// Info describes the renderer.
func (r *GPURenderer) Info() Info {
	formats := make([]pixfmt.Format, len(textureFormats))
	copy(formats, textureFormats)
	return Info{
		Name:           r.device.Name(),
		Flags:          FlagAccelerated | FlagTargetTexture,
		TextureFormats: formats,
	}
}

// FrameStats returns release-list counters.
func (r *GPURenderer) FrameStats() FrameStats {
	return r.frame.Stats()
}

// Draws returns the number of submitted draws.
func (r *GPURenderer) Draws() uint64 {
	return r.submit.Draws()
}

// Close drains the frame and disables the renderer. The device is owned by
// the caller and is not released.
func (r *GPURenderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.frame.Pending() == 0 {
		return nil
	}
	if err := r.frame.Flush(r.device); err != nil {
		return fmt.Errorf("close renderer: %w", err)
	}
	return nil
}
