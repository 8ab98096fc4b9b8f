package rdraw

import (
	"fmt"
	"image"
)

// Viewport is the device viewport in target pixels.
type Viewport struct {
	X, Y, W, H float32
}

// RenderTargetBinding is the currently bound color surface and the state
// derived from its size.
type RenderTargetBinding struct {
	// Texture is nil when the window surface is bound.
	Texture     Texture
	ColorBuffer ColorBuffer
	Width       int
	Height      int
	Viewport    Viewport
	Scissor     image.Rectangle
	// TargetSize is the vertex uniform used for clip-space conversion.
	TargetSize [4]float32
}

// Bounds returns the target rectangle.
func (b *RenderTargetBinding) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// TargetManager owns the single active render target binding together with
// the logical viewport and clip rectangle that are applied on top of it.
type TargetManager struct {
	device  Device
	window  Window
	binding *RenderTargetBinding

	// viewport is the logical viewport; its origin offsets all geometry.
	viewport image.Rectangle
	clip     *image.Rectangle
}

// NewTargetManager creates a manager with nothing bound. window may be nil.
func NewTargetManager(device Device, window Window) *TargetManager {
	return &TargetManager{device: device, window: window}
}

// Bind makes tex the render target, or the window surface when tex is nil.
// The viewport and scissor are reset to the full target. On error the
// previous binding stays active.
func (m *TargetManager) Bind(tex Texture) error {
	var surface *Surface
	if tex == nil {
		if m.window == nil {
			return ErrNoWindow
		}
		s, err := m.window.Surface()
		if err != nil {
			return fmt.Errorf("%w: window surface: %w", ErrInvalidTarget, err)
		}
		surface = s
	} else {
		surface = tex.Surface()
	}
	if surface == nil || surface.Width <= 0 || surface.Height <= 0 {
		return fmt.Errorf("%w: target has no surface", ErrInvalidTarget)
	}

	cb := NewColorBuffer(surface)
	if err := m.device.BindTarget(cb); err != nil {
		return fmt.Errorf("bind target: %w", err)
	}
	w, h := surface.Width, surface.Height
	m.binding = &RenderTargetBinding{
		Texture:     tex,
		ColorBuffer: cb,
		Width:       w,
		Height:      h,
		Viewport:    Viewport{W: float32(w), H: float32(h)},
		Scissor:     image.Rect(0, 0, w, h),
		TargetSize:  [4]float32{float32(w), float32(h), 0, 0},
	}
	m.viewport = image.Rectangle{}
	m.clip = nil
	m.applyState()
	Logger().Debug("rdraw: target bound", "window", tex == nil, "width", w, "height", h)
	return nil
}

// Binding returns the active binding, or nil before the first Bind.
func (m *TargetManager) Binding() *RenderTargetBinding {
	return m.binding
}

// Sync re-applies the active binding to the device. Every draw calls it
// first so that state changed behind the renderer's back is restored.
func (m *TargetManager) Sync() error {
	if m.binding == nil {
		return ErrInvalidTarget
	}
	if err := m.device.BindTarget(m.binding.ColorBuffer); err != nil {
		return fmt.Errorf("bind target: %w", err)
	}
	m.applyState()
	return nil
}

func (m *TargetManager) applyState() {
	b := m.binding
	m.device.SetViewport(b.Viewport.X, b.Viewport.Y, b.Viewport.W, b.Viewport.H)
	m.device.SetScissor(m.scissor())
}

// scissor is the clip rectangle intersected with the target.
func (m *TargetManager) scissor() image.Rectangle {
	s := m.binding.Scissor
	if m.clip != nil {
		s = m.clip.Add(m.origin()).Intersect(s)
	}
	return s
}

// SetViewport sets the logical viewport. An empty rectangle selects the
// whole target.
func (m *TargetManager) SetViewport(r image.Rectangle) {
	m.viewport = r
	if m.binding != nil {
		m.applyState()
	}
}

// Viewport returns the logical viewport.
func (m *TargetManager) Viewport() image.Rectangle {
	if m.viewport.Empty() && m.binding != nil {
		return m.binding.Bounds()
	}
	return m.viewport
}

// SetClipRect restricts drawing to r, in viewport coordinates. nil clears
// the clip.
func (m *TargetManager) SetClipRect(r *image.Rectangle) {
	if r == nil {
		m.clip = nil
	} else {
		c := *r
		m.clip = &c
	}
	if m.binding != nil {
		m.applyState()
	}
}

// ClipRect returns the clip rectangle, or nil when clipping is off.
func (m *TargetManager) ClipRect() *image.Rectangle {
	if m.clip == nil {
		return nil
	}
	c := *m.clip
	return &c
}

// origin is the offset applied to all geometry.
func (m *TargetManager) origin() image.Point {
	return m.viewport.Min
}

// toTarget maps a viewport rectangle to target coordinates. An empty
// rectangle selects the part of the viewport inside the target.
func (m *TargetManager) toTarget(r image.Rectangle) image.Rectangle {
	if r.Empty() {
		if m.binding == nil {
			return image.Rectangle{}
		}
		return m.Viewport().Intersect(m.binding.Bounds())
	}
	return r.Add(m.origin())
}

// Origin returns the geometry offset as a float point.
func (m *TargetManager) Origin() FPoint {
	o := m.origin()
	return FPoint{X: float32(o.X), Y: float32(o.Y)}
}

// Contains reports whether r lies inside the bound target.
func (m *TargetManager) Contains(r image.Rectangle) bool {
	if m.binding == nil || r.Empty() {
		return false
	}
	return r.In(m.binding.Bounds())
}
