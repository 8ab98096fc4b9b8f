package rdraw

import (
	"errors"
	"image"
	"testing"
)

func TestTargetManager_BindWithoutWindow(t *testing.T) {
	m := NewTargetManager(newFakeDevice(), nil)
	err := m.Bind(nil)
	if !errors.Is(err, ErrNoWindow) || !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Bind(nil) error = %v, want ErrNoWindow wrapping ErrInvalidTarget", err)
	}
	if m.Binding() != nil {
		t.Error("failed bind left a binding")
	}
}

func TestTargetManager_BindTexture(t *testing.T) {
	dev := newFakeDevice()
	m := NewTargetManager(dev, nil)
	tex, err := NewTexture(dev, 32, 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Bind(tex); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	b := m.Binding()
	if b.Texture != Texture(tex) || b.Width != 32 || b.Height != 16 {
		t.Errorf("binding = %+v", b)
	}
	if b.TargetSize != [4]float32{32, 16, 0, 0} {
		t.Errorf("TargetSize = %v", b.TargetSize)
	}
	if dev.viewport != [4]float32{0, 0, 32, 16} {
		t.Errorf("device viewport = %v, want full target", dev.viewport)
	}
	if dev.scissor != image.Rect(0, 0, 32, 16) {
		t.Errorf("device scissor = %v, want full target", dev.scissor)
	}
	if dev.target.ViewSlices != 1 {
		t.Errorf("ViewSlices = %d, want 1", dev.target.ViewSlices)
	}
}

func TestTargetManager_FailedBindKeepsPrevious(t *testing.T) {
	dev := newFakeDevice()
	m := NewTargetManager(dev, nil)
	tex, err := NewTexture(dev, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Bind(tex); err != nil {
		t.Fatal(err)
	}
	foreign := &ImageTexture{surface: &Surface{Width: 4, Height: 4, Handle: "foreign"}}
	if err := m.Bind(foreign); err == nil {
		t.Fatal("Bind() of a foreign surface succeeded")
	}
	if m.Binding().Texture != Texture(tex) {
		t.Error("failed bind replaced the previous binding")
	}
}

func TestTargetManager_ClipAndViewport(t *testing.T) {
	dev := newFakeDevice()
	m := NewTargetManager(dev, nil)
	tex, err := NewTexture(dev, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Bind(tex); err != nil {
		t.Fatal(err)
	}

	m.SetViewport(image.Rect(10, 20, 60, 70))
	if o := m.Origin(); o != (FPoint{X: 10, Y: 20}) {
		t.Errorf("Origin() = %v, want {10 20}", o)
	}
	if v := m.Viewport(); v != image.Rect(10, 20, 60, 70) {
		t.Errorf("Viewport() = %v", v)
	}

	clip := image.Rect(0, 0, 200, 5)
	m.SetClipRect(&clip)
	// Clip is relative to the viewport origin and cut to the target.
	if want := image.Rect(10, 20, 100, 25); dev.scissor != want {
		t.Errorf("scissor = %v, want %v", dev.scissor, want)
	}
	clip.Max.Y = 99
	if got := m.ClipRect(); got.Max.Y != 5 {
		t.Error("ClipRect() aliases the caller's rectangle")
	}

	m.SetClipRect(nil)
	if dev.scissor != image.Rect(0, 0, 100, 100) {
		t.Errorf("scissor after clearing clip = %v", dev.scissor)
	}

	// Rebinding resets the viewport and clip.
	m.SetClipRect(&clip)
	if err := m.Bind(tex); err != nil {
		t.Fatal(err)
	}
	if m.ClipRect() != nil || m.Origin() != (FPoint{}) {
		t.Errorf("Bind() kept clip %v and origin %v", m.ClipRect(), m.Origin())
	}
	if v := m.Viewport(); v != image.Rect(0, 0, 100, 100) {
		t.Errorf("Viewport() after Bind = %v, want full target", v)
	}
}

func TestTargetManager_Contains(t *testing.T) {
	dev := newFakeDevice()
	m := NewTargetManager(dev, nil)
	if m.Contains(image.Rect(0, 0, 1, 1)) {
		t.Error("Contains() true with nothing bound")
	}
	tex, err := NewTexture(dev, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Bind(tex); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		r    image.Rectangle
		want bool
	}{
		{image.Rect(0, 0, 10, 10), true},
		{image.Rect(2, 2, 5, 5), true},
		{image.Rect(5, 5, 11, 6), false},
		{image.Rect(-1, 0, 3, 3), false},
		{image.Rect(3, 3, 3, 3), false},
	}
	for _, tt := range tests {
		if got := m.Contains(tt.r); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.r, got, tt.want)
		}
	}
}
