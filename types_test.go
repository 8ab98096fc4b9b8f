package rdraw

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestColor(t *testing.T) {
	if c := RGBA8(255, 0, 51, 255); c != (Color{R: 1, G: 0, B: 0.2, A: 1}) {
		t.Errorf("RGBA8() = %v", c)
	}
	if v := White.Vec4(); v != [4]float32{1, 1, 1, 1} {
		t.Errorf("White.Vec4() = %v", v)
	}
	got := Color{R: 0.5, G: 1, B: 0, A: 0.5}.Mul(Color{R: 0.5, G: 0.5, B: 1, A: 1})
	if got != (Color{R: 0.25, G: 0.5, B: 0, A: 0.5}) {
		t.Errorf("Mul() = %v", got)
	}
}

func TestNewColorBuffer(t *testing.T) {
	s := &Surface{Width: 3, Height: 2, Usage: gputypes.TextureUsageCopySrc, Handle: "h"}
	cb := NewColorBuffer(s)
	want := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment
	if cb.Surface.Usage != want {
		t.Errorf("Usage = %v, want %v", cb.Surface.Usage, want)
	}
	if cb.ViewSlices != 1 {
		t.Errorf("ViewSlices = %d, want 1", cb.ViewSlices)
	}
	if s.Usage != gputypes.TextureUsageCopySrc {
		t.Error("NewColorBuffer() modified the source surface")
	}
	if cb.Surface.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("Bounds() = %v", cb.Surface.Bounds())
	}
}

func TestStringers(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{PrimitiveQuads.String(), "quads"},
		{PrimitiveLineStrip.String(), "line-strip"},
		{Primitive(9).String(), "unknown"},
		{ShaderTextured.String(), "textured"},
		{ShaderSolid.String(), "solid"},
		{CmdCopyRotated.String(), "copy-rotated"},
		{CommandKind(-1).String(), "CommandKind(-1)"},
		{BlendMode(9).String(), "BlendMode(9)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTexture_Upload(t *testing.T) {
	dev := newFakeDevice()
	if _, err := NewTexture(dev, 0, 4); err == nil {
		t.Error("NewTexture(0, 4) succeeded")
	}

	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.Pix = []byte{1, 2, 3, 4, 5, 6, 7, 8}
	tex, err := NewTextureFromImage(dev, img)
	if err != nil {
		t.Fatal(err)
	}
	// Rows are stored bottom-up.
	pix := tex.Surface().Handle.(*fakeSurface).pix
	if want := []byte{5, 6, 7, 8, 1, 2, 3, 4}; string(pix) != string(want) {
		t.Errorf("surface = %v, want %v", pix, want)
	}
	if tex.Modulation() != White || tex.BlendMode() != BlendModeBlend {
		t.Errorf("defaults = %v/%v, want white/blend", tex.Modulation(), tex.BlendMode())
	}
	if err := tex.Upload(image.NewNRGBA(image.Rect(0, 0, 2, 2))); err == nil {
		t.Error("Upload() of a mismatched image succeeded")
	}
	tex.Destroy()
	if tex.Surface() != nil {
		t.Error("Surface() after Destroy is not nil")
	}
}
