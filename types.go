package rdraw

import (
	"fmt"
	"image"
)

// FPoint is a point in target pixel space.
type FPoint struct {
	X, Y float32
}

// FRect is a rectangle in target pixel space.
type FRect struct {
	X, Y, W, H float32
}

// Empty reports whether the rectangle covers no area.
func (r FRect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Center returns the rectangle's centre relative to its origin.
func (r FRect) Center() FPoint {
	return FPoint{X: r.W / 2, Y: r.H / 2}
}

// RectFromImage converts an integer rectangle into an FRect.
func RectFromImage(r image.Rectangle) FRect {
	return FRect{
		X: float32(r.Min.X),
		Y: float32(r.Min.Y),
		W: float32(r.Dx()),
		H: float32(r.Dy()),
	}
}

// Color is a straight-alpha color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
	Transparent = Color{}
)

// RGBA8 builds a Color from 8-bit components.
func RGBA8(r, g, b, a uint8) Color {
	return Color{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}
}

// Vec4 returns the color as a uniform vector.
func (c Color) Vec4() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Mul returns the component-wise product of two colors.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Flip selects mirroring applied to a copied quad before rotation.
type Flip uint8

// Flip flags. They can be combined.
const (
	FlipNone       Flip = 0
	FlipHorizontal Flip = 1 << 0
	FlipVertical   Flip = 1 << 1
)

// BlendMode is the symbolic blend mode of a draw.
type BlendMode int

const (
	// BlendModeNone copies the source over the destination.
	BlendModeNone BlendMode = iota
	// BlendModeBlend is straight alpha blending.
	BlendModeBlend
	// BlendModeAdd adds the alpha-weighted source to the destination.
	BlendModeAdd
	// BlendModeMod multiplies the destination by the source color.
	BlendModeMod
)

// String returns the blend mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendModeNone:
		return "none"
	case BlendModeBlend:
		return "blend"
	case BlendModeAdd:
		return "add"
	case BlendModeMod:
		return "mod"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
}

// ParseBlendMode parses the names produced by BlendMode.String.
func ParseBlendMode(s string) (BlendMode, error) {
	switch s {
	case "none", "":
		return BlendModeNone, nil
	case "blend":
		return BlendModeBlend, nil
	case "add":
		return BlendModeAdd, nil
	case "mod":
		return BlendModeMod, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedBlendMode, s)
}
