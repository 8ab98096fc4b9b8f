// Package blend evaluates fixed-function blend equations on float colors.
package blend

import "github.com/gogpu/gputypes"

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color [4]float32

// Write mask bits, in WebGPU order.
const (
	writeRed   gputypes.ColorWriteMask = 1 << 0
	writeGreen gputypes.ColorWriteMask = 1 << 1
	writeBlue  gputypes.ColorWriteMask = 1 << 2
	writeAlpha gputypes.ColorWriteMask = 1 << 3
)

var writeBits = [4]gputypes.ColorWriteMask{writeRed, writeGreen, writeBlue, writeAlpha}

// Equation is a complete blend configuration.
type Equation struct {
	Enable    bool
	Color     gputypes.BlendComponent
	Alpha     gputypes.BlendComponent
	WriteMask gputypes.ColorWriteMask
}

// Apply blends src over dst and returns the value to store, honouring the
// write mask. With blending disabled the source is written as is.
func (e Equation) Apply(src, dst Color) Color {
	out := src
	if e.Enable {
		for ch := 0; ch < 3; ch++ {
			out[ch] = component(e.Color, src, dst, ch)
		}
		out[3] = component(e.Alpha, src, dst, 3)
	}
	for ch, bit := range writeBits {
		if e.WriteMask&bit == 0 {
			out[ch] = dst[ch]
		}
	}
	return clamp(out)
}

func component(c gputypes.BlendComponent, src, dst Color, ch int) float32 {
	s := src[ch] * Factor(c.SrcFactor, src, dst, ch)
	d := dst[ch] * Factor(c.DstFactor, src, dst, ch)
	switch c.Operation {
	case gputypes.BlendOperationSubtract:
		return s - d
	case gputypes.BlendOperationReverseSubtract:
		return d - s
	case gputypes.BlendOperationMin:
		return min(src[ch], dst[ch])
	case gputypes.BlendOperationMax:
		return max(src[ch], dst[ch])
	default:
		return s + d
	}
}

// Factor returns the multiplier f for channel ch.
func Factor(f gputypes.BlendFactor, src, dst Color, ch int) float32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorOne:
		return 1
	case gputypes.BlendFactorSrc:
		return src[ch]
	case gputypes.BlendFactorOneMinusSrc:
		return 1 - src[ch]
	case gputypes.BlendFactorSrcAlpha:
		return src[3]
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 1 - src[3]
	case gputypes.BlendFactorDst:
		return dst[ch]
	case gputypes.BlendFactorOneMinusDst:
		return 1 - dst[ch]
	case gputypes.BlendFactorDstAlpha:
		return dst[3]
	case gputypes.BlendFactorOneMinusDstAlpha:
		return 1 - dst[3]
	}
	return 1
}

func clamp(c Color) Color {
	for i, v := range c {
		c[i] = min(max(v, 0), 1)
	}
	return c
}

// Unpack converts 8-bit RGBA to a Color.
func Unpack(p []byte) Color {
	return Color{
		float32(p[0]) / 255,
		float32(p[1]) / 255,
		float32(p[2]) / 255,
		float32(p[3]) / 255,
	}
}

// Pack stores c as 8-bit RGBA with rounding.
func Pack(dst []byte, c Color) {
	for i, v := range clamp(c) {
		dst[i] = uint8(v*255 + 0.5)
	}
}

// Mul returns the component-wise product.
func Mul(a, b Color) Color {
	return Color{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}
