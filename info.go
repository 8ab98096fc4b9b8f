package rdraw

import "github.com/gogpu/rdraw/pixfmt"

// InfoFlags describes renderer capabilities.
type InfoFlags uint32

const (
	// FlagAccelerated marks a renderer that draws on a GPU device.
	FlagAccelerated InfoFlags = 1 << iota
	// FlagTargetTexture marks a renderer that can draw into textures.
	FlagTargetTexture
)

// Info describes a renderer.
type Info struct {
	Name           string
	Flags          InfoFlags
	TextureFormats []pixfmt.Format
	// MaxTextureWidth and MaxTextureHeight are zero when unbounded.
	MaxTextureWidth  int
	MaxTextureHeight int
}

// textureFormats are the texture formats accepted by the renderer.
var textureFormats = []pixfmt.Format{
	pixfmt.RGBA8888,
	pixfmt.RGBA4444,
	pixfmt.ABGR1555,
	pixfmt.RGBA5551,
	pixfmt.RGB565,
}
