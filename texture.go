package rdraw

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Texture is a sampled image owned by the host's texture subsystem.
// The renderer only reads from it.
type Texture interface {
	Surface() *Surface
	Sampler() Sampler
	Width() int
	Height() int
	// Modulation is multiplied with every sampled texel. It carries both
	// the color mod and the alpha mod of the texture.
	Modulation() Color
	BlendMode() BlendMode
}

// Window is the presentation surface owned by the host's window system.
type Window interface {
	Surface() (*Surface, error)
	Present() error
}

// ImageTexture is a Texture backed by a device surface.
//
// Surface rows are stored bottom-up: Upload writes the last image row
// first, which is what the quad texcoords expect, so a copied image appears
// upright.
type ImageTexture struct {
	alloc   SurfaceAllocator
	surface *Surface
	sampler Sampler
	mod     Color
	blend   BlendMode
}

// NewTexture allocates a width x height texture on alloc. It starts with
// white modulation and the Blend blend mode.
func NewTexture(alloc SurfaceAllocator, width, height int) (*ImageTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: texture %dx%d", ErrInvalidArgument, width, height)
	}
	s, err := alloc.NewSurface(width, height)
	if err != nil {
		return nil, fmt.Errorf("create texture surface: %w", err)
	}
	return &ImageTexture{
		alloc:   alloc,
		surface: s,
		sampler: DefaultSampler(),
		mod:     White,
		blend:   BlendModeBlend,
	}, nil
}

// NewTextureFromImage creates a texture with img's size and contents.
func NewTextureFromImage(alloc SurfaceAllocator, img image.Image) (*ImageTexture, error) {
	b := img.Bounds()
	t, err := NewTexture(alloc, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	if err := t.Upload(img); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

// Upload replaces the texture contents with img, which must have the
// texture's size.
func (t *ImageTexture) Upload(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != t.surface.Width || b.Dy() != t.surface.Height {
		return fmt.Errorf("%w: image %dx%d for %dx%d texture",
			ErrInvalidArgument, b.Dx(), b.Dy(), t.surface.Width, t.surface.Height)
	}
	rgba, ok := img.(*image.NRGBA)
	if !ok || rgba.Stride != b.Dx()*4 {
		rgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	stride := b.Dx() * 4
	pix := make([]byte, len(rgba.Pix))
	for y := 0; y < b.Dy(); y++ {
		src := rgba.Pix[(b.Dy()-1-y)*rgba.Stride:]
		copy(pix[y*stride:(y+1)*stride], src[:stride])
	}
	return t.alloc.WriteSurface(t.surface, pix)
}

// SetModulation sets the color and alpha modulation.
func (t *ImageTexture) SetModulation(c Color) { t.mod = c }

// SetBlendMode sets the mode used when the texture is copied.
func (t *ImageTexture) SetBlendMode(m BlendMode) { t.blend = m }

// SetSampler replaces the sampler.
func (t *ImageTexture) SetSampler(s Sampler) { t.sampler = s }

func (t *ImageTexture) Surface() *Surface    { return t.surface }
func (t *ImageTexture) Sampler() Sampler     { return t.sampler }
func (t *ImageTexture) Width() int           { return t.surface.Width }
func (t *ImageTexture) Height() int          { return t.surface.Height }
func (t *ImageTexture) Modulation() Color    { return t.mod }
func (t *ImageTexture) BlendMode() BlendMode { return t.blend }

// Destroy frees the surface. The texture must not be used afterwards.
func (t *ImageTexture) Destroy() {
	if t.surface != nil {
		t.alloc.DestroySurface(t.surface)
		t.surface = nil
	}
}

// OffscreenWindow is a Window backed by a device surface, for headless
// rendering and tests.
type OffscreenWindow struct {
	alloc    SurfaceAllocator
	surface  *Surface
	presents int
}

// NewOffscreenWindow allocates a width x height presentation surface.
func NewOffscreenWindow(alloc SurfaceAllocator, width, height int) (*OffscreenWindow, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: window %dx%d", ErrInvalidArgument, width, height)
	}
	s, err := alloc.NewSurface(width, height)
	if err != nil {
		return nil, fmt.Errorf("create window surface: %w", err)
	}
	return &OffscreenWindow{alloc: alloc, surface: s}, nil
}

// Surface returns the presentation surface.
func (w *OffscreenWindow) Surface() (*Surface, error) {
	if w.surface == nil {
		return nil, ErrNoWindow
	}
	return w.surface, nil
}

// Present counts presented frames.
func (w *OffscreenWindow) Present() error {
	w.presents++
	return nil
}

// Presents returns the number of presented frames.
func (w *OffscreenWindow) Presents() int { return w.presents }

// Destroy frees the surface.
func (w *OffscreenWindow) Destroy() {
	if w.surface != nil {
		w.alloc.DestroySurface(w.surface)
		w.surface = nil
	}
}
