package rdraw

import (
	"fmt"
	"image"

	"github.com/gogpu/rdraw/pixfmt"
)

// ReadPixels waits for the device to retire all recorded work and copies
// rect out of the bound target. rect is in viewport coordinates, like every
// draw, and an empty rect reads the whole viewport. The translated
// rectangle must lie inside the target.
func (r *GPURenderer) ReadPixels(rect image.Rectangle, format pixfmt.Format) ([]byte, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if !format.Valid() {
		return nil, fmt.Errorf("read pixels: %w", pixfmt.ErrUnsupportedFormat)
	}
	b := r.targets.Binding()
	logical := rect
	rect = r.targets.toTarget(rect)
	if !r.targets.Contains(rect) {
		return nil, fmt.Errorf("%w: read %v (target %v) outside target %v",
			ErrInvalidTarget, logical, rect, b.Bounds())
	}

	if err := r.device.Finish(); err != nil {
		return nil, fmt.Errorf("read pixels: %w", err)
	}
	rgba := make([]byte, rect.Dx()*rect.Dy()*4)
	if err := r.device.ReadPixels(&b.ColorBuffer.Surface, rect, rgba); err != nil {
		return nil, fmt.Errorf("read pixels: %w", err)
	}
	if format == pixfmt.ABGR8888 {
		return rgba, nil
	}
	return pixfmt.FromRGBA(format, rgba)
}

// ReadImage returns the pixels of rect as an image.
func (r *GPURenderer) ReadImage(rect image.Rectangle) (*image.NRGBA, error) {
	pix, err := r.ReadPixels(rect, pixfmt.ABGR8888)
	if err != nil {
		return nil, err
	}
	rect = r.targets.toTarget(rect)
	return &image.NRGBA{
		Pix:    pix,
		Stride: rect.Dx() * 4,
		Rect:   image.Rect(0, 0, rect.Dx(), rect.Dy()),
	}, nil
}
