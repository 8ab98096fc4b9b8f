package main

import (
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/draw"
)

// upperHalf draws the top pixel of a cell in the foreground color and the
// bottom pixel in the background color.
const upperHalf = '▀'

// fitCells scales img so that it fits a cols x rows terminal, two pixel
// rows per cell, keeping the aspect ratio.
func fitCells(img image.Image, cols, rows int) *image.NRGBA {
	b := img.Bounds()
	if cols <= 0 || rows <= 0 || b.Empty() {
		return image.NewNRGBA(image.Rectangle{})
	}
	sx := float64(cols) / float64(b.Dx())
	sy := float64(rows*2) / float64(b.Dy())
	s := min(sx, sy, 1)
	w := max(int(float64(b.Dx())*s), 1)
	h := max(int(float64(b.Dy())*s), 1)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func cellColor(c color.Color) tcell.Color {
	r, g, b, _ := color.NRGBAModel.Convert(c).RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

// DrawPreview paints img onto screen with half-block cells.
func DrawPreview(screen tcell.Screen, img image.Image) {
	cols, rows := screen.Size()
	fit := fitCells(img, cols, rows)
	b := fit.Bounds()
	screen.Clear()
	for y := 0; y < b.Dy(); y += 2 {
		for x := 0; x < b.Dx(); x++ {
			style := tcell.StyleDefault.Foreground(cellColor(fit.At(x, y)))
			if y+1 < b.Dy() {
				style = style.Background(cellColor(fit.At(x, y+1)))
			}
			screen.SetContent(x, y/2, upperHalf, nil, style)
		}
	}
	screen.Show()
}

// Preview shows img in the terminal until a key is pressed.
func Preview(img image.Image) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	return previewLoop(screen, img)
}

func previewLoop(screen tcell.Screen, img image.Image) error {
	DrawPreview(screen, img)
	for {
		switch screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
			DrawPreview(screen, img)
		case *tcell.EventKey, nil:
			return nil
		}
	}
}
