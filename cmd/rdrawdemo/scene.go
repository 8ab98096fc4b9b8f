package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/rdraw"
)

// Scene is a draw list decoded from TOML.
type Scene struct {
	Width      int          `toml:"width"`
	Height     int          `toml:"height"`
	Background string       `toml:"background"`
	Textures   []TextureDef `toml:"textures"`
	Draw       []DrawOp     `toml:"draw"`

	// dir resolves texture file paths.
	dir string
}

// TextureDef declares a texture. Exactly one of File and Checker may be
// set; with neither the texture starts transparent and is usable as a
// render target.
type TextureDef struct {
	Name     string    `toml:"name"`
	File     string    `toml:"file"`
	Checker  int       `toml:"checker"`
	Size     [2]int    `toml:"size"`
	Colors   [2]string `toml:"colors"`
	Blend    string    `toml:"blend"`
	Modulate string    `toml:"modulate"`
	Nearest  bool      `toml:"nearest"`
}

// DrawOp is one entry of the draw list.
type DrawOp struct {
	Op      string       `toml:"op"`
	Color   string       `toml:"color"`
	Blend   string       `toml:"blend"`
	Points  [][2]float32 `toml:"points"`
	Rects   [][4]float32 `toml:"rects"`
	Texture string       `toml:"texture"`
	Src     []int        `toml:"src"`
	Dst     [4]float32   `toml:"dst"`
	Angle   float64      `toml:"angle"`
	Center  []float32    `toml:"center"`
	Flip    string       `toml:"flip"`
	Rect    []int        `toml:"rect"`
}

var errScene = errors.New("invalid scene")

const (
	defaultWidth  = 320
	defaultHeight = 240
)

// LoadScene reads and validates a scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseScene(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// ParseScene decodes and validates scene TOML.
func ParseScene(data string) (*Scene, error) {
	s := &Scene{}
	md, err := toml.Decode(data, s)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q", errScene, undecoded[0].String())
	}
	if !md.IsDefined("width") {
		s.Width = defaultWidth
	}
	if !md.IsDefined("height") {
		s.Height = defaultHeight
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scene) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", errScene, s.Width, s.Height)
	}
	names := make(map[string]bool, len(s.Textures))
	for i, t := range s.Textures {
		if t.Name == "" {
			return fmt.Errorf("%w: texture %d has no name", errScene, i)
		}
		if names[t.Name] {
			return fmt.Errorf("%w: duplicate texture %q", errScene, t.Name)
		}
		names[t.Name] = true
		if t.File != "" && t.Checker > 0 {
			return fmt.Errorf("%w: texture %q sets both file and checker", errScene, t.Name)
		}
		if t.File == "" && (t.Size[0] <= 0 || t.Size[1] <= 0) {
			return fmt.Errorf("%w: texture %q needs a size", errScene, t.Name)
		}
	}
	for i, d := range s.Draw {
		switch d.Op {
		case "clear", "points", "lines", "fill-rects", "viewport", "clip":
		case "copy", "copy-rotated":
			if !names[d.Texture] {
				return fmt.Errorf("%w: draw %d: unknown texture %q", errScene, i, d.Texture)
			}
		case "target":
			if d.Texture != "" && !names[d.Texture] {
				return fmt.Errorf("%w: draw %d: unknown texture %q", errScene, i, d.Texture)
			}
		default:
			return fmt.Errorf("%w: draw %d: unknown op %q", errScene, i, d.Op)
		}
		if d.Src != nil && len(d.Src) != 4 {
			return fmt.Errorf("%w: draw %d: src needs 4 values", errScene, i)
		}
		if d.Rect != nil && len(d.Rect) != 4 {
			return fmt.Errorf("%w: draw %d: rect needs 4 values", errScene, i)
		}
		if d.Center != nil && len(d.Center) != 2 {
			return fmt.Errorf("%w: draw %d: center needs 2 values", errScene, i)
		}
	}
	return nil
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (rdraw.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return rdraw.Color{}, fmt.Errorf("%w: color %q", errScene, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rdraw.Color{}, fmt.Errorf("%w: color %q", errScene, s)
	}
	return rdraw.RGBA8(uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

func colorOr(s string, def rdraw.Color) (rdraw.Color, error) {
	if s == "" {
		return def, nil
	}
	return ParseColor(s)
}

// ParseFlip parses "", "none", "horizontal", "vertical" or "both".
func ParseFlip(s string) (rdraw.Flip, error) {
	switch s {
	case "", "none":
		return rdraw.FlipNone, nil
	case "horizontal":
		return rdraw.FlipHorizontal, nil
	case "vertical":
		return rdraw.FlipVertical, nil
	case "both":
		return rdraw.FlipHorizontal | rdraw.FlipVertical, nil
	}
	return 0, fmt.Errorf("%w: flip %q", errScene, s)
}

func rectOf(v []int) image.Rectangle {
	if len(v) != 4 {
		return image.Rectangle{}
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3])
}

// checkerImage builds a w x h checkerboard with cell-sized squares.
func checkerImage(w, h, cell int, a, b rdraw.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	ca, cb := toNRGBA(a), toNRGBA(b)
	for y := range h {
		for x := range w {
			c := ca
			if (x/cell+y/cell)%2 == 1 {
				c = cb
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func toNRGBA(c rdraw.Color) color.NRGBA {
	q := func(v float32) uint8 { return uint8(min(max(v, 0), 1)*255 + 0.5) }
	return color.NRGBA{q(c.R), q(c.G), q(c.B), q(c.A)}
}
