package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	// Decoders for texture files.
	_ "image/jpeg"
	_ "image/png"

	"github.com/gogpu/gputypes"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/gogpu/rdraw"
)

// device is what the demo needs from a backend: drawing plus surfaces for
// the window and textures.
type device interface {
	rdraw.Device
	rdraw.SurfaceAllocator
}

// Render draws s on dev and returns the window contents.
func Render(dev device, s *Scene) (*image.NRGBA, error) {
	win, err := rdraw.NewOffscreenWindow(dev, s.Width, s.Height)
	if err != nil {
		return nil, err
	}
	defer win.Destroy()

	bg, err := colorOr(s.Background, rdraw.Black)
	if err != nil {
		return nil, err
	}
	r, err := rdraw.New(dev, rdraw.WithWindow(win))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	textures, err := s.loadTextures(dev)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, t := range textures {
			t.Destroy()
		}
	}()

	if err := r.Clear(bg); err != nil {
		return nil, err
	}
	for i, d := range s.Draw {
		if err := s.apply(r, textures, d); err != nil {
			return nil, fmt.Errorf("draw %d (%s): %w", i, d.Op, err)
		}
	}
	if err := r.SetTarget(nil); err != nil {
		return nil, err
	}
	img, err := r.ReadImage(image.Rectangle{})
	if err != nil {
		return nil, err
	}
	if err := r.Present(); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *Scene) loadTextures(dev rdraw.SurfaceAllocator) (map[string]*rdraw.ImageTexture, error) {
	textures := make(map[string]*rdraw.ImageTexture, len(s.Textures))
	fail := func(err error) (map[string]*rdraw.ImageTexture, error) {
		for _, t := range textures {
			t.Destroy()
		}
		return nil, err
	}
	for _, def := range s.Textures {
		tex, err := s.loadTexture(dev, def)
		if err != nil {
			return fail(fmt.Errorf("texture %q: %w", def.Name, err))
		}
		textures[def.Name] = tex
	}
	return textures, nil
}

func (s *Scene) loadTexture(dev rdraw.SurfaceAllocator, def TextureDef) (*rdraw.ImageTexture, error) {
	var (
		tex *rdraw.ImageTexture
		err error
	)
	switch {
	case def.File != "":
		img, derr := decodeFile(filepath.Join(s.dir, def.File))
		if derr != nil {
			return nil, derr
		}
		tex, err = rdraw.NewTextureFromImage(dev, img)
	case def.Checker > 0:
		a, cerr := colorOr(def.Colors[0], rdraw.White)
		if cerr != nil {
			return nil, cerr
		}
		b, cerr := colorOr(def.Colors[1], rdraw.Black)
		if cerr != nil {
			return nil, cerr
		}
		tex, err = rdraw.NewTextureFromImage(dev, checkerImage(def.Size[0], def.Size[1], def.Checker, a, b))
	default:
		tex, err = rdraw.NewTexture(dev, def.Size[0], def.Size[1])
	}
	if err != nil {
		return nil, err
	}

	if def.Blend != "" {
		m, err := rdraw.ParseBlendMode(def.Blend)
		if err != nil {
			tex.Destroy()
			return nil, err
		}
		tex.SetBlendMode(m)
	}
	mod, err := colorOr(def.Modulate, rdraw.White)
	if err != nil {
		tex.Destroy()
		return nil, err
	}
	tex.SetModulation(mod)
	if def.Nearest {
		tex.SetSampler(rdraw.Sampler{
			AddressMode: gputypes.AddressModeClampToEdge,
			Filter:      gputypes.FilterModeNearest,
		})
	}
	return tex, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// apply runs one draw list entry.
func (s *Scene) apply(r *rdraw.GPURenderer, textures map[string]*rdraw.ImageTexture, d DrawOp) error {
	switch d.Op {
	case "target":
		if d.Texture == "" {
			return r.SetTarget(nil)
		}
		return r.SetTarget(textures[d.Texture])
	case "viewport":
		return r.SetViewport(rectOf(d.Rect))
	case "clip":
		if d.Rect == nil {
			return r.SetClipRect(nil)
		}
		clip := rectOf(d.Rect)
		return r.SetClipRect(&clip)
	}

	cmd, err := s.command(textures, d)
	if err != nil {
		return err
	}
	if cmd.Kind != rdraw.CmdClear && cmd.Kind != rdraw.CmdCopy && cmd.Kind != rdraw.CmdCopyRotated {
		c, err := colorOr(d.Color, r.DrawColor())
		if err != nil {
			return err
		}
		r.SetDrawColor(c)
		if d.Blend != "" {
			m, err := rdraw.ParseBlendMode(d.Blend)
			if err != nil {
				return err
			}
			if err := r.SetDrawBlendMode(m); err != nil {
				return err
			}
		}
	}
	return r.Do(cmd)
}

// command converts a drawing entry into a renderer command.
func (s *Scene) command(textures map[string]*rdraw.ImageTexture, d DrawOp) (rdraw.DrawCommand, error) {
	var cmd rdraw.DrawCommand
	switch d.Op {
	case "clear":
		c, err := colorOr(d.Color, rdraw.Black)
		if err != nil {
			return cmd, err
		}
		cmd.Kind, cmd.Color = rdraw.CmdClear, c
	case "points", "lines":
		cmd.Kind = rdraw.CmdPoints
		if d.Op == "lines" {
			cmd.Kind = rdraw.CmdLines
		}
		for _, p := range d.Points {
			cmd.Points = append(cmd.Points, rdraw.FPoint{X: p[0], Y: p[1]})
		}
	case "fill-rects":
		cmd.Kind = rdraw.CmdFillRects
		for _, r := range d.Rects {
			cmd.Rects = append(cmd.Rects, rdraw.FRect{X: r[0], Y: r[1], W: r[2], H: r[3]})
		}
	case "copy", "copy-rotated":
		cmd.Kind = rdraw.CmdCopy
		cmd.Texture = textures[d.Texture]
		cmd.Src = rectOf(d.Src)
		cmd.Dst = rdraw.FRect{X: d.Dst[0], Y: d.Dst[1], W: d.Dst[2], H: d.Dst[3]}
		if d.Op == "copy-rotated" {
			flip, err := ParseFlip(d.Flip)
			if err != nil {
				return cmd, err
			}
			cmd.Kind, cmd.Angle, cmd.Flip = rdraw.CmdCopyRotated, d.Angle, flip
			if d.Center != nil {
				cmd.Center = &rdraw.FPoint{X: d.Center[0], Y: d.Center[1]}
			}
		}
	default:
		return cmd, fmt.Errorf("%w: op %q", errScene, d.Op)
	}
	return cmd, nil
}
