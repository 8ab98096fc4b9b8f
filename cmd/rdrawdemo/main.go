// Command rdrawdemo renders a TOML draw list with the rdraw renderer and
// writes the result as an image.
//
//	rdrawdemo -scene scene.toml -output out.png -scale 2 -preview
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/rdraw"
	"github.com/gogpu/rdraw/backend"
	"github.com/gogpu/rdraw/backend/software"
	_ "github.com/gogpu/rdraw/backend/wgpu"
)

func main() {
	var (
		scenePath = flag.String("scene", "", "scene file (TOML); empty renders the built-in scene")
		output    = flag.String("output", "rdrawdemo.png", "output file (.png, .bmp, .tif)")
		name      = flag.String("backend", "", "backend name; empty selects the best available")
		scale     = flag.Float64("scale", 1, "output scale factor")
		memLimit  = flag.Int("mem-limit", 0, "software backend vertex memory limit in bytes")
		preview   = flag.Bool("preview", false, "show the result in the terminal")
		verbose   = flag.Bool("v", false, "log renderer activity to stderr")
	)
	flag.Parse()

	if *verbose {
		rdraw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	scene, err := loadScene(*scenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}

	dev, err := openDevice(*name, *memLimit)
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer dev.Release()

	img, err := Render(dev, scene)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	out := Scale(img, *scale)
	if err := WriteImage(*output, out); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Scene saved to %s (%dx%d) on %s\n", *output, out.Bounds().Dx(), out.Bounds().Dy(), dev.Name())

	if *preview {
		if err := Preview(img); err != nil {
			log.Fatalf("Preview failed: %v", err)
		}
	}
}

func loadScene(path string) (*Scene, error) {
	if path == "" {
		return ParseScene(builtinScene)
	}
	return LoadScene(path)
}

// openDevice opens the named backend, or the best available one. The
// software backend is opened directly when a memory limit is requested.
func openDevice(name string, memLimit int) (device, error) {
	var (
		dev rdraw.Device
		err error
	)
	switch {
	case name == software.Name && memLimit > 0:
		dev = software.New(software.WithMemoryLimit(memLimit))
	case name != "":
		dev, err = backend.Open(name)
	default:
		dev, err = backend.Default()
	}
	if err != nil {
		return nil, err
	}
	d, ok := dev.(device)
	if !ok {
		dev.Release()
		return nil, fmt.Errorf("backend %s cannot allocate surfaces", dev.Name())
	}
	return d, nil
}

const builtinScene = `
width = 320
height = 240
background = "#1a1d2e"

[[textures]]
name = "checker"
checker = 8
size = [64, 64]
colors = ["#f4f4f4", "#d04040"]
nearest = true

[[textures]]
name = "canvas"
size = [96, 96]

[[draw]]
op = "target"
texture = "canvas"

[[draw]]
op = "clear"
color = "#00000000"

[[draw]]
op = "fill-rects"
color = "#3fa7ff"
rects = [[8, 8, 80, 80]]

[[draw]]
op = "fill-rects"
color = "#ffcc0080"
blend = "blend"
rects = [[32, 32, 56, 56]]

[[draw]]
op = "target"

[[draw]]
op = "fill-rects"
color = "#2c3150"
blend = "none"
rects = [[0, 200, 320, 40]]

[[draw]]
op = "copy"
texture = "checker"
dst = [16, 16, 96, 96]

[[draw]]
op = "copy-rotated"
texture = "checker"
src = [0, 0, 32, 32]
dst = [150, 24, 72, 72]
angle = 30
flip = "horizontal"

[[draw]]
op = "copy"
texture = "canvas"
dst = [216, 120, 96, 96]

[[draw]]
op = "lines"
color = "#ffffff"
points = [[16, 140], [80, 180], [140, 140], [200, 180]]

[[draw]]
op = "points"
color = "#ff6060"
points = [[20, 220], [40, 220], [60, 220], [80, 220]]

[[draw]]
op = "viewport"
rect = [120, 120, 200, 120]

[[draw]]
op = "clip"
rect = [0, 0, 60, 60]

[[draw]]
op = "fill-rects"
color = "#40ff80"
blend = "add"
rects = [[0, 0, 80, 80]]
`
