package rdraw_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rdraw"
	"github.com/gogpu/rdraw/backend/software"
	"github.com/gogpu/rdraw/pixfmt"
)

// newSoftwareRenderer returns a renderer drawing into a w x h offscreen
// window on the software device.
func newSoftwareRenderer(t *testing.T, w, h int) (*rdraw.GPURenderer, *software.Device, *rdraw.OffscreenWindow) {
	t.Helper()
	dev := software.New()
	win, err := rdraw.NewOffscreenWindow(dev, w, h)
	if err != nil {
		t.Fatalf("NewOffscreenWindow() error = %v", err)
	}
	r, err := rdraw.New(dev, rdraw.WithWindow(win))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = r.Close()
		win.Destroy()
	})
	return r, dev, win
}

func readPixel(t *testing.T, r *rdraw.GPURenderer, x, y int) [4]byte {
	t.Helper()
	pix, err := r.ReadPixels(image.Rect(x, y, x+1, y+1), pixfmt.ABGR8888)
	if err != nil {
		t.Fatalf("ReadPixels() error = %v", err)
	}
	return [4]byte(pix)
}

func near(a, b [4]byte, tol uint8) bool {
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < -int(tol) || d > int(tol) {
			return false
		}
	}
	return true
}

func TestSoftware_FillAndReadEveryFormat(t *testing.T) {
	r, dev, _ := newSoftwareRenderer(t, 8, 8)
	tex, err := rdraw.NewTexture(dev, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Destroy()
	want := [4]byte{200, 100, 50, 255}

	for _, target := range []struct {
		name string
		tex  rdraw.Texture
	}{
		{"texture", tex},
		{"window", nil},
	} {
		if err := r.SetTarget(target.tex); err != nil {
			t.Fatal(err)
		}
		r.SetDrawColor(rdraw.RGBA8(want[0], want[1], want[2], want[3]))
		if err := r.FillRects([]rdraw.FRect{{W: 8, H: 8}}); err != nil {
			t.Fatal(err)
		}

		for _, f := range pixfmt.All {
			t.Run(target.name+"/"+f.String(), func(t *testing.T) {
				data, err := r.ReadPixels(image.Rect(2, 2, 6, 6), f)
				if err != nil {
					t.Fatalf("ReadPixels() error = %v", err)
				}
				if len(data) != 16*f.BytesPerPixel() {
					t.Fatalf("len = %d, want %d", len(data), 16*f.BytesPerPixel())
				}
				rgba, err := pixfmt.ToRGBA(f, data)
				if err != nil {
					t.Fatal(err)
				}
				tol := f.Tolerance()
				for i := 0; i < len(rgba); i += 4 {
					for ch := range 4 {
						d := int(rgba[i+ch]) - int(want[ch])
						if d < -int(tol[ch]) || d > int(tol[ch]) {
							t.Fatalf("pixel %d channel %d = %d, want %d±%d", i/4, ch, rgba[i+ch], want[ch], tol[ch])
						}
					}
				}
			})
		}
	}
}

func TestSoftware_CopyIsUpright(t *testing.T) {
	r, dev, _ := newSoftwareRenderer(t, 4, 4)

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}
	img.SetNRGBA(0, 0, red)
	img.SetNRGBA(1, 0, red)
	img.SetNRGBA(0, 1, blue)
	img.SetNRGBA(1, 1, blue)

	tex, err := rdraw.NewTextureFromImage(dev, img)
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Destroy()
	tex.SetBlendMode(rdraw.BlendModeNone)
	tex.SetSampler(rdraw.Sampler{AddressMode: gputypes.AddressModeClampToEdge, Filter: gputypes.FilterModeNearest})

	if err := r.Copy(tex, image.Rectangle{}, rdraw.FRect{W: 4, H: 4}); err != nil {
		t.Fatal(err)
	}
	if got := readPixel(t, r, 1, 0); got != [4]byte{255, 0, 0, 255} {
		t.Errorf("top row = %v, want red", got)
	}
	if got := readPixel(t, r, 2, 3); got != [4]byte{0, 0, 255, 255} {
		t.Errorf("bottom row = %v, want blue", got)
	}
}

func TestSoftware_CopyRotatedZeroMatchesCopy(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = byte(i * 13)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	dst := rdraw.FRect{X: 2, Y: 3, W: 9, H: 7}

	render := func(angle *float64) []byte {
		r, dev, _ := newSoftwareRenderer(t, 16, 16)
		tex, err := rdraw.NewTextureFromImage(dev, img)
		if err != nil {
			t.Fatal(err)
		}
		if angle == nil {
			err = r.Copy(tex, image.Rectangle{}, dst)
		} else {
			err = r.CopyRotated(tex, image.Rectangle{}, dst, *angle, nil, rdraw.FlipNone)
		}
		if err != nil {
			t.Fatal(err)
		}
		pix, err := r.ReadPixels(image.Rectangle{}, pixfmt.ABGR8888)
		if err != nil {
			t.Fatal(err)
		}
		return pix
	}

	base := render(nil)
	for _, a := range []float64{0, 360} {
		got := render(&a)
		for i := range base {
			if got[i] != base[i] {
				t.Errorf("angle %v: byte %d = %d, want %d", a, i, got[i], base[i])
				break
			}
		}
	}
}

func TestSoftware_BlendModes(t *testing.T) {
	tests := []struct {
		name  string
		clear rdraw.Color
		mode  rdraw.BlendMode
		draw  rdraw.Color
		want  [4]byte
	}{
		{"none", rdraw.Black, rdraw.BlendModeNone, rdraw.Color{R: 1, A: 0.5}, [4]byte{255, 0, 0, 128}},
		{"blend", rdraw.Black, rdraw.BlendModeBlend, rdraw.Color{R: 1, A: 0.5}, [4]byte{128, 0, 0, 255}},
		{"add", rdraw.Color{R: 0.25, A: 1}, rdraw.BlendModeAdd, rdraw.Color{R: 0.5, A: 1}, [4]byte{191, 0, 0, 255}},
		{"mod", rdraw.White, rdraw.BlendModeMod, rdraw.Color{R: 0.5, G: 1, B: 1, A: 1}, [4]byte{128, 255, 255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newSoftwareRenderer(t, 4, 4)
			if err := r.Clear(tt.clear); err != nil {
				t.Fatal(err)
			}
			if err := r.SetDrawBlendMode(tt.mode); err != nil {
				t.Fatal(err)
			}
			r.SetDrawColor(tt.draw)
			if err := r.FillRects([]rdraw.FRect{{W: 4, H: 4}}); err != nil {
				t.Fatal(err)
			}
			if got := readPixel(t, r, 1, 1); !near(got, tt.want, 1) {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSoftware_ClipAndViewport(t *testing.T) {
	r, _, _ := newSoftwareRenderer(t, 8, 8)
	if err := r.Clear(rdraw.Black); err != nil {
		t.Fatal(err)
	}
	if err := r.SetViewport(image.Rect(2, 2, 8, 8)); err != nil {
		t.Fatal(err)
	}
	clip := image.Rect(0, 0, 2, 2)
	if err := r.SetClipRect(&clip); err != nil {
		t.Fatal(err)
	}
	r.SetDrawColor(rdraw.White)
	if err := r.FillRects([]rdraw.FRect{{W: 6, H: 6}}); err != nil {
		t.Fatal(err)
	}

	// Reads use viewport coordinates too.
	white := [4]byte{255, 255, 255, 255}
	black := [4]byte{0, 0, 0, 255}
	for _, tc := range []struct {
		x, y int
		want [4]byte
	}{
		{0, 0, white},
		{1, 1, white},
		{-1, -1, black},
		{2, 2, black},
	} {
		if got := readPixel(t, r, tc.x, tc.y); got != tc.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestSoftware_ReadPixelsFollowsViewport(t *testing.T) {
	r, _, _ := newSoftwareRenderer(t, 16, 16)
	if err := r.Clear(rdraw.Black); err != nil {
		t.Fatal(err)
	}
	if err := r.SetViewport(image.Rect(8, 8, 24, 24)); err != nil {
		t.Fatal(err)
	}
	r.SetDrawColor(rdraw.Color{R: 1, A: 1})
	if err := r.FillRects([]rdraw.FRect{{W: 2, H: 2}}); err != nil {
		t.Fatal(err)
	}

	red := [4]byte{255, 0, 0, 255}
	if got := readPixel(t, r, 0, 0); got != red {
		t.Errorf("viewport pixel (0,0) = %v, want %v", got, red)
	}
	if got := readPixel(t, r, -8, -8); got != [4]byte{0, 0, 0, 255} {
		t.Errorf("target corner = %v, want black", got)
	}
}

func TestSoftware_RenderToTexture(t *testing.T) {
	r, dev, _ := newSoftwareRenderer(t, 8, 8)
	tex, err := rdraw.NewTexture(dev, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Destroy()

	if err := r.SetTarget(tex); err != nil {
		t.Fatal(err)
	}
	if err := r.Clear(rdraw.Color{G: 1, A: 1}); err != nil {
		t.Fatal(err)
	}
	if got := readPixel(t, r, 3, 3); got != [4]byte{0, 255, 0, 255} {
		t.Errorf("texture pixel = %v, want green", got)
	}

	if err := r.SetTarget(nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Clear(rdraw.Black); err != nil {
		t.Fatal(err)
	}
	tex.SetBlendMode(rdraw.BlendModeNone)
	if err := r.Copy(tex, image.Rectangle{}, rdraw.FRect{X: 4, Y: 4, W: 4, H: 4}); err != nil {
		t.Fatal(err)
	}
	if got := readPixel(t, r, 5, 5); got != [4]byte{0, 255, 0, 255} {
		t.Errorf("window pixel = %v, want green", got)
	}
	if got := readPixel(t, r, 1, 1); got != [4]byte{0, 0, 0, 255} {
		t.Errorf("window pixel outside copy = %v, want black", got)
	}
}

func TestSoftware_PresentReleasesBuffers(t *testing.T) {
	r, dev, win := newSoftwareRenderer(t, 16, 16)

	for range 4 {
		if err := r.Clear(rdraw.Black); err != nil {
			t.Fatal(err)
		}
		if err := r.DrawPoints([]rdraw.FPoint{{X: 1, Y: 1}, {X: 2, Y: 2}}); err != nil {
			t.Fatal(err)
		}
		if err := r.DrawLines([]rdraw.FPoint{{X: 0, Y: 8}, {X: 15, Y: 8}}); err != nil {
			t.Fatal(err)
		}
		if err := r.FillRects([]rdraw.FRect{{X: 4, Y: 4, W: 3, H: 3}}); err != nil {
			t.Fatal(err)
		}
		if err := r.Present(); err != nil {
			t.Fatalf("Present() error = %v", err)
		}
	}

	st := dev.Stats()
	if st.LiveBuffers != 0 {
		t.Errorf("LiveBuffers = %d after Present, want 0", st.LiveBuffers)
	}
	if st.BuffersAllocated != 12 || st.BuffersDestroyed != 12 {
		t.Errorf("allocated/destroyed = %d/%d, want 12/12", st.BuffersAllocated, st.BuffersDestroyed)
	}
	if st.Faults != 0 {
		t.Errorf("Faults = %d, want 0", st.Faults)
	}
	if st.DrawsExecuted != 12 {
		t.Errorf("DrawsExecuted = %d, want 12", st.DrawsExecuted)
	}
	if win.Presents() != 4 {
		t.Errorf("Presents() = %d, want 4", win.Presents())
	}
}
