package raster

import (
	"image"
	"math"
	"testing"
)

var bounds = image.Rect(0, 0, 16, 16)

type pixelSet map[image.Point]int

func (s pixelSet) plot(x, y int) { s[image.Pt(x, y)]++ }

func TestTriangle_SharedEdge(t *testing.T) {
	// Two triangles forming the quad (2,2)-(6,5).
	a, b, c, d := Vec2{2, 2}, Vec2{6, 2}, Vec2{6, 5}, Vec2{2, 5}
	hits := pixelSet{}
	frag := func(x, y int, _, _, _ float32) { hits.plot(x, y) }
	Triangle(a, b, c, bounds, frag)
	Triangle(a, c, d, bounds, frag)

	if len(hits) != 12 {
		t.Errorf("covered %d pixels, want 12", len(hits))
	}
	for p, n := range hits {
		if n != 1 {
			t.Errorf("pixel %v covered %d times", p, n)
		}
		if !p.In(image.Rect(2, 2, 6, 5)) {
			t.Errorf("pixel %v outside the quad", p)
		}
	}
}

func TestTriangle_Winding(t *testing.T) {
	cw, ccw := pixelSet{}, pixelSet{}
	Triangle(Vec2{0, 0}, Vec2{8, 0}, Vec2{0, 8}, bounds, func(x, y int, _, _, _ float32) { cw.plot(x, y) })
	Triangle(Vec2{0, 0}, Vec2{0, 8}, Vec2{8, 0}, bounds, func(x, y int, _, _, _ float32) { ccw.plot(x, y) })
	if len(cw) == 0 || len(cw) != len(ccw) {
		t.Fatalf("winding changes coverage: %d vs %d", len(cw), len(ccw))
	}
	for p := range cw {
		if ccw[p] == 0 {
			t.Errorf("pixel %v missing for reversed winding", p)
		}
	}
}

func TestTriangle_Barycentric(t *testing.T) {
	v0, v1, v2 := Vec2{0, 0}, Vec2{16, 0}, Vec2{0, 16}
	Triangle(v0, v1, v2, bounds, func(x, y int, l0, l1, l2 float32) {
		if s := l0 + l1 + l2; s < 0.999 || s > 1.001 {
			t.Fatalf("weights at (%d,%d) sum to %v", x, y, s)
		}
		px := l1 * 16
		if d := px - (float32(x) + 0.5); d < -0.001 || d > 0.001 {
			t.Fatalf("interpolated x at (%d,%d) = %v", x, y, px)
		}
	})
	// Reversed winding must still report the weight of the original v1.
	Triangle(v0, v2, v1, bounds, func(x, y int, _, l1, _ float32) {
		if py := l1 * 16; py != float32(y)+0.5 {
			t.Fatalf("interpolated y at (%d,%d) = %v", x, y, py)
		}
	})
}

func TestTriangle_DegenerateAndClipped(t *testing.T) {
	Triangle(Vec2{0, 0}, Vec2{4, 4}, Vec2{8, 8}, bounds, func(x, y int, _, _, _ float32) {
		t.Fatalf("degenerate triangle covered (%d,%d)", x, y)
	})
	clip := image.Rect(0, 0, 2, 2)
	Triangle(Vec2{0, 0}, Vec2{16, 0}, Vec2{0, 16}, clip, func(x, y int, _, _, _ float32) {
		if !image.Pt(x, y).In(clip) {
			t.Fatalf("pixel (%d,%d) outside clip", x, y)
		}
	})
}

func TestPoint(t *testing.T) {
	hits := pixelSet{}
	Point(Vec2{3.7, 4.2}, bounds, hits.plot)
	Point(Vec2{-0.5, 1}, bounds, hits.plot)
	Point(Vec2{16, 1}, bounds, hits.plot)
	if len(hits) != 1 || hits[image.Pt(3, 4)] != 1 {
		t.Errorf("Point hits = %v, want only (3,4)", hits)
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec2
		last bool
		want int
	}{
		{"horizontal", Vec2{0, 0}, Vec2{5, 0}, true, 6},
		{"horizontal open", Vec2{0, 0}, Vec2{5, 0}, false, 5},
		{"vertical reversed", Vec2{2, 7}, Vec2{2, 3}, true, 5},
		{"diagonal", Vec2{0, 0}, Vec2{4, 4}, true, 5},
		{"single point open", Vec2{1, 1}, Vec2{1, 1}, false, 0},
		{"single point", Vec2{1, 1}, Vec2{1, 1}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := pixelSet{}
			Line(tt.a, tt.b, bounds, tt.last, hits.plot)
			if len(hits) != tt.want {
				t.Errorf("Line visited %d pixels, want %d: %v", len(hits), tt.want, hits)
			}
			for p, n := range hits {
				if n != 1 {
					t.Errorf("pixel %v visited %d times", p, n)
				}
			}
		})
	}
}

func TestLine_StripSharesNoPixels(t *testing.T) {
	pts := []Vec2{{1, 1}, {8, 1}, {8, 6}, {2, 9}}
	hits := pixelSet{}
	for i := 0; i+1 < len(pts); i++ {
		Line(pts[i], pts[i+1], bounds, i+2 == len(pts), hits.plot)
	}
	for p, n := range hits {
		if n != 1 {
			t.Errorf("pixel %v visited %d times", p, n)
		}
	}
	if hits[image.Pt(2, 9)] != 1 {
		t.Error("final endpoint not drawn")
	}
}

func TestLine_Clipped(t *testing.T) {
	hits := pixelSet{}
	Line(Vec2{-4, 2}, Vec2{20, 2}, bounds, true, hits.plot)
	if len(hits) != 16 {
		t.Errorf("clipped line visited %d pixels, want 16", len(hits))
	}
}

func TestLine_FarEndpoint(t *testing.T) {
	hits := pixelSet{}
	Line(Vec2{0, 0}, Vec2{1e12, 1}, bounds, false, hits.plot)
	if len(hits) != 16 {
		t.Errorf("far line visited %d pixels, want 16", len(hits))
	}
	for p := range hits {
		if p.Y != 0 {
			t.Errorf("pixel %v off the first row", p)
		}
	}

	hits = pixelSet{}
	Line(Vec2{-1e12, -1e12}, Vec2{1e12, 1e12}, bounds, false, hits.plot)
	if len(hits) != 16 {
		t.Errorf("diagonal through the clip visited %d pixels, want 16", len(hits))
	}
}

func TestLine_Rejected(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	for _, seg := range [][2]Vec2{
		{{nan, 0}, {4, 4}},
		{{0, 0}, {inf, 4}},
		{{-8, -8}, {-2, 20}},
		{{20, 0}, {30, 15}},
	} {
		Line(seg[0], seg[1], bounds, true, func(x, y int) {
			t.Fatalf("Line(%v, %v) drew (%d,%d)", seg[0], seg[1], x, y)
		})
	}
	Line(Vec2{0, 0}, Vec2{4, 4}, image.Rectangle{}, true, func(x, y int) {
		t.Fatalf("empty clip drew (%d,%d)", x, y)
	})
}
