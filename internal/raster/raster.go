// Package raster rasterizes device primitives: triangles with a top-left
// fill rule, single-pixel points and one-pixel line segments.
package raster

import (
	"image"
	"math"
)

// Vec2 is a window-space position in pixels.
type Vec2 struct {
	X, Y float32
}

// orient is twice the signed area of (a, b, p). It is positive for p on the
// interior side of the edge a->b of a clockwise triangle in y-down space.
func orient(a, b, p Vec2) float32 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// topLeft reports whether a->b is a top or left edge of a clockwise
// triangle in y-down space.
func topLeft(a, b Vec2) bool {
	return (a.Y == b.Y && b.X > a.X) || b.Y < a.Y
}

func covered(w float32, a, b Vec2) bool {
	return w > 0 || (w == 0 && topLeft(a, b))
}

// FragmentFunc receives a covered pixel and the barycentric weights of
// the triangle vertices at its centre.
type FragmentFunc func(x, y int, l0, l1, l2 float32)

// Triangle calls fn for every pixel inside clip whose centre is covered by
// the triangle. Edges shared between adjacent triangles are owned by
// exactly one of them. Degenerate triangles produce no pixels.
func Triangle(v0, v1, v2 Vec2, clip image.Rectangle, fn FragmentFunc) {
	area := orient(v0, v1, v2)
	if area == 0 {
		return
	}
	swapped := false
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
		swapped = true
	}

	minX := int(math.Floor(float64(min(v0.X, v1.X, v2.X))))
	maxX := int(math.Ceil(float64(max(v0.X, v1.X, v2.X))))
	minY := int(math.Floor(float64(min(v0.Y, v1.Y, v2.Y))))
	maxY := int(math.Ceil(float64(max(v0.Y, v1.Y, v2.Y))))
	box := image.Rect(minX, minY, maxX, maxY).Intersect(clip)
	if box.Empty() {
		return
	}

	inv := 1 / area
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			p := Vec2{float32(x) + 0.5, float32(y) + 0.5}
			w0 := orient(v1, v2, p)
			w1 := orient(v2, v0, p)
			w2 := orient(v0, v1, p)
			if !covered(w0, v1, v2) || !covered(w1, v2, v0) || !covered(w2, v0, v1) {
				continue
			}
			l0, l1, l2 := w0*inv, w1*inv, w2*inv
			if swapped {
				l1, l2 = l2, l1
			}
			fn(x, y, l0, l1, l2)
		}
	}
}

// Point calls fn for the pixel containing p, if it lies inside clip.
func Point(p Vec2, clip image.Rectangle, fn func(x, y int)) {
	x := int(math.Floor(float64(p.X)))
	y := int(math.Floor(float64(p.Y)))
	if image.Pt(x, y).In(clip) {
		fn(x, y)
	}
}

// Line calls fn for the pixels of the segment a->b using Bresenham's
// algorithm. The pixel containing b is visited only when last is set, so
// the segments of a strip do not touch their shared pixels twice. The
// segment is clipped before stepping; an end cut off by clip is always
// drawn at the clip edge. Segments with non-finite endpoints are dropped.
func Line(a, b Vec2, clip image.Rectangle, last bool, fn func(x, y int)) {
	p, q, cut, ok := clipLine(a, b, clip)
	if !ok {
		return
	}
	last = last || cut

	x0 := pixel(p[0], clip.Min.X, clip.Max.X)
	y0 := pixel(p[1], clip.Min.Y, clip.Max.Y)
	x1 := pixel(q[0], clip.Min.X, clip.Max.X)
	y1 := pixel(q[1], clip.Min.Y, clip.Max.Y)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		end := x0 == x1 && y0 == y1
		if end && !last {
			return
		}
		if image.Pt(x0, y0).In(clip) {
			fn(x0, y0)
		}
		if end {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// clipLine clips a->b to the pixel area of clip with the Liang-Barsky
// algorithm. cut reports whether the end point was moved.
func clipLine(a, b Vec2, clip image.Rectangle) (p, q [2]float64, cut, ok bool) {
	x0, y0 := float64(a.X), float64(a.Y)
	x1, y1 := float64(b.X), float64(b.Y)
	if clip.Empty() || !finite(x0) || !finite(y0) || !finite(x1) || !finite(y1) {
		return p, q, false, false
	}

	// The right and bottom edges are exclusive.
	minX, maxX := float64(clip.Min.X), math.Nextafter(float64(clip.Max.X), math.Inf(-1))
	minY, maxY := float64(clip.Min.Y), math.Nextafter(float64(clip.Max.Y), math.Inf(-1))
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, edge := range [4][2]float64{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	} {
		num, dist := edge[0], edge[1]
		if num == 0 {
			if dist < 0 {
				return p, q, false, false
			}
			continue
		}
		t := dist / num
		if num < 0 {
			if t > t1 {
				return p, q, false, false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return p, q, false, false
			}
			t1 = min(t1, t)
		}
	}
	p = [2]float64{x0 + t0*dx, y0 + t0*dy}
	q = [2]float64{x0 + t1*dx, y0 + t1*dy}
	return p, q, t1 < 1, true
}

// pixel returns the pixel index of v, kept inside [lo, hi) against
// rounding in the clipper.
func pixel(v float64, lo, hi int) int {
	return min(max(int(math.Floor(v)), lo), hi-1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
