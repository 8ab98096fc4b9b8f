package rdraw

import (
	"image"
	"math"
)

// Vertex data is laid out as interleaved float32 x/y pairs.
const vertexFloats = 2

// QuadVertices returns the corners of dst offset by origin in the order
// (min,min), (max,min), (max,max), (min,max).
func QuadVertices(origin FPoint, dst FRect) [8]float32 {
	x0 := origin.X + dst.X
	y0 := origin.Y + dst.Y
	x1 := x0 + dst.W
	y1 := y0 + dst.H
	return [8]float32{
		x0, y0,
		x1, y0,
		x1, y1,
		x0, y1,
	}
}

// QuadTexCoords returns the texel coordinates for src, matched to the
// corner order of QuadVertices. Rows are sampled bottom-up: the top edge of
// the quad reads src.Max.Y and the bottom edge reads src.Min.Y.
func QuadTexCoords(src image.Rectangle) [8]float32 {
	x0 := float32(src.Min.X)
	y0 := float32(src.Min.Y)
	x1 := float32(src.Max.X)
	y1 := float32(src.Max.Y)
	return [8]float32{
		x0, y1,
		x1, y1,
		x1, y0,
		x0, y0,
	}
}

// RotatedQuadVertices returns the corners of dst mirrored by flip and then
// rotated by angle degrees around center, which is relative to dst's origin.
// The corner order matches QuadVertices.
func RotatedQuadVertices(origin FPoint, dst FRect, angle float64, center FPoint, flip Flip) [8]float32 {
	minX := origin.X + dst.X
	minY := origin.Y + dst.Y
	maxX := minX + dst.W
	maxY := minY + dst.H

	cx := float64(minX + center.X)
	cy := float64(minY + center.Y)

	if flip&FlipHorizontal != 0 {
		minX, maxX = maxX, minX
	}
	if flip&FlipVertical != 0 {
		minY, maxY = maxY, minY
	}

	corners := [8]float32{
		minX, minY,
		maxX, minY,
		maxX, maxY,
		minX, maxY,
	}

	rad := angle * math.Pi / 180
	sin, cos := math.Sincos(rad)
	for i := 0; i < len(corners); i += vertexFloats {
		dx := float64(corners[i]) - cx
		dy := float64(corners[i+1]) - cy
		corners[i] = float32(dx*cos - dy*sin + cx)
		corners[i+1] = float32(dx*sin + dy*cos + cy)
	}
	return corners
}

// PointVertices returns one vertex per point.
func PointVertices(origin FPoint, points []FPoint) []float32 {
	if len(points) == 0 {
		return nil
	}
	out := make([]float32, 0, len(points)*vertexFloats)
	for _, p := range points {
		out = append(out, origin.X+p.X, origin.Y+p.Y)
	}
	return out
}

// RectVertices returns four vertices per rectangle in quad order.
func RectVertices(origin FPoint, rects []FRect) []float32 {
	if len(rects) == 0 {
		return nil
	}
	out := make([]float32, 0, len(rects)*4*vertexFloats)
	for _, r := range rects {
		q := QuadVertices(origin, r)
		out = append(out, q[:]...)
	}
	return out
}
