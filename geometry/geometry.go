// Package geometry holds the point type shared by the shape finalizer and
// the gesture recognizer, and the pure functions both build on.
package geometry

import "math"

// Point is a position in the caller's 2D space (device pixels for pen input).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// BoundingBox is the axis aligned box around a point sequence.
type BoundingBox struct {
	MinX   float64 `json:"minX"`
	MinY   float64 `json:"minY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of the box.
func (b BoundingBox) Center() Point {
	return Point{X: b.MinX + b.Width/2, Y: b.MinY + b.Height/2}
}

// MaxDimension returns the larger of width and height.
func (b BoundingBox) MaxDimension() float64 {
	return math.Max(b.Width, b.Height)
}

// DistanceSquared returns the squared euclidean distance between a and b.
func DistanceSquared(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Sqrt(DistanceSquared(a, b))
}

// SegmentDistanceSquared returns the squared distance from p to the segment a-b.
// A zero length segment degrades to the distance from p to a.
func SegmentDistanceSquared(p, a, b Point) float64 {
	x, y := a.X, a.Y
	dx := b.X - x
	dy := b.Y - y

	if dx != 0 || dy != 0 {
		t := ((p.X-x)*dx + (p.Y-y)*dy) / (dx*dx + dy*dy)
		if t > 1 {
			x, y = b.X, b.Y
		} else if t > 0 {
			x += dx * t
			y += dy * t
		}
	}

	dx = p.X - x
	dy = p.Y - y
	return dx*dx + dy*dy
}

// SignedArea returns the shoelace area of points treated as a closed polygon.
// Counter-clockwise (in a y-up frame) polygons are positive.
func SignedArea(points []Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return area / 2
}

// PathLength sums the lengths of consecutive segments.
func PathLength(points []Point) float64 {
	d := 0.0
	for i := 1; i < len(points); i++ {
		d += Distance(points[i-1], points[i])
	}
	return d
}

// Centroid returns the arithmetic mean of points. points must not be empty.
func Centroid(points []Point) Point {
	var x, y float64
	for _, p := range points {
		x += p.X
		y += p.Y
	}
	n := float64(len(points))
	return Point{X: x / n, Y: y / n}
}

// Bounds returns the bounding box of points. points must not be empty.
func Bounds(points []Point) BoundingBox {
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return BoundingBox{MinX: minX, MinY: minY, Width: maxX - minX, Height: maxY - minY}
}

// Clone returns a copy of points that the caller can modify freely.
func Clone(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}
