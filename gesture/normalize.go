package gesture

import (
	"math"

	"github.com/ddvk/rmshapes/geometry"
)

const (
	// NumPoints is the length of every normalized stroke and template.
	NumPoints = 64
	// SquareSize is the side of the square strokes are scaled into.
	SquareSize = 250.0

	// extents below this are treated as flat and left unscaled
	minExtent = 1e-6
)

// Normalize resamples, rotates, scales and centres points so that strokes
// can be compared independently of position, size and orientation.
// The result always has NumPoints entries; points is not modified.
func Normalize(points []geometry.Point) []geometry.Point {
	out := Resample(points, NumPoints)
	out = RotateToZero(out)
	out = ScaleToSquare(out, SquareSize)
	return TranslateToOrigin(out)
}

// Resample returns n points spaced evenly along the arc length of points.
// Each interpolated point becomes the origin of the next measurement, so
// the walk behaves as if it were inserted into the path.
func Resample(points []geometry.Point, n int) []geometry.Point {
	if len(points) == 0 || n <= 0 {
		return nil
	}

	interval := geometry.PathLength(points) / float64(n-1)
	out := make([]geometry.Point, 0, n)
	out = append(out, points[0])

	prev := points[0]
	acc := 0.0
	for i := 1; i < len(points) && len(out) < n; i++ {
		cur := points[i]
		d := geometry.Distance(prev, cur)
		for d > 0 && acc+d >= interval && len(out) < n {
			t := (interval - acc) / d
			q := geometry.Pt(prev.X+t*(cur.X-prev.X), prev.Y+t*(cur.Y-prev.Y))
			out = append(out, q)
			prev = q
			d = geometry.Distance(prev, cur)
			acc = 0
		}
		acc += d
		prev = cur
	}

	// rounding can leave the walk one short of the end
	last := points[len(points)-1]
	for len(out) < n {
		out = append(out, last)
	}
	return out
}

// IndicativeAngle is the angle from the first point to the centroid.
func IndicativeAngle(points []geometry.Point) float64 {
	c := geometry.Centroid(points)
	return math.Atan2(c.Y-points[0].Y, c.X-points[0].X)
}

// RotateToZero rotates points about their centroid so that the indicative
// angle becomes zero.
func RotateToZero(points []geometry.Point) []geometry.Point {
	return RotateBy(points, -IndicativeAngle(points))
}

// RotateBy returns points rotated by angle radians about their centroid.
func RotateBy(points []geometry.Point, angle float64) []geometry.Point {
	c := geometry.Centroid(points)
	cos, sin := math.Cos(angle), math.Sin(angle)
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		dx, dy := p.X-c.X, p.Y-c.Y
		out[i] = geometry.Pt(dx*cos-dy*sin+c.X, dx*sin+dy*cos+c.Y)
	}
	return out
}

// ScaleToSquare scales x and y independently so that the bounding box
// becomes size by size. A flat axis keeps its scale.
func ScaleToSquare(points []geometry.Point, size float64) []geometry.Point {
	box := geometry.Bounds(points)
	sx, sy := 1.0, 1.0
	if box.Width > minExtent {
		sx = size / box.Width
	}
	if box.Height > minExtent {
		sy = size / box.Height
	}
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		out[i] = geometry.Pt(p.X*sx, p.Y*sy)
	}
	return out
}

// TranslateToOrigin moves the centroid of points to (0, 0).
func TranslateToOrigin(points []geometry.Point) []geometry.Point {
	c := geometry.Centroid(points)
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		out[i] = geometry.Pt(p.X-c.X, p.Y-c.Y)
	}
	return out
}
