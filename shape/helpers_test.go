package shape

import (
	"math"

	"github.com/ddvk/rmshapes/geometry"
)

// wobble is a small deterministic hand tremor: -2, 0, 2, -2, ...
func wobble(i int, amplitude float64) float64 {
	return float64(i%3-1) * amplitude
}

// roughCircle samples n points on a three lobed circle of radius r +- 3
// around (cx, cy) without closing the stroke.
func roughCircle(cx, cy, r float64, n int) []geometry.Point {
	pts := make([]geometry.Point, 0, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		radius := r + 3*math.Sin(3*a)
		pts = append(pts, geometry.Pt(cx+radius*math.Cos(a), cy+radius*math.Sin(a)))
	}
	return pts
}

// roughRectangle walks a 150x100 rectangle from its top left corner with 10
// samples per side and stops about 10px short of the start.
func roughRectangle() []geometry.Point {
	const x0, y0, w, h = 100.0, 100.0, 150.0, 100.0
	pts := make([]geometry.Point, 0, 40)
	i := 0
	for k := 0; k < 10; k++ {
		pts = append(pts, geometry.Pt(x0+w*float64(k)/10, y0+wobble(i, 2)))
		i++
	}
	for k := 0; k < 10; k++ {
		pts = append(pts, geometry.Pt(x0+w+wobble(i, 2), y0+h*float64(k)/10))
		i++
	}
	for k := 0; k < 10; k++ {
		pts = append(pts, geometry.Pt(x0+w-w*float64(k)/10, y0+h+wobble(i, 2)))
		i++
	}
	for k := 0; k < 10; k++ {
		pts = append(pts, geometry.Pt(x0+wobble(i, 2), y0+h-h*float64(k)/10))
		i++
	}
	return pts
}

// roughDiagonal draws n points from (0,0) to (300,300) with a small
// perpendicular tremor on the interior samples.
func roughDiagonal(n int) []geometry.Point {
	pts := make([]geometry.Point, 0, n)
	for i := 0; i < n; i++ {
		t := 300 * float64(i) / float64(n-1)
		w := 0.0
		if i > 0 && i < n-1 {
			w = wobble(i, 1.5)
		}
		pts = append(pts, geometry.Pt(t+w, t-w))
	}
	return pts
}

// closedCircle samples n points on a true circle whose last sample repeats
// the first one.
func closedCircle(r float64, n int) []geometry.Point {
	pts := make([]geometry.Point, 0, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n-1)
		pts = append(pts, geometry.Pt(r*math.Cos(a), r*math.Sin(a)))
	}
	return pts
}
