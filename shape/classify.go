package shape

import (
	"math"

	"github.com/ddvk/rmshapes/geometry"
)

// Classification thresholds tuned for on-screen pixel strokes. Behaviour of
// the finalizer depends on these exact values.
const (
	// ClosedFloor is the minimum endpoint gap, in pixels, that still counts as closed.
	ClosedFloor = 50.0
	// ClosedRatio scales the larger bounding box side into an endpoint gap.
	ClosedRatio = 0.2
	// CircularityThreshold is the isoperimetric ratio above which a stroke is a circle.
	CircularityThreshold = 0.82

	minClosedPoints = 3
	minCirclePoints = 10
)

// IsClosed reports whether the ends of points are close relative to its size.
func IsClosed(points []geometry.Point) bool {
	return isClosed(points, ClosedFloor, ClosedRatio)
}

func isClosed(points []geometry.Point, floor, ratio float64) bool {
	if len(points) < minClosedPoints {
		return false
	}
	gap := geometry.Distance(points[0], points[len(points)-1])
	box := geometry.Bounds(points)
	return gap < math.Max(floor, ratio*box.MaxDimension())
}

// Circularity returns 4*pi*A/P^2 where P is the length of the open path and
// A the area of the polygon it encloses once closed. It is 1 for a circle and
// 0 when the path has no length or no area.
func Circularity(points []geometry.Point) float64 {
	perimeter := geometry.PathLength(points)
	area := math.Abs(geometry.SignedArea(points))
	if area == 0 || perimeter == 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}

// IsCircle reports whether points are round enough to be replaced by a circle.
func IsCircle(points []geometry.Point) bool {
	return isCircle(points, CircularityThreshold)
}

func isCircle(points []geometry.Point, threshold float64) bool {
	if len(points) < minCirclePoints {
		return false
	}
	return Circularity(points) > threshold
}
