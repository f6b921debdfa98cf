package shape

import "github.com/ddvk/rmshapes/geometry"

// Simplify reduces points with Douglas-Peucker. Every dropped point lies
// within sqrt(toleranceSquared) of the chord between its retained neighbours.
// The first and last points are always kept. An explicit range stack is used
// so long strokes cannot exhaust the goroutine stack.
func Simplify(points []geometry.Point, toleranceSquared float64) []geometry.Point {
	n := len(points)
	if n <= 2 {
		return geometry.Clone(points)
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	type span struct{ first, last int }
	stack := []span{{0, n - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		maxDist := 0.0
		index := 0
		for i := s.first + 1; i < s.last; i++ {
			d := geometry.SegmentDistanceSquared(points[i], points[s.first], points[s.last])
			if d > maxDist {
				index = i
				maxDist = d
			}
		}

		if maxDist > toleranceSquared {
			keep[index] = true
			stack = append(stack, span{s.first, index}, span{index, s.last})
		}
	}

	out := make([]geometry.Point, 0, n)
	for i, p := range points {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}
