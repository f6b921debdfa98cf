package shape

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddvk/rmshapes/geometry"
)

func randomWalk(seed int64, n int) []geometry.Point {
	r := rand.New(rand.NewSource(seed))
	pts := make([]geometry.Point, 0, n)
	x, y := 0.0, 0.0
	for i := 0; i < n; i++ {
		x += r.Float64()*20 - 5
		y += r.Float64()*20 - 10
		pts = append(pts, geometry.Pt(x, y))
	}
	return pts
}

func TestSimplifyShortInputIsCopied(t *testing.T) {
	pts := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(5, 5)}
	out := Simplify(pts, 0)
	assert.Equal(t, pts, out)

	out[0].X = 42
	assert.Equal(t, 0.0, pts[0].X, "caller slice must not be aliased")

	assert.Len(t, Simplify(pts[:1], 10), 1)
	assert.Empty(t, Simplify(nil, 10))
}

func TestSimplifyDropsCollinearPoints(t *testing.T) {
	pts := make([]geometry.Point, 0, 20)
	for i := 0; i < 20; i++ {
		pts = append(pts, geometry.Pt(float64(i)*3, float64(i)*-2))
	}
	out := Simplify(pts, 0)
	assert.Equal(t, []geometry.Point{pts[0], pts[19]}, out)
}

func TestSimplifyKeepsCorners(t *testing.T) {
	pts := []geometry.Point{
		geometry.Pt(0, 0), geometry.Pt(50, 1), geometry.Pt(100, 0),
		geometry.Pt(101, 50), geometry.Pt(100, 100),
	}
	out := Simplify(pts, ToleranceSquared)
	assert.Equal(t, []geometry.Point{pts[0], pts[2], pts[4]}, out)
}

func TestSimplifyWithinTolerance(t *testing.T) {
	pts := randomWalk(7, 400)
	out := Simplify(pts, 25)
	require.GreaterOrEqual(t, len(out), 2)

	// every dropped point is close to the chord between its retained neighbours
	j := 0
	for i, p := range pts {
		if j+1 < len(out) && p == out[j+1] {
			j++
			continue
		}
		if p == out[j] {
			continue
		}
		d := geometry.SegmentDistanceSquared(p, out[j], out[j+1])
		assert.LessOrEqual(t, d, 25.0, "point %d", i)
	}
}

func TestSimplifyProperties(t *testing.T) {
	inputs := map[string][]geometry.Point{
		"walk":      randomWalk(1, 500),
		"rectangle": roughRectangle(),
		"diagonal":  roughDiagonal(30),
		"circle":    roughCircle(0, 0, 80, 120),
	}
	for name, pts := range inputs {
		for _, tol := range []float64{0, 1, 50, ToleranceSquared, 10000} {
			once := Simplify(pts, tol)
			require.GreaterOrEqual(t, len(once), 2, name)
			assert.LessOrEqual(t, len(once), len(pts), name)

			assert.Equal(t, pts[0], once[0], "%s: first point", name)
			assert.Equal(t, pts[len(pts)-1], once[len(once)-1], "%s: last point", name)

			assert.Equal(t, once, Simplify(once, tol), "%s: idempotent at %v", name, tol)
		}
	}
}

func TestSimplifyLongStroke(t *testing.T) {
	pts := randomWalk(3, 20000)
	out := Simplify(pts, 1)
	assert.Equal(t, pts[0], out[0])
	assert.Equal(t, pts[len(pts)-1], out[len(out)-1])
}
