package gesture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddvk/rmshapes/geometry"
)

func zigzag(n int) []geometry.Point {
	pts := make([]geometry.Point, 0, n)
	for i := 0; i < n; i++ {
		y := 0.0
		if i%2 == 1 {
			y = 30
		}
		pts = append(pts, geometry.Pt(float64(i)*17, y))
	}
	return pts
}

func TestResampleSpacing(t *testing.T) {
	pts := zigzag(13)
	out := Resample(pts, NumPoints)
	require.Len(t, out, NumPoints)

	assert.Equal(t, pts[0], out[0])
	assert.InDelta(t, pts[len(pts)-1].X, out[NumPoints-1].X, 1e-6)
	assert.InDelta(t, pts[len(pts)-1].Y, out[NumPoints-1].Y, 1e-6)

	// resampled points lie on the original path, so chords across a corner
	// are a little shorter than the arc interval but never longer
	interval := geometry.PathLength(pts) / (NumPoints - 1)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, geometry.Distance(out[i-1], out[i]), interval+1e-6)
	}
}

func TestResampleStraightLineIsUniform(t *testing.T) {
	pts := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(630, 0)}
	out := Resample(pts, NumPoints)
	require.Len(t, out, NumPoints)
	for i, p := range out {
		assert.InDelta(t, float64(i)*10, p.X, 1e-6)
	}
}

func TestResampleDoesNotMutateInput(t *testing.T) {
	pts := zigzag(20)
	before := geometry.Clone(pts)
	Resample(pts, NumPoints)
	Normalize(pts)
	assert.Equal(t, before, pts)
}

func TestResampleDegenerate(t *testing.T) {
	same := []geometry.Point{geometry.Pt(3, 3), geometry.Pt(3, 3), geometry.Pt(3, 3)}
	out := Resample(same, NumPoints)
	require.Len(t, out, NumPoints)
	for _, p := range out {
		assert.Equal(t, geometry.Pt(3, 3), p)
	}

	assert.Len(t, Resample(same[:1], 8), 8)
	assert.Nil(t, Resample(nil, 8))
}

func TestRotateToZero(t *testing.T) {
	pts := RotateToZero(Resample(zigzag(9), NumPoints))
	assert.InDelta(t, 0, IndicativeAngle(pts), 1e-9)
}

func TestRotateByKeepsCentroid(t *testing.T) {
	pts := zigzag(9)
	rotated := RotateBy(pts, math.Pi/3)
	c1, c2 := geometry.Centroid(pts), geometry.Centroid(rotated)
	assert.InDelta(t, c1.X, c2.X, 1e-9)
	assert.InDelta(t, c1.Y, c2.Y, 1e-9)
	assert.InDelta(t, geometry.PathLength(pts), geometry.PathLength(rotated), 1e-9)
}

func TestNormalize(t *testing.T) {
	out := Normalize(zigzag(9))
	require.Len(t, out, NumPoints)

	box := geometry.Bounds(out)
	assert.InDelta(t, SquareSize, box.Width, 1e-6)
	assert.InDelta(t, SquareSize, box.Height, 1e-6)

	c := geometry.Centroid(out)
	assert.InDelta(t, 0, c.X, 1e-9)
	assert.InDelta(t, 0, c.Y, 1e-9)
}

func TestScaleToSquareKeepsFlatAxis(t *testing.T) {
	flat := []geometry.Point{geometry.Pt(0, 5), geometry.Pt(50, 5), geometry.Pt(100, 5)}
	out := ScaleToSquare(flat, SquareSize)
	assert.Equal(t, geometry.Pt(250, 5), out[2])
	for _, p := range out {
		assert.False(t, math.IsNaN(p.Y) || math.IsInf(p.Y, 0))
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	pts := zigzag(11)
	assert.Equal(t, Normalize(pts), Normalize(pts))
}
