package shape

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddvk/rmshapes/geometry"
)

func TestFinalizeNearCircle(t *testing.T) {
	pts := roughCircle(200, 200, 50, 80)

	s, err := Finalize(pts)
	require.NoError(t, err)
	assert.Equal(t, Circle, s.Kind)
	assert.True(t, s.Closed)
	assert.InDelta(t, 200, s.Center.X, 5)
	assert.InDelta(t, 200, s.Center.Y, 5)
	assert.GreaterOrEqual(t, s.Radius, 45.0)
	assert.LessOrEqual(t, s.Radius, 55.0)
}

func TestFinalizeRoughRectangle(t *testing.T) {
	pts := roughRectangle()
	require.Len(t, pts, 40)

	s, err := Finalize(pts)
	require.NoError(t, err)
	assert.Equal(t, Polygon, s.Kind)
	assert.True(t, s.Closed)
	assert.GreaterOrEqual(t, len(s.Points), 4)
	assert.LessOrEqual(t, len(s.Points), 8)
	assert.Equal(t, pts[0], s.Points[0])
}

func TestFinalizeDiagonal(t *testing.T) {
	pts := roughDiagonal(30)

	s, err := Finalize(pts)
	require.NoError(t, err)
	assert.Equal(t, Polyline, s.Kind)
	assert.False(t, s.Closed)
	assert.GreaterOrEqual(t, len(s.Points), 2)
	assert.LessOrEqual(t, len(s.Points), 4)
	assert.Equal(t, geometry.Pt(0, 0), s.Points[0])
	assert.Equal(t, geometry.Pt(300, 300), s.Points[len(s.Points)-1])
}

func TestFinalizeTooFewPoints(t *testing.T) {
	_, err := Finalize(roughDiagonal(4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooFewPoints))
}

func TestFinalizeDoesNotMutateInput(t *testing.T) {
	pts := roughRectangle()
	before := geometry.Clone(pts)
	_, err := Finalize(pts)
	require.NoError(t, err)
	assert.Equal(t, before, pts)
}

func TestFinalizerOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, ToleranceSquared, opts.ToleranceSquared)

	// a threshold no stroke reaches turns the rough circle into a polygon
	opts.CircularityThreshold = 1.5
	s, err := NewFinalizer(opts).Finalize(roughCircle(200, 200, 50, 80))
	require.NoError(t, err)
	assert.Equal(t, Polygon, s.Kind)

	// a zero floor and ratio makes every stroke open
	opts = DefaultOptions()
	opts.ClosedFloor, opts.ClosedRatio = 0, 0
	s, err = NewFinalizer(opts).Finalize(roughRectangle())
	require.NoError(t, err)
	assert.Equal(t, Polyline, s.Kind)
}

func TestShapeOutline(t *testing.T) {
	c := Shape{Kind: Circle, Center: geometry.Pt(10, 10), Radius: 5, Closed: true}
	out := c.Outline(0)
	require.Len(t, out, CircleSegments+1)
	assert.Equal(t, out[0], out[len(out)-1])
	for _, p := range out {
		assert.InDelta(t, 5, geometry.Distance(p, c.Center), 1e-9)
	}

	square := Shape{Kind: Polygon, Closed: true, Points: []geometry.Point{
		geometry.Pt(0, 0), geometry.Pt(1, 0), geometry.Pt(1, 1),
	}}
	assert.Len(t, square.Outline(0), 4)

	line := Shape{Kind: Polyline, Points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(1, 1)}}
	assert.Equal(t, line.Points, line.Outline(0))
}

func TestKindJSON(t *testing.T) {
	s := Shape{Kind: Polyline, Points: []geometry.Point{geometry.Pt(1, 2), geometry.Pt(3, 4)}}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"polyline"`)

	var back Shape
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)

	var k Kind
	err = k.UnmarshalText([]byte("blob"))
	require.Error(t, err)
	assert.Equal(t, `unknown shape kind "blob"`, err.Error())
	_, err = Kind(0).MarshalText()
	require.Error(t, err)
	assert.Equal(t, "unknown shape kind 0", err.Error())
}
