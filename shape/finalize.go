package shape

import (
	"github.com/pkg/errors"

	"github.com/ddvk/rmshapes/geometry"
)

const (
	// ToleranceSquared is the squared pixel distance the simplifier may drop.
	ToleranceSquared = 200.0
	// MinFinalizePoints is the shortest stroke Finalize accepts.
	MinFinalizePoints = 5
)

var (
	// ErrTooFewPoints is returned for strokes shorter than MinFinalizePoints.
	ErrTooFewPoints = errors.New("stroke has too few points")
	// ErrCollapsed is returned when simplification leaves fewer than 2 points.
	ErrCollapsed = errors.New("simplified stroke collapsed")
)

// Options are the thresholds of a Finalizer.
type Options struct {
	ToleranceSquared     float64
	ClosedFloor          float64
	ClosedRatio          float64
	CircularityThreshold float64
}

// DefaultOptions returns the named package constants.
func DefaultOptions() Options {
	return Options{
		ToleranceSquared:     ToleranceSquared,
		ClosedFloor:          ClosedFloor,
		ClosedRatio:          ClosedRatio,
		CircularityThreshold: CircularityThreshold,
	}
}

// Finalizer converts strokes into shapes. It is stateless and safe for
// concurrent use.
type Finalizer struct {
	opts Options
}

// NewFinalizer returns a Finalizer using opts.
func NewFinalizer(opts Options) *Finalizer {
	return &Finalizer{opts: opts}
}

// Options returns the thresholds in use.
func (f *Finalizer) Options() Options {
	return f.opts
}

var defaultFinalizer = NewFinalizer(DefaultOptions())

// Finalize classifies points with the default thresholds.
func Finalize(points []geometry.Point) (Shape, error) {
	return defaultFinalizer.Finalize(points)
}

// Finalize classifies points as a circle, a closed polygon or an open
// polyline. When no shape can be produced the error is ErrTooFewPoints or
// ErrCollapsed and the caller should keep the freehand stroke.
func (f *Finalizer) Finalize(points []geometry.Point) (Shape, error) {
	if len(points) < MinFinalizePoints {
		return Shape{}, errors.Wrapf(ErrTooFewPoints, "finalize %d points", len(points))
	}

	if isCircle(points, f.opts.CircularityThreshold) {
		box := geometry.Bounds(points)
		return Shape{
			Kind:   Circle,
			Center: box.Center(),
			Radius: (box.Width + box.Height) / 4,
			Closed: true,
		}, nil
	}

	simplified := Simplify(points, f.opts.ToleranceSquared)
	if len(simplified) < 2 {
		return Shape{}, errors.Wrapf(ErrCollapsed, "finalize %d points", len(points))
	}

	// closedness is judged on the raw stroke
	if isClosed(points, f.opts.ClosedFloor, f.opts.ClosedRatio) {
		return Shape{Kind: Polygon, Points: simplified, Closed: true}, nil
	}
	return Shape{Kind: Polyline, Points: simplified, Closed: false}, nil
}
