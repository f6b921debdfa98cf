// Package gesture implements a $1 style unistroke recognizer: strokes are
// normalized and matched against a small library of named templates,
// independently of their position, size and rotation.
//
// https://depts.washington.edu/acelab/proj/dollar/dollar.pdf
package gesture

import (
	"math"

	"github.com/ddvk/rmshapes/geometry"
)

const (
	// MinRecognizePoints is the shortest stroke worth classifying.
	MinRecognizePoints = 10
	// AngleRange bounds the rotation search to +-45 degrees.
	AngleRange = 0.785398
	// AnglePrecision stops the rotation search at 2 degrees.
	AnglePrecision = 0.0349066
)

var (
	// golden ratio conjugate
	phi = 0.5 * (math.Sqrt(5) - 1)

	halfDiagonal = 0.5 * math.Sqrt(SquareSize*SquareSize+SquareSize*SquareSize)
)

// Result is the best template match for a stroke. A zero Score with an
// empty Name means nothing could be matched.
type Result struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Recognizer matches strokes against a Library. It holds no mutable state
// and is safe for concurrent use.
type Recognizer struct {
	library *Library
}

// NewRecognizer returns a recognizer over library, or over DefaultLibrary
// when library is nil.
func NewRecognizer(library *Library) *Recognizer {
	if library == nil {
		library = DefaultLibrary()
	}
	return &Recognizer{library: library}
}

// Library returns the templates the recognizer matches against.
func (r *Recognizer) Library() *Library {
	return r.library
}

// Recognize matches points against DefaultLibrary.
func Recognize(points []geometry.Point) Result {
	return NewRecognizer(nil).Recognize(points)
}

// Recognize returns the closest template and its score.
func (r *Recognizer) Recognize(points []geometry.Point) Result {
	if len(points) < MinRecognizePoints || r.library.Len() == 0 {
		return Result{}
	}
	if geometry.PathLength(points) == 0 {
		return Result{}
	}

	candidate := Normalize(points)

	best := math.Inf(1)
	name := ""
	for _, t := range r.library.templates {
		d := distanceAtBestAngle(candidate, t.Points, -AngleRange, AngleRange, AnglePrecision)
		if d < best {
			best = d
			name = t.Name
		}
	}
	if name == "" {
		return Result{}
	}

	return Result{Name: name, Score: Score(best)}
}

// Score maps a mean point distance to a similarity in [0, 1]. Half the
// diagonal of the normalization square scores 0.
func Score(distance float64) float64 {
	s := 1 - distance/halfDiagonal
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// distanceAtBestAngle runs a golden section search for the rotation of
// points in [a, b] that is closest to template.
func distanceAtBestAngle(points, template []geometry.Point, a, b, precision float64) float64 {
	x1 := phi*a + (1-phi)*b
	f1 := distanceAtAngle(points, template, x1)
	x2 := (1-phi)*a + phi*b
	f2 := distanceAtAngle(points, template, x2)

	for math.Abs(b-a) > precision {
		if f1 < f2 {
			b = x2
			x2 = x1
			f2 = f1
			x1 = phi*a + (1-phi)*b
			f1 = distanceAtAngle(points, template, x1)
		} else {
			a = x1
			x1 = x2
			f1 = f2
			x2 = (1-phi)*a + phi*b
			f2 = distanceAtAngle(points, template, x2)
		}
	}
	return math.Min(f1, f2)
}

func distanceAtAngle(points, template []geometry.Point, angle float64) float64 {
	return PathDistance(RotateBy(points, angle), template)
}

// PathDistance is the mean distance between corresponding points of a and b.
// Both sequences must have the same length.
func PathDistance(a, b []geometry.Point) float64 {
	if len(a) == 0 {
		return 0
	}
	d := 0.0
	for i := range a {
		d += geometry.Distance(a[i], b[i])
	}
	return d / float64(len(a))
}
