// Package shape turns a finished freehand stroke into a clean primitive:
// a circle, a closed polygon or an open polyline.
package shape

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/ddvk/rmshapes/geometry"
)

// Kind tags the variant held by a Shape.
type Kind int

const (
	Circle Kind = iota + 1
	Polygon
	Polyline
)

var kindNames = map[Kind]string{
	Circle:   "circle",
	Polygon:  "polygon",
	Polyline: "polyline",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, errors.Errorf("unknown shape kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return errors.Errorf("unknown shape kind %q", string(text))
}

// Shape is the primitive emitted for one stroke. Circle uses Center and
// Radius; Polygon and Polyline use Points.
type Shape struct {
	Kind   Kind             `json:"kind"`
	Center geometry.Point   `json:"center"`
	Radius float64          `json:"radius,omitempty"`
	Points []geometry.Point `json:"points,omitempty"`
	Closed bool             `json:"closed"`
}

// CircleSegments is the number of points Outline uses for a circle.
const CircleSegments = 64

// Outline returns the shape as a drawable point sequence. A circle is
// sampled at segments points (CircleSegments when segments < 3) and, like a
// polygon, ends on its first point.
func (s Shape) Outline(segments int) []geometry.Point {
	switch s.Kind {
	case Circle:
		if segments < 3 {
			segments = CircleSegments
		}
		out := make([]geometry.Point, 0, segments+1)
		for i := 0; i < segments; i++ {
			a := 2 * math.Pi * float64(i) / float64(segments)
			out = append(out, geometry.Pt(s.Center.X+s.Radius*math.Cos(a), s.Center.Y+s.Radius*math.Sin(a)))
		}
		return append(out, out[0])
	case Polygon:
		out := geometry.Clone(s.Points)
		if len(out) > 0 && out[0] != out[len(out)-1] {
			out = append(out, out[0])
		}
		return out
	default:
		return geometry.Clone(s.Points)
	}
}

func (s Shape) String() string {
	if s.Kind == Circle {
		return fmt.Sprintf("circle center=(%.1f,%.1f) radius=%.1f", s.Center.X, s.Center.Y, s.Radius)
	}
	return fmt.Sprintf("%s points=%d closed=%t", s.Kind, len(s.Points), s.Closed)
}
