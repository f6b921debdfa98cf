package gesture

import (
	"math"
	"sync"

	"github.com/ddvk/rmshapes/geometry"
)

// Template is a named, normalized reference stroke of NumPoints points.
type Template struct {
	Name   string
	Points []geometry.Point
}

// NewTemplate normalizes points into a template.
func NewTemplate(name string, points []geometry.Point) Template {
	return Template{Name: name, Points: Normalize(points)}
}

// Library is an immutable set of templates, safe for concurrent readers.
type Library struct {
	templates []Template
}

// NewLibrary returns a library holding copies of templates.
func NewLibrary(templates ...Template) *Library {
	l := &Library{templates: make([]Template, 0, len(templates))}
	for _, t := range templates {
		l.templates = append(l.templates, Template{Name: t.Name, Points: geometry.Clone(t.Points)})
	}
	return l
}

// With returns a new library holding the receiver's templates followed by
// templates. The receiver is left untouched.
func (l *Library) With(templates ...Template) *Library {
	all := make([]Template, 0, len(l.templates)+len(templates))
	all = append(all, l.templates...)
	all = append(all, templates...)
	return NewLibrary(all...)
}

// Len returns the number of templates.
func (l *Library) Len() int {
	return len(l.templates)
}

// Names returns the template names in library order.
func (l *Library) Names() []string {
	names := make([]string, len(l.templates))
	for i, t := range l.templates {
		names[i] = t.Name
	}
	return names
}

var (
	defaultLibrary     *Library
	defaultLibraryOnce sync.Once
)

// DefaultLibrary returns the built-in circle, triangle, rectangle and line
// templates. It is built on first use.
func DefaultLibrary() *Library {
	defaultLibraryOnce.Do(func() {
		defaultLibrary = NewLibrary(
			NewTemplate("circle", canonicalCircle()),
			NewTemplate("triangle", canonicalTriangle()),
			NewTemplate("rectangle", canonicalRectangle()),
			NewTemplate("line", canonicalLine()),
		)
	})
	return defaultLibrary
}

const edgeSamples = 20

func canonicalCircle() []geometry.Point {
	pts := make([]geometry.Point, 0, NumPoints)
	for i := 0; i < NumPoints; i++ {
		a := 2 * math.Pi * float64(i) / NumPoints
		pts = append(pts, geometry.Pt(math.Cos(a)*100, math.Sin(a)*100))
	}
	return pts
}

func canonicalTriangle() []geometry.Point {
	return polygonEdges(geometry.Pt(0, 100), geometry.Pt(50, 0), geometry.Pt(100, 100))
}

func canonicalRectangle() []geometry.Point {
	return polygonEdges(geometry.Pt(0, 0), geometry.Pt(200, 0), geometry.Pt(200, 100), geometry.Pt(0, 100))
}

func canonicalLine() []geometry.Point {
	return edge(geometry.Pt(0, 0), geometry.Pt(100, 100), edgeSamples, true)
}

// polygonEdges walks the closed polygon through corners, ending on the
// first corner.
func polygonEdges(corners ...geometry.Point) []geometry.Point {
	var pts []geometry.Point
	for i, a := range corners {
		b := corners[(i+1)%len(corners)]
		pts = append(pts, edge(a, b, edgeSamples, i == len(corners)-1)...)
	}
	return pts
}

func edge(a, b geometry.Point, samples int, inclusive bool) []geometry.Point {
	n := samples
	if inclusive {
		n++
	}
	pts := make([]geometry.Point, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(samples)
		pts = append(pts, geometry.Pt(a.X+t*(b.X-a.X), a.Y+t*(b.Y-a.Y)))
	}
	return pts
}
