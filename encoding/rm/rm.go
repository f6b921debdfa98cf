// Package rm reads and writes reMarkable .rm page files, the source of the
// pen strokes handed to the shape finalizer and the gesture recognizer.
package rm

import "github.com/ddvk/rmshapes/geometry"

// Version of the .rm format.
type Version int

const (
	V3 Version = iota
	V5
	V6
)

func (v Version) String() string {
	switch v {
	case V3:
		return "v3"
	case V5:
		return "v5"
	case V6:
		return "v6"
	}
	return "unknown"
}

const (
	HeaderV3  = "reMarkable .lines file, version=3          "
	HeaderV5  = "reMarkable .lines file, version=5          "
	HeaderV6  = "reMarkable .lines file, version=6          "
	HeaderLen = 43
)

// BrushType is the pen tool a line was drawn with.
type BrushType uint32

const (
	Brush       BrushType = 0
	TiltPencil  BrushType = 1
	BallPoint   BrushType = 2
	Marker      BrushType = 3
	Fineliner   BrushType = 4
	Highlighter BrushType = 5
	Eraser      BrushType = 6
	SharpPencil BrushType = 7
	EraseArea   BrushType = 8

	BrushV5            BrushType = 12
	MechanicalPencilV5 BrushType = 13
	PencilV5           BrushType = 14
	BallpointV5        BrushType = 15
	MarkerV5           BrushType = 16
	FinelinerV5        BrushType = 17
	HighlighterV5      BrushType = 18
	CaligraphyV5       BrushType = 21
)

// BrushColor of a line.
type BrushColor uint32

const (
	Black BrushColor = 0
	Grey  BrushColor = 1
	White BrushColor = 2
)

// BrushSize is the base pen width.
type BrushSize float32

const (
	Small  BrushSize = 1.875
	Medium BrushSize = 2.0
	Large  BrushSize = 2.125
)

// Rm is one page.
type Rm struct {
	Version Version
	Layers  []Layer
}

// Layer holds the lines drawn on one page layer.
type Layer struct {
	Lines []Line
}

// Line is one stroke from pen down to pen up.
type Line struct {
	BrushType  BrushType
	BrushColor BrushColor
	Padding    uint32
	BrushSize  BrushSize
	Unknown    float32
	Points     []Point
}

// Point is a pen sample.
type Point struct {
	X         float32
	Y         float32
	Speed     float32
	Direction float32
	Width     float32
	Pressure  float32
}

// IsPen reports whether the line leaves ink, i.e. is not an eraser.
func (l Line) IsPen() bool {
	return l.BrushType != Eraser && l.BrushType != EraseArea
}

// Stroke returns the line's sample positions.
func (l Line) Stroke() []geometry.Point {
	pts := make([]geometry.Point, len(l.Points))
	for i, p := range l.Points {
		pts[i] = geometry.Pt(float64(p.X), float64(p.Y))
	}
	return pts
}

// LineRef addresses a line inside a page.
type LineRef struct {
	Layer int `json:"layer"`
	Line  int `json:"line"`
}

// PenLines returns the references of every pen line with at least one
// sample, in layer then line order. Shells and reports number lines by
// their position in this list.
func (rm *Rm) PenLines() []LineRef {
	var refs []LineRef
	for i, layer := range rm.Layers {
		for j, line := range layer.Lines {
			if !line.IsPen() || len(line.Points) == 0 {
				continue
			}
			refs = append(refs, LineRef{Layer: i, Line: j})
		}
	}
	return refs
}

// Line returns the line ref points to.
func (rm *Rm) Line(ref LineRef) *Line {
	return &rm.Layers[ref.Layer].Lines[ref.Line]
}

// Clone returns a deep copy of the page.
func (rm *Rm) Clone() *Rm {
	c := &Rm{Version: rm.Version, Layers: make([]Layer, len(rm.Layers))}
	for i, layer := range rm.Layers {
		lines := make([]Line, len(layer.Lines))
		for j, line := range layer.Lines {
			lines[j] = line
			lines[j].Points = append([]Point(nil), line.Points...)
		}
		c.Layers[i].Lines = lines
	}
	return c
}
