// Package visualize rasterizes pages and their finalized shapes into PNG
// previews.
package visualize

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/ddvk/rmshapes/encoding/rm"
	"github.com/ddvk/rmshapes/geometry"
	"github.com/ddvk/rmshapes/log"
	"github.com/ddvk/rmshapes/shape"
)

const (
	DeviceWidth  = 1404
	DeviceHeight = 1872
)

var (
	strokeColor = color.RGBA{0x30, 0x30, 0x30, 0xff}
	labelColor  = color.RGBA{0x00, 0x00, 0x00, 0xff}
	kindColors  = map[shape.Kind]color.RGBA{
		shape.Circle:   {0xd9, 0x1a, 0x1a, 0xff},
		shape.Polygon:  {0x1a, 0x4c, 0xd9, 0xff},
		shape.Polyline: {0x1a, 0x99, 0x33, 0xff},
	}
)

// Options control Render.
type Options struct {
	// StrokeWidth overrides the brush size of pen lines when > 0
	StrokeWidth float64
	ShapeWidth  float64
	HideStrokes bool
	// Labels are drawn next to the shape with the same index
	Labels []string
}

// DefaultOptions draws strokes at their brush size and shapes 3px wide.
func DefaultOptions() Options {
	return Options{ShapeWidth: 3}
}

// Render draws the pen lines of page and shapes on a white device sized
// canvas. page may be nil.
func Render(page *rm.Rm, shapes []shape.Shape, opts Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, DeviceWidth, DeviceHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	var offsetX float64
	if page != nil && page.Version == rm.V6 {
		offsetX = DeviceWidth / 2
	}
	shift := func(points []geometry.Point) []geometry.Point {
		if offsetX == 0 {
			return points
		}
		out := make([]geometry.Point, len(points))
		for i, p := range points {
			out[i] = geometry.Pt(p.X+offsetX, p.Y)
		}
		return out
	}

	c := canvas{img: img}
	if page != nil && !opts.HideStrokes {
		for _, layer := range page.Layers {
			for _, line := range layer.Lines {
				if !line.IsPen() {
					continue
				}
				width := float64(line.BrushSize)
				if opts.StrokeWidth > 0 {
					width = opts.StrokeWidth
				}
				c.polyline(shift(line.Stroke()), width, strokeColor)
			}
		}
	}

	shapeWidth := opts.ShapeWidth
	if shapeWidth <= 0 {
		shapeWidth = DefaultOptions().ShapeWidth
	}
	for i, s := range shapes {
		outline := shift(s.Outline(shape.CircleSegments))
		c.polyline(outline, shapeWidth, kindColors[s.Kind])
		if i < len(opts.Labels) && opts.Labels[i] != "" && len(outline) > 0 {
			box := geometry.Bounds(outline)
			c.label(opts.Labels[i], box.MinX+box.Width+4, box.MinY+12)
		}
	}

	log.Trace.Printf("rendered %d shapes", len(shapes))
	return img
}

type canvas struct {
	img *image.RGBA
	z   vector.Rasterizer
}

// polyline draws every segment as a quad of the given width.
func (c *canvas) polyline(points []geometry.Point, width float64, col color.Color) {
	if len(points) == 1 {
		c.segment(points[0], points[0], width, col)
		return
	}
	for i := 1; i < len(points); i++ {
		c.segment(points[i-1], points[i], width, col)
	}
}

// segment rasterizes one quad inside its own bounding box so overlapping
// segments never cancel out.
func (c *canvas) segment(a, b geometry.Point, width float64, col color.Color) {
	half := math.Max(width, 1) / 2

	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	var nx, ny float64
	if length == 0 {
		// a dot, drawn as a square
		nx, ny = 0, half
		a.X -= half
		b.X += half
	} else {
		nx, ny = -dy/length*half, dx/length*half
	}

	quad := [4]geometry.Point{
		geometry.Pt(a.X+nx, a.Y+ny),
		geometry.Pt(b.X+nx, b.Y+ny),
		geometry.Pt(b.X-nx, b.Y-ny),
		geometry.Pt(a.X-nx, a.Y-ny),
	}

	box := geometry.Bounds(quad[:])
	r := image.Rect(
		int(math.Floor(box.MinX)), int(math.Floor(box.MinY)),
		int(math.Ceil(box.MinX+box.Width)), int(math.Ceil(box.MinY+box.Height)),
	).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}

	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	c.z.Reset(r.Dx(), r.Dy())
	c.z.MoveTo(float32(quad[0].X-ox), float32(quad[0].Y-oy))
	for _, p := range quad[1:] {
		c.z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	c.z.ClosePath()
	c.z.Draw(c.img, r, image.NewUniform(col), image.Point{})
}

func (c *canvas) label(text string, x, y float64) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(text)
}

// Thumbnail scales img down to fit maxSize x maxSize, keeping its aspect
// ratio.
func Thumbnail(img image.Image, maxSize uint) image.Image {
	return resize.Thumbnail(maxSize, maxSize, img, resize.Lanczos3)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return errors.Wrap(png.Encode(w, img), "encode png")
}

// SavePNG writes img to filename.
func SavePNG(filename string, img image.Image) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
