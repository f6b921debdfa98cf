package annotations

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	annotator "github.com/unidoc/unipdf/v3/annotator"
	"github.com/unidoc/unipdf/v3/contentstream"
	"github.com/unidoc/unipdf/v3/contentstream/draw"
	"github.com/unidoc/unipdf/v3/creator"
	pdf "github.com/unidoc/unipdf/v3/model"

	"github.com/ddvk/rmshapes/archive"
	"github.com/ddvk/rmshapes/encoding/rm"
	"github.com/ddvk/rmshapes/geometry"
	"github.com/ddvk/rmshapes/log"
	"github.com/ddvk/rmshapes/shape"
)

const (
	PPI          = 226
	DeviceHeight = 1872
	DeviceWidth  = 1404
)

var rmPageSize = creator.PageSize{445, 594}

type rgb struct{ r, g, b float64 }

var (
	strokeColor = rgb{0.6, 0.6, 0.6}
	kindColors  = map[shape.Kind]rgb{
		shape.Circle:   {0.85, 0.1, 0.1},
		shape.Polygon:  {0.1, 0.3, 0.85},
		shape.Polyline: {0.1, 0.6, 0.2},
	}
)

const shapeLineWidth = 1.5

// PdfGenerator draws the pen lines of a notebook and the shapes finalized
// from them, one PDF page per notebook page.
type PdfGenerator struct {
	zip     *archive.Zip
	shapes  [][]shape.Shape
	options PdfGeneratorOptions
}

type PdfGeneratorOptions struct {
	AddPageNumbers bool
	// ShapesOnly leaves out the original strokes
	ShapesOnly bool
}

// CreatePdfGenerator prepares a generator. shapes is indexed like zip.Pages
// and may be shorter.
func CreatePdfGenerator(zip *archive.Zip, shapes [][]shape.Shape, options PdfGeneratorOptions) *PdfGenerator {
	return &PdfGenerator{zip: zip, shapes: shapes, options: options}
}

// Generate writes the PDF to outputFilePath.
func (p *PdfGenerator) Generate(outputFilePath string) error {
	c, err := p.build()
	if err != nil {
		return err
	}
	return c.WriteToFile(outputFilePath)
}

// Write writes the PDF to w.
func (p *PdfGenerator) Write(w io.Writer) error {
	c, err := p.build()
	if err != nil {
		return err
	}
	return c.Write(w)
}

// pageTransform maps device coordinates to PDF points. v6 pages have their
// origin at the top center.
type pageTransform struct {
	ratio   float64
	height  float64
	offsetX float64
}

func (t pageTransform) apply(x, y float64) (float64, float64) {
	return (x + t.offsetX) * t.ratio, t.height - y*t.ratio
}

func (p *PdfGenerator) build() (*creator.Creator, error) {
	if p.zip == nil || len(p.zip.Pages) == 0 {
		return nil, errors.New("nothing to draw")
	}

	c := creator.New()
	c.SetPageSize(rmPageSize)

	if p.options.AddPageNumbers {
		c.DrawFooter(func(block *creator.Block, args creator.FooterFunctionArgs) {
			para := c.NewParagraph(strconv.Itoa(args.PageNum))
			para.SetFontSize(8)
			para.SetPos(block.Width()-20, block.Height()-10)
			_ = block.Draw(para)
		})
	}

	for i, zipPage := range p.zip.Pages {
		page := c.NewPage()

		t := pageTransform{ratio: c.Width() / DeviceWidth, height: c.Height()}
		if zipPage.Data != nil && zipPage.Data.Version == rm.V6 {
			t.offsetX = DeviceWidth / 2
		}

		contentCreator := contentstream.NewContentCreator()

		if zipPage.Data != nil && !p.options.ShapesOnly {
			if err := drawLines(page, contentCreator, zipPage.Data, t); err != nil {
				return nil, errors.Wrapf(err, "page %d", i)
			}
		}

		var shapes []shape.Shape
		if i < len(p.shapes) {
			shapes = p.shapes[i]
		}
		for _, s := range shapes {
			drawPolyline(contentCreator, s.Outline(shape.CircleSegments), t, kindColors[s.Kind], shapeLineWidth)
		}

		if err := page.AppendContentStream(string(contentCreator.Operations().Bytes())); err != nil {
			return nil, errors.Wrapf(err, "page %d", i)
		}
		log.Trace.Printf("pdf page %d: %d shapes", i, len(shapes))
	}

	return c, nil
}

func drawLines(page *pdf.PdfPage, contentCreator *contentstream.ContentCreator, data *rm.Rm, t pageTransform) error {
	for _, layer := range data.Layers {
		for _, line := range layer.Lines {
			if len(line.Points) < 1 || !line.IsPen() {
				continue
			}

			if line.BrushType == rm.HighlighterV5 || line.BrushType == rm.Highlighter {
				last := len(line.Points) - 1
				x1, y1 := t.apply(float64(line.Points[0].X), float64(line.Points[0].Y))
				x2, _ := t.apply(float64(line.Points[last].X), float64(line.Points[last].Y))
				// make horizontal lines only
				lineDef := annotator.LineAnnotationDef{X1: x1 - 1, Y1: y1, X2: x2, Y2: y1}
				lineDef.LineColor = pdf.NewPdfColorDeviceRGB(1.0, 1.0, 0.0) //yellow
				lineDef.Opacity = 0.5
				lineDef.LineWidth = 5.0
				ann, err := annotator.CreateLineAnnotation(lineDef)
				if err != nil {
					return err
				}
				page.AddAnnotation(ann)
				continue
			}

			width := float64(line.BrushSize) * t.ratio
			drawPolyline(contentCreator, line.Stroke(), t, strokeColor, width)
		}
	}
	return nil
}

func drawPolyline(contentCreator *contentstream.ContentCreator, points []geometry.Point, t pageTransform, color rgb, width float64) {
	if len(points) < 2 {
		return
	}

	path := draw.NewPath()
	for _, pt := range points {
		x, y := t.apply(pt.X, pt.Y)
		path = path.AppendPoint(draw.NewPoint(x, y))
	}

	contentCreator.Add_q()
	contentCreator.Add_w(width)
	contentCreator.Add_RG(color.r, color.g, color.b)
	draw.DrawPathWithCreator(path, contentCreator)
	contentCreator.Add_S()
	contentCreator.Add_Q()
}
