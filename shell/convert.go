package shell

import (
	"fmt"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"

	"github.com/ddvk/rmshapes/annotations"
	"github.com/ddvk/rmshapes/pages"
	"github.com/ddvk/rmshapes/shape"
	"github.com/ddvk/rmshapes/visualize"
)

// exportPdf draws every page of the notebook with its finalized shapes.
func (ctx *ShellCtxt) exportPdf(out string) error {
	if ctx.zip == nil {
		return errNothingLoaded
	}

	result, err := pages.ProcessArchive(ctx.ctx, ctx.zip, ctx.scan)
	if err != nil {
		return err
	}
	shapes := make([][]shape.Shape, len(result))
	for i, reports := range result {
		shapes[i] = pages.Shapes(reports)
	}

	return annotations.CreatePdfGenerator(ctx.zip, shapes, annotations.PdfGeneratorOptions{AddPageNumbers: true}).Generate(out)
}

// exportPng renders the current page with its shapes labelled by gesture.
func (ctx *ShellCtxt) exportPng(out string, thumb uint) error {
	page, err := ctx.current()
	if err != nil {
		return err
	}
	reports, err := ctx.lastReports()
	if err != nil {
		return err
	}

	opts := visualize.DefaultOptions()
	var shapes []shape.Shape
	for _, r := range reports {
		if r.Shape == nil {
			continue
		}
		shapes = append(shapes, *r.Shape)
		label := ""
		if r.Gesture != nil {
			label = fmt.Sprintf("%s %.2f", r.Gesture.Name, r.Gesture.Score)
		}
		opts.Labels = append(opts.Labels, label)
	}

	img := visualize.Render(page, shapes, opts)
	if thumb > 0 {
		return visualize.SavePNG(out, visualize.Thumbnail(img, thumb))
	}
	return visualize.SavePNG(out, img)
}

func pdfCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "pdf",
		Help:      "export the notebook and its shapes to PDF, usage: pdf <out.pdf>",
		Completer: fileCompleter,
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(usageErr("pdf <out.pdf>"))
				return
			}

			c.Println(fmt.Sprintf("converting to PDF: [%s]...", c.Args[0]))
			if err := ctx.exportPdf(c.Args[0]); err != nil {
				c.Err(fmt.Errorf("failed to write %s: %v", c.Args[0], err))
				return
			}
			c.Println("OK")
		},
	}
}

func pngCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "png",
		Help:      "render the current page and its shapes, usage: png [--thumb N] <out.png>",
		Completer: fileCompleter,
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("png", flag.ContinueOnError)
			var thumb uint
			flagSet.UintVarP(&thumb, "thumb", "t", 0, "scale down to fit NxN")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}
			argRest := flagSet.Args()
			if len(argRest) != 1 {
				c.Err(usageErr("png [--thumb N] <out.png>"))
				return
			}

			c.Printf("converting page %d to PNG: [%s]...", ctx.page+1, argRest[0])
			if err := ctx.exportPng(argRest[0], thumb); err != nil {
				c.Err(fmt.Errorf("failed to write %s: %v", argRest[0], err))
				return
			}
			c.Println(" OK")
		},
	}
}
