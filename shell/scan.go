package shell

import (
	"path/filepath"
	"strings"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"
	"github.com/pkg/errors"

	"github.com/ddvk/rmshapes/archive"
	"github.com/ddvk/rmshapes/pages"
)

// scanPage scans the current page and keeps the reports for apply, pdf and
// png.
func (ctx *ShellCtxt) scanPage(minScore float64) ([]pages.Report, error) {
	page, err := ctx.current()
	if err != nil {
		return nil, err
	}

	cfg := ctx.scan
	if minScore >= 0 {
		cfg.MinScore = minScore
	}
	reports, err := pages.Process(ctx.ctx, page, cfg)
	if err != nil {
		return nil, err
	}
	ctx.reports = reports
	return reports, nil
}

// lastReports returns the reports of the last scan, scanning when there
// are none.
func (ctx *ShellCtxt) lastReports() ([]pages.Report, error) {
	if ctx.reports != nil {
		return ctx.reports, nil
	}
	return ctx.scanPage(-1)
}

func displayReport(c *ishell.Context, r pages.Report) {
	shapeText := "freehand"
	if r.Shape != nil {
		shapeText = r.Shape.String()
	}
	gestureText := "-"
	if r.Gesture != nil {
		gestureText = r.Gesture.Name
	}
	c.Printf("[%d]\t%s\tgesture: %s\n", r.Index, shapeText, gestureText)
}

func scanCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "scan",
		Help: "finalize and recognize every pen line, usage: scan [--json] [--min-score F]",
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("scan", flag.ContinueOnError)
			var jsonOutput bool
			var minScore float64
			flagSet.BoolVarP(&jsonOutput, "json", "j", false, "json output")
			flagSet.Float64VarP(&minScore, "min-score", "m", -1, "lowest gesture score to report")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}
			if minScore > 1 {
				c.Err(errors.New("min-score must be at most 1"))
				return
			}

			reports, err := ctx.scanPage(minScore)
			if err != nil {
				c.Err(err)
				return
			}

			if jsonOutput {
				if err := displayJSON(c, reports); err != nil {
					c.Err(err)
				}
				return
			}
			for _, r := range reports {
				displayReport(c, r)
			}
			c.Printf("%d shapes in %d pen lines\n", len(pages.Shapes(reports)), len(reports))
		},
	}
}

// apply writes the current page with finalized shapes in place of the
// freehand lines. A .rm target gets the page alone, anything else the
// whole notebook.
func (ctx *ShellCtxt) apply(out string) (int, error) {
	page, err := ctx.current()
	if err != nil {
		return 0, err
	}
	reports, err := ctx.lastReports()
	if err != nil {
		return 0, err
	}

	beautified := pages.Apply(page, reports)

	if strings.EqualFold(filepath.Ext(out), ".rm") {
		single := archive.Zip{Pages: []archive.Page{{Data: beautified}}}
		return len(pages.Shapes(reports)), single.Save(out)
	}

	notebook := archive.Zip{UUID: ctx.zip.UUID, Pages: make([]archive.Page, len(ctx.zip.Pages))}
	copy(notebook.Pages, ctx.zip.Pages)
	notebook.Pages[ctx.page].Data = beautified
	return len(pages.Shapes(reports)), notebook.Save(out)
}

func applyCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "apply",
		Help:      "write the page with lines replaced by their shapes, usage: apply <out.rm|out.rmdoc>",
		Completer: fileCompleter,
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(usageErr("apply <out.rm|out.rmdoc>"))
				return
			}

			n, err := ctx.apply(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%d lines replaced, written to %s\n", n, c.Args[0])
		},
	}
}
