package shell

import (
	"fmt"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"

	"github.com/ddvk/rmshapes/encoding/rm"
	"github.com/ddvk/rmshapes/geometry"
)

// LineJSON describes one pen line of the current page.
type LineJSON struct {
	Index  int                  `json:"index"`
	Ref    rm.LineRef           `json:"ref"`
	Brush  rm.BrushType         `json:"brush"`
	Points int                  `json:"points"`
	Bounds geometry.BoundingBox `json:"bounds"`
}

func (ctx *ShellCtxt) lines() ([]LineJSON, error) {
	page, err := ctx.current()
	if err != nil {
		return nil, err
	}

	refs := page.PenLines()
	out := make([]LineJSON, len(refs))
	for i, ref := range refs {
		line := page.Line(ref)
		out[i] = LineJSON{
			Index:  i,
			Ref:    ref,
			Brush:  line.BrushType,
			Points: len(line.Points),
			Bounds: geometry.Bounds(line.Stroke()),
		}
	}
	return out, nil
}

func displayLine(c *ishell.Context, l LineJSON) {
	c.Printf("[%d]\tbrush %d\t%d points\tbox %.0fx%.0f at (%.0f,%.0f)\n",
		l.Index, l.Brush, l.Points, l.Bounds.Width, l.Bounds.Height, l.Bounds.MinX, l.Bounds.MinY)
}

func lsCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "ls",
		Help: "list the pen lines of the current page, usage: ls [--json]",
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("ls", flag.ContinueOnError)
			var jsonOutput bool
			flagSet.BoolVarP(&jsonOutput, "json", "j", false, "json output")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}

			lines, err := ctx.lines()
			if err != nil {
				c.Err(err)
				return
			}

			if jsonOutput {
				if err := displayJSON(c, lines); err != nil {
					c.Err(err)
				}
				return
			}
			for _, l := range lines {
				displayLine(c, l)
			}
			c.Println(fmt.Sprintf("%d pen lines", len(lines)))
		},
	}
}
