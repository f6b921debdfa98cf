package shell

import (
	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"
	"github.com/pkg/errors"

	"github.com/ddvk/rmshapes/geometry"
	"github.com/ddvk/rmshapes/gesture"
	"github.com/ddvk/rmshapes/shape"
)

// ShapeJSON is the finalizer outcome for one line. Error is set when the
// line stays freehand.
type ShapeJSON struct {
	Index int          `json:"index"`
	Shape *shape.Shape `json:"shape,omitempty"`
	Error string       `json:"error,omitempty"`
}

func (ctx *ShellCtxt) finalize(arg string) ([]ShapeJSON, error) {
	if arg != "all" {
		i, line, err := ctx.line(arg)
		if err != nil {
			return nil, err
		}
		return []ShapeJSON{ctx.finalizeLine(i, line.Stroke())}, nil
	}

	page, err := ctx.current()
	if err != nil {
		return nil, err
	}
	refs := page.PenLines()
	out := make([]ShapeJSON, len(refs))
	for i, ref := range refs {
		out[i] = ctx.finalizeLine(i, page.Line(ref).Stroke())
	}
	return out, nil
}

func (ctx *ShellCtxt) finalizeLine(i int, stroke []geometry.Point) ShapeJSON {
	s, err := ctx.scan.Finalizer.Finalize(stroke)
	if err != nil {
		return ShapeJSON{Index: i, Error: errors.Cause(err).Error()}
	}
	return ShapeJSON{Index: i, Shape: &s}
}

func shapeCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "shape",
		Help: "finalize a pen line into a circle, polygon or polyline, usage: shape [--json] <line|all>",
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("shape", flag.ContinueOnError)
			var jsonOutput bool
			flagSet.BoolVarP(&jsonOutput, "json", "j", false, "json output")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}
			argRest := flagSet.Args()
			if len(argRest) != 1 {
				c.Err(usageErr("shape [--json] <line|all>"))
				return
			}

			shapes, err := ctx.finalize(argRest[0])
			if err != nil {
				c.Err(err)
				return
			}

			if jsonOutput {
				if err := displayJSON(c, shapes); err != nil {
					c.Err(err)
				}
				return
			}
			for _, s := range shapes {
				if s.Shape == nil {
					c.Printf("[%d]\tfreehand: %s\n", s.Index, s.Error)
					continue
				}
				c.Printf("[%d]\t%s\n", s.Index, s.Shape)
			}
		},
	}
}

// GestureJSON is the recognizer outcome for one line.
type GestureJSON struct {
	Index  int            `json:"index"`
	Result gesture.Result `json:"result"`
	Match  bool           `json:"match"`
}

func (ctx *ShellCtxt) recognize(arg string) (GestureJSON, error) {
	i, line, err := ctx.line(arg)
	if err != nil {
		return GestureJSON{}, err
	}

	res := ctx.recognizer().Recognize(line.Stroke())
	return GestureJSON{
		Index:  i,
		Result: res,
		Match:  res.Name != "" && res.Score >= ctx.scan.MinScore,
	}, nil
}

func gestureCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "gesture",
		Help: "match a pen line against the templates, usage: gesture [--json] <line>",
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("gesture", flag.ContinueOnError)
			var jsonOutput bool
			flagSet.BoolVarP(&jsonOutput, "json", "j", false, "json output")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}
			argRest := flagSet.Args()
			if len(argRest) != 1 {
				c.Err(usageErr("gesture [--json] <line>"))
				return
			}

			g, err := ctx.recognize(argRest[0])
			if err != nil {
				c.Err(err)
				return
			}

			if jsonOutput {
				if err := displayJSON(c, g); err != nil {
					c.Err(err)
				}
				return
			}
			switch {
			case g.Result.Name == "":
				c.Printf("[%d]\tno match\n", g.Index)
			case g.Match:
				c.Printf("[%d]\t%s (%.3f)\n", g.Index, g.Result.Name, g.Result.Score)
			default:
				c.Printf("[%d]\tbest guess %s (%.3f), below %.2f\n", g.Index, g.Result.Name, g.Result.Score, ctx.scan.MinScore)
			}
		},
	}
}
