package shell

import (
	"github.com/abiosoft/ishell"
	"github.com/pkg/errors"

	"github.com/ddvk/rmshapes/gesture"
	"github.com/ddvk/rmshapes/log"
)

// learn stores line as a template named name in the configured template
// file and reloads the library.
func (ctx *ShellCtxt) learn(lineArg, name string) error {
	if ctx.cfg.Gesture.Templates == "" {
		return errors.New("no template file configured, set gesture.templates")
	}

	_, line, err := ctx.line(lineArg)
	if err != nil {
		return err
	}
	stroke := line.Stroke()
	if len(stroke) < 2 {
		return errors.Errorf("line %s has too few points", lineArg)
	}

	if err := gesture.AddTemplateFile(ctx.cfg.Gesture.Templates, gesture.Source{Name: name, Points: stroke}); err != nil {
		return err
	}

	lib, err := ctx.cfg.Library()
	if err != nil {
		return err
	}
	ctx.scan.Recognizer = gesture.NewRecognizer(lib)
	ctx.reports = nil
	log.Trace.Printf("learned %s, %d templates", name, lib.Len())
	return nil
}

func templatesCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "templates",
		Help: "list the gesture templates",
		Func: func(c *ishell.Context) {
			for _, name := range ctx.recognizer().Library().Names() {
				c.Println(name)
			}
		},
	}
}

func learnCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "learn",
		Help: "add a pen line as a gesture template, usage: learn <line> <name>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(usageErr("learn <line> <name>"))
				return
			}

			if err := ctx.learn(c.Args[0], c.Args[1]); err != nil {
				c.Err(err)
				return
			}
			c.Printf("learned %s\n", c.Args[1])
		},
	}
}
