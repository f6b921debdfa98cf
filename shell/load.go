package shell

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"
	"github.com/pkg/errors"

	"github.com/ddvk/rmshapes/archive"
	"github.com/ddvk/rmshapes/log"
)

// load opens a .rm page or a zipped notebook and selects page (1 based).
func (ctx *ShellCtxt) load(file string, page int) error {
	zip, err := archive.Open(file)
	if err != nil {
		return err
	}
	ctx.file = file
	ctx.zip = zip
	ctx.page = 0
	ctx.reports = nil

	if page > 0 {
		return ctx.selectPage(page)
	}
	log.Trace.Printf("loaded %s, %d pages", file, len(zip.Pages))
	return nil
}

func (ctx *ShellCtxt) selectPage(page int) error {
	if ctx.zip == nil {
		return errNothingLoaded
	}
	if page < 1 || page > len(ctx.zip.Pages) {
		return errors.Errorf("page %d out of range 1-%d", page, len(ctx.zip.Pages))
	}
	ctx.page = page - 1
	ctx.reports = nil
	return nil
}

func (ctx *ShellCtxt) summary() string {
	page, err := ctx.current()
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("page %d/%d (%s), %d pen lines", ctx.page+1, len(ctx.zip.Pages), page.Version, len(page.PenLines()))
}

func loadCmd(ctx *ShellCtxt, shell *ishell.Shell) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "load",
		Help:      "load a .rm page or a notebook, usage: load [--page N] <file>",
		Completer: fileCompleter,
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("load", flag.ContinueOnError)
			var page int
			flagSet.IntVarP(&page, "page", "p", 0, "page to select, 1 based")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}
			argRest := flagSet.Args()
			if len(argRest) != 1 {
				c.Err(usageErr("load [--page N] <file>"))
				return
			}

			if err := ctx.load(argRest[0], page); err != nil {
				c.Err(err)
				return
			}
			shell.SetPrompt(ctx.prompt())
			c.Println(ctx.summary())
		},
	}
}

func pageCmd(ctx *ShellCtxt, shell *ishell.Shell) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "page",
		Help: "show or select the current page, usage: page [N]",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 1 {
				n, err := strconv.Atoi(c.Args[0])
				if err != nil {
					c.Err(errors.Errorf("bad page number %q", c.Args[0]))
					return
				}
				if err := ctx.selectPage(n); err != nil {
					c.Err(err)
					return
				}
				shell.SetPrompt(ctx.prompt())
			}
			c.Println(ctx.summary())
		},
	}
}
