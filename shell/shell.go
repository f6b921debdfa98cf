package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/pkg/errors"

	"github.com/ddvk/rmshapes/archive"
	"github.com/ddvk/rmshapes/config"
	"github.com/ddvk/rmshapes/encoding/rm"
	"github.com/ddvk/rmshapes/gesture"
	"github.com/ddvk/rmshapes/pages"
)

var errNothingLoaded = errors.New("no file loaded, use: load <file>")

// ShellCtxt is the state shared by the shell commands.
type ShellCtxt struct {
	ctx  context.Context
	cfg  config.Config
	scan pages.Config

	file string
	zip  *archive.Zip
	page int

	// reports of the last scan of the current page
	reports []pages.Report
}

// NewShellCtxt builds the shell state from cfg.
func NewShellCtxt(ctx context.Context, cfg config.Config) (*ShellCtxt, error) {
	scan, err := cfg.Pages()
	if err != nil {
		return nil, err
	}
	return &ShellCtxt{ctx: ctx, cfg: cfg, scan: scan}, nil
}

func (ctx *ShellCtxt) prompt() string {
	if ctx.zip == nil {
		return "[rmshapes]>"
	}
	return fmt.Sprintf("[%s %d/%d]>", filepath.Base(ctx.file), ctx.page+1, len(ctx.zip.Pages))
}

func (ctx *ShellCtxt) current() (*rm.Rm, error) {
	if ctx.zip == nil {
		return nil, errNothingLoaded
	}
	return ctx.zip.Pages[ctx.page].Data, nil
}

func (ctx *ShellCtxt) recognizer() *gesture.Recognizer {
	return ctx.scan.Recognizer
}

// line resolves a pen line index as printed by ls.
func (ctx *ShellCtxt) line(arg string) (int, *rm.Line, error) {
	page, err := ctx.current()
	if err != nil {
		return 0, nil, err
	}

	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, nil, errors.Errorf("bad line number %q", arg)
	}

	refs := page.PenLines()
	if i < 0 || i >= len(refs) {
		return 0, nil, errors.Errorf("line %d out of range, page has %d pen lines", i, len(refs))
	}
	return i, page.Line(refs[i]), nil
}

// fileCompleter completes local file names.
func fileCompleter(args []string) []string {
	prefix := ""
	if len(args) > 0 {
		prefix = args[len(args)-1]
	}

	matches, err := filepath.Glob(prefix + "*")
	if err != nil {
		return nil
	}
	for i, m := range matches {
		if fi, err := os.Stat(m); err == nil && fi.IsDir() {
			matches[i] = m + string(filepath.Separator)
		}
	}
	return matches
}

// RunShell runs args as a single command, or an interactive shell when
// args is empty.
func RunShell(ctx context.Context, cfg config.Config, args []string) error {
	shellCtx, err := NewShellCtxt(ctx, cfg)
	if err != nil {
		return err
	}

	shell := ishell.New()
	shell.SetPrompt(shellCtx.prompt())

	for _, cmd := range []*ishell.Cmd{
		loadCmd(shellCtx, shell),
		pageCmd(shellCtx, shell),
		lsCmd(shellCtx),
		shapeCmd(shellCtx),
		gestureCmd(shellCtx),
		scanCmd(shellCtx),
		applyCmd(shellCtx),
		pdfCmd(shellCtx),
		pngCmd(shellCtx),
		templatesCmd(shellCtx),
		learnCmd(shellCtx),
	} {
		shell.AddCmd(cmd)
	}

	if len(args) > 0 {
		for _, cmd := range splitCommands(args) {
			if err := shell.Process(cmd...); err != nil {
				return err
			}
		}
		return nil
	}

	shell.Println("reMarkable shape shell, type help for commands")
	shell.Run()
	return nil
}

// splitCommands splits one-shot arguments on standalone ";" so that
// "load page.rm ; scan" runs two commands.
func splitCommands(args []string) [][]string {
	var cmds [][]string
	var cur []string
	for _, a := range args {
		if a == ";" {
			if len(cur) > 0 {
				cmds = append(cmds, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, a)
	}
	if len(cur) > 0 {
		cmds = append(cmds, cur)
	}
	return cmds
}

func usageErr(cmd string) error {
	return errors.New("usage: " + strings.TrimSpace(cmd))
}
