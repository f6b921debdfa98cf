package shell

import (
	"context"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddvk/rmshapes/archive"
	"github.com/ddvk/rmshapes/config"
	"github.com/ddvk/rmshapes/encoding/rm"
	"github.com/ddvk/rmshapes/shape"
)

func testPage() *rm.Rm {
	var circle, check []rm.Point
	for i := 0; i < 64; i++ {
		a := 2 * math.Pi * float64(i) / 64
		circle = append(circle, rm.Point{X: float32(500 + 100*math.Cos(a)), Y: float32(500 + 100*math.Sin(a)), Width: 2})
	}
	for i := 0; i < 12; i++ {
		check = append(check, rm.Point{X: float32(100 + 10*i), Y: float32(1000 + 20*(i%2))})
	}
	return &rm.Rm{Version: rm.V5, Layers: []rm.Layer{{Lines: []rm.Line{
		{BrushType: rm.FinelinerV5, BrushSize: rm.Medium, Points: circle},
		{BrushType: rm.Eraser, Points: circle},
		{BrushType: rm.FinelinerV5, Points: []rm.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}},
		{BrushType: rm.BallpointV5, Points: check},
	}}}}
}

type fixture struct {
	dir string
	ctx *ShellCtxt
}

func newFixture(t *testing.T) *fixture {
	dir, err := ioutil.TempDir("", "shell")
	require.NoError(t, err)

	z := archive.NewZip()
	z.Pages = []archive.Page{{Data: testPage()}, {Data: &rm.Rm{Version: rm.V5}}}
	require.NoError(t, z.Save(filepath.Join(dir, "notebook.rmdoc")))

	cfg := config.Default()
	cfg.Gesture.Templates = filepath.Join(dir, "templates.yaml")
	ctx, err := NewShellCtxt(context.Background(), cfg)
	require.NoError(t, err)
	return &fixture{dir: dir, ctx: ctx}
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

func (f *fixture) close() {
	os.RemoveAll(f.dir)
}

func TestNothingLoaded(t *testing.T) {
	f := newFixture(t)
	defer f.close()

	_, err := f.ctx.lines()
	assert.Equal(t, errNothingLoaded, err)
	_, err = f.ctx.scanPage(-1)
	assert.Equal(t, errNothingLoaded, err)
	assert.Equal(t, "[rmshapes]>", f.ctx.prompt())
}

func TestLoadAndPages(t *testing.T) {
	f := newFixture(t)
	defer f.close()

	require.NoError(t, f.ctx.load(f.path("notebook.rmdoc"), 0))
	assert.Equal(t, "[notebook.rmdoc 1/2]>", f.ctx.prompt())
	assert.Equal(t, "page 1/2 (v5), 3 pen lines", f.ctx.summary())

	require.NoError(t, f.ctx.selectPage(2))
	assert.Equal(t, "page 2/2 (v5), 0 pen lines", f.ctx.summary())
	assert.Error(t, f.ctx.selectPage(3))

	require.NoError(t, f.ctx.load(f.path("notebook.rmdoc"), 2))
	assert.Equal(t, 1, f.ctx.page)
	assert.Error(t, f.ctx.load(f.path("notebook.rmdoc"), 5))
	assert.Error(t, f.ctx.load(f.path("missing.rm"), 0))
}

func TestLinesShapesAndGestures(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	require.NoError(t, f.ctx.load(f.path("notebook.rmdoc"), 1))

	lines, err := f.ctx.lines()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, rm.LineRef{Layer: 0, Line: 3}, lines[2].Ref)
	assert.Equal(t, 64, lines[0].Points)
	assert.InDelta(t, 200, lines[0].Bounds.Width, 0.01)

	shapes, err := f.ctx.finalize("0")
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	require.NotNil(t, shapes[0].Shape)
	assert.Equal(t, shape.Circle, shapes[0].Shape.Kind)

	all, err := f.ctx.finalize("all")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Nil(t, all[1].Shape)
	assert.Equal(t, shape.ErrTooFewPoints.Error(), all[1].Error)

	_, err = f.ctx.finalize("7")
	assert.Error(t, err)
	_, err = f.ctx.finalize("x")
	assert.Error(t, err)

	g, err := f.ctx.recognize("0")
	require.NoError(t, err)
	assert.Equal(t, "circle", g.Result.Name)
	assert.True(t, g.Match)

	g, err = f.ctx.recognize("1")
	require.NoError(t, err)
	assert.Equal(t, "", g.Result.Name)
	assert.False(t, g.Match)
}

func TestScanApplyExport(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	require.NoError(t, f.ctx.load(f.path("notebook.rmdoc"), 1))

	reports, err := f.ctx.scanPage(-1)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	require.NotNil(t, reports[0].Shape)
	require.NotNil(t, reports[0].Gesture)

	strict, err := f.ctx.scanPage(1)
	require.NoError(t, err)
	for _, r := range strict {
		if r.Gesture != nil {
			assert.Equal(t, 1.0, r.Gesture.Score)
		}
	}

	n, err := f.ctx.apply(f.path("out.rm"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	single, err := archive.Open(f.path("out.rm"))
	require.NoError(t, err)
	assert.Len(t, single.Pages[0].Data.Layers[0].Lines[0].Points, shape.CircleSegments+1)

	_, err = f.ctx.apply(f.path("out.rmdoc"))
	require.NoError(t, err)
	notebook, err := archive.Open(f.path("out.rmdoc"))
	require.NoError(t, err)
	assert.Len(t, notebook.Pages, 2)

	require.NoError(t, f.ctx.exportPng(f.path("page.png"), 0))
	require.NoError(t, f.ctx.exportPng(f.path("thumb.png"), 100))
	require.NoError(t, f.ctx.exportPdf(f.path("notebook.pdf")))
	for _, name := range []string{"page.png", "thumb.png", "notebook.pdf"} {
		fi, err := os.Stat(f.path(name))
		require.NoError(t, err)
		assert.True(t, fi.Size() > 0, name)
	}
}

func TestLearn(t *testing.T) {
	f := newFixture(t)
	defer f.close()
	require.NoError(t, f.ctx.load(f.path("notebook.rmdoc"), 1))

	require.NoError(t, f.ctx.learn("2", "zigzag"))
	assert.Equal(t, []string{"circle", "triangle", "rectangle", "line", "zigzag"}, f.ctx.recognizer().Library().Names())

	g, err := f.ctx.recognize("2")
	require.NoError(t, err)
	assert.Equal(t, "zigzag", g.Result.Name)

	// learning the same name again replaces the stored template
	require.NoError(t, f.ctx.learn("2", "zigzag"))
	assert.Equal(t, 5, f.ctx.recognizer().Library().Len())

	f.ctx.cfg.Gesture.Templates = ""
	assert.Error(t, f.ctx.learn("2", "other"))
}

func TestSplitCommands(t *testing.T) {
	assert.Equal(t, [][]string{{"load", "a.rm"}, {"scan", "--json"}},
		splitCommands([]string{"load", "a.rm", ";", "scan", "--json", ";"}))
	assert.Nil(t, splitCommands([]string{";"}))
}

func TestFileCompleter(t *testing.T) {
	f := newFixture(t)
	defer f.close()

	assert.Equal(t, []string{f.path("notebook.rmdoc")}, fileCompleter([]string{f.path("note")}))
	assert.Empty(t, fileCompleter([]string{f.path("zz")}))
}
