// Package pages runs the shape finalizer and the gesture recognizer over
// the pen lines of reMarkable pages and writes finalized shapes back.
package pages

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ddvk/rmshapes/archive"
	"github.com/ddvk/rmshapes/encoding/rm"
	"github.com/ddvk/rmshapes/gesture"
	"github.com/ddvk/rmshapes/log"
	"github.com/ddvk/rmshapes/shape"
)

const (
	DefaultMinScore  = 0.8
	DefaultBatchSize = 4
)

// Config holds scan configuration
type Config struct {
	Finalize  bool
	Recognize bool
	// MinScore is the lowest gesture score that is reported
	MinScore  float64
	BatchSize int64

	// nil means the package defaults
	Finalizer  *shape.Finalizer
	Recognizer *gesture.Recognizer
}

// DefaultConfig finalizes and recognizes with the default thresholds.
func DefaultConfig() Config {
	return Config{
		Finalize:  true,
		Recognize: true,
		MinScore:  DefaultMinScore,
		BatchSize: DefaultBatchSize,
	}
}

func (cfg Config) finalizer() *shape.Finalizer {
	if cfg.Finalizer != nil {
		return cfg.Finalizer
	}
	return shape.NewFinalizer(shape.DefaultOptions())
}

func (cfg Config) recognizer() *gesture.Recognizer {
	if cfg.Recognizer != nil {
		return cfg.Recognizer
	}
	return gesture.NewRecognizer(nil)
}

// Report is the scan result of one pen line.
type Report struct {
	ID string `json:"id"`
	// Index is the position of the line in the page's pen line list
	Index   int             `json:"index"`
	Ref     rm.LineRef      `json:"ref"`
	Brush   rm.BrushType    `json:"brush"`
	Points  int             `json:"points"`
	Shape   *shape.Shape    `json:"shape,omitempty"`
	Gesture *gesture.Result `json:"gesture,omitempty"`
}

// Process scans every pen line of page, at most cfg.BatchSize at a time.
// Reports come back in pen line order.
func Process(ctx context.Context, page *rm.Rm, cfg Config) ([]Report, error) {
	if page == nil {
		return nil, errors.New("page is nil")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "scan cancelled")
	}

	finalizer := cfg.finalizer()
	recognizer := cfg.recognizer()

	refs := page.PenLines()
	reports := make([]Report, len(refs))

	sem := semaphore.NewWeighted(cfg.BatchSize)
	var acquireErr error
	for i, ref := range refs {
		// Acquire does not look at ctx while weight is free
		if acquireErr = ctx.Err(); acquireErr != nil {
			break
		}
		if acquireErr = sem.Acquire(ctx, 1); acquireErr != nil {
			log.Trace.Printf("Failed to acquire semaphore: %v", acquireErr)
			break
		}
		go func(i int, ref rm.LineRef) {
			defer sem.Release(1)
			reports[i] = scanLine(page.Line(ref), cfg, finalizer, recognizer)
			reports[i].Index = i
			reports[i].Ref = ref
		}(i, ref)
	}

	// Wait for all goroutines to finish
	if err := sem.Acquire(context.Background(), cfg.BatchSize); err != nil {
		return nil, err
	}
	if acquireErr != nil {
		return nil, errors.Wrap(acquireErr, "scan cancelled")
	}

	log.Trace.Printf("scanned %d pen lines", len(reports))
	return reports, nil
}

func scanLine(line *rm.Line, cfg Config, finalizer *shape.Finalizer, recognizer *gesture.Recognizer) Report {
	stroke := line.Stroke()
	report := Report{
		ID:     uuid.New().String(),
		Brush:  line.BrushType,
		Points: len(stroke),
	}

	if cfg.Finalize {
		s, err := finalizer.Finalize(stroke)
		if err == nil {
			report.Shape = &s
		} else {
			log.Trace.Printf("line kept freehand: %v", err)
		}
	}

	if cfg.Recognize {
		res := recognizer.Recognize(stroke)
		if res.Name != "" && res.Score >= cfg.MinScore {
			report.Gesture = &res
		}
	}

	return report
}

// ProcessArchive scans every page of z. The result is indexed like
// z.Pages. The first failing page cancels the others.
func ProcessArchive(ctx context.Context, z *archive.Zip, cfg Config) ([][]Report, error) {
	result := make([][]Report, len(z.Pages))

	g, gctx := errgroup.WithContext(ctx)
	for i := range z.Pages {
		i := i
		g.Go(func() error {
			reports, err := Process(gctx, z.Pages[i].Data, cfg)
			if err != nil {
				return errors.Wrapf(err, "page %d", i)
			}
			result[i] = reports
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Apply returns a copy of page where every line with a finalized shape is
// replaced by the shape's outline. The brush and the pen attributes of the
// line's first sample are kept.
func Apply(page *rm.Rm, reports []Report) *rm.Rm {
	out := page.Clone()

	for _, r := range reports {
		if r.Shape == nil || !validRef(out, r.Ref) {
			continue
		}
		line := out.Line(r.Ref)
		if len(line.Points) == 0 {
			continue
		}

		outline := r.Shape.Outline(shape.CircleSegments)
		sample := line.Points[0]
		points := make([]rm.Point, len(outline))
		for i, p := range outline {
			points[i] = sample
			points[i].X = float32(p.X)
			points[i].Y = float32(p.Y)
		}
		line.Points = points
	}

	return out
}

func validRef(page *rm.Rm, ref rm.LineRef) bool {
	return ref.Layer >= 0 && ref.Layer < len(page.Layers) &&
		ref.Line >= 0 && ref.Line < len(page.Layers[ref.Layer].Lines)
}

// Shapes returns the finalized shapes of reports in order.
func Shapes(reports []Report) []shape.Shape {
	var shapes []shape.Shape
	for _, r := range reports {
		if r.Shape != nil {
			shapes = append(shapes, *r.Shape)
		}
	}
	return shapes
}
