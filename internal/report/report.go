// Package report runs the tokenizer comparison pipeline end to end.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/23skdu/longbow-tokviz/internal/chart"
	"github.com/23skdu/longbow-tokviz/internal/compare"
	"github.com/23skdu/longbow-tokviz/internal/config"
	"github.com/23skdu/longbow-tokviz/internal/tokenizer"
)

var tracer = otel.Tracer("tokviz-report")

// Acquirer resolves models to tokenizers, in order.
type Acquirer interface {
	AcquireAll(ctx context.Context, models []config.Model) ([]tokenizer.Tokenizer, error)
}

// Viewer displays a saved image.
type Viewer interface {
	Open(ctx context.Context, path string) error
}

// Driver wires acquisition, tabulation and rendering.
type Driver struct {
	Acquirer Acquirer
	Renderer chart.Renderer
	// Viewer is optional; when set the saved image is opened after saving.
	Viewer Viewer
	Out    io.Writer
}

// Result is what a run produced.
type Result struct {
	Table     *compare.Table
	Breakdown *compare.Breakdown
	Path      string
}

// Tokenizers acquires every configured model and pairs it with its display
// name and color.
func (d *Driver) Tokenizers(ctx context.Context, models []config.Model) ([]compare.Named, error) {
	ctx, span := tracer.Start(ctx, "acquire")
	defer span.End()

	tks, err := d.Acquirer.AcquireAll(ctx, models)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "acquire failed")
		return nil, err
	}
	if len(tks) != len(models) {
		return nil, fmt.Errorf("acquired %d tokenizers for %d models", len(tks), len(models))
	}

	named := make([]compare.Named, len(models))
	for i, m := range models {
		c, err := config.ParseColor(m.Color)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", m.Name, err)
		}
		named[i] = compare.Named{Name: m.Name, Color: c, Tokenizer: tks[i]}
	}
	span.SetAttributes(attribute.Int("model_count", len(named)))
	return named, nil
}

// Run acquires the tokenizers, counts tokens, renders both charts, saves the
// figure to cfg.Output.Path and prints one confirmation line to Out. Nothing
// is written when any step before saving fails.
func (d *Driver) Run(ctx context.Context, cfg config.Config) (*Result, error) {
	ctx, span := tracer.Start(ctx, "report")
	defer span.End()
	start := time.Now()

	fail := func(err error) (*Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tks, err := d.Tokenizers(ctx, cfg.Models)
	if err != nil {
		return fail(err)
	}

	var table *compare.Table
	err = stage(ctx, "tabulate", func() error {
		var err error
		table, err = compare.Tabulate(cfg.Samples, tks)
		return err
	})
	if err != nil {
		return fail(err)
	}
	log.Info().Int("entries", table.Len()).Msg("Tabulated token counts")

	var breakdown *compare.Breakdown
	err = stage(ctx, "breakdown", func() error {
		var err error
		breakdown, err = compare.NewBreakdown(cfg.BreakdownText, tks)
		return err
	})
	if err != nil {
		return fail(err)
	}

	var fig *chart.Figure
	err = stage(ctx, "render", func() error {
		var err error
		fig, err = d.Renderer.Render(table, breakdown)
		return err
	})
	if err != nil {
		return fail(fmt.Errorf("render: %w", err))
	}

	path := cfg.Output.Path
	err = stage(ctx, "save", func() error {
		return d.Renderer.Save(fig, path)
	})
	if err != nil {
		return fail(err)
	}
	log.Info().
		Str("file", path).
		Int("dpi", cfg.Output.DPI).
		Dur("elapsed", time.Since(start)).
		Msg("Saved figure")

	if d.Viewer != nil {
		if err := d.Viewer.Open(ctx, path); err != nil {
			// The figure is saved either way.
			log.Warn().Err(err).Str("file", path).Msg("Could not open viewer")
		}
	}

	if _, err := fmt.Fprintf(d.Out, "Visualization saved as '%s'\n", path); err != nil {
		return fail(err)
	}
	return &Result{Table: table, Breakdown: breakdown, Path: path}, nil
}

func stage(ctx context.Context, name string, fn func() error) error {
	_, span := tracer.Start(ctx, name, trace.WithAttributes(attribute.String("stage", name)))
	defer span.End()

	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
		return err
	}
	return nil
}
