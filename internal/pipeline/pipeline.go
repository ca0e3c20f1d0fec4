package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/eew-summary/internal/domain"
	"github.com/couchcryptid/eew-summary/internal/observability"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ReportLister returns the report files to summarize.
type ReportLister interface {
	ListReports(ctx context.Context) ([]string, error)
}

// Transformer turns one report file into a summary row.
type Transformer interface {
	Transform(ctx context.Context, path string) (domain.SummaryRow, error)
}

// TableLoader writes the ranked summary table to its destination.
type TableLoader interface {
	LoadTable(ctx context.Context, rows []domain.SummaryRow) error
}

// Failure records a report that was left out of the summary.
type Failure struct {
	Path string
	Err  error
}

// Reason is the short label used for the skipped-reports metric.
func (f Failure) Reason() string {
	return domain.FailureReason(f.Err)
}

// Result describes one completed run.
type Result struct {
	RunID     string
	Rows      []domain.SummaryRow // ranked and annotated, as written
	Failures  []Failure           // in listing order
	StartedAt time.Time
	Duration  time.Duration
}

// Pipeline orchestrates the list-transform-rank-load run.
type Pipeline struct {
	lister      ReportLister
	transformer Transformer
	loader      TableLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	workers     int
}

// New creates a Pipeline with the given stages and observability. Reports are
// transformed by up to workers goroutines at once.
func New(l ReportLister, t Transformer, tl TableLoader, logger *slog.Logger, metrics *observability.Metrics, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		lister:      l,
		transformer: t,
		loader:      tl,
		logger:      logger,
		metrics:     metrics,
		workers:     workers,
	}
}

type outcome struct {
	row domain.SummaryRow
	err error
}

// Run lists every report, transforms each one, ranks the successes and hands
// the table to the loader. A report that fails to transform is logged and
// skipped; listing, loading and cancellation errors end the run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res := Result{
		RunID:     uuid.NewString(),
		StartedAt: clock.Now(),
	}
	logger := p.logger.With("run_id", res.RunID)

	paths, err := p.lister.ListReports(ctx)
	if err != nil {
		return res, fmt.Errorf("list reports: %w", err)
	}
	p.metrics.ReportsDiscovered.Add(float64(len(paths)))
	logger.Info("run started", "reports", len(paths), "workers", p.workers)

	outcomes, err := p.transformAll(ctx, paths)
	if err != nil {
		return res, err
	}

	rows := make([]domain.SummaryRow, 0, len(paths))
	for i, o := range outcomes {
		if o.err != nil {
			f := Failure{Path: paths[i], Err: o.err}
			logger.Warn("skipping report", "file", f.Path, "reason", f.Reason(), "error", f.Err)
			p.metrics.ReportsSkipped.WithLabelValues(f.Reason()).Inc()
			res.Failures = append(res.Failures, f)
			continue
		}
		rows = append(rows, o.row)
	}

	res.Rows = domain.RankRows(rows)
	if err := p.loader.LoadTable(ctx, res.Rows); err != nil {
		return res, fmt.Errorf("load table: %w", err)
	}

	res.Duration = clock.Since(res.StartedAt)
	p.metrics.SummaryRows.Set(float64(len(res.Rows)))
	p.metrics.RunDuration.Observe(res.Duration.Seconds())

	logger.Info("run complete",
		"rows", len(res.Rows),
		"skipped", len(res.Failures),
		"duration", res.Duration,
	)
	return res, nil
}

// transformAll runs the transformer over paths with bounded concurrency.
// Outcomes are stored by index so the result does not depend on scheduling.
func (p *Pipeline) transformAll(ctx context.Context, paths []string) ([]outcome, error) {
	outcomes := make([]outcome, len(paths))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := p.transformer.Transform(ctx, path)
			outcomes[i] = outcome{row: row, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
