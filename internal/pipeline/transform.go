package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/eew-summary/internal/domain"
	"github.com/couchcryptid/eew-summary/internal/observability"
)

// RepTransformer implements Transformer by parsing .rep solution reports.
type RepTransformer struct {
	ref     *domain.PfileEvent
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a RepTransformer. When ref is non-nil each report's
// latency relative to the reference origin time is recorded.
func NewTransformer(ref *domain.PfileEvent, logger *slog.Logger, metrics *observability.Metrics) *RepTransformer {
	return &RepTransformer{
		ref:     ref,
		logger:  logger,
		metrics: metrics,
	}
}

func (t *RepTransformer) Transform(_ context.Context, path string) (domain.SummaryRow, error) {
	sol, err := domain.ReadRep(path)
	if err != nil {
		return domain.SummaryRow{}, err
	}

	t.metrics.ReportsParsed.Inc()
	if t.ref != nil {
		latency := sol.LatencyFrom(t.ref.OriginTime)
		t.metrics.ReportLatency.Observe(latency.Seconds())
		t.logger.Debug("report parsed",
			"file", path,
			"author", sol.Author,
			"mpd", sol.MPD,
			"stations", sol.StationCount,
			"latency", latency,
		)
	}

	return domain.NewSummaryRow(sol), nil
}
