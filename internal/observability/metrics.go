package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eew_summary"

// Metrics holds the Prometheus counters, histograms, and gauges for a summary run.
type Metrics struct {
	ReportsDiscovered prometheus.Counter
	ReportsParsed     prometheus.Counter
	ReportsSkipped    *prometheus.CounterVec // labels: reason={insufficient_data,reporting_time_not_found,solution_not_found,format,io}
	SummaryRows       prometheus.Gauge

	// ReportLatency is the reporting time minus the reference origin time.
	ReportLatency prometheus.Histogram
	RunDuration   prometheus.Histogram
}

// NewMetrics creates all run metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Register adds the metrics to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register metric: %w", err)
		}
	}
	return nil
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_discovered_total",
			Help:      "Total report files found in the base folder.",
		}),
		ReportsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_parsed_total",
			Help:      "Total reports that produced a summary row.",
		}),
		ReportsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_skipped_total",
			Help:      "Reports excluded from the summary, by reason.",
		}, []string{"reason"}),
		SummaryRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "summary_rows",
			Help:      "Rows written to the last summary table.",
		}),
		ReportLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_latency_seconds",
			Help:      "Reporting time relative to the reference origin time.",
			Buckets:   []float64{0, 5, 10, 15, 20, 30, 45, 60, 120, 300},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete list-parse-rank-write run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ReportsDiscovered,
		m.ReportsParsed,
		m.ReportsSkipped,
		m.SummaryRows,
		m.ReportLatency,
		m.RunDuration,
	}
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for a node exporter textfile collector to pick up.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
