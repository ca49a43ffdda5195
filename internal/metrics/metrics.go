package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several instances can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	LinesProcessed prometheus.Counter
	RowsInserted   prometheus.Counter
	RowsDuplicate  prometheus.Counter
	LinesMalformed prometheus.Counter
	BatchFailures  prometheus.Counter
	BatchDuration  prometheus.Histogram
	Sessions       *prometheus.CounterVec
	Reports        *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		LinesProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "registry_import_lines_processed_total",
			Help: "Source lines consumed by the registry importer",
		}),
		RowsInserted: f.NewCounter(prometheus.CounterOpts{
			Name: "registry_import_rows_inserted_total",
			Help: "Taxpayer rows newly written to the registry",
		}),
		RowsDuplicate: f.NewCounter(prometheus.CounterOpts{
			Name: "registry_import_rows_duplicate_total",
			Help: "Parsed rows skipped because the identifier already existed",
		}),
		LinesMalformed: f.NewCounter(prometheus.CounterOpts{
			Name: "registry_import_lines_malformed_total",
			Help: "Source lines rejected by the parser",
		}),
		BatchFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "registry_import_batch_failures_total",
			Help: "Batches whose store write failed",
		}),
		BatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_import_batch_duration_seconds",
			Help:    "Wall time to parse and write one batch",
			Buckets: prometheus.DefBuckets,
		}),
		Sessions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_import_sessions_total",
			Help: "Importer sessions by final status",
		}, []string{"status"}),
		Reports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscal_reports_rendered_total",
			Help: "Reports rendered by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
