// Package metrics holds the prometheus instrumentation for the service.
// All helpers are safe on a nil receiver so instrumentation stays optional.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "statement_insights"

// Metrics owns the registry and the collectors the service updates.
type Metrics struct {
	registry *prometheus.Registry

	BatchesProcessed prometheus.Counter
	FilesExtracted   prometheus.Counter
	FilesSkipped     prometheus.Counter
	RowsExtracted    prometheus.Counter
	ReportsBuilt     prometheus.Counter
	ChartFailures    prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
}

// New builds a Metrics with its own registry, including the standard Go and
// process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		BatchesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_processed_total",
			Help:      "Statement upload batches run through the pipeline.",
		}),
		FilesExtracted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_extracted_total",
			Help:      "Statement files that produced a table.",
		}),
		FilesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "Statement files skipped during extraction.",
		}),
		RowsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_extracted_total",
			Help:      "Transaction rows extracted across all files.",
		}),
		ReportsBuilt: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_built_total",
			Help:      "Insight reports computed successfully.",
		}),
		ChartFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_failures_total",
			Help:      "Chart renders that returned an error.",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by handler.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler", "method", "code"}),
	}
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with request duration observation under the
// given handler label.
func (m *Metrics) InstrumentHandler(name string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	obs := m.RequestDuration.MustCurryWith(prometheus.Labels{"handler": name})
	return promhttp.InstrumentHandlerDuration(obs, next)
}

// BatchProcessed records the outcome of one extraction batch.
func (m *Metrics) BatchProcessed(extracted, skipped, rows int) {
	if m == nil {
		return
	}
	m.BatchesProcessed.Inc()
	m.FilesExtracted.Add(float64(extracted))
	m.FilesSkipped.Add(float64(skipped))
	m.RowsExtracted.Add(float64(rows))
}

// ReportBuilt records a successful insights computation.
func (m *Metrics) ReportBuilt() {
	if m == nil {
		return
	}
	m.ReportsBuilt.Inc()
}

// ChartFailed records a chart render error.
func (m *Metrics) ChartFailed() {
	if m == nil {
		return
	}
	m.ChartFailures.Inc()
}
