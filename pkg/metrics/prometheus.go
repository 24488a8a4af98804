package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	downloads    *prometheus.CounterVec
	fetchRetries *prometheus.CounterVec
	rowsExported *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		downloads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vnquote_downloads_total",
				Help: "Total number of CSV download requests by outcome",
			},
			[]string{"source", "status"},
		),
		fetchRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vnquote_fetch_retries_total",
				Help: "Total number of retried history fetch attempts",
			},
			[]string{"source"},
		),
		rowsExported: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vnquote_rows_exported_total",
				Help: "Total number of CSV data rows exported",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vnquote_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordDownload records the outcome of one download request.
func (r *Recorder) RecordDownload(source, status string) {
	r.downloads.WithLabelValues(source, status).Inc()
}

// RecordRetry records a retried fetch attempt.
func (r *Recorder) RecordRetry(source string) {
	r.fetchRetries.WithLabelValues(source).Inc()
}

// RecordRowsExported records exported CSV rows for a symbol.
func (r *Recorder) RecordRowsExported(symbol string, n int) {
	r.rowsExported.WithLabelValues(symbol).Add(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
