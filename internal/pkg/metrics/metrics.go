// Package metrics provides Prometheus metrics definitions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "statussandbox"

var (
	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "status_code"},
	)

	// StateDocumentWrites counts whole-document writes to the state store.
	StateDocumentWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "document_writes_total",
			Help:      "Number of whole-document writes by document",
		},
		[]string{"document"},
	)

	// StateDocumentRecoveries counts reads that fell back to the zero document.
	StateDocumentRecoveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "document_recoveries_total",
			Help:      "Number of reads recovered with an empty document by cause",
		},
		[]string{"document", "cause"},
	)

	// ProjectionChanges counts component status rewrites made by projection.
	ProjectionChanges = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "component_changes_total",
			Help:      "Number of component status changes applied by projection",
		},
	)

	// SweepResults counts cleanup sweep outcomes.
	SweepResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "items_total",
			Help:      "Cleanup sweep item outcomes by kind and result",
		},
		[]string{"kind", "result"},
	)
)

// RecordSweepResult records a single sweep item outcome.
func RecordSweepResult(kind, result string) {
	SweepResults.WithLabelValues(kind, result).Inc()
}
