// Package metrics defines the Prometheus instrumentation for the service.
// A Metrics value is created once at startup with its own registry and
// threaded through the components that record observations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Chat pipeline metrics
	ChatRequestsTotal   *prometheus.CounterVec
	ChatDurationSeconds prometheus.Histogram
	ResponseModesTotal  *prometheus.CounterVec

	// Extraction metrics
	ExtractionResultsTotal *prometheus.CounterVec

	// Narrative metrics
	NarrativeRequestsTotal *prometheus.CounterVec
	NarrativeFallbackTotal prometheus.Counter

	// Catalog metrics
	CatalogSize         prometheus.Gauge
	CatalogRefreshTotal *prometheus.CounterVec

	// Ingest metrics
	IngestRowsTotal     *prometheus.CounterVec
	IngestRequestsTotal *prometheus.CounterVec

	// Search metrics
	SearchRequestsTotal *prometheus.CounterVec

	// Snapshot metrics
	SnapshotTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec
}

// New creates a Metrics instance with everything registered on registry.
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		ChatRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradelens_chat_requests_total",
				Help: "Total chat requests by outcome",
			},
			[]string{"outcome"}, // resolved, ambiguous, no_entity, malformed, error
		),

		ChatDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gradelens_chat_duration_seconds",
				Help:    "End-to-end chat turn duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
		),

		ResponseModesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradelens_response_modes_total",
				Help: "Total chat replies by output mode",
			},
			[]string{"mode"}, // not_found, numbers, narrative, fallback
		),

		ExtractionResultsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradelens_extraction_results_total",
				Help: "Total extraction passes by signal found",
			},
			[]string{"signal"}, // professor, course, follow_up, none
		),

		NarrativeRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradelens_narrative_requests_total",
				Help: "Total narrative generation attempts by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error
		),

		NarrativeFallbackTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "gradelens_narrative_fallback_total",
				Help: "Total narrative requests served by the deterministic fallback",
			},
		),

		CatalogSize: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "gradelens_catalog_professors",
				Help: "Number of professors in the current catalog snapshot",
			},
		),

		CatalogRefreshTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradelens_catalog_refresh_total",
				Help: "Total catalog refreshes by status",
			},
			[]string{"status"}, // success, error
		),

		IngestRowsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradelens_ingest_rows_total",
				Help: "Total grade rows ingested by source",
			},
			[]string{"source"}, // csv, html
		),

		IngestRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradelens_ingest_requests_total",
				Help: "Total ingest fetches by source and status",
			},
			[]string{"source", "status"},
		),

		SearchRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradelens_search_requests_total",
				Help: "Total course searches by status",
			},
			[]string{"status"}, // success, empty, error
		),

		SnapshotTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradelens_snapshot_total",
				Help: "Total database snapshot uploads by status",
			},
			[]string{"status"}, // success, error
		),

		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradelens_http_requests_total",
				Help: "Total HTTP requests by method, path and status code",
			},
			[]string{"method", "path", "status"},
		),

		HTTPDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gradelens_http_duration_seconds",
				Help:    "HTTP request duration in seconds by path",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"path"},
		),
	}
}

// NewTest creates a Metrics instance on a throwaway registry.
func NewTest() *Metrics {
	return New(prometheus.NewRegistry())
}
