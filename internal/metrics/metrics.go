package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Исходы обработки кандидатов: accepted, duplicate, skipped, failed
	IngestOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_candidates_total",
			Help: "Total number of ingestion candidates by outcome",
		},
		[]string{"outcome"},
	)

	IngestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Total number of ingestion runs by status",
		},
		[]string{"status"},
	)

	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Ingestion run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ViewIncrements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "views_increments_total",
			Help: "Total number of article view increments by status",
		},
		[]string{"status"},
	)

	CommentsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comments_submitted_total",
			Help: "Total number of submitted comments by status",
		},
		[]string{"status"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
