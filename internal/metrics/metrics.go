// Package metrics exposes Prometheus collectors for the orchestrator.
// Import for side effects; collectors register themselves via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Workflow metrics
	WorkflowsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftwright_workflows_started_total",
			Help: "Total number of blog workflows started",
		},
		[]string{"mode"},
	)

	// Completed means the run persisted its artifacts. Failed runs never
	// reach the write sink; compare against WorkflowsStarted for the
	// failure rate.
	WorkflowsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftwright_workflows_completed_total",
			Help: "Total number of blog workflows that persisted a document",
		},
		[]string{"mode"},
	)

	WorkflowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "draftwright_workflow_duration_seconds",
			Help:    "Blog workflow execution duration in seconds",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"mode"},
	)

	// Section worker metrics
	SectionsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftwright_sections_written_total",
			Help: "Total number of sections written by parallel workers",
		},
		[]string{"status"},
	)

	SectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "draftwright_section_duration_seconds",
			Help:    "Single section generation duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
	)

	// Evidence pipeline metrics
	EvidenceExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "draftwright_evidence_extracted_total",
			Help: "Evidence items produced by structured extraction",
		},
	)

	EvidenceDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftwright_evidence_dropped_total",
			Help: "Evidence items dropped during normalization",
		},
		[]string{"reason"}, // duplicate_url, stale, undated
	)

	// Search capability metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftwright_search_requests_total",
			Help: "Search backend requests",
		},
		[]string{"status"},
	)

	SearchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "draftwright_search_cache_hits_total",
			Help: "Search results served from the Redis cache",
		},
	)

	SearchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "draftwright_search_cache_misses_total",
			Help: "Search cache lookups that fell through to the backend",
		},
	)

	// Generation capability metrics
	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftwright_generation_requests_total",
			Help: "Generation backend requests",
		},
		[]string{"status"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "draftwright_generation_duration_seconds",
			Help:    "Generation backend call duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	// Gateway metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftwright_http_requests_total",
			Help: "Gateway HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)
