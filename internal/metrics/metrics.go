package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnchorWritesTotal tracks anchor writes by outcome (ok, error)
	AnchorWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remixhub_anchor_writes_total",
			Help: "Total number of registration cache anchor writes",
		},
		[]string{"outcome"},
	)

	// ParentResolutionAttempts tracks individual cache reads made while resolving a parent
	ParentResolutionAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "remixhub_parent_resolution_attempts_total",
			Help: "Total number of registration cache reads made by the parent resolver",
		},
	)

	// ParentResolutionsTotal tracks parent resolutions by outcome
	// (resolved, never_published, not_confirmed, chain_mismatch, error)
	ParentResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remixhub_parent_resolutions_total",
			Help: "Total number of parent resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// BatchLookupKeys tracks the number of distinct keys per batch lookup
	BatchLookupKeys = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "remixhub_batch_lookup_keys",
			Help:    "Distinct cid hashes per batch lookup",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200},
		},
	)

	// PersistenceWarningsTotal tracks cache writes that failed after a successful ledger write
	PersistenceWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remixhub_persistence_warnings_total",
			Help: "Cache writes that failed after the ledger write succeeded",
		},
		[]string{"flow"},
	)

	// LedgerCallsTotal tracks ledger calls by method and outcome
	LedgerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remixhub_ledger_calls_total",
			Help: "Total number of ledger calls",
		},
		[]string{"method", "outcome"},
	)

	// AnchorRepairsTotal tracks rows repaired by the anchor repair sweeper
	AnchorRepairsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "remixhub_anchor_repairs_total",
			Help: "Total number of registrations re-anchored from ledger events",
		},
	)

	// HTTPRequestDuration tracks API latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remixhub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Outcome labels shared by counters
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
