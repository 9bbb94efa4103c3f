// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - DuckDB store operations
// - Sync runs, domains, and records
// - Garmin API requests and the circuit breaker
// - HTTP API endpoints

var (
	// Store Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Sync Metrics
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of sync runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"status"},
	)

	SyncDomainOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_domain_outcomes_total",
			Help: "Terminal status of each domain per run",
		},
		[]string{"domain", "status"},
	)

	SyncRecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_records_processed_total",
			Help: "Records handled by the sync engine",
		},
		[]string{"table", "result"}, // inserted, updated, unchanged, skipped, failed
	)

	SyncRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_fetch_retries_total",
			Help: "Transient fetch failures that were retried",
		},
		[]string{"domain"},
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of the domain watermark after its last successful commit",
		},
		[]string{"domain"},
	)

	SyncInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_runs_in_flight",
			Help: "Number of sync runs currently executing",
		},
	)

	// Garmin API Metrics
	GarminRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "garmin_request_duration_seconds",
			Help:    "Garmin Connect API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint", "status_code"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 60, 300},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Response Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"cache"},
	)
)

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
}

// RecordDBQuery records a store operation.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordSyncRun records the duration and overall status of a run.
func RecordSyncRun(status string, duration time.Duration) {
	SyncDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordDomainOutcome records the terminal status of one domain.
func RecordDomainOutcome(domain, status string) {
	SyncDomainOutcomes.WithLabelValues(domain, status).Inc()
}

// RecordRecords adds n records with the given result for a table.
func RecordRecords(table, result string, n int) {
	if n <= 0 {
		return
	}
	SyncRecordsProcessed.WithLabelValues(table, result).Add(float64(n))
}

// RecordRetry counts a retried transient fetch failure.
func RecordRetry(domain string) {
	SyncRetries.WithLabelValues(domain).Inc()
}

// SetWatermark publishes the committed watermark of a domain.
func SetWatermark(domain string, at time.Time) {
	SyncLastSuccess.WithLabelValues(domain).Set(float64(at.Unix()))
}

// TrackSyncRun tracks runs in flight.
func TrackSyncRun(inc bool) {
	if inc {
		SyncInFlight.Inc()
	} else {
		SyncInFlight.Dec()
	}
}

// RecordGarminRequest records one Garmin Connect API call.
func RecordGarminRequest(endpoint, statusCode string, duration time.Duration) {
	GarminRequestDuration.WithLabelValues(endpoint, statusCode).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
