// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package metrics provides Prometheus instrumentation for the sync engine.

All collectors are registered with the default registry through promauto
and exposed by the daemon at GET /metrics.

Metric Families:

  - duckdb_query_duration_seconds, duckdb_query_errors_total: store operations
  - sync_duration_seconds{status}: wall time of a run by overall outcome
  - sync_domain_outcomes_total{domain,status}: per-domain terminal status
  - sync_records_processed_total{table,result}: inserted, updated, unchanged,
    skipped, and failed records
  - sync_fetch_retries_total{domain}: retried transient fetch failures
  - sync_last_success_timestamp{domain}: committed watermark per domain
  - garmin_request_duration_seconds{endpoint,status_code}: vendor API latency
  - circuit_breaker_*: state, request results, and transitions of the
    Garmin API breaker
  - api_*: daemon HTTP endpoints

Usage:

	start := time.Now()
	report := manager.Run(ctx, req)
	metrics.RecordSyncRun(string(report.Status), time.Since(start))

Label values are bounded: domains and tables come from a fixed set of 13,
statuses from the sync state machine, and endpoints from route patterns.
*/
package metrics
