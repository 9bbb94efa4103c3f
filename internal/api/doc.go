// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package api serves the daemon's HTTP surface on a chi router.

Endpoints:

	GET  /health               store ping, uptime, last run status
	GET  /metrics              Prometheus exposition
	POST /api/v1/sync          run a sync synchronously and return its report
	GET  /api/v1/sync/status   watermarks, row counts, newest dates, last report

Every JSON response uses the models.APIResponse envelope. A sync that ends
FAILED is answered with 502 and code SYNC_FAILED; the report is still
returned in data so the caller can see which domains failed.

Middleware Stack (outermost first):

  - middleware.RequestID: X-Request-ID and correlation ID in the log context
  - chi RealIP and Recoverer
  - middleware.PrometheusMetrics: per-route request metrics
  - httprate: applied to POST /api/v1/sync only

The sync trigger detaches the run from the request context: a client that
disconnects does not abort a run that is already writing. The run is still
bounded by sync.run_timeout.
*/
package api
