// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package middleware provides the HTTP middleware of the daemon API.

Key Components:

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request counters and latency histograms

Both have the func(http.Handler) http.Handler shape and plug into chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics labels requests with the matched chi route pattern
(for example "/api/v1/sync") rather than the raw URL path, so unknown
paths collapse into a single "unmatched" series.
*/
package middleware
