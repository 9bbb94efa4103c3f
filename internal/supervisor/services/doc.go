// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package services adapts daemon components to suture v4's Serve pattern.

	type Service interface {
	    Serve(ctx context.Context) error
	}

HTTPServerService wraps the API server. ListenAndServe runs in a goroutine;
context cancellation triggers a graceful Shutdown bounded by the configured
timeout.

SyncService wraps the sync manager's Start/Stop lifecycle. Start performs
an initial run and launches the periodic loop; on cancellation Stop waits
for the loop, then the store is checkpointed so the DuckDB WAL is folded
into the database file before exit.

A non-nil error from Serve tells the supervisor to restart the service;
returning ctx.Err() after cancellation marks a clean stop.
*/
package services
