// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package database provides the DuckDB-backed schema store for synced Garmin
telemetry.

The store owns 13 telemetry tables plus sync_watermarks and exposes the
narrow set of operations the sync engine needs:

  - Upsert / UpsertRecord: idempotent write of one row by natural key,
    reporting Inserted, Updated, or Unchanged
  - PruneDetails: drop stale per-activity detail rows beyond a complete set
  - ReadWatermark / WriteWatermark / ListWatermarks: per-domain progress,
    where last_success_at never regresses
  - TableStats / LatestDates: row counts and freshness for status output
  - Query: read-only SQL for ad-hoc exploration, capped at 1000 rows

Concurrency:

Writes are serialized per (table, natural key) through a sync.Map of
mutexes. Different keys and tables proceed in parallel; no lock is global
and none is held across network calls.

Read-Only Access:

OpenReadOnly opens the file with DuckDB access_mode=read_only. The engine
rejects writes on such a connection, and the write methods return
ErrReadOnly before reaching it.

Errors:

Every failure is a *StorageFailure carrying the operation and table. The
store never retries.

Usage:

	store, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer store.Close()

	res, err := store.UpsertRecord(ctx, rec)
*/
package database
