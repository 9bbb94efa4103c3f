// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/garmincoach/internal/metrics"
	"github.com/tomtom215/garmincoach/internal/models"
)

// UpsertResult reports what an upsert did to the stored row.
type UpsertResult int

const (
	// Inserted means no row with the natural key existed.
	Inserted UpsertResult = iota + 1
	// Updated means the row existed with a different payload and was replaced.
	Updated
	// Unchanged means the stored raw_json already matched; nothing was written.
	Unchanged
)

func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Upsert inserts or replaces one row identified by its natural key.
//
// The write is a single INSERT ... ON CONFLICT DO UPDATE over every non-key
// column plus raw_json, so a row is never left half-updated. Writes are
// serialized per (table, key); different keys proceed concurrently.
func (s *Store) Upsert(ctx context.Context, table models.Table, key, fields []models.Column, rawJSON []byte) (UpsertResult, error) {
	if s.readOnly {
		return 0, failure("upsert", string(table), ErrReadOnly)
	}
	ts, err := lookupTable(table)
	if err != nil {
		return 0, failure("upsert", string(table), err)
	}
	args, err := ts.bindArgs(key, fields, rawJSON)
	if err != nil {
		return 0, failure("upsert", string(table), err)
	}

	lockKey := string(table) + "|" + models.KeyString(key)
	mu := s.acquireKeyLock(lockKey)
	defer mu.Unlock()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	result, err := s.doUpsert(ctx, ts, args, len(ts.key), string(rawJSON))
	metrics.RecordDBQuery("upsert", string(table), time.Since(start), err)
	if err != nil {
		return 0, failure("upsert", string(table), fmt.Errorf("key %s: %w", models.KeyString(key), err))
	}
	return result, nil
}

func (s *Store) doUpsert(ctx context.Context, ts *tableSchema, args []any, keyLen int, rawJSON string) (UpsertResult, error) {
	var stored string
	err := s.conn.QueryRowContext(ctx, ts.selectRawSQL, args[:keyLen]...).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.conn.ExecContext(ctx, ts.upsertSQL, args...); err != nil {
			return 0, err
		}
		return Inserted, nil
	case err != nil:
		return 0, fmt.Errorf("failed to read existing row: %w", err)
	case stored == rawJSON:
		return Unchanged, nil
	}

	if _, err := s.conn.ExecContext(ctx, ts.upsertSQL, args...); err != nil {
		return 0, err
	}
	return Updated, nil
}

// UpsertRecord upserts a normalized record.
func (s *Store) UpsertRecord(ctx context.Context, rec models.Record) (UpsertResult, error) {
	return s.Upsert(ctx, rec.Table, rec.Key, rec.Fields, rec.RawJSON)
}

// PruneDetails deletes the detail rows of one activity whose index is above
// keep. It is called after a complete detail set of keep rows was upserted.
func (s *Store) PruneDetails(ctx context.Context, table models.Table, activityID string, keep int) (int64, error) {
	if s.readOnly {
		return 0, failure("prune", string(table), ErrReadOnly)
	}
	ts, err := lookupTable(table)
	if err != nil {
		return 0, failure("prune", string(table), err)
	}
	if ts.pruneSQL == "" {
		return 0, failure("prune", string(table), fmt.Errorf("table has no per-activity detail rows"))
	}
	if activityID == "" || keep < 0 {
		return 0, failure("prune", string(table), fmt.Errorf("invalid detail set %q/%d", activityID, keep))
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.conn.ExecContext(ctx, ts.pruneSQL, activityID, keep)
	metrics.RecordDBQuery("prune", string(table), time.Since(start), err)
	if err != nil {
		return 0, failure("prune", string(table), err)
	}
	return affected("prune", string(table), res)
}

// affected reads a statement's row count, reporting a driver that cannot
// supply one as a storage failure.
func affected(op, table string, res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, failure(op, table, err)
	}
	return n, nil
}
