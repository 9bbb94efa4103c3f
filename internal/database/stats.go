// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/garmincoach/internal/metrics"
)

// TableStats returns the row count of every telemetry table.
func (s *Store) TableStats(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	stats := make(map[string]int64, len(tableOrder))
	for _, t := range tableOrder {
		var n int64
		// Table names come from the registry, never from input.
		if err := s.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)).Scan(&n); err != nil {
			metrics.RecordDBQuery("stats", string(t), time.Since(start), err)
			return nil, failure("stats", string(t), err)
		}
		stats[string(t)] = n
	}
	metrics.RecordDBQuery("stats", "all", time.Since(start), nil)
	return stats, nil
}

// LatestDates returns the newest date stored in every table that has a date
// column. Empty tables are omitted.
func (s *Store) LatestDates(ctx context.Context) (map[string]string, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	latest := make(map[string]string)
	for _, t := range tableOrder {
		if !registry[t].hasDate {
			continue
		}
		var d sql.NullString
		if err := s.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT MAX(date) FROM %s", t)).Scan(&d); err != nil {
			return nil, failure("stats", string(t), err)
		}
		if d.Valid {
			latest[string(t)] = d.String
		}
	}
	return latest, nil
}
