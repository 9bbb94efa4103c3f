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

// ReadWatermark returns the domain's watermark, or nil if the domain has
// never committed successfully.
func (s *Store) ReadWatermark(ctx context.Context, domain models.Domain) (*models.Watermark, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var syncedAt, successAt sql.NullTime
	start := time.Now()
	err := s.conn.QueryRowContext(ctx,
		`SELECT last_synced_at, last_success_at FROM `+WatermarkTable+` WHERE domain = ?`,
		string(domain)).Scan(&syncedAt, &successAt)
	metrics.RecordDBQuery("watermark_read", WatermarkTable, time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, failure("watermark_read", WatermarkTable, fmt.Errorf("domain %s: %w", domain, err))
	}
	return watermarkFrom(domain, syncedAt, successAt), nil
}

// WriteWatermark records a successful commit of domain up to successAt.
// last_success_at only moves forward; an older successAt leaves it in place.
// last_synced_at is always set to the current time.
func (s *Store) WriteWatermark(ctx context.Context, domain models.Domain, successAt time.Time) error {
	if s.readOnly {
		return failure("watermark_write", WatermarkTable, ErrReadOnly)
	}
	if !domain.Valid() {
		return failure("watermark_write", WatermarkTable, fmt.Errorf("unknown domain %q", domain))
	}

	mu := s.acquireKeyLock(WatermarkTable + "|" + string(domain))
	defer mu.Unlock()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := s.conn.ExecContext(ctx, `INSERT INTO `+WatermarkTable+` (domain, last_synced_at, last_success_at)
		VALUES (?, ?, ?)
		ON CONFLICT (domain) DO UPDATE SET
			last_synced_at = EXCLUDED.last_synced_at,
			last_success_at = GREATEST(last_success_at, EXCLUDED.last_success_at)`,
		string(domain), s.now().UTC(), successAt.UTC())
	metrics.RecordDBQuery("watermark_write", WatermarkTable, time.Since(start), err)
	if err != nil {
		return failure("watermark_write", WatermarkTable, fmt.Errorf("domain %s: %w", domain, err))
	}
	return nil
}

// ListWatermarks returns every stored watermark in canonical domain order.
func (s *Store) ListWatermarks(ctx context.Context) ([]models.Watermark, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT domain, last_synced_at, last_success_at FROM `+WatermarkTable)
	if err != nil {
		return nil, failure("watermark_read", WatermarkTable, err)
	}
	defer closeWithLog(rows, "watermark rows")

	byDomain := make(map[models.Domain]models.Watermark)
	for rows.Next() {
		var name string
		var syncedAt, successAt sql.NullTime
		if err := rows.Scan(&name, &syncedAt, &successAt); err != nil {
			return nil, failure("watermark_read", WatermarkTable, err)
		}
		d := models.Domain(name)
		byDomain[d] = *watermarkFrom(d, syncedAt, successAt)
	}
	if err := rows.Err(); err != nil {
		return nil, failure("watermark_read", WatermarkTable, err)
	}

	out := make([]models.Watermark, 0, len(byDomain))
	for _, d := range models.AllDomains() {
		if wm, ok := byDomain[d]; ok {
			out = append(out, wm)
		}
	}
	return out, nil
}

func watermarkFrom(domain models.Domain, syncedAt, successAt sql.NullTime) *models.Watermark {
	wm := &models.Watermark{Domain: domain}
	if syncedAt.Valid {
		t := syncedAt.Time.UTC()
		wm.LastSyncedAt = &t
	}
	if successAt.Valid {
		t := successAt.Time.UTC()
		wm.LastSuccessAt = &t
	}
	return wm
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
