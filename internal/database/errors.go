// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package database

import (
	"errors"
	"fmt"
	"io"

	"github.com/tomtom215/garmincoach/internal/logging"
)

// ErrReadOnly is returned when a write is attempted through a read-only store.
var ErrReadOnly = errors.New("store opened read-only")

// StorageFailure wraps every error returned by the store. The store never
// retries; callers decide whether the surrounding work is lost.
type StorageFailure struct {
	Op    string // upsert, prune, watermark_read, watermark_write, stats, query, open
	Table string // empty when the operation is not table-scoped
	Err   error
}

func (e *StorageFailure) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("storage %s on %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageFailure) Unwrap() error {
	return e.Err
}

func failure(op, table string, err error) error {
	return &StorageFailure{Op: op, Table: table, Err: err}
}

// closeWithLog closes a resource and logs any error
// Use this for cleanup operations where errors should be acknowledged but not fail the operation
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
