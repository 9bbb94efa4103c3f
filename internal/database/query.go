// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tomtom215/garmincoach/internal/metrics"
)

const (
	// DefaultQueryLimit is applied when the caller passes 0.
	DefaultQueryLimit = 100
	// MaxQueryLimit caps every read query.
	MaxQueryLimit = 1000
)

// ErrQueryNotAllowed is returned for statements outside the read-only subset.
var ErrQueryNotAllowed = errors.New("only read-only SELECT queries are allowed")

var (
	allowedPrefix = regexp.MustCompile(`(?i)^(SELECT|WITH|DESCRIBE|SHOW|PRAGMA\s+table_info|FROM)\b`)
	blockedWords  = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|ATTACH|DETACH|COPY|EXPORT|IMPORT|INSTALL|LOAD|TRUNCATE|CHECKPOINT|VACUUM|CALL|SET|RESET|GRANT|MERGE)\b`)
)

// QueryResult holds the rows of a read query.
type QueryResult struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated"`
}

// ValidateQuery checks that query is a single read-only statement.
func ValidateQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimRight(q, "; \t\n"))
	if q == "" {
		return "", fmt.Errorf("%w: empty query", ErrQueryNotAllowed)
	}
	if strings.Contains(q, ";") {
		return "", fmt.Errorf("%w: multiple statements", ErrQueryNotAllowed)
	}
	if !allowedPrefix.MatchString(q) {
		return "", ErrQueryNotAllowed
	}
	if m := blockedWords.FindString(q); m != "" {
		return "", fmt.Errorf("%w: %s is not permitted", ErrQueryNotAllowed, strings.ToUpper(m))
	}
	return q, nil
}

// Query runs a read-only SQL statement and returns at most limit rows.
// A limit of 0 means DefaultQueryLimit; larger values are capped at
// MaxQueryLimit.
func (s *Store) Query(ctx context.Context, query string, limit int) (*QueryResult, error) {
	q, err := ValidateQuery(query)
	if err != nil {
		return nil, failure("query", "", err)
	}
	switch {
	case limit <= 0:
		limit = DefaultQueryLimit
	case limit > MaxQueryLimit:
		limit = MaxQueryLimit
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, q)
	if err != nil {
		metrics.RecordDBQuery("query", "", time.Since(start), err)
		return nil, failure("query", "", err)
	}
	defer closeWithLog(rows, "query rows")

	cols, err := rows.Columns()
	if err != nil {
		return nil, failure("query", "", err)
	}

	result := &QueryResult{Columns: cols, Rows: []map[string]any{}}
	for rows.Next() {
		if len(result.Rows) == limit {
			result.Truncated = true
			break
		}
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, failure("query", "", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, failure("query", "", err)
	}
	result.RowCount = len(result.Rows)
	metrics.RecordDBQuery("query", "", time.Since(start), nil)
	return result, nil
}
