// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint of the daemon.
//
// Status field values:
//   - "success": Request completed, see Data
//   - "error": Request failed, see Error
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"run_id": "7d3f...", "status": "SUCCEEDED", "domains": [...]},
//	  "metadata": {"timestamp": "2026-03-01T06:00:00Z", "query_time_ms": 8123}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "lookback_days must be 0 or greater",
//	    "details": {"field": "lookback_days"}
//	  },
//	  "metadata": {"timestamp": "2026-03-01T06:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a structured error body.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid request body or parameters
//   - DATABASE_ERROR: Store unavailable or query failure
//   - SYNC_FAILED: The sync run ended FAILED (the report is still returned)
//   - RATE_LIMIT_EXCEEDED: Too many sync triggers
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SyncRequest is the body of POST /api/v1/sync.
//
// Example:
//
//	{"lookback_days": 7, "domains": ["sleep", "hrv"]}
type SyncRequest struct {
	LookbackDays *int     `json:"lookback_days" validate:"omitempty,min=0,max=3650"`
	Domains      []string `json:"domains" validate:"omitempty,max=13,dive,required,domain"`
}

// SyncStatusResponse is the body of GET /api/v1/sync/status.
type SyncStatusResponse struct {
	Watermarks  []Watermark       `json:"watermarks"`
	TableCounts map[string]int64  `json:"table_counts"`
	LatestDates map[string]string `json:"latest_dates"`
	LastReport  *SyncReport       `json:"last_report,omitempty"`
}
