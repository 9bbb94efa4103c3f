// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package models defines the data structures shared by the sync engine.

Key Components:

  - Domain: one of the 13 fetchable data categories, each owning one table
  - Record: a normalized row (natural key, non-key columns, raw_json payload)
  - Typed rows: Activity, Sleep, HRV, ... with pointer fields for optional metrics
  - Watermark and Window: persisted progress and the planned fetch interval
  - SyncReport: the per-run, per-domain outcome summary
  - APIResponse: the HTTP response envelope

Model Categories:

1. Store Models:
  - Record, Column, DetailSet
  - One typed struct per table; Record() converts it for the store

2. Sync Models:
  - Watermark, Window, SyncStatus, DomainReport, SyncReport

3. API Models:
  - APIResponse, APIError, Metadata, SyncRequest, SyncStatusResponse

Optional Fields:

Pointer fields distinguish "not reported" (nil, stored as NULL) from a
reported zero. A zero step count is data; a missing one is not.
*/
package models
