// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package normalize converts raw Garmin payloads into typed table rows.

Normalize is a pure function of (domain, object). It performs no I/O, reads
no clock, and returns the same records for the same bytes, which is what
makes repeated syncs idempotent at the store.

Conversions:

  - distances in metres become kilometres, masses in grams become kilograms
  - durations in seconds become minutes (floored) where the column says _min
  - speeds in m/s become "m:ss" pace per kilometre
  - race times given as "h:mm:ss" or seconds become whole seconds

Missing or mistyped optional fields become NULL. Distance and mass readings
of exactly zero are treated as not measured. A payload missing its natural
key fails with *NormalizationError and only that object is skipped.

Activity payloads that embed splitSummaries or hrTimeInZones fan out into
activity_splits and activity_hr_zones rows and report a DetailSet, so the
store can prune detail rows that disappeared from a re-fetched activity.
*/
package normalize
