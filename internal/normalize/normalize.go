// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package normalize

import (
	"errors"
	"fmt"

	"github.com/tomtom215/garmincoach/internal/models"
	"github.com/tomtom215/garmincoach/internal/transport"
)

// NormalizationError marks a payload that cannot become a row. It is
// never retryable: the same bytes will fail the same way.
type NormalizationError struct {
	Domain models.Domain
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s: %s", e.Domain, e.Reason)
}

func invalid(domain models.Domain, format string, args ...any) error {
	return &NormalizationError{Domain: domain, Reason: fmt.Sprintf(format, args...)}
}

// Result is the output of one payload: rows for one or more tables, plus
// the complete detail sets the payload carried.
type Result struct {
	Records []models.Record
	Details []models.DetailSet
}

func (r *Result) add(rows ...models.Row) {
	for _, row := range rows {
		r.Records = append(r.Records, row.Record())
	}
}

type normalizer func(obj transport.Object) (Result, error)

var normalizers = map[models.Domain]normalizer{
	models.DomainActivities:        normalizeActivity,
	models.DomainActivitySplits:    normalizeSplitsPayload,
	models.DomainActivityHRZones:   normalizeHRZonesPayload,
	models.DomainDailySummary:      normalizeDailySummary,
	models.DomainSleep:             normalizeSleep,
	models.DomainHeartRate:         normalizeHeartRate,
	models.DomainBodyComposition:   normalizeBodyComposition,
	models.DomainTrainingReadiness: normalizeTrainingReadiness,
	models.DomainHRV:               normalizeHRV,
	models.DomainTrainingStatus:    normalizeTrainingStatus,
	models.DomainFitnessScores:     normalizeFitnessScore,
	models.DomainRacePredictions:   normalizeRacePrediction,
	models.DomainPersonalRecords:   normalizePersonalRecord,
}

// Normalize converts one raw payload of domain into typed records.
//
// It is pure: no I/O, no clock, and identical input yields identical
// output. Optional fields that are missing or of the wrong type become nil
// (SQL NULL). A payload without its natural key, or one that is not valid
// JSON, yields *NormalizationError. A payload that carries no data for its
// day yields an empty Result.
func Normalize(domain models.Domain, obj transport.Object) (Result, error) {
	fn, ok := normalizers[domain]
	if !ok {
		return Result{}, invalid(domain, "unknown domain")
	}
	res, err := fn(obj)
	if err != nil {
		var ne *NormalizationError
		if !errors.As(err, &ne) {
			err = invalid(domain, "%v", err)
		}
		return Result{}, err
	}
	return res, nil
}

// dayKey resolves the date key of a daily payload: its own calendarDate,
// falling back to the day it was requested for.
func dayKey(domain models.Domain, m map[string]any, obj transport.Object) (string, error) {
	if d := calendarDate(m["calendarDate"]); d != "" {
		return d, nil
	}
	if d := calendarDate(obj.Day); d != "" {
		return d, nil
	}
	return "", invalid(domain, "missing date")
}
