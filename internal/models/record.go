// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package models

import (
	"fmt"
	"strings"
)

// Table names one of the 13 relational tables.
type Table string

const (
	TableActivities        Table = "activities"
	TableActivityHRZones   Table = "activity_hr_zones"
	TableActivitySplits    Table = "activity_splits"
	TableDailySummary      Table = "daily_summary"
	TableSleep             Table = "sleep"
	TableHeartRate         Table = "heart_rate"
	TableBodyComposition   Table = "body_composition"
	TableTrainingReadiness Table = "training_readiness"
	TableHRV               Table = "hrv"
	TableTrainingStatus    Table = "training_status"
	TableFitnessScores     Table = "fitness_scores"
	TableRacePredictions   Table = "race_predictions"
	TablePersonalRecords   Table = "personal_records"
)

// Column is a named value destined for one SQL column. A nil Value is NULL.
type Column struct {
	Name  string
	Value any
}

// Record is one normalized row: the natural key, every non-key column, and
// the raw payload snapshot stored in raw_json.
type Record struct {
	Table   Table
	Key     []Column
	Fields  []Column
	RawJSON []byte
}

// KeyString renders the natural key as "col=value/col=value", used for
// per-key locking and log output.
func (r Record) KeyString() string {
	return KeyString(r.Key)
}

// KeyString renders a natural key as "col=value/col=value".
func KeyString(key []Column) string {
	parts := make([]string, len(key))
	for i, c := range key {
		parts[i] = fmt.Sprintf("%s=%v", c.Name, c.Value)
	}
	return strings.Join(parts, "/")
}

// Field returns the value of the named key or non-key column.
func (r Record) Field(name string) (any, bool) {
	for _, c := range r.Key {
		if c.Name == name {
			return c.Value, true
		}
	}
	for _, c := range r.Fields {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// DetailSet states that a payload carried the complete set of detail rows of
// one table for one activity. Stored rows with an index above Count are stale.
type DetailSet struct {
	Table      Table
	ActivityID string
	Count      int
}

// Row is implemented by every typed table struct.
type Row interface {
	Record() Record
}

// nullable turns a typed pointer into a driver value, keeping nil as NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
