// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
database_schema.go - Schema Registry and Table Creation

The registry is the single source of truth for the 13 telemetry tables and
sync_watermarks. Every table and column name that reaches SQL text is taken
from here, never from caller input, so upserts cannot be steered at
arbitrary identifiers.

Tables:
  - activities, activity_hr_zones, activity_splits: intraday, keyed by vendor ids
  - daily_summary, sleep, heart_rate, body_composition, training_readiness,
    hrv, training_status, fitness_scores, race_predictions: keyed by date
  - personal_records: snapshot keyed by record id
  - sync_watermarks: one row per domain

Column Types:
  - TEXT for ids, dates (YYYY-MM-DD) and labels
  - BIGINT for counts, heart rates, and whole seconds or minutes
  - DOUBLE for distances, durations, weights, and scores
  - raw_json TEXT NOT NULL holds the exact payload the row was built from
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/garmincoach/internal/models"
)

// WatermarkTable stores per-domain sync progress.
const WatermarkTable = "sync_watermarks"

type columnDef struct {
	name    string
	sqlType string
}

// tableSchema describes one telemetry table and carries the SQL generated
// from it once at startup.
type tableSchema struct {
	name    models.Table
	key     []columnDef
	columns []columnDef // non-key columns, raw_json excluded
	// detailIndex names the per-activity index column of detail tables.
	detailIndex string
	hasDate     bool

	upsertSQL    string
	selectRawSQL string
	pruneSQL     string
}

func text(name string) columnDef   { return columnDef{name, "TEXT"} }
func bigint(name string) columnDef { return columnDef{name, "BIGINT"} }
func double(name string) columnDef { return columnDef{name, "DOUBLE"} }

var registry = buildRegistry([]*tableSchema{
	{
		name: models.TableActivities,
		key:  []columnDef{text("id")},
		columns: []columnDef{
			text("name"), text("type"), text("date"), double("duration_min"),
			double("distance_km"), bigint("calories"), bigint("avg_hr"), bigint("max_hr"),
			text("avg_pace"), double("elevation_m"), bigint("steps"),
			double("training_effect"), double("vo2max"),
		},
	},
	{
		name:        models.TableActivityHRZones,
		key:         []columnDef{text("activity_id"), bigint("zone")},
		columns:     []columnDef{text("zone_name"), bigint("min_hr"), bigint("max_hr"), bigint("duration_sec")},
		detailIndex: "zone",
	},
	{
		name: models.TableActivitySplits,
		key:  []columnDef{text("activity_id"), bigint("split_num")},
		columns: []columnDef{
			double("distance_km"), double("duration_sec"), bigint("avg_hr"), bigint("max_hr"),
			text("avg_pace"), double("elevation_gain_m"), double("elevation_loss_m"), bigint("calories"),
		},
		detailIndex: "split_num",
	},
	{
		name: models.TableDailySummary,
		key:  []columnDef{text("date")},
		columns: []columnDef{
			bigint("steps"), bigint("floors"), bigint("calories_total"), bigint("calories_active"),
			double("distance_km"), bigint("active_minutes"), bigint("intensity_minutes"),
			bigint("resting_hr"), bigint("stress_avg"), bigint("body_battery_high"), bigint("body_battery_low"),
		},
	},
	{
		name: models.TableSleep,
		key:  []columnDef{text("date")},
		columns: []columnDef{
			bigint("total_sleep_min"), bigint("deep_sleep_min"), bigint("light_sleep_min"),
			bigint("rem_sleep_min"), bigint("awake_min"), bigint("sleep_score"),
		},
	},
	{
		name:    models.TableHeartRate,
		key:     []columnDef{text("date")},
		columns: []columnDef{bigint("resting_hr"), bigint("min_hr"), bigint("max_hr")},
	},
	{
		name:    models.TableBodyComposition,
		key:     []columnDef{text("date")},
		columns: []columnDef{double("weight_kg"), double("bmi"), double("body_fat_pct"), double("muscle_mass_kg")},
	},
	{
		name: models.TableTrainingReadiness,
		key:  []columnDef{text("date")},
		columns: []columnDef{
			bigint("score"), text("level"), text("hrv_status"), bigint("sleep_score"), bigint("recovery_time_hrs"),
		},
	},
	{
		name: models.TableHRV,
		key:  []columnDef{text("date")},
		columns: []columnDef{
			bigint("weekly_avg"), bigint("last_night"), bigint("baseline_low"), bigint("baseline_high"), text("status"),
		},
	},
	{
		name: models.TableTrainingStatus,
		key:  []columnDef{text("date")},
		columns: []columnDef{
			text("status"), double("load_7d"), double("load_28d"), double("vo2max"), bigint("fitness_age"),
		},
	},
	{
		name:    models.TableFitnessScores,
		key:     []columnDef{text("date")},
		columns: []columnDef{double("endurance_score"), double("hill_score")},
	},
	{
		name: models.TableRacePredictions,
		key:  []columnDef{text("date")},
		columns: []columnDef{
			bigint("five_k_sec"), bigint("ten_k_sec"), bigint("half_marathon_sec"), bigint("marathon_sec"),
		},
	},
	{
		name: models.TablePersonalRecords,
		key:  []columnDef{text("id")},
		columns: []columnDef{
			text("type"), text("activity_type"), double("value"), text("value_display"),
			text("date"), text("activity_id"),
		},
	},
})

// tableOrder is the registry order used for stats and schema output.
var tableOrder = func() []models.Table {
	out := make([]models.Table, 0, len(models.AllDomains()))
	for _, d := range models.AllDomains() {
		out = append(out, d.Table())
	}
	return out
}()

func buildRegistry(tables []*tableSchema) map[models.Table]*tableSchema {
	reg := make(map[models.Table]*tableSchema, len(tables))
	for _, ts := range tables {
		ts.prepare()
		reg[ts.name] = ts
	}
	return reg
}

// prepare generates the statements used for every upsert and prune.
func (ts *tableSchema) prepare() {
	keyNames := make([]string, len(ts.key))
	for i, c := range ts.key {
		keyNames[i] = c.name
	}
	allNames := append([]string{}, keyNames...)
	sets := make([]string, 0, len(ts.columns)+1)
	for _, c := range ts.columns {
		allNames = append(allNames, c.name)
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c.name, c.name))
		if c.name == "date" {
			ts.hasDate = true
		}
	}
	for _, k := range keyNames {
		if k == "date" {
			ts.hasDate = true
		}
	}
	allNames = append(allNames, "raw_json")
	sets = append(sets, "raw_json = EXCLUDED.raw_json")

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(allNames)), ", ")
	ts.upsertSQL = fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)\n\t\tON CONFLICT (%s) DO UPDATE SET\n\t\t\t%s",
		ts.name, strings.Join(allNames, ", "), placeholders,
		strings.Join(keyNames, ", "), strings.Join(sets, ",\n\t\t\t"))

	where := make([]string, len(keyNames))
	for i, k := range keyNames {
		where[i] = k + " = ?"
	}
	ts.selectRawSQL = fmt.Sprintf("SELECT raw_json FROM %s WHERE %s", ts.name, strings.Join(where, " AND "))

	if ts.detailIndex != "" {
		ts.pruneSQL = fmt.Sprintf("DELETE FROM %s WHERE activity_id = ? AND %s > ?", ts.name, ts.detailIndex)
	}
}

func (ts *tableSchema) createSQL() string {
	defs := make([]string, 0, len(ts.key)+len(ts.columns)+2)
	keyNames := make([]string, len(ts.key))
	for i, c := range ts.key {
		defs = append(defs, fmt.Sprintf("%s %s NOT NULL", c.name, c.sqlType))
		keyNames[i] = c.name
	}
	for _, c := range ts.columns {
		defs = append(defs, fmt.Sprintf("%s %s", c.name, c.sqlType))
	}
	defs = append(defs, "raw_json TEXT NOT NULL")
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(keyNames, ", ")))
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t\t\t%s\n\t\t)", ts.name, strings.Join(defs, ",\n\t\t\t"))
}

// lookupTable resolves a table through the registry.
func lookupTable(table models.Table) (*tableSchema, error) {
	ts, ok := registry[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return ts, nil
}

func (ts *tableSchema) hasColumn(name string) bool {
	for _, c := range ts.columns {
		if c.name == name {
			return true
		}
	}
	return false
}

// bindArgs orders key and field values by the registry column order.
// Unknown columns are rejected; registry columns the caller did not supply
// are written as NULL so an upsert always replaces the whole row.
func (ts *tableSchema) bindArgs(key, fields []models.Column, rawJSON []byte) ([]any, error) {
	if len(key) != len(ts.key) {
		return nil, fmt.Errorf("key has %d columns, want %d", len(key), len(ts.key))
	}
	keyVals := make(map[string]any, len(key))
	for _, c := range key {
		keyVals[c.Name] = c.Value
	}
	args := make([]any, 0, len(ts.key)+len(ts.columns)+1)
	for _, c := range ts.key {
		v, ok := keyVals[c.name]
		if !ok {
			return nil, fmt.Errorf("missing key column %q", c.name)
		}
		if v == nil {
			return nil, fmt.Errorf("key column %q is NULL", c.name)
		}
		args = append(args, v)
	}

	fieldVals := make(map[string]any, len(fields))
	for _, c := range fields {
		if !ts.hasColumn(c.Name) {
			return nil, fmt.Errorf("unknown column %q", c.Name)
		}
		fieldVals[c.Name] = c.Value
	}
	for _, c := range ts.columns {
		args = append(args, fieldVals[c.name])
	}

	if len(rawJSON) == 0 {
		return nil, fmt.Errorf("raw_json is required")
	}
	return append(args, string(rawJSON)), nil
}

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the telemetry tables and the watermark table.
func (s *Store) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := make([]string, 0, len(tableOrder)+1)
	for _, t := range tableOrder {
		queries = append(queries, registry[t].createSQL())
	}
	queries = append(queries, `CREATE TABLE IF NOT EXISTS `+WatermarkTable+` (
			domain TEXT PRIMARY KEY,
			last_synced_at TIMESTAMP,
			last_success_at TIMESTAMP
		)`)

	for _, query := range queries {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// TableInfo describes one table for schema exploration.
type TableInfo struct {
	Name    string   `json:"name"`
	Key     []string `json:"key"`
	Columns []string `json:"columns"`
}

// Schema returns the registry in canonical order.
func Schema() []TableInfo {
	out := make([]TableInfo, 0, len(tableOrder))
	for _, t := range tableOrder {
		ts := registry[t]
		info := TableInfo{Name: string(t)}
		for _, c := range ts.key {
			info.Key = append(info.Key, c.name)
		}
		for _, c := range ts.columns {
			info.Columns = append(info.Columns, c.name+" "+c.sqlType)
		}
		info.Columns = append(info.Columns, "raw_json TEXT")
		out = append(out, info)
	}
	return out
}
