// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package models

// Typed rows of the 13 tables. Pointer fields are optional metrics: nil means
// the vendor did not report the value and is stored as NULL, never as zero.

// Activity is one recorded workout (activities table).
type Activity struct {
	ID             string
	Name           *string
	Type           *string
	Date           *string
	DurationMin    *float64
	DistanceKm     *float64
	Calories       *int64
	AvgHR          *int64
	MaxHR          *int64
	AvgPace        *string
	ElevationM     *float64
	Steps          *int64
	TrainingEffect *float64
	VO2Max         *float64
	RawJSON        []byte
}

// Record implements Row.
func (a Activity) Record() Record {
	return Record{
		Table: TableActivities,
		Key:   []Column{{"id", a.ID}},
		Fields: []Column{
			{"name", nullable(a.Name)},
			{"type", nullable(a.Type)},
			{"date", nullable(a.Date)},
			{"duration_min", nullable(a.DurationMin)},
			{"distance_km", nullable(a.DistanceKm)},
			{"calories", nullable(a.Calories)},
			{"avg_hr", nullable(a.AvgHR)},
			{"max_hr", nullable(a.MaxHR)},
			{"avg_pace", nullable(a.AvgPace)},
			{"elevation_m", nullable(a.ElevationM)},
			{"steps", nullable(a.Steps)},
			{"training_effect", nullable(a.TrainingEffect)},
			{"vo2max", nullable(a.VO2Max)},
		},
		RawJSON: a.RawJSON,
	}
}

// ActivityHRZone is the time spent in one heart-rate zone of an activity.
type ActivityHRZone struct {
	ActivityID  string
	Zone        int64
	ZoneName    *string
	MinHR       *int64
	MaxHR       *int64
	DurationSec *int64
	RawJSON     []byte
}

// Record implements Row.
func (z ActivityHRZone) Record() Record {
	return Record{
		Table: TableActivityHRZones,
		Key:   []Column{{"activity_id", z.ActivityID}, {"zone", z.Zone}},
		Fields: []Column{
			{"zone_name", nullable(z.ZoneName)},
			{"min_hr", nullable(z.MinHR)},
			{"max_hr", nullable(z.MaxHR)},
			{"duration_sec", nullable(z.DurationSec)},
		},
		RawJSON: z.RawJSON,
	}
}

// ActivitySplit is one lap or split segment of an activity, numbered from 1.
type ActivitySplit struct {
	ActivityID     string
	SplitNum       int64
	DistanceKm     *float64
	DurationSec    *float64
	AvgHR          *int64
	MaxHR          *int64
	AvgPace        *string
	ElevationGainM *float64
	ElevationLossM *float64
	Calories       *int64
	RawJSON        []byte
}

// Record implements Row.
func (s ActivitySplit) Record() Record {
	return Record{
		Table: TableActivitySplits,
		Key:   []Column{{"activity_id", s.ActivityID}, {"split_num", s.SplitNum}},
		Fields: []Column{
			{"distance_km", nullable(s.DistanceKm)},
			{"duration_sec", nullable(s.DurationSec)},
			{"avg_hr", nullable(s.AvgHR)},
			{"max_hr", nullable(s.MaxHR)},
			{"avg_pace", nullable(s.AvgPace)},
			{"elevation_gain_m", nullable(s.ElevationGainM)},
			{"elevation_loss_m", nullable(s.ElevationLossM)},
			{"calories", nullable(s.Calories)},
		},
		RawJSON: s.RawJSON,
	}
}

// DailySummary is the all-day activity summary for one date.
type DailySummary struct {
	Date             string
	Steps            *int64
	Floors           *int64
	CaloriesTotal    *int64
	CaloriesActive   *int64
	DistanceKm       *float64
	ActiveMinutes    *int64
	IntensityMinutes *int64
	RestingHR        *int64
	StressAvg        *int64
	BodyBatteryHigh  *int64
	BodyBatteryLow   *int64
	RawJSON          []byte
}

// Record implements Row.
func (d DailySummary) Record() Record {
	return Record{
		Table: TableDailySummary,
		Key:   []Column{{"date", d.Date}},
		Fields: []Column{
			{"steps", nullable(d.Steps)},
			{"floors", nullable(d.Floors)},
			{"calories_total", nullable(d.CaloriesTotal)},
			{"calories_active", nullable(d.CaloriesActive)},
			{"distance_km", nullable(d.DistanceKm)},
			{"active_minutes", nullable(d.ActiveMinutes)},
			{"intensity_minutes", nullable(d.IntensityMinutes)},
			{"resting_hr", nullable(d.RestingHR)},
			{"stress_avg", nullable(d.StressAvg)},
			{"body_battery_high", nullable(d.BodyBatteryHigh)},
			{"body_battery_low", nullable(d.BodyBatteryLow)},
		},
		RawJSON: d.RawJSON,
	}
}

// Sleep is the sleep breakdown of the night ending on Date.
type Sleep struct {
	Date          string
	TotalSleepMin *int64
	DeepSleepMin  *int64
	LightSleepMin *int64
	RemSleepMin   *int64
	AwakeMin      *int64
	SleepScore    *int64
	RawJSON       []byte
}

// Record implements Row.
func (s Sleep) Record() Record {
	return Record{
		Table: TableSleep,
		Key:   []Column{{"date", s.Date}},
		Fields: []Column{
			{"total_sleep_min", nullable(s.TotalSleepMin)},
			{"deep_sleep_min", nullable(s.DeepSleepMin)},
			{"light_sleep_min", nullable(s.LightSleepMin)},
			{"rem_sleep_min", nullable(s.RemSleepMin)},
			{"awake_min", nullable(s.AwakeMin)},
			{"sleep_score", nullable(s.SleepScore)},
		},
		RawJSON: s.RawJSON,
	}
}

// HeartRate is the daily heart-rate summary.
type HeartRate struct {
	Date      string
	RestingHR *int64
	MinHR     *int64
	MaxHR     *int64
	RawJSON   []byte
}

// Record implements Row.
func (h HeartRate) Record() Record {
	return Record{
		Table: TableHeartRate,
		Key:   []Column{{"date", h.Date}},
		Fields: []Column{
			{"resting_hr", nullable(h.RestingHR)},
			{"min_hr", nullable(h.MinHR)},
			{"max_hr", nullable(h.MaxHR)},
		},
		RawJSON: h.RawJSON,
	}
}

// BodyComposition is one weigh-in day.
type BodyComposition struct {
	Date         string
	WeightKg     *float64
	BMI          *float64
	BodyFatPct   *float64
	MuscleMassKg *float64
	RawJSON      []byte
}

// Record implements Row.
func (b BodyComposition) Record() Record {
	return Record{
		Table: TableBodyComposition,
		Key:   []Column{{"date", b.Date}},
		Fields: []Column{
			{"weight_kg", nullable(b.WeightKg)},
			{"bmi", nullable(b.BMI)},
			{"body_fat_pct", nullable(b.BodyFatPct)},
			{"muscle_mass_kg", nullable(b.MuscleMassKg)},
		},
		RawJSON: b.RawJSON,
	}
}

// TrainingReadiness is the morning readiness assessment.
type TrainingReadiness struct {
	Date            string
	Score           *int64
	Level           *string
	HRVStatus       *string
	SleepScore      *int64
	RecoveryTimeHrs *int64
	RawJSON         []byte
}

// Record implements Row.
func (t TrainingReadiness) Record() Record {
	return Record{
		Table: TableTrainingReadiness,
		Key:   []Column{{"date", t.Date}},
		Fields: []Column{
			{"score", nullable(t.Score)},
			{"level", nullable(t.Level)},
			{"hrv_status", nullable(t.HRVStatus)},
			{"sleep_score", nullable(t.SleepScore)},
			{"recovery_time_hrs", nullable(t.RecoveryTimeHrs)},
		},
		RawJSON: t.RawJSON,
	}
}

// HRV is the overnight heart-rate-variability summary.
type HRV struct {
	Date         string
	WeeklyAvg    *int64
	LastNight    *int64
	BaselineLow  *int64
	BaselineHigh *int64
	Status       *string
	RawJSON      []byte
}

// Record implements Row.
func (h HRV) Record() Record {
	return Record{
		Table: TableHRV,
		Key:   []Column{{"date", h.Date}},
		Fields: []Column{
			{"weekly_avg", nullable(h.WeeklyAvg)},
			{"last_night", nullable(h.LastNight)},
			{"baseline_low", nullable(h.BaselineLow)},
			{"baseline_high", nullable(h.BaselineHigh)},
			{"status", nullable(h.Status)},
		},
		RawJSON: h.RawJSON,
	}
}

// TrainingStatus is the daily training load and VO2max assessment.
type TrainingStatus struct {
	Date       string
	Status     *string
	Load7d     *float64
	Load28d    *float64
	VO2Max     *float64
	FitnessAge *int64
	RawJSON    []byte
}

// Record implements Row.
func (t TrainingStatus) Record() Record {
	return Record{
		Table: TableTrainingStatus,
		Key:   []Column{{"date", t.Date}},
		Fields: []Column{
			{"status", nullable(t.Status)},
			{"load_7d", nullable(t.Load7d)},
			{"load_28d", nullable(t.Load28d)},
			{"vo2max", nullable(t.VO2Max)},
			{"fitness_age", nullable(t.FitnessAge)},
		},
		RawJSON: t.RawJSON,
	}
}

// FitnessScore merges the endurance and hill scores of one date.
type FitnessScore struct {
	Date           string
	EnduranceScore *float64
	HillScore      *float64
	RawJSON        []byte
}

// Record implements Row.
func (f FitnessScore) Record() Record {
	return Record{
		Table: TableFitnessScores,
		Key:   []Column{{"date", f.Date}},
		Fields: []Column{
			{"endurance_score", nullable(f.EnduranceScore)},
			{"hill_score", nullable(f.HillScore)},
		},
		RawJSON: f.RawJSON,
	}
}

// RacePrediction holds predicted finish times in seconds.
type RacePrediction struct {
	Date            string
	FiveKSec        *int64
	TenKSec         *int64
	HalfMarathonSec *int64
	MarathonSec     *int64
	RawJSON         []byte
}

// Record implements Row.
func (r RacePrediction) Record() Record {
	return Record{
		Table: TableRacePredictions,
		Key:   []Column{{"date", r.Date}},
		Fields: []Column{
			{"five_k_sec", nullable(r.FiveKSec)},
			{"ten_k_sec", nullable(r.TenKSec)},
			{"half_marathon_sec", nullable(r.HalfMarathonSec)},
			{"marathon_sec", nullable(r.MarathonSec)},
		},
		RawJSON: r.RawJSON,
	}
}

// PersonalRecord is one personal best.
type PersonalRecord struct {
	ID           string
	Type         *string
	ActivityType *string
	Value        *float64
	ValueDisplay *string
	Date         *string
	ActivityID   *string
	RawJSON      []byte
}

// Record implements Row.
func (p PersonalRecord) Record() Record {
	return Record{
		Table: TablePersonalRecords,
		Key:   []Column{{"id", p.ID}},
		Fields: []Column{
			{"type", nullable(p.Type)},
			{"activity_type", nullable(p.ActivityType)},
			{"value", nullable(p.Value)},
			{"value_display", nullable(p.ValueDisplay)},
			{"date", nullable(p.Date)},
			{"activity_id", nullable(p.ActivityID)},
		},
		RawJSON: p.RawJSON,
	}
}
