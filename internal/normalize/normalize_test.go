// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package normalize

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/garmincoach/internal/models"
	"github.com/tomtom215/garmincoach/internal/transport"
)

func obj(payload string) transport.Object {
	return transport.Object{Payload: []byte(payload)}
}

func field(t *testing.T, rec models.Record, name string) any {
	t.Helper()
	v, ok := rec.Field(name)
	if !ok {
		t.Fatalf("record %s has no column %q", rec.Table, name)
	}
	return v
}

func mustNormalize(t *testing.T, domain models.Domain, o transport.Object) Result {
	t.Helper()
	res, err := Normalize(domain, o)
	if err != nil {
		t.Fatalf("Normalize(%s) error = %v", domain, err)
	}
	return res
}

func recordsFor(res Result, table models.Table) []models.Record {
	var out []models.Record
	for _, r := range res.Records {
		if r.Table == table {
			out = append(out, r)
		}
	}
	return out
}

const activityWithSplits = `{
	"activityId": 12345678901,
	"activityName": "Morning Run",
	"activityType": {"typeKey": "running"},
	"startTimeLocal": "2026-03-01 07:15:00",
	"duration": 1830.4,
	"distance": 5012.7,
	"calories": 412,
	"averageHR": 151.6,
	"maxHR": 178,
	"averageSpeed": 2.74,
	"elevationGain": 31.0,
	"steps": 5120,
	"aerobicTrainingEffect": 3.2,
	"vO2MaxValue": 51,
	"splitSummaries": [
		{"distance": 1000, "duration": 365.2, "averageHR": 145, "maxHR": 160, "averageSpeed": 2.74},
		{"distance": 1000, "duration": 360.0, "averageHR": 152, "maxHR": 168, "averageSpeed": 2.78},
		{"distance": 0, "duration": 5.0}
	]
}`

func TestNormalizeActivityFansOutSplits(t *testing.T) {
	res := mustNormalize(t, models.DomainActivities, obj(activityWithSplits))

	acts := recordsFor(res, models.TableActivities)
	if len(acts) != 1 {
		t.Fatalf("got %d activity rows, want 1", len(acts))
	}
	a := acts[0]
	if got := field(t, a, "id"); got != "12345678901" {
		t.Errorf("id = %v, want 12345678901", got)
	}
	if got := field(t, a, "date"); got != "2026-03-01" {
		t.Errorf("date = %v, want 2026-03-01", got)
	}
	if got := field(t, a, "distance_km"); got != 5.01 {
		t.Errorf("distance_km = %v, want 5.01", got)
	}
	if got := field(t, a, "duration_min"); got != 30.5 {
		t.Errorf("duration_min = %v, want 30.5", got)
	}
	if got := field(t, a, "avg_hr"); got != int64(152) {
		t.Errorf("avg_hr = %v, want 152", got)
	}
	if got := field(t, a, "avg_pace"); got != "6:04" {
		t.Errorf("avg_pace = %v, want 6:04", got)
	}
	if string(a.RawJSON) != activityWithSplits {
		t.Errorf("activity raw_json is not the exact payload")
	}

	splits := recordsFor(res, models.TableActivitySplits)
	if len(splits) != 3 {
		t.Fatalf("got %d split rows, want 3", len(splits))
	}
	for i, s := range splits {
		if got := field(t, s, "split_num"); got != int64(i+1) {
			t.Errorf("split %d split_num = %v", i, got)
		}
		if got := field(t, s, "activity_id"); got != "12345678901" {
			t.Errorf("split %d activity_id = %v", i, got)
		}
	}
	if got := field(t, splits[2], "distance_km"); got != nil {
		t.Errorf("zero split distance = %v, want NULL", got)
	}

	want := []models.DetailSet{{Table: models.TableActivitySplits, ActivityID: "12345678901", Count: 3}}
	if !reflect.DeepEqual(res.Details, want) {
		t.Errorf("Details = %+v, want %+v", res.Details, want)
	}
}

func TestNormalizeActivityMissingID(t *testing.T) {
	_, err := Normalize(models.DomainActivities, obj(`{"activityName": "no id"}`))
	var ne *NormalizationError
	if !errors.As(err, &ne) {
		t.Fatalf("error = %v, want *NormalizationError", err)
	}
	if ne.Domain != models.DomainActivities {
		t.Errorf("Domain = %s", ne.Domain)
	}
}

func TestNormalizeHRZones(t *testing.T) {
	payload := `[
		{"zoneNumber": 1, "secsInZone": 120.4, "zoneLowBoundary": 98},
		{"zoneNumber": 2, "secsInZone": 600, "zoneLowBoundary": 118},
		{"zoneNumber": 3, "secsInZone": 900, "zoneLowBoundary": 138}
	]`
	res := mustNormalize(t, models.DomainActivityHRZones,
		transport.Object{Payload: []byte(payload), ActivityID: "42"})

	zones := recordsFor(res, models.TableActivityHRZones)
	if len(zones) != 3 {
		t.Fatalf("got %d zones, want 3", len(zones))
	}
	tests := []struct {
		zone     int64
		min, max any
		duration any
	}{
		{1, int64(98), int64(117), int64(120)},
		{2, int64(118), int64(137), int64(600)},
		{3, int64(138), nil, int64(900)},
	}
	for i, tt := range tests {
		z := zones[i]
		if got := field(t, z, "zone"); got != tt.zone {
			t.Errorf("zone[%d] = %v, want %d", i, got, tt.zone)
		}
		if got := field(t, z, "min_hr"); got != tt.min {
			t.Errorf("zone[%d] min_hr = %v, want %v", i, got, tt.min)
		}
		if got := field(t, z, "max_hr"); got != tt.max {
			t.Errorf("zone[%d] max_hr = %v, want %v", i, got, tt.max)
		}
		if got := field(t, z, "duration_sec"); got != tt.duration {
			t.Errorf("zone[%d] duration_sec = %v, want %v", i, got, tt.duration)
		}
	}
	if len(res.Details) != 1 || res.Details[0].Count != 3 {
		t.Errorf("Details = %+v", res.Details)
	}
}

func TestNormalizeHRZonesRequiresActivity(t *testing.T) {
	_, err := Normalize(models.DomainActivityHRZones, obj(`[]`))
	var ne *NormalizationError
	if !errors.As(err, &ne) {
		t.Fatalf("error = %v, want *NormalizationError", err)
	}
}

func TestNormalizeDailySummaryNullVersusZero(t *testing.T) {
	res := mustNormalize(t, models.DomainDailySummary, obj(`{
		"calendarDate": "2026-03-02",
		"totalSteps": 0,
		"totalDistanceMeters": 8123,
		"activeSeconds": 3599,
		"restingHeartRate": null,
		"averageStressLevel": "n/a"
	}`))
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	r := res.Records[0]
	if got := field(t, r, "date"); got != "2026-03-02" {
		t.Errorf("date = %v", got)
	}
	if got := field(t, r, "steps"); got != int64(0) {
		t.Errorf("steps = %v, want 0", got)
	}
	if got := field(t, r, "distance_km"); got != 8.12 {
		t.Errorf("distance_km = %v, want 8.12", got)
	}
	if got := field(t, r, "active_minutes"); got != int64(59) {
		t.Errorf("active_minutes = %v, want 59", got)
	}
	for _, col := range []string{"resting_hr", "stress_avg", "floors"} {
		if got := field(t, r, col); got != nil {
			t.Errorf("%s = %v, want NULL", col, got)
		}
	}
}

func TestNormalizeDailyFallsBackToRequestedDay(t *testing.T) {
	o := transport.Object{Payload: []byte(`{"restingHeartRate": 48}`), Day: "2026-03-03"}
	res := mustNormalize(t, models.DomainHeartRate, o)
	if got := field(t, res.Records[0], "date"); got != "2026-03-03" {
		t.Errorf("date = %v, want 2026-03-03", got)
	}

	_, err := Normalize(models.DomainHeartRate, obj(`{"restingHeartRate": 48}`))
	var ne *NormalizationError
	if !errors.As(err, &ne) {
		t.Errorf("missing date error = %v, want *NormalizationError", err)
	}
}

func TestNormalizeEmptyPayloads(t *testing.T) {
	tests := []struct {
		domain  models.Domain
		payload string
	}{
		{models.DomainDailySummary, `{}`},
		{models.DomainSleep, `{"dailySleepDTO": null}`},
		{models.DomainSleep, `{}`},
		{models.DomainFitnessScores, `{"calendarDate": "2026-03-01", "endurance": null, "hill": null}`},
	}
	for _, tt := range tests {
		res := mustNormalize(t, tt.domain, obj(tt.payload))
		if len(res.Records) != 0 {
			t.Errorf("%s %s produced %d records, want 0", tt.domain, tt.payload, len(res.Records))
		}
	}
}

func TestNormalizeRejectsNonObjects(t *testing.T) {
	for _, d := range models.AllDomains() {
		if d == models.DomainActivityHRZones {
			continue
		}
		for _, payload := range []string{`[1,2]`, `"text"`, `not json`, ``} {
			_, err := Normalize(d, obj(payload))
			var ne *NormalizationError
			if !errors.As(err, &ne) {
				t.Errorf("Normalize(%s, %q) error = %v, want *NormalizationError", d, payload, err)
			}
		}
	}
}

func TestNormalizeSleep(t *testing.T) {
	res := mustNormalize(t, models.DomainSleep, obj(`{
		"dailySleepDTO": {
			"calendarDate": "2026-03-04",
			"sleepTimeSeconds": 27000,
			"deepSleepSeconds": 5430,
			"lightSleepSeconds": 14400,
			"remSleepSeconds": 7170,
			"awakeSleepSeconds": 600,
			"sleepScores": {"overall": {"value": 82}}
		}
	}`))
	r := res.Records[0]
	want := map[string]any{
		"date": "2026-03-04", "total_sleep_min": int64(450), "deep_sleep_min": int64(90),
		"rem_sleep_min": int64(119), "awake_min": int64(10), "sleep_score": int64(82),
	}
	for col, v := range want {
		if got := field(t, r, col); got != v {
			t.Errorf("%s = %v, want %v", col, got, v)
		}
	}
}

func TestNormalizeBodyCompositionGrams(t *testing.T) {
	res := mustNormalize(t, models.DomainBodyComposition, obj(
		`{"calendarDate": "2026-03-05", "weight": 72460, "bmi": 22.9, "bodyFat": null, "muscleMass": 0}`))
	r := res.Records[0]
	if got := field(t, r, "weight_kg"); got != 72.5 {
		t.Errorf("weight_kg = %v, want 72.5", got)
	}
	if got := field(t, r, "muscle_mass_kg"); got != nil {
		t.Errorf("muscle_mass_kg = %v, want NULL", got)
	}
	if got := field(t, r, "body_fat_pct"); got != nil {
		t.Errorf("body_fat_pct = %v, want NULL", got)
	}
}

func TestNormalizeReadinessFieldFallbacks(t *testing.T) {
	res := mustNormalize(t, models.DomainTrainingReadiness, obj(
		`{"calendarDate": "2026-03-06", "trainingReadinessScore": 71, "trainingReadinessLevel": "HIGH", "recoveryTime": 12}`))
	r := res.Records[0]
	if got := field(t, r, "score"); got != int64(71) {
		t.Errorf("score = %v", got)
	}
	if got := field(t, r, "level"); got != "HIGH" {
		t.Errorf("level = %v", got)
	}
	if got := field(t, r, "recovery_time_hrs"); got != int64(12) {
		t.Errorf("recovery_time_hrs = %v", got)
	}
}

func TestNormalizeHRVSummary(t *testing.T) {
	res := mustNormalize(t, models.DomainHRV, obj(`{
		"hrvSummary": {
			"calendarDate": "2026-03-07",
			"weeklyAvg": 58, "lastNightAvg": 61,
			"baseline": {"lowUpper": 50, "highUpper": 70},
			"status": "BALANCED"
		}
	}`))
	r := res.Records[0]
	want := map[string]any{
		"date": "2026-03-07", "weekly_avg": int64(58), "last_night": int64(61),
		"baseline_low": int64(50), "baseline_high": int64(70), "status": "BALANCED",
	}
	for col, v := range want {
		if got := field(t, r, col); got != v {
			t.Errorf("%s = %v, want %v", col, got, v)
		}
	}
}

func TestNormalizeTrainingStatusPicksPrimaryDevice(t *testing.T) {
	payload := `{
		"calendarDate": "2026-03-08",
		"mostRecentVO2Max": {"generic": {"vo2MaxPreciseValue": 52.4, "fitnessAge": 31}},
		"mostRecentTrainingLoadBalance": {"metricsTrainingLoadBalanceDTOMap": {
			"111": {"monthlyLoadAerobicLow": 100, "monthlyLoadAerobicHigh": 200},
			"999": {"monthlyLoadAerobicLow": 300, "monthlyLoadAerobicHigh": 400, "primaryTrainingDevice": true}
		}},
		"mostRecentTrainingStatus": {"latestTrainingStatusData": {
			"999": {"trainingStatusFeedbackPhrase": "PRODUCTIVE_1"}
		}}
	}`
	for i := 0; i < 5; i++ {
		res := mustNormalize(t, models.DomainTrainingStatus, obj(payload))
		r := res.Records[0]
		if got := field(t, r, "load_7d"); got != 300.0 {
			t.Fatalf("load_7d = %v, want 300", got)
		}
		if got := field(t, r, "load_28d"); got != 400.0 {
			t.Fatalf("load_28d = %v, want 400", got)
		}
		if got := field(t, r, "status"); got != "PRODUCTIVE_1" {
			t.Fatalf("status = %v", got)
		}
		if got := field(t, r, "vo2max"); got != 52.4 {
			t.Fatalf("vo2max = %v", got)
		}
		if got := field(t, r, "fitness_age"); got != int64(31) {
			t.Fatalf("fitness_age = %v", got)
		}
	}
}

func TestNormalizeFitnessScores(t *testing.T) {
	res := mustNormalize(t, models.DomainFitnessScores, obj(
		`{"calendarDate": "2026-03-09", "endurance": {"overallScore": 6543}, "hill": null}`))
	r := res.Records[0]
	if got := field(t, r, "endurance_score"); got != 6543.0 {
		t.Errorf("endurance_score = %v", got)
	}
	if got := field(t, r, "hill_score"); got != nil {
		t.Errorf("hill_score = %v, want NULL", got)
	}
}

func TestNormalizeRacePredictionTimes(t *testing.T) {
	res := mustNormalize(t, models.DomainRacePredictions, obj(`{
		"calendarDate": "2026-03-10",
		"time5K": 1325,
		"time10K": "46:10",
		"timeHalfMarathon": "1:42:05",
		"timeMarathon": "garbage"
	}`))
	r := res.Records[0]
	want := map[string]any{
		"five_k_sec": int64(1325), "ten_k_sec": int64(2770),
		"half_marathon_sec": int64(6125), "marathon_sec": nil,
	}
	for col, v := range want {
		if got := field(t, r, col); got != v {
			t.Errorf("%s = %v, want %v", col, got, v)
		}
	}
}

func TestNormalizePersonalRecord(t *testing.T) {
	res := mustNormalize(t, models.DomainPersonalRecords, obj(`{
		"id": 9001, "typeId": 3, "activityType": "running", "value": 1201.5,
		"activityName": "Parkrun", "actStartDateTimeInGMTFormatted": "2025-11-02T08:00:00.0",
		"activityId": 777
	}`))
	r := res.Records[0]
	want := map[string]any{
		"id": "9001", "type": "3", "activity_type": "running", "value": 1201.5,
		"value_display": "Parkrun", "date": "2025-11-02", "activity_id": "777",
	}
	for col, v := range want {
		if got := field(t, r, col); got != v {
			t.Errorf("%s = %v, want %v", col, got, v)
		}
	}

	if _, err := Normalize(models.DomainPersonalRecords, obj(`{"typeId": 3}`)); err == nil {
		t.Error("record without id normalized without error")
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	first := mustNormalize(t, models.DomainActivities, obj(activityWithSplits))
	for i := 0; i < 10; i++ {
		again := mustNormalize(t, models.DomainActivities, obj(activityWithSplits))
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first normalization", i)
		}
	}
}

func TestNormalizeUnknownDomain(t *testing.T) {
	if _, err := Normalize(models.Domain("steps_by_minute"), obj(`{}`)); err == nil {
		t.Error("unknown domain normalized without error")
	}
}
