// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordDBQuery tests store metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
	}{
		{"successful upsert", "upsert", "sleep", nil},
		{"failed upsert", "upsert", "hrv", errors.New("constraint violation")},
		{"long error truncated", "query", "activities",
			errors.New("this is a very long error message that exceeds fifty characters and should be truncated")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.CollectAndCount(DBQueryErrors)
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)
			after := testutil.CollectAndCount(DBQueryErrors)
			if tt.err != nil && after < before {
				t.Errorf("error series count decreased: %d -> %d", before, after)
			}
		})
	}
}

func TestRecordRecords(t *testing.T) {
	counter := SyncRecordsProcessed.WithLabelValues("body_composition", "inserted")
	before := testutil.ToFloat64(counter)

	RecordRecords("body_composition", "inserted", 3)
	RecordRecords("body_composition", "inserted", 0)

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("records delta = %v, want 3", got)
	}
}

func TestRecordDomainOutcome(t *testing.T) {
	counter := SyncDomainOutcomes.WithLabelValues("fitness_scores", "PARTIAL")
	before := testutil.ToFloat64(counter)

	RecordDomainOutcome("fitness_scores", "PARTIAL")

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("outcome delta = %v, want 1", got)
	}
}

func TestSetWatermark(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	SetWatermark("race_predictions", at)

	if got := testutil.ToFloat64(SyncLastSuccess.WithLabelValues("race_predictions")); got != float64(at.Unix()) {
		t.Errorf("watermark gauge = %v, want %d", got, at.Unix())
	}
}

func TestTrackSyncRun(t *testing.T) {
	before := testutil.ToFloat64(SyncInFlight)
	TrackSyncRun(true)
	if got := testutil.ToFloat64(SyncInFlight); got != before+1 {
		t.Errorf("in flight = %v, want %v", got, before+1)
	}
	TrackSyncRun(false)
	if got := testutil.ToFloat64(SyncInFlight); got != before {
		t.Errorf("in flight = %v, want %v", got, before)
	}
}

func TestRecordRequests(t *testing.T) {
	RecordGarminRequest("sleep", "200", 120*time.Millisecond)
	RecordAPIRequest("POST", "/api/v1/sync", "200", 2*time.Second)
	RecordRetry("sleep")
	RecordSyncRun("SUCCEEDED", 42*time.Second)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/sync", "200")); got < 1 {
		t.Errorf("api requests = %v, want >= 1", got)
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Logf("lint: %s: %s", p.Metric, p.Text)
	}
}
