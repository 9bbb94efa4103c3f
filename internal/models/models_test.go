// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package models

import (
	"testing"
	"time"
)

func TestParseDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Domain
		wantErr bool
	}{
		{"sleep", DomainSleep, false},
		{"  HRV ", DomainHRV, false},
		{"activity-splits", DomainActivitySplits, false},
		{"Training_Readiness", DomainTrainingReadiness, false},
		{"steps", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDomain(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDomain(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDomains(t *testing.T) {
	t.Parallel()

	all, err := ParseDomains(nil)
	if err != nil {
		t.Fatalf("ParseDomains(nil) error = %v", err)
	}
	if len(all) != 13 {
		t.Fatalf("ParseDomains(nil) returned %d domains, want 13", len(all))
	}

	got, err := ParseDomains([]string{"sleep", "activities", "sleep"})
	if err != nil {
		t.Fatalf("ParseDomains error = %v", err)
	}
	if len(got) != 2 || got[0] != DomainActivities || got[1] != DomainSleep {
		t.Errorf("ParseDomains = %v, want [activities sleep]", got)
	}

	if _, err := ParseDomains([]string{"sleep", "bogus"}); err == nil {
		t.Error("expected error for unknown domain")
	}
}

func TestDomainGranularityAndTable(t *testing.T) {
	t.Parallel()

	for _, d := range AllDomains() {
		if string(d.Table()) != string(d) {
			t.Errorf("domain %s maps to table %s", d, d.Table())
		}
	}
	if DomainActivities.Granularity() != Intraday {
		t.Error("activities should be intraday")
	}
	if DomainPersonalRecords.Granularity() != Intraday {
		t.Error("personal_records should be intraday")
	}
	if DomainSleep.Granularity() != Daily {
		t.Error("sleep should be daily")
	}
}

func TestRecordNullableFields(t *testing.T) {
	t.Parallel()

	steps := int64(0)
	rec := DailySummary{Date: "2026-03-01", Steps: &steps, RawJSON: []byte(`{}`)}.Record()

	if rec.Table != TableDailySummary {
		t.Errorf("Table = %s", rec.Table)
	}
	if rec.KeyString() != "date=2026-03-01" {
		t.Errorf("KeyString = %q", rec.KeyString())
	}
	v, ok := rec.Field("steps")
	if !ok || v != int64(0) {
		t.Errorf("steps = %v (%v), want reported zero", v, ok)
	}
	v, ok = rec.Field("floors")
	if !ok || v != nil {
		t.Errorf("floors = %v, want nil for unreported value", v)
	}
	if _, ok := rec.Field("nope"); ok {
		t.Error("Field should report unknown column as missing")
	}
}

func TestCompositeKeyString(t *testing.T) {
	t.Parallel()

	rec := ActivitySplit{ActivityID: "42", SplitNum: 3}.Record()
	if got := rec.KeyString(); got != "activity_id=42/split_num=3" {
		t.Errorf("KeyString = %q", got)
	}
}

func TestWindowDays(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	w := Window{
		Start: time.Date(2026, 2, 27, 0, 0, 0, 0, loc),
		End:   time.Date(2026, 3, 2, 0, 0, 0, 0, loc),
	}
	days := w.Days()
	want := []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}
	if len(days) != len(want) {
		t.Fatalf("Days() = %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("Days()[%d] = %s, want %s", i, days[i], want[i])
		}
	}

	if !w.Contains(w.Start) || !w.Contains(w.End) {
		t.Error("window bounds should be inclusive")
	}
	if w.Contains(w.End.Add(time.Second)) {
		t.Error("instant after End should be outside")
	}
	if (Window{Start: w.End, End: w.Start}).Days() != nil {
		t.Error("inverted window should have no days")
	}
}

func TestWorstAndFinalize(t *testing.T) {
	t.Parallel()

	if Worst(StatusSucceeded, StatusPartial) != StatusPartial {
		t.Error("PARTIAL should outrank SUCCEEDED")
	}
	if Worst(StatusFailed, StatusPartial) != StatusFailed {
		t.Error("FAILED should outrank PARTIAL")
	}

	r := &SyncReport{Domains: []DomainReport{
		{Domain: DomainSleep, Status: StatusSucceeded, Counts: RecordCounts{Fetched: 3, Inserted: 3}},
		{Domain: DomainHRV, Status: StatusPartial, Counts: RecordCounts{Fetched: 2, Inserted: 1, Skipped: 1}},
	}}
	r.Finalize(time.Now())
	if r.Status != StatusPartial {
		t.Errorf("Status = %s, want PARTIAL", r.Status)
	}
	if r.Totals.Fetched != 5 || r.Totals.Inserted != 4 || r.Totals.Skipped != 1 {
		t.Errorf("Totals = %+v", r.Totals)
	}
	if r.Domain(DomainHRV) == nil || r.Domain(DomainActivities) != nil {
		t.Error("Domain lookup mismatch")
	}

	empty := &SyncReport{}
	empty.Finalize(time.Now())
	if empty.Status != StatusSucceeded {
		t.Errorf("empty run status = %s", empty.Status)
	}
}
