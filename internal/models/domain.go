// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package models

import (
	"fmt"
	"strings"
)

// Domain is one fetchable data category. Every domain owns exactly one
// table of the same name and one watermark row.
type Domain string

const (
	DomainActivities        Domain = "activities"
	DomainActivityHRZones   Domain = "activity_hr_zones"
	DomainActivitySplits    Domain = "activity_splits"
	DomainDailySummary      Domain = "daily_summary"
	DomainSleep             Domain = "sleep"
	DomainHeartRate         Domain = "heart_rate"
	DomainBodyComposition   Domain = "body_composition"
	DomainTrainingReadiness Domain = "training_readiness"
	DomainHRV               Domain = "hrv"
	DomainTrainingStatus    Domain = "training_status"
	DomainFitnessScores     Domain = "fitness_scores"
	DomainRacePredictions   Domain = "race_predictions"
	DomainPersonalRecords   Domain = "personal_records"
)

// Granularity controls how a domain's fetch window ends.
type Granularity int

const (
	// Daily domains are keyed by calendar date; windows end at today 00:00.
	Daily Granularity = iota
	// Intraday domains carry timestamps; windows end at now.
	Intraday
)

// allDomains is the canonical processing and reporting order.
var allDomains = []Domain{
	DomainActivities,
	DomainActivityHRZones,
	DomainActivitySplits,
	DomainDailySummary,
	DomainSleep,
	DomainHeartRate,
	DomainBodyComposition,
	DomainTrainingReadiness,
	DomainHRV,
	DomainTrainingStatus,
	DomainFitnessScores,
	DomainRacePredictions,
	DomainPersonalRecords,
}

// AllDomains returns every domain in canonical order.
func AllDomains() []Domain {
	out := make([]Domain, len(allDomains))
	copy(out, allDomains)
	return out
}

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	for _, known := range allDomains {
		if d == known {
			return true
		}
	}
	return false
}

// Table returns the table the domain's primary rows are written to.
func (d Domain) Table() Table {
	return Table(d)
}

// Granularity returns the window granularity of the domain.
func (d Domain) Granularity() Granularity {
	switch d {
	case DomainActivities, DomainActivityHRZones, DomainActivitySplits, DomainPersonalRecords:
		return Intraday
	default:
		return Daily
	}
}

func (d Domain) String() string {
	return string(d)
}

// ParseDomain converts a user-supplied name (case and dash insensitive) to a Domain.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !d.Valid() {
		return "", fmt.Errorf("unknown domain %q", s)
	}
	return d, nil
}

// ParseDomains parses a list of names. An empty list selects every domain.
// Duplicates are dropped and the result follows canonical order.
func ParseDomains(names []string) ([]Domain, error) {
	if len(names) == 0 {
		return AllDomains(), nil
	}
	want := make(map[Domain]bool, len(names))
	for _, name := range names {
		d, err := ParseDomain(name)
		if err != nil {
			return nil, err
		}
		want[d] = true
	}
	out := make([]Domain, 0, len(want))
	for _, d := range allDomains {
		if want[d] {
			out = append(out, d)
		}
	}
	return out, nil
}
