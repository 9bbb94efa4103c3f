// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

// Package planner computes the window of data each domain should fetch,
// from its watermark, the requested lookback, and the current time.
package planner

import (
	"fmt"
	"time"

	"github.com/tomtom215/garmincoach/internal/models"
)

// DefaultOverlap is how far before the watermark a window reopens, so
// records the vendor finalised late are fetched again.
const DefaultOverlap = 24 * time.Hour

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Planner plans fetch windows. The zero value is not usable; use New.
type Planner struct {
	clock   Clock
	loc     *time.Location
	overlap time.Duration
}

// New returns a planner whose calendar days are taken in loc. A nil clock
// uses the wall clock, a nil loc uses time.Local, and a non-positive
// overlap uses DefaultOverlap.
func New(clock Clock, loc *time.Location, overlap time.Duration) *Planner {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.Local
	}
	if overlap <= 0 {
		overlap = DefaultOverlap
	}
	return &Planner{clock: clock, loc: loc, overlap: overlap}
}

// Plan returns the closed window [Start, End] for domain.
//
// End is today 00:00 for daily domains and now for intraday ones. Start is
// today minus lookbackDays, moved earlier to last_success_at minus the
// overlap when that is older, and truncated to the start of its day. The
// window never ends in the future and never starts after it ends.
func (p *Planner) Plan(domain models.Domain, wm *models.Watermark, lookbackDays int) (models.Window, error) {
	if !domain.Valid() {
		return models.Window{}, fmt.Errorf("unknown domain %q", domain)
	}
	if lookbackDays < 0 {
		return models.Window{}, fmt.Errorf("lookback_days must be 0 or greater, got %d", lookbackDays)
	}

	now := p.clock.Now().In(p.loc)
	today := startOfDay(now)

	end := today
	if domain.Granularity() == models.Intraday {
		end = now
	}

	start := today.AddDate(0, 0, -lookbackDays)
	if wm != nil && wm.LastSuccessAt != nil {
		reopen := startOfDay(wm.LastSuccessAt.In(p.loc).Add(-p.overlap))
		if reopen.Before(start) {
			start = reopen
		}
	}
	if start.After(end) {
		start = startOfDay(end)
	}
	return models.Window{Start: start, End: end}, nil
}

// Today returns the start of the current calendar day.
func (p *Planner) Today() time.Time {
	return startOfDay(p.clock.Now().In(p.loc))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
