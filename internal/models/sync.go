// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package models

import (
	"time"
)

// DateLayout is the calendar date format used by every daily key.
const DateLayout = "2006-01-02"

// Watermark is the persisted sync progress of one domain.
type Watermark struct {
	Domain        Domain     `json:"domain"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
}

// Window is a closed time interval [Start, End] to fetch.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns every calendar date in the window, oldest first, in the
// window's own location.
func (w Window) Days() []string {
	if w.End.Before(w.Start) {
		return nil
	}
	start := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
	end := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 0, 0, 0, 0, w.Start.Location())
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days
}

// Contains reports whether t lies inside the closed interval.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// StartDate renders the start bound as a calendar date.
func (w Window) StartDate() string { return w.Start.Format(DateLayout) }

// EndDate renders the end bound as a calendar date.
func (w Window) EndDate() string { return w.End.Format(DateLayout) }

// SyncStatus is the state of a domain within a run, or the outcome of a run.
type SyncStatus string

const (
	StatusPending     SyncStatus = "PENDING"
	StatusFetching    SyncStatus = "FETCHING"
	StatusNormalizing SyncStatus = "NORMALIZING"
	StatusCommitting  SyncStatus = "COMMITTING"
	StatusSucceeded   SyncStatus = "SUCCEEDED"
	StatusPartial     SyncStatus = "PARTIAL"
	StatusFailed      SyncStatus = "FAILED"
)

// Terminal reports whether no further transition can happen.
func (s SyncStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusPartial || s == StatusFailed
}

func (s SyncStatus) severity() int {
	switch s {
	case StatusSucceeded:
		return 0
	case StatusPartial:
		return 1
	default:
		return 2
	}
}

// Worst returns the more severe of two terminal statuses
// (FAILED > PARTIAL > SUCCEEDED). Non-terminal statuses count as FAILED.
func Worst(a, b SyncStatus) SyncStatus {
	if b.severity() > a.severity() {
		return b
	}
	return a
}

// RecordCounts tallies what happened to the records of one domain.
type RecordCounts struct {
	Fetched   int `json:"fetched"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Add accumulates other into c.
func (c *RecordCounts) Add(other RecordCounts) {
	c.Fetched += other.Fetched
	c.Inserted += other.Inserted
	c.Updated += other.Updated
	c.Unchanged += other.Unchanged
	c.Skipped += other.Skipped
	c.Failed += other.Failed
}

// DomainReport is the outcome of one domain within a run.
type DomainReport struct {
	Domain     Domain        `json:"domain"`
	Status     SyncStatus    `json:"status"`
	Window     *Window       `json:"window,omitempty"`
	Pages      int           `json:"pages"`
	Counts     RecordCounts  `json:"counts"`
	Pruned     int64         `json:"pruned,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Errors     []string      `json:"errors,omitempty"`
	Watermark  *time.Time    `json:"watermark,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// SyncReport summarises one run. It is never persisted.
type SyncReport struct {
	RunID        string         `json:"run_id"`
	Status       SyncStatus     `json:"status"`
	LookbackDays int            `json:"lookback_days"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Domains      []DomainReport `json:"domains"`
	Totals       RecordCounts   `json:"totals"`
}

// Domain returns the report of d, or nil if d was not part of the run.
func (r *SyncReport) Domain(d Domain) *DomainReport {
	for i := range r.Domains {
		if r.Domains[i].Domain == d {
			return &r.Domains[i]
		}
	}
	return nil
}

// Finalize computes the overall status and totals from the domain reports.
// A run with no domains succeeds.
func (r *SyncReport) Finalize(finishedAt time.Time) {
	r.FinishedAt = finishedAt
	r.Status = StatusSucceeded
	r.Totals = RecordCounts{}
	for i := range r.Domains {
		r.Status = Worst(r.Status, r.Domains[i].Status)
		r.Totals.Add(r.Domains[i].Counts)
	}
}
