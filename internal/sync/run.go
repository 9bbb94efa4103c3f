// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/garmincoach/internal/logging"
	"github.com/tomtom215/garmincoach/internal/metrics"
	"github.com/tomtom215/garmincoach/internal/models"
)

// ErrInvalidRequest marks a run request rejected before any work started.
var ErrInvalidRequest = errors.New("invalid sync request")

// RunRequest selects what a run fetches. An empty Domains means all.
type RunRequest struct {
	LookbackDays int
	Domains      []models.Domain
}

// ValidateRequest checks a request and returns its domains in canonical
// order with duplicates removed.
func ValidateRequest(req RunRequest) ([]models.Domain, error) {
	if req.LookbackDays < 0 {
		return nil, fmt.Errorf("%w: lookback_days must be 0 or greater, got %d", ErrInvalidRequest, req.LookbackDays)
	}
	if len(req.Domains) == 0 {
		return models.AllDomains(), nil
	}
	want := make(map[models.Domain]bool, len(req.Domains))
	for _, d := range req.Domains {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: unknown domain %q", ErrInvalidRequest, d)
		}
		want[d] = true
	}
	out := make([]models.Domain, 0, len(want))
	for _, d := range models.AllDomains() {
		if want[d] {
			out = append(out, d)
		}
	}
	return out, nil
}

// Run executes one sync run and returns its report. Ingestion problems
// never surface as an error; they are reflected in the report. The error
// is non-nil only when the request itself is invalid.
func (m *Manager) Run(ctx context.Context, req RunRequest) (*models.SyncReport, error) {
	domains, err := ValidateRequest(req)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	ctx = logging.ContextWithCorrelationID(ctx, runID[:8])
	if m.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.RunTimeout)
		defer cancel()
	}

	metrics.TrackSyncRun(true)
	defer metrics.TrackSyncRun(false)

	report := &models.SyncReport{
		RunID:        runID,
		LookbackDays: req.LookbackDays,
		StartedAt:    m.clock.Now().UTC(),
		Domains:      make([]models.DomainReport, len(domains)),
	}
	for i, d := range domains {
		report.Domains[i] = models.DomainReport{Domain: d, Status: models.StatusPending}
	}

	logging.Ctx(ctx).Info().
		Str("run_id", runID).
		Int("lookback_days", req.LookbackDays).
		Int("domains", len(domains)).
		Msg("Sync run started")

	started := time.Now()
	m.runDomains(ctx, domains, req.LookbackDays, report.Domains)
	report.Finalize(m.clock.Now().UTC())
	metrics.RecordSyncRun(string(report.Status), time.Since(started))
	m.setLastReport(report)

	logging.Ctx(ctx).Info().
		Str("run_id", runID).
		Str("status", string(report.Status)).
		Int("fetched", report.Totals.Fetched).
		Int("inserted", report.Totals.Inserted).
		Int("updated", report.Totals.Updated).
		Int("unchanged", report.Totals.Unchanged).
		Int("skipped", report.Totals.Skipped).
		Int("failed", report.Totals.Failed).
		Dur("duration", time.Since(started)).
		Msg("Sync run finished")
	return report, nil
}

// runDomains processes domains in a bounded worker pool, writing each
// outcome into its slot of reports. Domains still waiting for a slot when
// ctx ends are marked FAILED without starting.
func (m *Manager) runDomains(ctx context.Context, domains []models.Domain, lookbackDays int, reports []models.DomainReport) {
	sem := make(chan struct{}, m.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, d := range domains {
		acquired := false
		if ctx.Err() == nil {
			select {
			case sem <- struct{}{}:
				acquired = true
			case <-ctx.Done():
			}
		}
		if !acquired {
			now := m.clock.Now().UTC()
			reports[i].StartedAt = now
			reports[i].FinishedAt = now
			reports[i].Status = models.StatusFailed
			reports[i].Errors = []string{fmt.Sprintf("not started: %v", ctx.Err())}
			metrics.RecordDomainOutcome(string(d), string(models.StatusFailed))
			continue
		}

		wg.Add(1)
		go func(i int, d models.Domain) {
			defer wg.Done()
			defer func() { <-sem }()
			reports[i] = m.syncDomain(ctx, d, lookbackDays)
		}(i, d)
	}
	wg.Wait()
}
