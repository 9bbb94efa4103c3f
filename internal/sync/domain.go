// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/garmincoach/internal/database"
	"github.com/tomtom215/garmincoach/internal/logging"
	"github.com/tomtom215/garmincoach/internal/metrics"
	"github.com/tomtom215/garmincoach/internal/models"
	"github.com/tomtom215/garmincoach/internal/normalize"
	"github.com/tomtom215/garmincoach/internal/transport"
)

// domainRun carries the report of one domain through its states.
type domainRun struct {
	ctx    context.Context
	report models.DomainReport
	// dropped counts error summaries beyond maxErrorSummaries.
	dropped int
}

func (r *domainRun) transition(to models.SyncStatus) {
	logging.Ctx(r.ctx).Debug().
		Str("domain", string(r.report.Domain)).
		Str("from", string(r.report.Status)).
		Str("to", string(to)).
		Msg("Domain state transition")
	r.report.Status = to
}

func (r *domainRun) addError(err error) {
	if len(r.report.Errors) >= maxErrorSummaries {
		r.dropped++
		return
	}
	r.report.Errors = append(r.report.Errors, err.Error())
}

func (r *domainRun) fail(err error) models.DomainReport {
	r.addError(err)
	r.transition(models.StatusFailed)
	logging.Ctx(r.ctx).Error().Err(err).Str("domain", string(r.report.Domain)).Msg("Domain sync failed")
	return r.report
}

// syncDomain drives one domain from PENDING to a terminal status.
func (m *Manager) syncDomain(ctx context.Context, domain models.Domain, lookbackDays int) (report models.DomainReport) {
	run := &domainRun{ctx: ctx, report: models.DomainReport{
		Domain:    domain,
		Status:    models.StatusPending,
		StartedAt: m.clock.Now().UTC(),
	}}
	started := time.Now()
	defer func() {
		if run.dropped > 0 {
			report.Errors = append(report.Errors, fmt.Sprintf("... and %d more", run.dropped))
		}
		report.FinishedAt = m.clock.Now().UTC()
		report.Duration = time.Since(started)
		metrics.RecordDomainOutcome(string(domain), string(report.Status))
	}()

	wm, err := m.db.ReadWatermark(ctx, domain)
	if err != nil {
		return run.fail(err)
	}
	window, err := m.planner.Plan(domain, wm, lookbackDays)
	if err != nil {
		return run.fail(err)
	}
	run.report.Window = &window

	run.transition(models.StatusFetching)
	objects, pages, err := m.fetchAll(ctx, domain, window)
	run.report.Pages = pages
	run.report.Counts.Fetched = len(objects)
	if err != nil {
		return run.fail(err)
	}

	run.transition(models.StatusNormalizing)
	records, details := m.normalizeAll(run, domain, objects)

	run.transition(models.StatusCommitting)
	if err := m.commit(ctx, run, records, details); err != nil {
		return run.fail(err)
	}

	if run.report.Counts.Skipped > 0 {
		run.transition(models.StatusPartial)
	} else {
		run.transition(models.StatusSucceeded)
	}

	if err := m.db.WriteWatermark(ctx, domain, window.End); err != nil {
		return run.fail(err)
	}
	end := window.End.UTC()
	run.report.Watermark = &end
	metrics.SetWatermark(string(domain), end)

	logging.Ctx(ctx).Info().
		Str("domain", string(domain)).
		Str("status", string(run.report.Status)).
		Str("window_start", window.StartDate()).
		Str("window_end", window.EndDate()).
		Int("pages", pages).
		Int("fetched", run.report.Counts.Fetched).
		Int("inserted", run.report.Counts.Inserted).
		Int("updated", run.report.Counts.Updated).
		Int("unchanged", run.report.Counts.Unchanged).
		Int("skipped", run.report.Counts.Skipped).
		Msg("Domain synced")
	return run.report
}

// fetchAll pulls pages until the cursor runs out, retrying transient
// failures of each page.
func (m *Manager) fetchAll(ctx context.Context, domain models.Domain, window models.Window) ([]transport.Object, int, error) {
	var (
		objects []transport.Object
		cursor  string
		pages   int
	)
	for {
		if pages >= m.cfg.MaxPages {
			return objects, pages, fmt.Errorf("page limit %d reached for %s", m.cfg.MaxPages, domain)
		}

		var page transport.Page
		err := m.retryWithBackoff(ctx, domain, func() error {
			var err error
			page, err = m.fetcher.FetchPage(ctx, domain, window, cursor)
			return err
		})
		if err != nil {
			return objects, pages, err
		}
		pages++
		objects = append(objects, page.Objects...)

		if page.NextCursor == "" {
			return objects, pages, nil
		}
		if page.NextCursor == cursor {
			return objects, pages, fmt.Errorf("cursor %q did not advance for %s", cursor, domain)
		}
		cursor = page.NextCursor
	}
}

// normalizeAll converts every object, skipping malformed ones. Records
// sharing a natural key collapse to the last occurrence, so a run never
// writes the same key twice.
//
// A domain commits only rows of its own table. Detail rows embedded in an
// activity summary belong to the activity_splits and activity_hr_zones
// domains, which fetch the authoritative per-activity payloads; writing
// them from both places would overwrite and prune the same keys on every run.
func (m *Manager) normalizeAll(run *domainRun, domain models.Domain, objects []transport.Object) ([]models.Record, []models.DetailSet) {
	var (
		records   []models.Record
		details   []models.DetailSet
		recordIdx = make(map[string]int)
		detailIdx = make(map[string]int)
		owned     = domain.Table()
	)
	for _, obj := range objects {
		res, err := normalize.Normalize(domain, obj)
		if err != nil {
			run.report.Counts.Skipped++
			run.addError(err)
			logging.Ctx(run.ctx).Warn().Err(err).Str("domain", string(domain)).Msg("Skipping malformed object")
			continue
		}
		for _, rec := range res.Records {
			if rec.Table != owned {
				continue
			}
			k := string(rec.Table) + "|" + rec.KeyString()
			if i, ok := recordIdx[k]; ok {
				records[i] = rec
				continue
			}
			recordIdx[k] = len(records)
			records = append(records, rec)
		}
		for _, ds := range res.Details {
			if ds.Table != owned {
				continue
			}
			k := string(ds.Table) + "|" + ds.ActivityID
			if i, ok := detailIdx[k]; ok {
				details[i] = ds
				continue
			}
			detailIdx[k] = len(details)
			details = append(details, ds)
		}
	}
	if run.report.Counts.Skipped > 0 {
		metrics.RecordRecords(string(domain.Table()), "skipped", run.report.Counts.Skipped)
	}
	return records, details
}

// commit upserts records in order and then prunes stale detail rows. On a
// storage failure the records not yet written are counted as failed.
func (m *Manager) commit(ctx context.Context, run *domainRun, records []models.Record, details []models.DetailSet) error {
	type tally struct{ table, result string }
	counts := make(map[tally]int)
	defer func() {
		for t, n := range counts {
			metrics.RecordRecords(t.table, t.result, n)
		}
	}()

	for i, rec := range records {
		err := ctx.Err()
		var res database.UpsertResult
		if err == nil {
			res, err = m.db.UpsertRecord(ctx, rec)
		}
		if err != nil {
			run.report.Counts.Failed += len(records) - i
			counts[tally{string(rec.Table), "failed"}] += len(records) - i
			return err
		}
		switch res {
		case database.Inserted:
			run.report.Counts.Inserted++
		case database.Updated:
			run.report.Counts.Updated++
		case database.Unchanged:
			run.report.Counts.Unchanged++
		}
		counts[tally{string(rec.Table), res.String()}]++
	}

	for _, ds := range details {
		n, err := m.db.PruneDetails(ctx, ds.Table, ds.ActivityID, ds.Count)
		if err != nil {
			return err
		}
		run.report.Pruned += n
	}
	return nil
}
