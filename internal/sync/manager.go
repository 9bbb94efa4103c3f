// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/garmincoach/internal/config"
	"github.com/tomtom215/garmincoach/internal/database"
	"github.com/tomtom215/garmincoach/internal/logging"
	"github.com/tomtom215/garmincoach/internal/models"
	"github.com/tomtom215/garmincoach/internal/planner"
	"github.com/tomtom215/garmincoach/internal/transport"
)

const (
	defaultConcurrency = 4
	defaultMaxPages    = 1000
	// maxErrorSummaries bounds the error list kept per domain report.
	maxErrorSummaries = 20
)

// DBInterface is the subset of the store the orchestrator writes through.
type DBInterface interface {
	UpsertRecord(ctx context.Context, rec models.Record) (database.UpsertResult, error)
	PruneDetails(ctx context.Context, table models.Table, activityID string, keep int) (int64, error)
	ReadWatermark(ctx context.Context, domain models.Domain) (*models.Watermark, error)
	WriteWatermark(ctx context.Context, domain models.Domain, successAt time.Time) error
	ListWatermarks(ctx context.Context) ([]models.Watermark, error)
}

// Manager runs sync runs on demand and, after Start, periodically.
type Manager struct {
	db      DBInterface
	fetcher transport.Fetcher
	planner *planner.Planner
	clock   planner.Clock
	cfg     config.SyncConfig

	mu         sync.RWMutex
	running    bool
	lastReport *models.SyncReport
	stopChan   chan struct{}
	wg         sync.WaitGroup

	// periodicMu is held for the duration of a periodic run; ticks that
	// cannot take it are skipped.
	periodicMu sync.Mutex
}

// NewManager creates a sync manager. A nil clock uses the wall clock.
func NewManager(db DBInterface, fetcher transport.Fetcher, cfg *config.SyncConfig, clock planner.Clock) (*Manager, error) {
	if db == nil {
		return nil, fmt.Errorf("sync manager requires a store")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("sync manager requires a fetcher")
	}
	if cfg == nil {
		return nil, fmt.Errorf("sync manager requires a sync config")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = planner.SystemClock
	}

	c := *cfg
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 1
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}

	logging.Info().
		Int("lookback_days", c.LookbackDays).
		Dur("interval", c.Interval).
		Dur("overlap", c.Overlap).
		Int("concurrency", c.Concurrency).
		Str("timezone", loc.String()).
		Msg("Sync manager config loaded")

	return &Manager{
		db:       db,
		fetcher:  fetcher,
		planner:  planner.New(clock, loc, c.Overlap),
		clock:    clock,
		cfg:      c,
		stopChan: make(chan struct{}),
	}, nil
}

// Start runs an initial sync in the background and then one every
// sync.interval until Stop is called or ctx is done.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	if m.cfg.Interval <= 0 {
		m.mu.Unlock()
		return fmt.Errorf("sync interval must be positive, got %s", m.cfg.Interval)
	}
	m.running = true
	m.stopChan = make(chan struct{})
	m.mu.Unlock()

	logging.Info().Dur("interval", m.cfg.Interval).Msg("Starting sync manager...")

	// Add before starting so Stop never waits on a WaitGroup still at zero.
	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		m.runPeriodic(ctx)
	}()
	go m.syncLoop(ctx)
	return nil
}

// Stop ends the periodic loop and waits for an in-flight run to finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")
	return nil
}

func (m *Manager) syncLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.runPeriodic(ctx)
		}
	}
}

// runPeriodic performs one scheduled run unless another is still active.
func (m *Manager) runPeriodic(ctx context.Context) {
	if !m.periodicMu.TryLock() {
		logging.Warn().Msg("Previous periodic sync still running, skipping tick")
		return
	}
	defer m.periodicMu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-m.stopChan:
			cancel()
		case <-runCtx.Done():
		}
	}()

	if _, err := m.Run(runCtx, RunRequest{LookbackDays: m.cfg.LookbackDays}); err != nil {
		logging.Error().Err(err).Msg("Periodic sync rejected")
	}
}

// LastReport returns the report of the most recent completed run, or nil.
func (m *Manager) LastReport() *models.SyncReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastReport
}

func (m *Manager) setLastReport(r *models.SyncReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReport = r
}

// Refresh runs a one-day sync unless a domain was synced within cooldown.
// It reports skipped=true, with a nil report, when the data is fresh.
func (m *Manager) Refresh(ctx context.Context, force bool, cooldown time.Duration) (report *models.SyncReport, skipped bool, err error) {
	if !force && cooldown > 0 {
		wms, err := m.db.ListWatermarks(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read watermarks: %w", err)
		}
		var newest time.Time
		for _, wm := range wms {
			if wm.LastSyncedAt != nil && wm.LastSyncedAt.After(newest) {
				newest = *wm.LastSyncedAt
			}
		}
		if age := m.clock.Now().Sub(newest); !newest.IsZero() && age < cooldown {
			logging.Info().Dur("age", age).Dur("cooldown", cooldown).Msg("Data is fresh, skipping refresh")
			return nil, true, nil
		}
	}
	report, err = m.Run(ctx, RunRequest{LookbackDays: 1})
	return report, false, err
}
