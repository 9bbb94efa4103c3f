// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package api

import (
	"context"
	"time"

	"github.com/tomtom215/garmincoach/internal/cache"
	"github.com/tomtom215/garmincoach/internal/models"
	intsync "github.com/tomtom215/garmincoach/internal/sync"
)

// StatusStore is the read side of the store used by the handlers.
// Implemented by *database.Store.
type StatusStore interface {
	Ping(ctx context.Context) error
	ListWatermarks(ctx context.Context) ([]models.Watermark, error)
	TableStats(ctx context.Context) (map[string]int64, error)
	LatestDates(ctx context.Context) (map[string]string, error)
}

// Syncer runs syncs. Implemented by *sync.Manager.
type Syncer interface {
	Run(ctx context.Context, req intsync.RunRequest) (*models.SyncReport, error)
	LastReport() *models.SyncReport
}

// statusCacheTTL bounds how stale GET /api/v1/sync/status can be.
const statusCacheTTL = 30 * time.Second

// Handler holds the dependencies of every endpoint.
type Handler struct {
	store       StatusStore
	syncer      Syncer
	startTime   time.Time
	statusCache *cache.Cache[*models.SyncStatusResponse]

	// defaultLookback applies when a sync request omits lookback_days.
	defaultLookback int
}

// NewHandler creates the endpoint handlers.
func NewHandler(store StatusStore, syncer Syncer, defaultLookback int) *Handler {
	return &Handler{
		store:           store,
		syncer:          syncer,
		startTime:       time.Now(),
		statusCache:     cache.New[*models.SyncStatusResponse](statusCacheTTL),
		defaultLookback: defaultLookback,
	}
}
