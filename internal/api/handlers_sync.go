// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/garmincoach/internal/logging"
	"github.com/tomtom215/garmincoach/internal/metrics"
	"github.com/tomtom215/garmincoach/internal/models"
	intsync "github.com/tomtom215/garmincoach/internal/sync"
)

// maxSyncRequestBytes bounds the POST /api/v1/sync body.
const maxSyncRequestBytes = 4 << 10

// TriggerSync handles POST /api/v1/sync.
//
// An empty body syncs every domain with the configured lookback. The run
// happens synchronously; the response carries the SyncReport.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SyncRequest
	if err := decodeJSONBody(w, r, &req, maxSyncRequestBytes); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	runReq := intsync.RunRequest{LookbackDays: h.defaultLookback}
	if req.LookbackDays != nil {
		runReq.LookbackDays = *req.LookbackDays
	}
	for _, d := range req.Domains {
		runReq.Domains = append(runReq.Domains, models.Domain(d))
	}

	ctx := context.WithoutCancel(r.Context())
	report, err := h.syncer.Run(ctx, runReq)
	h.statusCache.Clear()
	if err != nil {
		if errors.Is(err, intsync.ErrInvalidRequest) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Sync could not be started", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("run_id", report.RunID).
		Str("status", string(report.Status)).
		Msg("Sync triggered via API")

	resp := &models.APIResponse{
		Status: "success",
		Data:   report,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	}
	if report.Status == models.StatusFailed {
		resp.Status = "error"
		resp.Error = &models.APIError{
			Code:    "SYNC_FAILED",
			Message: "Every selected domain failed",
			Details: map[string]interface{}{"run_id": report.RunID},
		}
		respondJSON(w, http.StatusBadGateway, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// SyncStatus handles GET /api/v1/sync/status.
//
// The response is cached per last completed run, so it changes as soon as
// any sync finishes.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var last *models.SyncReport
	if h.syncer != nil {
		last = h.syncer.LastReport()
	}
	key := "status:none"
	if last != nil {
		key = "status:" + last.RunID
	}

	status, hit := h.statusCache.Get(key)
	metrics.RecordCacheLookup("sync_status", hit)
	if !hit {
		var err error
		status, err = h.buildStatus(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to read sync status", err)
			return
		}
		status.LastReport = last
		h.statusCache.Set(key, status)
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   status,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

func (h *Handler) buildStatus(ctx context.Context) (*models.SyncStatusResponse, error) {
	watermarks, err := h.store.ListWatermarks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read watermarks: %w", err)
	}
	counts, err := h.store.TableStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table stats: %w", err)
	}
	latest, err := h.store.LatestDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest dates: %w", err)
	}
	return &models.SyncStatusResponse{
		Watermarks:  watermarks,
		TableCounts: counts,
		LatestDates: latest,
	}, nil
}
