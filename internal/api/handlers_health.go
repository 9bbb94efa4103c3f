// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/garmincoach/internal/models"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string             `json:"status"` // healthy or degraded
	DatabaseConnected bool               `json:"database_connected"`
	LastRunStatus     *models.SyncStatus `json:"last_run_status,omitempty"`
	LastRunAt         *time.Time         `json:"last_run_at,omitempty"`
	Uptime            float64            `json:"uptime_seconds"`
}

// Health pings the store. A store that does not answer yields 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	health := HealthStatus{
		Status:            "healthy",
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.syncer != nil {
		if last := h.syncer.LastReport(); last != nil {
			status := last.Status
			finished := last.FinishedAt
			health.LastRunStatus = &status
			health.LastRunAt = &finished
		}
	}

	code := http.StatusOK
	if !dbConnected {
		health.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, &models.APIResponse{
		Status:   "success",
		Data:     health,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
