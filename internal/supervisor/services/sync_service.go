// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/garmincoach/internal/logging"
)

// StartStopManager is the lifecycle of *sync.Manager.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// Checkpointer flushes the store's write-ahead log. Implemented by
// *database.Store.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// checkpointTimeout bounds the checkpoint taken on shutdown.
const checkpointTimeout = 30 * time.Second

// SyncService runs the periodic sync under supervision.
type SyncService struct {
	manager StartStopManager
	store   Checkpointer
	name    string
}

// NewSyncService wraps manager. store may be nil.
func NewSyncService(manager StartStopManager, store Checkpointer) *SyncService {
	return &SyncService{
		manager: manager,
		store:   store,
		name:    "sync-manager",
	}
}

// Serve implements suture.Service.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("sync manager start failed: %w", err)
	}

	<-ctx.Done()

	stopErr := s.manager.Stop()
	if s.store != nil {
		cpCtx, cancel := context.WithTimeout(context.Background(), checkpointTimeout)
		defer cancel()
		if err := s.store.Checkpoint(cpCtx); err != nil {
			logging.Warn().Err(err).Msg("Checkpoint on shutdown failed")
			stopErr = errors.Join(stopErr, err)
		}
	}
	if stopErr != nil {
		return fmt.Errorf("sync manager stop failed: %w", stopErr)
	}
	return ctx.Err()
}

func (s *SyncService) String() string {
	return s.name
}
