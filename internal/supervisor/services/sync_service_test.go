// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockSyncManager matches the StartStopManager interface.
type mockSyncManager struct {
	starts     atomic.Int32
	stopped    atomic.Bool
	failStarts int32
	stopError  error
}

func (m *mockSyncManager) Start(ctx context.Context) error {
	if n := m.starts.Add(1); n <= m.failStarts {
		return errors.New("simulated start failure")
	}
	return nil
}

func (m *mockSyncManager) Stop() error {
	m.stopped.Store(true)
	return m.stopError
}

type mockCheckpointer struct {
	calls atomic.Int32
	err   error
}

func (c *mockCheckpointer) Checkpoint(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

var _ suture.Service = (*SyncService)(nil)

func serveUntilCancel(t *testing.T, svc *SyncService, mgr *mockSyncManager) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	for i := 0; i < 50 && mgr.starts.Load() == 0; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop in time")
		return nil
	}
}

func TestSyncService(t *testing.T) {
	t.Parallel()

	t.Run("stops manager and checkpoints on cancellation", func(t *testing.T) {
		t.Parallel()
		mgr := &mockSyncManager{}
		store := &mockCheckpointer{}

		err := serveUntilCancel(t, NewSyncService(mgr, store), mgr)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if !mgr.stopped.Load() {
			t.Error("sync manager was not stopped")
		}
		if store.calls.Load() != 1 {
			t.Errorf("checkpoint calls = %d, want 1", store.calls.Load())
		}
	})

	t.Run("nil store is allowed", func(t *testing.T) {
		t.Parallel()
		mgr := &mockSyncManager{}
		if err := serveUntilCancel(t, NewSyncService(mgr, nil), mgr); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("propagates start error for restart", func(t *testing.T) {
		t.Parallel()
		mgr := &mockSyncManager{failStarts: 1}
		err := NewSyncService(mgr, nil).Serve(context.Background())
		if err == nil {
			t.Fatal("expected error to be propagated")
		}
		if mgr.stopped.Load() {
			t.Error("manager should not be stopped when start failed")
		}
	})

	t.Run("reports stop and checkpoint errors", func(t *testing.T) {
		t.Parallel()
		stopErr := errors.New("stop failed")
		cpErr := errors.New("checkpoint failed")
		mgr := &mockSyncManager{stopError: stopErr}

		err := serveUntilCancel(t, NewSyncService(mgr, &mockCheckpointer{err: cpErr}), mgr)
		if !errors.Is(err, stopErr) || !errors.Is(err, cpErr) {
			t.Errorf("expected both errors, got %v", err)
		}
	})

	t.Run("String returns service name", func(t *testing.T) {
		t.Parallel()
		if got := NewSyncService(&mockSyncManager{}, nil).String(); got != "sync-manager" {
			t.Errorf("expected 'sync-manager', got %q", got)
		}
	})
}

func TestSyncServiceWithSupervisor(t *testing.T) {
	mgr := &mockSyncManager{failStarts: 2}

	sup := suture.New("sync-test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          100 * time.Millisecond,
	})
	sup.Add(NewSyncService(mgr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(250 * time.Millisecond)
	for time.Now().Before(deadline) && mgr.starts.Load() < 3 {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-errCh

	if mgr.starts.Load() < 3 {
		t.Errorf("expected at least 3 start attempts, got %d", mgr.starts.Load())
	}
}
