// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/garmincoach/internal/logging"
	"github.com/tomtom215/garmincoach/internal/metrics"
	"github.com/tomtom215/garmincoach/internal/models"
	"github.com/tomtom215/garmincoach/internal/transport"
)

// retryWithBackoff executes fn, retrying transient transport errors with
// exponential backoff. A vendor Retry-After longer than the current delay
// replaces it. Any other error is returned at once. The context is used
// for cancellation during backoff waits.
func (m *Manager) retryWithBackoff(ctx context.Context, domain models.Domain, fn func() error) error {
	var err error
	delay := m.cfg.RetryDelay
	attempts := m.cfg.RetryAttempts

	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !transport.IsTransient(err) {
			return err
		}

		if attempt < attempts-1 {
			wait := delay
			if ra := transport.RetryAfter(err); ra > wait {
				wait = ra
			}
			logging.Ctx(ctx).Warn().Err(err).
				Str("domain", string(domain)).
				Int("attempt", attempt+1).
				Int("max_attempts", attempts).
				Dur("delay", wait).
				Msg("Retry attempt")
			metrics.RecordRetry(string(domain))

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("max retry attempts reached: %w", err)
}
