// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

// Package logging provides the process-wide zerolog logger.
//
// All packages log through the global helpers rather than holding their own
// logger:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("domain", "sleep").Int("inserted", n).Msg("Domain committed")
//
// A sync run stores a short correlation ID in its context; Ctx(ctx) adds it
// to every event so the lines of one run can be grouped:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Warn().Err(err).Msg("Retrying page")
//
// Logs go to stderr. Stdout belongs to command output (reports, query rows).
//
// NewSlogHandler bridges slog-only libraries, notably the suture event hook.
package logging
