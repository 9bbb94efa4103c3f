// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config selects where log lines go and how they look.
type Config struct {
	Level  string    // trace, debug, info, warn, error or disabled
	Format string    // json or console
	Caller bool      // add file:line to every event
	Output io.Writer // nil means os.Stderr; stdout carries command output
}

// DefaultConfig logs JSON at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // packages log before the CLI has read its config
func init() {
	Init(DefaultConfig())
}

// Init replaces the process logger. Events already started keep writing to
// the previous one.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	zctx := zerolog.New(out).With().Timestamp()
	if cfg.Caller {
		zctx = zctx.Caller()
	}
	l := zctx.Logger()
	current.Store(&l)
}

// ParseLevel maps a level name to zerolog. Empty or unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	l, err := zerolog.ParseLevel(name)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Logger returns a copy of the process logger.
func Logger() zerolog.Logger {
	return *current.Load()
}

// Debug starts a debug event on the process logger.
func Debug() *zerolog.Event { return current.Load().Debug() }

// Info starts an info event on the process logger.
//
//	logging.Info().Str("domain", "sleep").Msg("Domain committed")
func Info() *zerolog.Event { return current.Load().Info() }

// Warn starts a warn event on the process logger.
func Warn() *zerolog.Event { return current.Load().Warn() }

// Error starts an error event on the process logger.
func Error() *zerolog.Event { return current.Load().Error() }
