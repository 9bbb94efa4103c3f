// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if cfg.Output == nil {
		t.Error("expected default output to be set")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info().Str("domain", "sleep").Msg("committed")

	output := buf.String()
	if !strings.Contains(output, `"message":"committed"`) {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, `"domain":"sleep"`) {
		t.Errorf("expected domain field in output, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestCtxAddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	ctx := ContextWithCorrelationID(context.Background(), "abc12345")
	ctx = ContextWithRequestID(ctx, "req-1")
	Ctx(ctx).Info().Msg("run started")

	output := buf.String()
	if !strings.Contains(output, `"correlation_id":"abc12345"`) {
		t.Errorf("expected correlation_id, got: %s", output)
	}
	if !strings.Contains(output, `"request_id":"req-1"`) {
		t.Errorf("expected request_id, got: %s", output)
	}
}

func TestNewCorrelationID(t *testing.T) {
	t.Parallel()

	a := CorrelationIDFromContext(ContextWithNewCorrelationID(context.Background()))
	b := CorrelationIDFromContext(ContextWithNewCorrelationID(context.Background()))
	if len(a) != 8 {
		t.Errorf("expected 8 characters, got %d", len(a))
	}
	if a == b {
		t.Error("expected distinct correlation IDs")
	}
	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty correlation ID, got %q", got)
	}
}

func TestInitLevelFiltersEvents(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Debug().Msg("page fetched")
	Info().Msg("domain committed")
	Warn().Msg("retrying page")

	output := buf.String()
	if strings.Contains(output, "page fetched") || strings.Contains(output, "domain committed") {
		t.Errorf("expected events below warn to be dropped, got: %s", output)
	}
	if !strings.Contains(output, "retrying page") {
		t.Errorf("expected warn event, got: %s", output)
	}
}

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	logger := slog.New(NewSlogHandler()).With("service", "sync").WithGroup("run")
	logger.Warn("service restarted", "attempt", 2)

	output := buf.String()
	for _, want := range []string{`"level":"warn"`, `"service":"sync"`, `"run.attempt":2`, "service restarted"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}
