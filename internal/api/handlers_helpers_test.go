// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/garmincoach/internal/config"
)

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line\nbreak", `line\x0abreak`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeJSONBody_TooLarge(t *testing.T) {
	t.Parallel()
	body := `{"domains": ["` + strings.Repeat("a", 100) + `"]}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	var dst map[string]interface{}
	if err := decodeJSONBody(httptest.NewRecorder(), req, &dst, 16); err == nil {
		t.Error("expected error for oversized body")
	}
}

func TestDecodeJSONBody_TrailingData(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{} {}`))
	var dst map[string]interface{}
	if err := decodeJSONBody(httptest.NewRecorder(), req, &dst, 1024); err == nil {
		t.Error("expected error for two JSON values")
	}
}

func TestChiMiddlewareConfigFrom(t *testing.T) {
	t.Parallel()
	cfg := ChiMiddlewareConfigFrom(&config.ServerConfig{RateLimitReqs: 10, RateLimitWindow: 30 * time.Second})
	if cfg.RateLimitDisabled || cfg.RateLimitRequests != 10 || cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if !ChiMiddlewareConfigFrom(&config.ServerConfig{}).RateLimitDisabled {
		t.Error("zero requests should disable rate limiting")
	}
	if ChiMiddlewareConfigFrom(nil).RateLimitRequests != 5 {
		t.Error("nil config should use defaults")
	}
}
