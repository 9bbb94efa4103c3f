// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/garmincoach/internal/logging"
)

func serveWithRequestID(t *testing.T, header string) (responseID, contextID, correlationID string) {
	t.Helper()
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextID = logging.RequestIDFromContext(r.Context())
		correlationID = logging.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Header().Get(RequestIDHeader), contextID, correlationID
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	t.Parallel()
	responseID, contextID, correlationID := serveWithRequestID(t, "")

	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("Response X-Request-ID is not a valid UUID: %v", err)
	}
	if contextID != responseID {
		t.Errorf("Context ID (%s) doesn't match response header ID (%s)", contextID, responseID)
	}
	if correlationID == "" {
		t.Error("Expected correlation ID in context")
	}
}

func TestRequestID_PreservesExistingID(t *testing.T) {
	t.Parallel()
	existingID := "existing-request-id-12345"
	responseID, contextID, _ := serveWithRequestID(t, existingID)

	if responseID != existingID {
		t.Errorf("Expected X-Request-ID to be %s, got %s", existingID, responseID)
	}
	if contextID != existingID {
		t.Errorf("Expected context ID to be %s, got %s", existingID, contextID)
	}
}

func TestRequestID_ReplacesMalformedID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		id   string
	}{
		{"newline injection", "abc\nlevel=error msg=forged"},
		{"space", "abc def"},
		{"too long", strings.Repeat("a", maxRequestIDLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			responseID, _, _ := serveWithRequestID(t, tt.id)
			if responseID == tt.id {
				t.Fatalf("malformed ID %q was echoed", tt.id)
			}
			if _, err := uuid.Parse(responseID); err != nil {
				t.Errorf("replacement ID %q is not a UUID", responseID)
			}
		})
	}
}
