// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

// Package transport defines the contract between the sync engine and any
// source of raw Garmin payloads: the Fetcher interface, the page shape, and
// the transient/fatal error taxonomy.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/garmincoach/internal/models"
)

// Object is one raw vendor payload.
type Object struct {
	// Payload is the JSON object exactly as received (or as merged by the
	// client for multi-endpoint domains).
	Payload json.RawMessage
	// Day is the calendar date the object was requested for, used when the
	// payload does not name its own date. Empty for non-daily requests.
	Day string
	// ActivityID is set for per-activity detail payloads.
	ActivityID string
}

// Page is one batch of objects. An empty NextCursor ends the domain.
type Page struct {
	Objects    []Object
	NextCursor string
}

// Fetcher retrieves raw payloads for a domain within a window. The initial
// cursor is "". Implementations return *TransientTransportError or
// *FatalTransportError on failure.
type Fetcher interface {
	FetchPage(ctx context.Context, domain models.Domain, window models.Window, cursor string) (Page, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, domain models.Domain, window models.Window, cursor string) (Page, error)

// FetchPage calls f.
func (f FetcherFunc) FetchPage(ctx context.Context, domain models.Domain, window models.Window, cursor string) (Page, error) {
	return f(ctx, domain, window, cursor)
}

// TransientTransportError is a failure worth retrying: throttling, 5xx,
// timeouts, connection resets.
type TransientTransportError struct {
	Op         string
	StatusCode int
	// RetryAfter is the vendor's requested delay, zero if none was given.
	RetryAfter time.Duration
	Err        error
}

func (e *TransientTransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transient transport error: %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transient transport error: %s: %v", e.Op, e.Err)
}

func (e *TransientTransportError) Unwrap() error {
	return e.Err
}

// FatalTransportError is a failure retrying will not fix: rejected
// credentials, bad requests, an open circuit breaker.
type FatalTransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FatalTransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fatal transport error: %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fatal transport error: %s: %v", e.Op, e.Err)
}

func (e *FatalTransportError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is, or wraps, a TransientTransportError.
func IsTransient(err error) bool {
	var te *TransientTransportError
	return errors.As(err, &te)
}

// RetryAfter returns the vendor's requested delay carried by err, if any.
func RetryAfter(err error) time.Duration {
	var te *TransientTransportError
	if errors.As(err, &te) {
		return te.RetryAfter
	}
	return 0
}
