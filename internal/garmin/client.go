// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package garmin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/garmincoach/internal/config"
	"github.com/tomtom215/garmincoach/internal/logging"
	"github.com/tomtom215/garmincoach/internal/metrics"
	"github.com/tomtom215/garmincoach/internal/transport"
)

const (
	// maxErrorBodySize limits the amount of an error response kept for diagnostics.
	maxErrorBodySize = 64 * 1024
	// maxBodySize bounds a successful response.
	maxBodySize = 32 << 20
	userAgent   = "garmincoach/1.0"
)

// Client fetches raw payloads from Garmin Connect. It implements
// transport.Fetcher.
type Client struct {
	baseURL        string
	token          string
	httpClient     *http.Client
	limiter        *rate.Limiter
	cb             *gobreaker.CircuitBreaker[[]byte]
	pageSize       int
	detailPageSize int

	nameMu      sync.Mutex
	displayName string
}

var _ transport.Fetcher = (*Client)(nil)

// NewClient creates a Garmin Connect client from configuration. It fails
// when no usable bearer token is available.
func NewClient(cfg *config.GarminConfig) (*Client, error) {
	token, err := resolveToken(cfg.AccessToken, cfg.TokenDir, time.Now())
	if err != nil {
		return nil, err
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          token,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		cb:             newBreaker(),
		pageSize:       max(cfg.PageSize, 1),
		detailPageSize: max(cfg.DetailPageSize, 1),
		displayName:    cfg.DisplayName,
	}, nil
}

// request describes one GET against the API.
type request struct {
	endpoint string // metrics label
	path     string
	query    url.Values
	// forbiddenIsEmpty treats 403 as "no data"; Garmin denies some
	// per-activity endpoints for many accounts.
	forbiddenIsEmpty bool
}

// get performs a rate-limited, breaker-guarded GET. A nil body with a nil
// error means the resource has no data (204, 404).
func (c *Client) get(ctx context.Context, req request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &transport.FatalTransportError{Op: req.endpoint, Err: err}
	}
	return c.execute(req.endpoint, func() ([]byte, error) {
		return c.do(ctx, req)
	})
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, &transport.FatalTransportError{Op: r.endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("NK", "NT")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordGarminRequest(r.endpoint, "error", time.Since(start))
		if ctx.Err() != nil {
			return nil, &transport.FatalTransportError{Op: r.endpoint, Err: ctx.Err()}
		}
		return nil, &transport.TransientTransportError{Op: r.endpoint, Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()
	metrics.RecordGarminRequest(r.endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	logging.Debug().
		Str("endpoint", r.endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Garmin request")

	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, &transport.TransientTransportError{Op: r.endpoint, StatusCode: code, Err: fmt.Errorf("read body: %w", err)}
		}
		if len(strings.TrimSpace(string(body))) == 0 || string(body) == "null" {
			return nil, nil
		}
		return body, nil
	case code == http.StatusNoContent || code == http.StatusNotFound:
		return nil, nil
	case code == http.StatusForbidden && r.forbiddenIsEmpty:
		return nil, nil
	case code == http.StatusTooManyRequests:
		return nil, &transport.TransientTransportError{
			Op: r.endpoint, StatusCode: code,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
			Err:        errors.New("rate limited"),
		}
	case code >= 500:
		return nil, &transport.TransientTransportError{Op: r.endpoint, StatusCode: code, Err: statusError(resp)}
	default:
		return nil, &transport.FatalTransportError{Op: r.endpoint, StatusCode: code, Err: statusError(resp)}
	}
}

func statusError(resp *http.Response) error {
	return fmt.Errorf("unexpected status %s: %s", resp.Status, readBodyForError(resp.Body))
}

// readBodyForError reads the response body for error reporting (max 64KB)
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// parseRetryAfter accepts delay-seconds or an HTTP date (RFC 9110).
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

// DisplayName returns the account display name used in per-user paths,
// resolving it from the social profile when not configured. The lookup runs
// outside nameMu and the first resolved name is kept.
func (c *Client) DisplayName(ctx context.Context) (string, error) {
	c.nameMu.Lock()
	name := c.displayName
	c.nameMu.Unlock()
	if name != "" {
		return name, nil
	}

	body, err := c.get(ctx, request{endpoint: "social_profile", path: "/userprofile-service/socialProfile"})
	if err != nil {
		return "", err
	}
	var profile struct {
		DisplayName string `json:"displayName"`
	}
	if body != nil {
		if err := json.Unmarshal(body, &profile); err != nil {
			return "", &transport.FatalTransportError{Op: "social_profile", Err: fmt.Errorf("decode profile: %w", err)}
		}
	}
	if profile.DisplayName == "" {
		return "", &transport.FatalTransportError{Op: "social_profile", Err: errors.New("profile has no displayName; set garmin.display_name")}
	}

	c.nameMu.Lock()
	defer c.nameMu.Unlock()
	if c.displayName == "" {
		c.displayName = profile.DisplayName
		logging.Info().Str("display_name", c.displayName).Msg("Resolved Garmin display name")
	}
	return c.displayName, nil
}
