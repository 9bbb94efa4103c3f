// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/tomtom215/garmincoach/internal/config"
	"github.com/tomtom215/garmincoach/internal/logging"
	"github.com/tomtom215/garmincoach/internal/metrics"
)

// ChiMiddlewareConfig holds rate limiting settings for the sync trigger.
type ChiMiddlewareConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	RateLimitKeyFunc  httprate.KeyFunc
}

// DefaultChiMiddlewareConfig allows 5 sync triggers per minute per client IP.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		RateLimitRequests: 5,
		RateLimitWindow:   time.Minute,
	}
}

// ChiMiddlewareConfigFrom maps server settings onto the middleware config.
// A non-positive request count disables rate limiting.
func ChiMiddlewareConfigFrom(cfg *config.ServerConfig) *ChiMiddlewareConfig {
	out := DefaultChiMiddlewareConfig()
	if cfg == nil {
		return out
	}
	out.RateLimitRequests = cfg.RateLimitReqs
	if cfg.RateLimitWindow > 0 {
		out.RateLimitWindow = cfg.RateLimitWindow
	}
	out.RateLimitDisabled = cfg.RateLimitReqs <= 0
	return out
}

// ChiMiddleware provides Chi-compatible middleware factories.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
}

// NewChiMiddleware creates a new Chi middleware factory with the given configuration.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}
	return &ChiMiddleware{config: config}
}

// RateLimit returns an httprate limiter keyed by client IP. Rejections are
// counted and answered with the JSON error envelope.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	keyFunc := m.config.RateLimitKeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		m.config.RateLimitRequests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
	logging.Ctx(r.Context()).Warn().
		Str("path", r.URL.Path).
		Str("remote_addr", sanitizeLogValue(r.RemoteAddr)).
		Msg("Rate limit exceeded")
	respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many sync requests, try again later", nil)
}
