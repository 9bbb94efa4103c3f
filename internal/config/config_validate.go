// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package config

import (
	"fmt"
	"net/url"
	"time"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateGarmin(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateSync(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateGarmin validates the API client settings. The token is not checked
// here: commands that never reach the API (status, query) must work without one.
func (c *Config) validateGarmin() error {
	if err := validateHTTPURL(c.Garmin.BaseURL); err != nil {
		return fmt.Errorf("GARMIN_BASE_URL is invalid: %w", err)
	}
	if c.Garmin.RequestsPerSecond <= 0 {
		return fmt.Errorf("GARMIN_REQUESTS_PER_SECOND must be positive")
	}
	if c.Garmin.Burst < 1 {
		return fmt.Errorf("GARMIN_BURST must be at least 1")
	}
	if c.Garmin.PageSize < 1 || c.Garmin.PageSize > 1000 {
		return fmt.Errorf("GARMIN_PAGE_SIZE must be between 1 and 1000")
	}
	if c.Garmin.DetailPageSize < 1 {
		return fmt.Errorf("GARMIN_DETAIL_PAGE_SIZE must be at least 1")
	}
	if c.Garmin.Timeout <= 0 {
		return fmt.Errorf("GARMIN_TIMEOUT must be positive")
	}
	return nil
}

// validateDatabase validates the DuckDB settings
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0")
	}
	return nil
}

// validateSync validates the sync engine settings
func (c *Config) validateSync() error {
	if c.Sync.LookbackDays < 0 {
		return fmt.Errorf("SYNC_LOOKBACK_DAYS must be >= 0")
	}
	if c.Sync.Overlap < 0 {
		return fmt.Errorf("SYNC_OVERLAP must be >= 0")
	}
	if c.Sync.Concurrency < 1 {
		return fmt.Errorf("SYNC_CONCURRENCY must be at least 1")
	}
	if c.Sync.RetryAttempts < 1 {
		return fmt.Errorf("SYNC_RETRY_ATTEMPTS must be at least 1")
	}
	if c.Sync.RetryDelay <= 0 {
		return fmt.Errorf("SYNC_RETRY_DELAY must be positive")
	}
	if c.Sync.RunTimeout <= 0 {
		return fmt.Errorf("SYNC_RUN_TIMEOUT must be positive")
	}
	if c.Sync.MaxPages < 1 {
		return fmt.Errorf("SYNC_MAX_PAGES must be at least 1")
	}
	if c.Sync.Interval < time.Minute {
		return fmt.Errorf("SYNC_INTERVAL must be at least 1m")
	}
	if _, err := c.Sync.Location(); err != nil {
		return fmt.Errorf("SYNC_TIMEZONE is invalid: %w", err)
	}
	return nil
}

// validateServer validates the HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be at least 1")
	}
	if c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateHTTPURL checks that raw is an absolute http(s) URL.
func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
