// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration
type Config struct {
	Garmin   GarminConfig   `koanf:"garmin"`
	Database DatabaseConfig `koanf:"database"`
	Sync     SyncConfig     `koanf:"sync"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// GarminConfig holds Garmin Connect API client settings.
//
// Authentication itself is out of scope: the client only presents a bearer
// token that some other tool (garth, garminconnect) has already obtained.
type GarminConfig struct {
	BaseURL     string `koanf:"base_url"`
	AccessToken string `koanf:"access_token"`
	// TokenDir is searched for oauth2_token.json when AccessToken is empty.
	TokenDir    string `koanf:"token_dir"`
	DisplayName string `koanf:"display_name"` // Resolved from the social profile if empty

	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	PageSize          int           `koanf:"page_size"`        // Activities per search page
	DetailPageSize    int           `koanf:"detail_page_size"` // Activities per detail page (splits, hr zones)
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // Number of DuckDB threads (0 = use NumCPU)
}

// SyncConfig holds sync engine settings
type SyncConfig struct {
	Interval        time.Duration `koanf:"interval"`      // Periodic sync interval for serve
	LookbackDays    int           `koanf:"lookback_days"` // Default lookback for sync and serve
	Overlap         time.Duration `koanf:"overlap"`       // Re-fetch margin before the watermark
	Concurrency     int           `koanf:"concurrency"`   // Domains processed in parallel
	RetryAttempts   int           `koanf:"retry_attempts"`
	RetryDelay      time.Duration `koanf:"retry_delay"`
	RunTimeout      time.Duration `koanf:"run_timeout"`
	MaxPages        int           `koanf:"max_pages"` // Per domain and run
	RefreshCooldown time.Duration `koanf:"refresh_cooldown"`
	Timezone        string        `koanf:"timezone"` // Calendar used for daily windows ("Local" or IANA name)
}

// Location resolves Timezone, falling back to time.Local.
func (s SyncConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// ServerConfig holds HTTP server settings for the serve command
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}
