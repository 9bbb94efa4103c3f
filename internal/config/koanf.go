// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"~/.garmincoach/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Garmin: GarminConfig{
			BaseURL:           "https://connectapi.garmin.com",
			TokenDir:          "~/.garminconnect",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
			PageSize:          100,
			DetailPageSize:    20,
		},
		Database: DatabaseConfig{
			Path:      "~/.garmincoach/garmin.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Sync: SyncConfig{
			Interval:        6 * time.Hour,
			LookbackDays:    30,
			Overlap:         24 * time.Hour,
			Concurrency:     4,
			RetryAttempts:   5,
			RetryDelay:      2 * time.Second,
			RunTimeout:      30 * time.Minute,
			MaxPages:        1000,
			RefreshCooldown: 5 * time.Minute,
			Timezone:        "Local",
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8765,
			Timeout:         30 * time.Second,
			RateLimitReqs:   10,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Defaults returns the built-in configuration without reading any file or
// environment variable.
func Defaults() *Config {
	return defaultConfig()
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: explicit path, CONFIG_PATH, or the first of DefaultConfigPaths
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults. The result is validated before return.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional unless explicitly requested)
	configPath, err := resolveConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables, e.g. DUCKDB_PATH -> database.path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Database.Path = ExpandHome(cfg.Database.Path)
	cfg.Garmin.TokenDir = ExpandHome(cfg.Garmin.TokenDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// resolveConfigFile returns the config file to load. An explicit path must
// exist; the fallback locations are optional.
func resolveConfigFile(explicit string) (string, error) {
	if explicit != "" {
		explicit = ExpandHome(explicit)
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	return findConfigFile(), nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		envPath = ExpandHome(envPath)
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		path = ExpandHome(path)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return "" and are ignored so the process environment
// cannot pollute the configuration.
//
// Examples:
//   - GARMIN_TOKEN -> garmin.access_token
//   - DUCKDB_PATH -> database.path
//   - SYNC_LOOKBACK_DAYS -> sync.lookback_days
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Garmin API client
		"garmin_base_url":            "garmin.base_url",
		"garmin_token":               "garmin.access_token",
		"garmin_access_token":        "garmin.access_token",
		"garmin_token_dir":           "garmin.token_dir",
		"garminconnect_tokens":       "garmin.token_dir",
		"garmin_display_name":        "garmin.display_name",
		"garmin_timeout":             "garmin.timeout",
		"garmin_requests_per_second": "garmin.requests_per_second",
		"garmin_burst":               "garmin.burst",
		"garmin_page_size":           "garmin.page_size",
		"garmin_detail_page_size":    "garmin.detail_page_size",

		// Database
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Sync engine
		"sync_interval":         "sync.interval",
		"sync_lookback_days":    "sync.lookback_days",
		"sync_overlap":          "sync.overlap",
		"sync_concurrency":      "sync.concurrency",
		"sync_retry_attempts":   "sync.retry_attempts",
		"sync_retry_delay":      "sync.retry_delay",
		"sync_run_timeout":      "sync.run_timeout",
		"sync_max_pages":        "sync.max_pages",
		"sync_refresh_cooldown": "sync.refresh_cooldown",
		"sync_timezone":         "sync.timezone",

		// HTTP server
		"http_host":         "server.host",
		"http_port":         "server.port",
		"http_timeout":      "server.timeout",
		"rate_limit_reqs":   "server.rate_limit_reqs",
		"rate_limit_window": "server.rate_limit_window",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
