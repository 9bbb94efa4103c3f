// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package config loads and validates garmincoach configuration.

# Configuration Sources

Load layers three sources with koanf, later sources winning:

 1. Built-in defaults (defaultConfig)
 2. A YAML file: the --config flag, CONFIG_PATH, ./config.yaml, or
    ~/.garmincoach/config.yaml
 3. Environment variables

# Configuration Structure

  - GarminConfig: API base URL, bearer token or token directory, rate limits, page sizes
  - DatabaseConfig: DuckDB file path, memory limit, threads
  - SyncConfig: lookback, overlap margin, worker count, retry policy, run timeout
  - ServerConfig: HTTP listen address and trigger rate limit for serve
  - LoggingConfig: zerolog level and format

# Environment Variables

Garmin API:
  - GARMIN_TOKEN: Bearer token (otherwise read from GARMIN_TOKEN_DIR/oauth2_token.json)
  - GARMIN_TOKEN_DIR: Token directory (default: ~/.garminconnect)
  - GARMIN_DISPLAY_NAME: Account display name used by per-user endpoints
  - GARMIN_REQUESTS_PER_SECOND: Client-side rate limit (default: 2)

Database:
  - DUCKDB_PATH: Database file path (default: ~/.garmincoach/garmin.duckdb)
  - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)

Sync:
  - SYNC_LOOKBACK_DAYS: Default lookback in days (default: 30)
  - SYNC_OVERLAP: Margin re-fetched before the watermark (default: 24h)
  - SYNC_CONCURRENCY: Domains processed in parallel (default: 4)
  - SYNC_RETRY_ATTEMPTS / SYNC_RETRY_DELAY: Transient failure retry policy (default: 5, 2s)
  - SYNC_RUN_TIMEOUT: Upper bound for one run (default: 30m)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)

Unlisted environment variables are ignored.
*/
package config
