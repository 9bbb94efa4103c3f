// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package main is the entry point of the garmincoach command.

garmincoach pulls personal fitness telemetry from Garmin Connect into a local
DuckDB database, one incremental and idempotent sync at a time.

# Commands

	garmincoach sync      Run one sync and print its report
	garmincoach refresh   One-day sync unless data is fresh, then status
	garmincoach status    Row counts, newest dates and watermarks
	garmincoach query     Read-only SQL against the database
	garmincoach schema    Tables, keys and columns
	garmincoach serve     Periodic sync plus the HTTP API

# Daemon Layout

serve runs a Suture v4 supervisor tree:

	RootSupervisor ("garmincoach")
	├── DataSupervisor ("data-layer")
	│   └── Sync Manager (periodic sync, checkpoint on stop)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (health, metrics, sync trigger and status)

# Exit Codes

	0  sync SUCCEEDED, or command completed
	1  sync FAILED
	2  command error (flags, config, database, rejected query)
	3  sync PARTIAL

# Configuration

Settings are layered with Koanf v2: built-in defaults, then config.yaml
(--config, CONFIG_PATH, ./config.yaml or ~/.garmincoach/config.yaml),
then environment variables such as GARMIN_TOKEN, DUCKDB_PATH and
SYNC_LOOKBACK_DAYS.
*/
package main
