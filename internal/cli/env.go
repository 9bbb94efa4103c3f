// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/garmincoach/internal/config"
	"github.com/tomtom215/garmincoach/internal/database"
	"github.com/tomtom215/garmincoach/internal/logging"
	intsync "github.com/tomtom215/garmincoach/internal/sync"
)

// env is what a command needs after config loading.
type env struct {
	cfg   *config.Config
	out   *OutputFormatter
	store *database.Store
}

// loadEnv loads configuration, applies --db, and initializes logging.
// Logs go to stderr so --format json output on stdout stays parseable.
func loadEnv(cmd *cobra.Command, opts *RootOptions) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if opts.DBPath != "" {
		cfg.Database.Path = config.ExpandHome(opts.DBPath)
	}

	level := cfg.Logging.Level
	if opts.Verbose {
		level = "debug"
	}
	logging.Init(logging.Config{
		Level:  level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: cmd.ErrOrStderr(),
	})

	return &env{
		cfg: cfg,
		out: &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
	}, nil
}

// openStore opens the database read-write, creating the schema if needed.
func (e *env) openStore() error {
	store, err := database.New(&e.cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	e.store = store
	return nil
}

// newManager opens the store and wires the API client into a sync manager.
func (e *env) newManager(opts *RootOptions) (*intsync.Manager, error) {
	if err := e.openStore(); err != nil {
		return nil, err
	}
	fetcher, err := opts.fetcher(&e.cfg.Garmin)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create Garmin client", err)
	}
	mgr, err := intsync.NewManager(e.store, fetcher, &e.cfg.Sync, opts.Clock)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create sync manager", err)
	}
	return mgr, nil
}

// close releases the store, if one was opened.
func (e *env) close() {
	if e.store == nil {
		return
	}
	if err := e.store.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}
