// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tomtom215/garmincoach/internal/database"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Limit int
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   `query "<sql>"`,
		Short: "Run a read-only SQL query",
		Long: `Run one read-only statement (SELECT, WITH, DESCRIBE, SHOW or
PRAGMA table_info) against a read-only connection.

Example:
  garmincoach query "SELECT date, sleep_score FROM sleep ORDER BY date DESC"
  garmincoach query "DESCRIBE activities" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", database.DefaultQueryLimit, "maximum rows to return (max 1000)")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions, sql string) error {
	e, err := loadEnv(cmd, opts.RootOptions)
	if err != nil {
		return err
	}

	if _, err := database.ValidateQuery(sql); err != nil {
		return WrapExitError(ExitCommandError, "query rejected", err)
	}

	store, err := database.OpenReadOnly(&e.cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database read-only", err)
	}
	e.store = store
	defer e.close()

	result, err := store.Query(cmd.Context(), sql, opts.Limit)
	if err != nil {
		if errors.Is(err, database.ErrQueryNotAllowed) {
			return WrapExitError(ExitCommandError, "query rejected", err)
		}
		return WrapExitError(ExitCommandError, "query failed", err)
	}

	if err := e.out.Success(queryView{result}); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	return nil
}
