// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

// Package cli implements the garmincoach cobra commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/garmincoach/internal/config"
	"github.com/tomtom215/garmincoach/internal/garmin"
	"github.com/tomtom215/garmincoach/internal/planner"
	"github.com/tomtom215/garmincoach/internal/transport"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	Verbose    bool
	Format     string // "json" | "text"

	// NewFetcher builds the API client. Nil means the Garmin Connect client.
	NewFetcher func(cfg *config.GarminConfig) (transport.Fetcher, error)
	// Clock drives window planning and refresh cooldowns. Nil means the wall clock.
	Clock planner.Clock
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "garmincoach",
		Short: "Sync Garmin Connect fitness telemetry into DuckDB",
		Long: `garmincoach pulls activities, sleep, heart rate, HRV, training and body
composition data from Garmin Connect into a local DuckDB database.

Syncs are incremental and idempotent: each domain resumes from its
watermark with a one-day overlap, and re-fetched records update in place.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default: ./config.yaml or ~/.garmincoach/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to DuckDB database (overrides database.path)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewRefreshCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) fetcher(cfg *config.GarminConfig) (transport.Fetcher, error) {
	if o.NewFetcher != nil {
		return o.NewFetcher(cfg)
	}
	return garmin.NewClient(cfg)
}
