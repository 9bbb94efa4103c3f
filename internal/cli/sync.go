// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tomtom215/garmincoach/internal/models"
	intsync "github.com/tomtom215/garmincoach/internal/sync"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Days    int
	Domains []string
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch new data from Garmin Connect",
		Long: `Run one sync and print its report.

Each domain fetches from its watermark minus a one-day overlap, or --days
back from today, whichever is older. Domains run in parallel and fail
independently.

Exit codes: 0 SUCCEEDED, 3 PARTIAL, 1 FAILED, 2 command error.

Example:
  garmincoach sync
  garmincoach sync --days 30 --domain sleep --domain hrv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 0, "lookback in days (default: sync.lookback_days)")
	cmd.Flags().StringSliceVar(&opts.Domains, "domain", nil, "domain to sync, repeatable (default: all)")

	return cmd
}

func runSync(cmd *cobra.Command, opts *SyncOptions) error {
	e, err := loadEnv(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.close()

	domains, err := models.ParseDomains(opts.Domains)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --domain", err)
	}
	days := e.cfg.Sync.LookbackDays
	if cmd.Flags().Changed("days") {
		days = opts.Days
	}

	mgr, err := e.newManager(opts.RootOptions)
	if err != nil {
		return err
	}

	report, err := mgr.Run(cmd.Context(), intsync.RunRequest{LookbackDays: days, Domains: domains})
	if err != nil {
		if errors.Is(err, intsync.ErrInvalidRequest) {
			return WrapExitError(ExitCommandError, "invalid sync request", err)
		}
		return WrapExitError(ExitFailure, "sync failed", err)
	}

	if err := e.out.Success(reportView{report}); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	return exitForStatus(report)
}
