// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/garmincoach/internal/models"
)

// RefreshOptions holds flags for the refresh command.
type RefreshOptions struct {
	*RootOptions
	Force    bool
	Cooldown time.Duration
}

// refreshResult is printed by refresh.
type refreshResult struct {
	Skipped bool               `json:"skipped"`
	Report  *models.SyncReport `json:"report,omitempty"`
	Status  *statusView        `json:"status"`
}

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RefreshOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Sync the last day unless data is fresh",
		Long: `Run a one-day sync, then print the database status.

The sync is skipped when any domain was synced within the cooldown, which
makes refresh cheap to call before every look at the data.

Example:
  garmincoach refresh
  garmincoach refresh --force
  garmincoach refresh --cooldown 15m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "sync even if data is fresh")
	cmd.Flags().DurationVar(&opts.Cooldown, "cooldown", 0, "skip when synced within this duration (default: sync.refresh_cooldown)")

	return cmd
}

func runRefresh(cmd *cobra.Command, opts *RefreshOptions) error {
	e, err := loadEnv(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.close()

	cooldown := e.cfg.Sync.RefreshCooldown
	if cmd.Flags().Changed("cooldown") {
		cooldown = opts.Cooldown
	}

	mgr, err := e.newManager(opts.RootOptions)
	if err != nil {
		return err
	}

	report, skipped, err := mgr.Refresh(cmd.Context(), opts.Force, cooldown)
	if err != nil {
		return WrapExitError(ExitCommandError, "refresh failed", err)
	}

	status, err := collectStatus(cmd.Context(), e.store)
	if err != nil {
		return err
	}

	if err := e.out.Success(refreshResult{Skipped: skipped, Report: report, Status: status}); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	if report != nil {
		return exitForStatus(report)
	}
	return nil
}
