// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/garmincoach/internal/database"
	"github.com/tomtom215/garmincoach/internal/models"
)

// tableStatus is one line of the status output.
type tableStatus struct {
	Table         string     `json:"table"`
	Domain        string     `json:"domain"`
	Rows          int64      `json:"rows"`
	LatestDate    string     `json:"latest_date,omitempty"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
}

// statusView lists every table in canonical domain order.
type statusView struct {
	Database string        `json:"database"`
	Tables   []tableStatus `json:"tables"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show row counts, newest dates and watermarks",
		Long: `Print, for every table, the number of rows, the newest date stored,
and when its domain last synced successfully.

Example:
  garmincoach status
  garmincoach status --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.openStore(); err != nil {
				return err
			}

			status, err := collectStatus(cmd.Context(), e.store)
			if err != nil {
				return err
			}
			status.Database = e.store.Path()
			if err := e.out.Success(status); err != nil {
				return WrapExitError(ExitCommandError, "failed to write output", err)
			}
			return nil
		},
	}
}

// collectStatus joins table stats, newest dates and watermarks.
func collectStatus(ctx context.Context, store *database.Store) (*statusView, error) {
	counts, err := store.TableStats(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read table stats", err)
	}
	latest, err := store.LatestDates(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read latest dates", err)
	}
	wms, err := store.ListWatermarks(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read watermarks", err)
	}
	byDomain := make(map[models.Domain]models.Watermark, len(wms))
	for _, wm := range wms {
		byDomain[wm.Domain] = wm
	}

	view := &statusView{Database: store.Path()}
	for _, d := range models.AllDomains() {
		t := string(d.Table())
		ts := tableStatus{Table: t, Domain: string(d), Rows: counts[t], LatestDate: latest[t]}
		if wm, ok := byDomain[d]; ok {
			ts.LastSuccessAt = wm.LastSuccessAt
			ts.LastSyncedAt = wm.LastSyncedAt
		}
		view.Tables = append(view.Tables, ts)
	}
	return view, nil
}
