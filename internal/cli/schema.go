// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/garmincoach/internal/database"
)

// NewSchemaCommand creates the schema command. It needs no database.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "List tables, keys and columns",
		Long: `Print the layout of the 13 telemetry tables: natural key columns
first, then every other column with its type.

Example:
  garmincoach schema
  garmincoach schema --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if err := out.Success(schemaView(database.Schema())); err != nil {
				return WrapExitError(ExitCommandError, "failed to write output", err)
			}
			return nil
		},
	}
}
