// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/garmincoach/internal/api"
	"github.com/tomtom215/garmincoach/internal/logging"
	"github.com/tomtom215/garmincoach/internal/supervisor"
	"github.com/tomtom215/garmincoach/internal/supervisor/services"
)

// shutdownGrace is added to the HTTP timeout for the supervisor's stop budget.
const shutdownGrace = 30 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the periodic sync daemon with its HTTP API",
		Long: `Run a sync at startup and every sync.interval, and serve:

  GET  /health               store ping
  GET  /metrics              Prometheus metrics
  POST /api/v1/sync          trigger a sync, returns the report
  GET  /api/v1/sync/status   watermarks, row counts, last report

Both run under a supervisor that restarts them on failure. SIGINT or
SIGTERM stops the daemon gracefully.

Example:
  garmincoach serve
  SERVER_PORT=9000 garmincoach serve -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	e, err := loadEnv(cmd, opts)
	if err != nil {
		return err
	}
	defer e.close()

	mgr, err := e.newManager(opts)
	if err != nil {
		return err
	}

	handler := api.NewHandler(e.store, mgr, e.cfg.Sync.LookbackDays)
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFrom(&e.cfg.Server))
	server := &http.Server{
		Addr:              e.cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       e.cfg.Server.Timeout,
		// POST /api/v1/sync answers only when the run is done.
		WriteTimeout: e.cfg.Sync.RunTimeout + e.cfg.Server.Timeout,
		IdleTimeout:  2 * time.Minute,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: e.cfg.Server.Timeout + shutdownGrace,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create supervisor tree", err)
	}
	tree.AddDataService(services.NewSyncService(mgr, e.store))
	tree.AddAPIService(services.NewHTTPServerService(server, e.cfg.Server.Timeout))

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", server.Addr).
		Str("database", e.store.Path()).
		Dur("interval", e.cfg.Sync.Interval).
		Msg("Starting daemon")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "supervisor stopped", err)
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}
	logging.Info().Msg("Daemon stopped")
	return nil
}
