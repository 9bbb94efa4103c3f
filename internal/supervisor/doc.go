// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

/*
Package supervisor runs the serve daemon under a suture v4 supervisor tree.

	RootSupervisor ("garmincoach")
	├── DataSupervisor ("data-layer")
	│   └── SyncService (periodic sync, checkpoint on stop)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's failure threshold, decay and
backoff. Each layer counts failures on its own, so a sync loop that keeps
failing backs off without touching the HTTP server.

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog into a slog.Logger that forwards to zerolog:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewSyncService(manager, store))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

Serve returns once every service has stopped or the shutdown timeout
elapsed; UnstoppedServiceReport names the stragglers.
*/
package supervisor
