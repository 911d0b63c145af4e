// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
Package supervisor runs the long-lived parts of hoard under a suture v4
supervisor tree.

# Overview

The schedule command builds this tree:

	RootSupervisor ("hoard")
	├── SchedulingSupervisor ("scheduling-layer")
	│   └── Scheduler ("backup-scheduler")
	└── APISupervisor ("api-layer")
	    └── HTTPServerService ("status-server", only when metrics.addr is set)

A crashed scheduler is restarted with backoff while the status server keeps
answering /healthz, and the reverse.

Supervisor events (service start, panic, backoff, termination timeouts) are
logged through sutureslog into the zerolog global logger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddSchedulerService(sched)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

# See Also

  - internal/supervisor/services: HTTP server wrapper and status router
  - internal/scheduler: the backup scheduler service
*/
package supervisor
