// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
Package services provides suture.Service wrappers for the long-running parts
of the schedule command.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts http.ErrServerClosed into a clean return
  - Serves the status router built by NewStatusRouter

Status Router (NewStatusRouter):
  - GET /metrics: Prometheus exposition (promhttp)
  - GET /healthz: backup freshness as JSON; 503 when health is critical

The scheduler itself implements suture.Service directly and lives in
internal/scheduler.

# Example

	router := services.NewStatusRouter(manager)
	server := &http.Server{Addr: cfg.Metrics.Addr, Handler: router}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
*/
package services
