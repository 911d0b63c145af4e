// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/hoard/internal/backup"
	"github.com/tomtom215/hoard/internal/logging"
	"github.com/tomtom215/hoard/internal/scheduler"
	"github.com/tomtom215/hoard/internal/supervisor"
	"github.com/tomtom215/hoard/internal/supervisor/services"
)

const statusShutdownTimeout = 10 * time.Second

func newScheduleCmd(a *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run scheduled backups until interrupted",
		Long: `Run the backup scheduler in the foreground:

  daily  (schedule.daily)   database and configuration backup, then clean
                            using retention.max_age_days
  weekly (schedule.weekly)  full backup including source trees

With --metrics-addr (or metrics.addr) a status server exposes /metrics and
/healthz. The command runs until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if metricsAddr == "" {
				metricsAddr = a.cfg.Metrics.Addr
			}
			return runSchedule(cmd.Context(), a, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "listen address for /metrics and /healthz (e.g. 127.0.0.1:9090)")
	return cmd
}

func runSchedule(ctx context.Context, a *app, metricsAddr string) error {
	sched, err := scheduler.New(a.manager, scheduler.Config{
		Daily:         a.cfg.Schedule.Daily,
		Weekly:        a.cfg.Schedule.Weekly,
		RetentionDays: a.cfg.Retention.MaxAgeDays,
	})
	if err != nil {
		return err
	}

	// Keep catalog gauges current between scrapes
	a.manager.SetOnBackupComplete(func(backup.Entry) {
		a.manager.Stats()
	})
	a.manager.Stats()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}
	tree.AddSchedulerService(sched)

	if metricsAddr != "" {
		server := &http.Server{
			Addr:              metricsAddr,
			Handler:           services.NewStatusRouter(a.manager),
			ReadHeaderTimeout: 10 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, statusShutdownTimeout))
	}

	event := logging.Info().
		Str("daily", a.cfg.Schedule.Daily).
		Str("weekly", a.cfg.Schedule.Weekly).
		Int("retention_days", a.cfg.Retention.MaxAgeDays).
		Str("metrics_addr", metricsAddr)
	for name, next := range sched.NextRuns(time.Now()) {
		event = event.Time("next_"+name, next)
	}
	event.Msg("Backup scheduler started")

	err = tree.Serve(ctx)
	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		logging.Warn().Int("services", len(report)).Msg("Some services did not stop within the shutdown timeout")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Backup scheduler stopped")
	return nil
}
