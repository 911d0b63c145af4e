// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus instrumentation for the backup subsystem:
// - Backup creation (count, duration, archive size)
// - Restore runs and per-component outcomes
// - Retention sweeps
// - Catalog size and freshness
// - Scheduler job runs
// - Status server requests

var (
	// Backup Metrics
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoard_backups_total",
			Help: "Total number of backup attempts",
		},
		[]string{"trigger", "result"}, // trigger: manual, scheduled, pre_restore
	)

	BackupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoard_backup_duration_seconds",
			Help:    "Duration of backup creation in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		},
		[]string{"trigger"},
	)

	BackupArchiveBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hoard_backup_archive_bytes",
			Help:    "Size of finished backup archives in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 12), // 1KiB .. 4GiB
		},
	)

	BackupWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hoard_backup_warnings_total",
			Help: "Total number of non-fatal warnings raised while building archives",
		},
	)

	// Restore Metrics
	RestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoard_restores_total",
			Help: "Total number of restore attempts",
		},
		[]string{"result"},
	)

	RestoreComponentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoard_restore_components_total",
			Help: "Restore outcomes per component",
		},
		[]string{"component", "result"},
	)

	RestoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hoard_restore_duration_seconds",
			Help:    "Duration of restore operations in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		},
	)

	// Retention Metrics
	PrunedArchivesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hoard_pruned_archives_total",
			Help: "Total number of archives deleted by retention",
		},
	)

	PruneFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hoard_prune_failures_total",
			Help: "Total number of archives retention failed to delete",
		},
	)

	// Catalog Metrics
	CatalogEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoard_catalog_entries",
			Help: "Number of records in the backup catalog",
		},
	)

	CatalogBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoard_catalog_bytes",
			Help: "Combined size of cataloged archives present on disk",
		},
	)

	CatalogMissing = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoard_catalog_missing_archives",
			Help: "Number of catalog records whose archive is missing",
		},
	)

	LastBackupTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoard_last_backup_timestamp_seconds",
			Help: "Unix time of the newest cataloged backup",
		},
	)

	// Scheduler Metrics
	SchedulerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoard_scheduler_runs_total",
			Help: "Scheduled job runs",
		},
		[]string{"job", "result"}, // job: daily, weekly
	)

	SchedulerNextRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hoard_scheduler_next_run_timestamp_seconds",
			Help: "Unix time of the next scheduled run per job",
		},
		[]string{"job"},
	)

	// Status Server Metrics
	StatusRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoard_status_requests_total",
			Help: "Requests served by the status server",
		},
		[]string{"path", "code"},
	)
)

// resultLabel maps an error to the result label value
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// RecordBackup records a backup attempt
func RecordBackup(trigger string, duration time.Duration, archiveBytes int64, warnings int, err error) {
	BackupsTotal.WithLabelValues(trigger, resultLabel(err)).Inc()
	BackupDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	if err == nil {
		BackupArchiveBytes.Observe(float64(archiveBytes))
	}
	if warnings > 0 {
		BackupWarnings.Add(float64(warnings))
	}
}

// RecordRestore records a restore attempt
func RecordRestore(duration time.Duration, err error) {
	RestoresTotal.WithLabelValues(resultLabel(err)).Inc()
	RestoreDuration.Observe(duration.Seconds())
}

// RecordRestoreComponent records the outcome of applying one component
func RecordRestoreComponent(component string, err error) {
	RestoreComponentsTotal.WithLabelValues(component, resultLabel(err)).Inc()
}

// RecordPrune records a retention sweep
func RecordPrune(deleted, failed int) {
	PrunedArchivesTotal.Add(float64(deleted))
	PruneFailuresTotal.Add(float64(failed))
}

// UpdateCatalogGauges refreshes the catalog gauges
func UpdateCatalogGauges(entries, missing int, totalBytes int64, newest *time.Time) {
	CatalogEntries.Set(float64(entries))
	CatalogMissing.Set(float64(missing))
	CatalogBytes.Set(float64(totalBytes))
	if newest != nil {
		LastBackupTimestamp.Set(float64(newest.Unix()))
	} else {
		LastBackupTimestamp.Set(0)
	}
}

// RecordSchedulerRun records one scheduled job run
func RecordSchedulerRun(job string, err error) {
	SchedulerRunsTotal.WithLabelValues(job, resultLabel(err)).Inc()
}

// SetSchedulerNextRun publishes the next fire time of a job
func SetSchedulerNextRun(job string, next time.Time) {
	SchedulerNextRun.WithLabelValues(job).Set(float64(next.Unix()))
}

// RecordStatusRequest counts one status server response
func RecordStatusRequest(path string, code int) {
	StatusRequestsTotal.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

// Handler returns the Prometheus exposition handler for the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
