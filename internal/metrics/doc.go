// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
Package metrics provides Prometheus instrumentation for the backup subsystem.

Metrics are registered on the default registry with promauto and exposed by
the schedule command when metrics.addr is set:

	curl http://127.0.0.1:9090/metrics

# Available Metrics

Backups:
  - hoard_backups_total{trigger,result}
  - hoard_backup_duration_seconds{trigger}
  - hoard_backup_archive_bytes
  - hoard_backup_warnings_total

Restores:
  - hoard_restores_total{result}
  - hoard_restore_components_total{component,result}
  - hoard_restore_duration_seconds

Retention:
  - hoard_pruned_archives_total
  - hoard_prune_failures_total

Catalog (refreshed on list and stats):
  - hoard_catalog_entries
  - hoard_catalog_bytes
  - hoard_catalog_missing_archives
  - hoard_last_backup_timestamp_seconds

Scheduler:
  - hoard_scheduler_runs_total{job,result}
  - hoard_scheduler_next_run_timestamp_seconds{job}

Status server:
  - hoard_status_requests_total{path,code}

The result label is success, canceled (context canceled or deadline
exceeded) or error.

# Example Alert

	- alert: HoardBackupStale
	  expr: time() - hoard_last_backup_timestamp_seconds > 2 * 86400
	  for: 1h
*/
package metrics
