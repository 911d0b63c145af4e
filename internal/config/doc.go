// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
Package config loads and validates Hoard's configuration.

# Configuration Sources

Layers are applied in order, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. YAML file: the --config flag, else HOARD_CONFIG, else the first of
    hoard.yaml, hoard.yml, /etc/hoard/config.yaml, /etc/hoard/config.yml
 3. HOARD_* environment variables

# Example File

	root: /srv/app
	backup_dir: backups
	database:
	  path: data/app.db
	sources:
	  config_files: [.env, config/app.yaml]
	  directories: [src, templates]
	  root_files: [go.mod, README.md]
	  exclude: [node_modules, .git, "*.log"]
	archive:
	  compression: zstd
	  level: 3
	retention:
	  max_age_days: 30
	schedule:
	  daily: "0 2 * * *"
	  weekly: "0 3 * * 0"
	metrics:
	  addr: 127.0.0.1:9090

# Environment Variables

  - HOARD_ROOT, HOARD_BACKUP_DIR, HOARD_DATABASE_PATH
  - HOARD_CONFIG_FILES, HOARD_SOURCE_DIRS, HOARD_ROOT_FILES, HOARD_EXCLUDE
    (comma-separated)
  - HOARD_COMPRESSION, HOARD_ARCHIVE_LEVEL, HOARD_MAX_ENTRY_SIZE
  - HOARD_CATALOG_MAX_ENTRIES, HOARD_RETENTION_DAYS
  - HOARD_SCHEDULE_DAILY, HOARD_SCHEDULE_WEEKLY, HOARD_LOCK_TIMEOUT
  - HOARD_PROJECT_NAME, HOARD_PROJECT_VERSION
  - HOARD_LOG_LEVEL, HOARD_LOG_FORMAT, HOARD_LOG_CALLER
  - HOARD_METRICS_ADDR

# Validation

Struct tags are checked with go-playground/validator through
internal/validation (including the cron and relpath rules), followed by
cross-field checks such as the codec-specific compression level range.

BackupConfig resolves relative paths against the root and produces the
backup.Config consumed by the backup package, which never reads the
environment itself.
*/
package config
