// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/tomtom215/hoard/internal/backup"
	"github.com/tomtom215/hoard/internal/logging"
)

// Config holds all application configuration.
// Field tags map to YAML keys and koanf paths (e.g. archive.level).
type Config struct {
	// Root is the installation root; relative paths below resolve against it.
	// Default: . (the working directory)
	Root string `koanf:"root" validate:"required"`

	// BackupDir holds archives and the catalog; relative to Root unless absolute.
	// Default: backups
	BackupDir string `koanf:"backup_dir" validate:"required"`

	Database  DatabaseConfig  `koanf:"database"`
	Sources   SourcesConfig   `koanf:"sources"`
	Archive   ArchiveConfig   `koanf:"archive"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Retention RetentionConfig `koanf:"retention"`
	Schedule  ScheduleConfig  `koanf:"schedule"`
	Project   ProjectConfig   `koanf:"project"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// DatabaseConfig locates the database file
type DatabaseConfig struct {
	// Path is relative to Root unless absolute. Empty disables the database component.
	// Default: data/app.db
	Path string `koanf:"path"`
}

// SourcesConfig lists what the config and source components include
type SourcesConfig struct {
	// ConfigFiles are root-relative configuration files (config component)
	ConfigFiles []string `koanf:"config_files" validate:"relpath"`

	// Directories are root-relative trees walked for the source component
	Directories []string `koanf:"directories" validate:"relpath"`

	// RootFiles are root-relative files added individually to the source component
	RootFiles []string `koanf:"root_files" validate:"relpath"`

	// Exclude filters directory trees: plain entries match as substrings of a
	// file name, entries with * ? or [ are globs
	Exclude []string `koanf:"exclude"`
}

// ArchiveConfig selects the member codec and restore limits
type ArchiveConfig struct {
	// Compression is deflate, zstd or store.
	// Default: deflate
	Compression string `koanf:"compression" validate:"oneof=deflate zstd store"`

	// Level is 1-9 for deflate and 1-4 for zstd; ignored for store.
	// Default: 6
	Level int `koanf:"level" validate:"gte=0,lte=9"`

	// MaxEntrySize bounds a single extracted member, in bytes.
	// Default: 16 GiB
	MaxEntrySize int64 `koanf:"max_entry_size" validate:"gt=0"`
}

// CatalogConfig bounds the catalog document
type CatalogConfig struct {
	// MaxEntries is the record limit; the oldest appended records are evicted first.
	// Default: 100
	MaxEntries int `koanf:"max_entries" validate:"gte=1"`
}

// RetentionConfig controls pruning
type RetentionConfig struct {
	// MaxAgeDays is the default age for clean and the daily sweep.
	// Default: 30
	MaxAgeDays int `koanf:"max_age_days" validate:"gte=0"`
}

// ScheduleConfig holds the scheduler's cron expressions
type ScheduleConfig struct {
	// Daily runs the database+config backup and the retention sweep.
	// Empty disables it. Default: 0 2 * * *
	Daily string `koanf:"daily" validate:"cron"`

	// Weekly runs the full backup. Empty disables it.
	// Default: 0 3 * * 0
	Weekly string `koanf:"weekly" validate:"cron"`

	// LockTimeout bounds how long an operation waits for another to finish.
	// Default: 30s
	LockTimeout time.Duration `koanf:"lock_timeout" validate:"gt=0"`
}

// ProjectConfig is recorded in every backup record
type ProjectConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is the output format: json or console.
	// Console is human-readable for interactive use.
	// Default: console
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller adds file:line to each log entry.
	// Default: false
	Caller bool `koanf:"caller"`
}

// MetricsConfig controls the Prometheus endpoint served by the schedule command
type MetricsConfig struct {
	// Addr is the listen address; empty disables the endpoint.
	Addr string `koanf:"addr" validate:"omitempty,hostname_port"`
}

// resolve makes p absolute against root
func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// RootDir returns the absolute installation root
func (c *Config) RootDir() (string, error) {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %q: %w", c.Root, err)
	}
	return root, nil
}

// BackupConfig resolves paths against the root and returns the backup subsystem configuration
func (c *Config) BackupConfig() (*backup.Config, error) {
	root, err := c.RootDir()
	if err != nil {
		return nil, err
	}

	return &backup.Config{
		RootDir:         root,
		BackupDir:       resolve(root, c.BackupDir),
		DatabasePath:    resolve(root, c.Database.Path),
		ConfigFiles:     append([]string(nil), c.Sources.ConfigFiles...),
		SourceDirs:      append([]string(nil), c.Sources.Directories...),
		SourceRootFiles: append([]string(nil), c.Sources.RootFiles...),
		ExcludePatterns: append([]string(nil), c.Sources.Exclude...),
		Compression: backup.CompressionConfig{
			Algorithm: c.Archive.Compression,
			Level:     c.Archive.Level,
		},
		MaxCatalogEntries: c.Catalog.MaxEntries,
		MaxEntrySize:      c.Archive.MaxEntrySize,
		LockTimeout:       c.Schedule.LockTimeout,
		Project: backup.ProjectInfo{
			Name:    c.Project.Name,
			Version: c.Project.Version,
			Root:    root,
		},
	}, nil
}

// LoggingSettings converts the logging section for logging.Init
func (c *Config) LoggingSettings() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}
