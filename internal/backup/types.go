// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package backup

import (
	"errors"
	"strings"
	"time"
)

// Sentinel errors returned by the Manager. Use errors.Is to test for them.
var (
	// ErrNotFound is returned when no catalog record matches a backup id
	ErrNotFound = errors.New("backup not found")

	// ErrMissingArchive is returned when a record exists but its archive file does not
	ErrMissingArchive = errors.New("backup archive missing")

	// ErrLocked is returned when the backup directory lock cannot be acquired
	ErrLocked = errors.New("backup directory is locked by another operation")

	// ErrInvalidRetention is returned for a negative retention age
	ErrInvalidRetention = errors.New("retention days must not be negative")

	// ErrInvalidID is returned for ids that do not have the backup id shape
	ErrInvalidID = errors.New("invalid backup id")

	// ErrCatalogCorrupt is returned when the catalog document cannot be parsed
	ErrCatalogCorrupt = errors.New("backup catalog is corrupt")
)

// Component names used in logs, metrics and archive layout
const (
	ComponentDatabase = "database"
	ComponentConfig   = "config"
	ComponentSource   = "source"
)

// StatusMissing marks a catalog entry whose archive is gone
const StatusMissing = "missing"

// Components records which parts of the installation a backup contains
type Components struct {
	Database bool `json:"database"`
	Config   bool `json:"config"`
	Source   bool `json:"source"`
}

// AllComponents returns the full component set (database, config and source)
func AllComponents() Components {
	return Components{Database: true, Config: true, Source: true}
}

// String renders the enabled components as a comma-separated list
func (c Components) String() string {
	var parts []string
	if c.Database {
		parts = append(parts, ComponentDatabase)
	}
	if c.Config {
		parts = append(parts, ComponentConfig)
	}
	if c.Source {
		parts = append(parts, ComponentSource)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// SystemInfo is a point-in-time description of the host that produced a backup.
// It is informational only.
type SystemInfo struct {
	Platform      string `json:"platform"`
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Hostname      string `json:"hostname"`
	KernelVersion string `json:"kernel_version,omitempty"`
	GoVersion     string `json:"go_version"`
}

// ProjectInfo describes the protected installation
type ProjectInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Root    string `json:"root,omitempty"`
}

// Record is a catalog entry. It is immutable once Hash is set.
type Record struct {
	// ID is the time-based primary key, also the archive file stem
	ID string `json:"id"`

	// Timestamp and CreatedAt are both the creation instant
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`

	// Description is free text; "manual" in it exempts the record from retention
	Description string `json:"description"`

	Components Components  `json:"components"`
	System     SystemInfo  `json:"system"`
	Project    ProjectInfo `json:"project"`

	// Hash is the SHA-256 of the finished archive, empty inside the archive itself
	Hash string `json:"hash,omitempty"`
}

// IsManual reports whether the description marks the record as manually created
func (r *Record) IsManual() bool {
	return strings.Contains(strings.ToLower(r.Description), "manual")
}

// Entry is a Record enriched with filesystem state at read time.
// Path, Size, Exists and Status are never persisted in the catalog.
type Entry struct {
	Record

	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Exists bool   `json:"exists"`
	Status string `json:"status,omitempty"`
}

// CreateOptions controls a single backup
type CreateOptions struct {
	// Components to include; the zero value backs up nothing but metadata
	Components Components

	// Description label; defaults to "Manual backup" when empty
	Description string
}

// CreateResult is returned by Manager.Create
type CreateResult struct {
	Entry Entry

	// Cataloged is false when the archive was written but the catalog
	// update failed
	Cataloged bool
	Warnings  []string
	Duration  time.Duration
}

// RestoreOptions controls which components are written back
type RestoreOptions struct {
	Database bool
	Config   bool
	Source   bool

	// PreBackup takes a safety snapshot of the live state before writing
	PreBackup bool
}

// DefaultRestoreOptions restores database and config with a pre-restore snapshot
func DefaultRestoreOptions() RestoreOptions {
	return RestoreOptions{
		Database:  true,
		Config:    true,
		Source:    false,
		PreBackup: true,
	}
}

// RestoreResult reports what a restore actually wrote
type RestoreResult struct {
	BackupID           string        `json:"backup_id"`
	PreRestoreBackupID string        `json:"pre_restore_backup_id,omitempty"`
	Restored           Components    `json:"restored"`
	FilesRestored      int           `json:"files_restored"`
	Warnings           []string      `json:"warnings,omitempty"`
	Duration           time.Duration `json:"duration"`
}

// PruneResult reports the outcome of a retention sweep
type PruneResult struct {
	Deleted  int      `json:"deleted"`
	Kept     int      `json:"kept"`
	Exempt   int      `json:"exempt"`
	Failed   int      `json:"failed"`
	Warnings []string `json:"warnings,omitempty"`
}

// Health classifies backup freshness
type Health string

const (
	// HealthHealthy means the newest backup is at most two days old
	HealthHealthy Health = "healthy"

	// HealthWarning means the newest backup is at most seven days old
	HealthWarning Health = "warning"

	// HealthCritical means no backups exist or the newest is older than seven days
	HealthCritical Health = "critical"
)

// Stats summarises the catalog
type Stats struct {
	TotalCount     int        `json:"total_count"`
	TotalSizeBytes int64      `json:"total_size_bytes"`
	MissingCount   int        `json:"missing_count"`
	ManualCount    int        `json:"manual_count"`
	AutomaticCount int        `json:"automatic_count"`
	DatabaseCount  int        `json:"database_count"`
	ConfigCount    int        `json:"config_count"`
	SourceCount    int        `json:"source_count"`
	OldestBackup   *time.Time `json:"oldest_backup,omitempty"`
	NewestBackup   *time.Time `json:"newest_backup,omitempty"`
	NewestID       string     `json:"newest_id,omitempty"`
	Health         Health     `json:"health"`
}

// VerifyResult reports the outcome of an integrity check
type VerifyResult struct {
	BackupID         string         `json:"backup_id"`
	Valid            bool           `json:"valid"`
	ExpectedHash     string         `json:"expected_hash"`
	ActualHash       string         `json:"actual_hash"`
	MetadataPresent  bool           `json:"metadata_present"`
	EntriesByType    map[string]int `json:"entries_by_type"`
	Errors           []string       `json:"errors,omitempty"`
	Warnings         []string       `json:"warnings,omitempty"`
	ArchiveSizeBytes int64          `json:"archive_size_bytes"`
}
