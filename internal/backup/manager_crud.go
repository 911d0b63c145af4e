// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
manager_crud.go - Backup CRUD Operations

This file provides creation, listing, lookup and deletion of backups.

Backup Creation Flow:
 1. Initialize the record with a time-based id, description and components
 2. Build the archive at backups/<id>.zip (manager_archive.go)
 3. Stream the finished archive through SHA-256
 4. Append the hashed record to the catalog
 5. Delete the archives of records evicted from the catalog
 6. Trigger the completion callback

Failure Semantics:
  - Archive or hash failures are fatal; the archive is removed and nothing
    is cataloged.
  - A catalog write failure after a committed archive is logged and
    returned as a warning with Cataloged false; the archive is kept.
  - An evicted record's archive that cannot be deleted is a warning.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/tomtom215/hoard/internal/logging"
	"github.com/tomtom215/hoard/internal/metrics"
)

// DefaultDescription labels CLI backups without an explicit description
const DefaultDescription = "Manual backup"

// Create builds, hashes and catalogs a backup
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (*CreateResult, error) {
	return m.CreateWithTrigger(ctx, opts, TriggerManual)
}

// CreateWithTrigger is Create with an explicit trigger label for metrics and logs
func (m *Manager) CreateWithTrigger(ctx context.Context, opts CreateOptions, trigger Trigger) (*CreateResult, error) {
	release, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return m.createLocked(ctx, opts, trigger)
}

// createLocked creates a backup (must be called with the manager lock held)
func (m *Manager) createLocked(ctx context.Context, opts CreateOptions, trigger Trigger) (*CreateResult, error) {
	startTime := m.now()
	rec := m.initializeRecord(ctx, opts, startTime)
	archivePath := m.catalog.ArchivePath(rec.ID)

	log := logging.With().Str("backup_id", rec.ID).Str("trigger", string(trigger)).Logger()
	log.Info().Str("components", rec.Components.String()).Msg("Creating backup")

	report, err := m.builder.Build(ctx, archivePath, &rec)
	if err != nil {
		metrics.RecordBackup(string(trigger), time.Since(startTime), 0, len(report.Warnings), err)
		return nil, fmt.Errorf("failed to build archive: %w", err)
	}

	hash, err := Digest(ctx, archivePath)
	if err != nil {
		removeArchive(archivePath)
		metrics.RecordBackup(string(trigger), time.Since(startTime), 0, len(report.Warnings), err)
		return nil, fmt.Errorf("failed to calculate checksum: %w", err)
	}
	rec.Hash = hash

	result := &CreateResult{Warnings: report.Warnings}
	evicted, err := m.catalog.Append(rec, m.pinnedIDs()...)
	if err != nil {
		log.Warn().Err(err).Msg("Archive written but catalog update failed")
		result.Warnings = append(result.Warnings, fmt.Sprintf("catalog update failed: %v", err))
	} else {
		result.Cataloged = true
		result.Warnings = append(result.Warnings, m.removeEvicted(evicted)...)
	}

	result.Entry = m.catalog.entryFor(rec)
	result.Duration = time.Since(startTime)
	metrics.RecordBackup(string(trigger), result.Duration, result.Entry.Size, len(report.Warnings), nil)

	log.Info().
		Int64("size", result.Entry.Size).
		Int("entries", report.Entries).
		Int("warnings", len(result.Warnings)).
		Dur("duration", result.Duration).
		Msg("Backup completed")

	if m.onBackupComplete != nil {
		m.onBackupComplete(result.Entry)
	}

	return result, nil
}

// initializeRecord creates a new record with its informational snapshots
func (m *Manager) initializeRecord(ctx context.Context, opts CreateOptions, startTime time.Time) Record {
	description := opts.Description
	if description == "" {
		description = DefaultDescription
	}

	project := m.cfg.Project
	project.Root = m.cfg.RootDir

	return Record{
		ID:          NewID(startTime),
		Timestamp:   startTime.UTC(),
		CreatedAt:   startTime.UTC(),
		Description: description,
		Components:  opts.Components,
		System:      m.systemInfo(ctx),
		Project:     project,
	}
}

// List returns the catalog with archive state, newest first
func (m *Manager) List() []Entry {
	entries := m.catalog.List()
	m.publishCatalogGauges(entries)
	return entries
}

// Get returns the catalog entry for id
func (m *Manager) Get(id string) (Entry, error) {
	return m.catalog.Get(id)
}

// Delete removes one backup archive and its record, regardless of its manual flag
func (m *Manager) Delete(ctx context.Context, id string) error {
	release, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	entry, err := m.catalog.Get(id)
	if err != nil {
		return err
	}

	if entry.Path != "" {
		if err := os.Remove(entry.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete archive %s: %w", entry.Path, err)
		}
	}

	if _, err := m.catalog.Remove(id); err != nil {
		return fmt.Errorf("archive deleted but catalog update failed: %w", err)
	}

	logging.Info().Str("backup_id", id).Msg("Backup deleted")
	return nil
}

// pinnedIDs returns the ids whose records must survive catalog eviction
func (m *Manager) pinnedIDs() []string {
	if m.restoreTarget == "" {
		return nil
	}
	return []string{m.restoreTarget}
}

// removeEvicted deletes the archives of records evicted from the catalog
func (m *Manager) removeEvicted(evicted []Record) []string {
	var warnings []string
	for i := range evicted {
		if ValidateID(evicted[i].ID) != nil {
			continue
		}
		path := m.catalog.ArchivePath(evicted[i].ID)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.Warn().Err(err).Str("backup_id", evicted[i].ID).Msg("Failed to delete evicted backup archive")
			warnings = append(warnings, fmt.Sprintf("failed to delete evicted backup %s: %v", evicted[i].ID, err))
			continue
		}
		logging.Info().Str("backup_id", evicted[i].ID).Msg("Deleted backup evicted from catalog")
	}
	return warnings
}

// removeArchive deletes an uncommitted archive, logging failures
func removeArchive(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to remove uncommitted archive")
	}
}
