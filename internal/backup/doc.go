// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

// Package backup produces, catalogs, restores and prunes integrity-checked
// snapshots of an installation's durable state.
//
// # Overview
//
// A snapshot covers up to three components:
//
//	database - the database file, copied as it is on disk
//	config   - a list of configuration files relative to the installation root
//	source   - directory trees (exclusion-filtered) plus selected root files
//
// Each snapshot is one zip archive in the backup directory, named after the
// record id, and one record in the catalog document
// (system_backups_metadata.json) carrying the archive's SHA-256.
//
// # Architecture
//
//	Manager        - entry point; serializes mutating operations
//	ArchiveBuilder - writes the zip container (flate, zstd or store)
//	Digest         - streamed SHA-256 of a finished archive
//	MetadataStore  - bounded JSON catalog with atomic rewrites
//	Restore        - locate, snapshot, extract, apply, clean up
//	Prune          - age-based retention that spares manual backups
//
// # Usage
//
//	cfg := backup.DefaultConfig("/srv/app")
//	manager, err := backup.NewManager(cfg)
//	if err != nil {
//		return err
//	}
//
//	res, err := manager.Create(ctx, backup.CreateOptions{
//		Components:  backup.Components{Database: true, Config: true},
//		Description: "Manual backup",
//	})
//
//	_, err = manager.Restore(ctx, res.Entry.ID, backup.DefaultRestoreOptions())
//
//	_, err = manager.Prune(ctx, 30)
//
// # Concurrency
//
// Create, Restore, Prune and Delete hold an in-process semaphore and an
// advisory file lock in the backup directory for their whole duration, so
// scheduled and CLI-triggered operations never interleave. All blocking
// operations take a context and stop between archive members or copied
// files when it is canceled; scratch directories and partial archives are
// removed on every exit path.
package backup
