// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
manager.go - Core Backup Manager

This file contains the Manager, which ties together the archive builder,
integrity hasher, catalog, restore coordinator and retention sweep for one
installation.

Manager Responsibilities:
  - Backup creation orchestration
  - Catalog access (list, lookup, delete)
  - Restore and retention entry points
  - Mutual exclusion between mutating operations

Locking:
Every operation that writes archives or the catalog (create, restore,
prune, delete) first takes an in-process semaphore and then an advisory
lock on backups/.hoard.lock. The semaphore honours context cancellation;
the file lock is retried until LockTimeout elapses. Listing and stats are
read-only and never take the lock.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tomtom215/hoard/internal/logging"
)

// Trigger identifies what started a backup. It labels metrics and logs only.
type Trigger string

const (
	// TriggerManual is a CLI-initiated backup
	TriggerManual Trigger = "manual"

	// TriggerScheduled is a backup started by the scheduler
	TriggerScheduled Trigger = "scheduled"

	// TriggerPreRestore is the safety snapshot taken before a restore
	TriggerPreRestore Trigger = "pre_restore"
)

// archiver writes the selected components of rec into an archive at destPath
type archiver interface {
	Build(ctx context.Context, destPath string, rec *Record) (*BuildReport, error)
}

// Manager handles backup, restore and retention for one installation
type Manager struct {
	cfg     *Config
	catalog *MetadataStore
	builder archiver

	// sem is a one-slot semaphore serializing mutating operations in-process
	sem      chan struct{}
	lockPath string

	now        func() time.Time
	systemInfo func(ctx context.Context) SystemInfo

	// restoreTarget is the backup being restored; its record is pinned
	// against catalog eviction. Guarded by the manager lock.
	restoreTarget string

	// Callbacks
	onBackupComplete func(entry Entry)
}

// NewManager validates cfg, creates the backup directory and returns a Manager
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("backup configuration is required")
	}
	if cfg.MaxCatalogEntries == 0 {
		cfg.MaxCatalogEntries = DefaultMaxCatalogEntries
	}
	if cfg.MaxEntrySize == 0 {
		cfg.MaxEntrySize = DefaultMaxEntrySize
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backup configuration: %w", err)
	}
	if err := cfg.EnsureBackupDir(); err != nil {
		return nil, err
	}

	builder, err := NewArchiveBuilder(cfg)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:        cfg,
		catalog:    NewMetadataStore(cfg.BackupDir, cfg.MaxCatalogEntries),
		builder:    builder,
		sem:        make(chan struct{}, 1),
		lockPath:   filepath.Join(cfg.BackupDir, lockFileName),
		now:        time.Now,
		systemInfo: collectSystemInfo,
	}, nil
}

// Config returns the configuration the manager was built with
func (m *Manager) Config() *Config {
	return m.cfg
}

// Catalog returns the backing metadata store
func (m *Manager) Catalog() *MetadataStore {
	return m.catalog
}

// SetOnBackupComplete sets the callback invoked after each cataloged backup
func (m *Manager) SetOnBackupComplete(fn func(entry Entry)) {
	m.onBackupComplete = fn
}

// acquire takes the in-process semaphore and the directory lock. The
// returned release function must be called exactly once.
func (m *Manager) acquire(ctx context.Context) (func(), error) {
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrLocked, ctx.Err())
	}

	lockCtx, cancel := context.WithTimeout(ctx, m.cfg.LockTimeout)
	defer cancel()

	lock, err := acquireDirLock(lockCtx, m.lockPath)
	if err != nil {
		<-m.sem
		return nil, err
	}

	return func() {
		if err := lock.Release(); err != nil {
			logging.Warn().Err(err).Str("path", m.lockPath).Msg("Failed to release backup lock")
		}
		<-m.sem
	}, nil
}
