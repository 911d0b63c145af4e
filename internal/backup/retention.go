// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tomtom215/hoard/internal/logging"
	"github.com/tomtom215/hoard/internal/metrics"
)

// Prune deletes archives older than maxAgeDays, exempting manual backups.
// A record whose archive cannot be deleted stays in the catalog.
func (m *Manager) Prune(ctx context.Context, maxAgeDays int) (*PruneResult, error) {
	if maxAgeDays < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRetention, maxAgeDays)
	}

	release, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	now := m.now()
	cutoff := now.AddDate(0, 0, -maxAgeDays)
	result := &PruneResult{}

	records, err := m.catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	kept := make([]Record, 0, len(records))
	var ctxErr error

	for i := range records {
		rec := records[i]

		if ctxErr == nil {
			ctxErr = ctx.Err()
		}
		if ctxErr != nil || !rec.CreatedAt.Before(cutoff) {
			kept = append(kept, rec)
			continue
		}
		if rec.IsManual() {
			result.Exempt++
			kept = append(kept, rec)
			continue
		}

		if m.deleteExpired(&rec, result) {
			continue
		}
		kept = append(kept, rec)
	}

	result.Kept = len(kept)
	metrics.RecordPrune(result.Deleted, result.Failed)

	if err := m.catalog.Replace(kept); err != nil {
		return result, fmt.Errorf("failed to rewrite catalog after pruning: %w", err)
	}

	logging.Info().
		Int("max_age_days", maxAgeDays).
		Int("deleted", result.Deleted).
		Int("kept", result.Kept).
		Int("exempt", result.Exempt).
		Int("failed", result.Failed).
		Msg("Retention sweep completed")

	if ctxErr != nil {
		return result, ctxErr
	}
	return result, nil
}

// deleteExpired removes the archive of an expired record. It returns true
// when the record should be dropped from the catalog.
func (m *Manager) deleteExpired(rec *Record, result *PruneResult) bool {
	if err := ValidateID(rec.ID); err != nil {
		logging.Warn().Err(err).Msg("Dropping catalog record with invalid id")
		return true
	}

	path := m.catalog.ArchivePath(rec.ID)
	err := os.Remove(path)
	switch {
	case err == nil:
		result.Deleted++
		logging.Debug().Str("backup_id", rec.ID).Msg("Deleted expired backup")
		return true
	case errors.Is(err, fs.ErrNotExist):
		logging.Debug().Str("backup_id", rec.ID).Msg("Expired backup archive already gone, dropping record")
		return true
	default:
		result.Failed++
		logging.Warn().Err(err).Str("backup_id", rec.ID).Msg("Failed to delete expired backup")
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to delete %s: %v", rec.ID, err))
		return false
	}
}
