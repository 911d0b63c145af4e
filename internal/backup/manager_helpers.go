// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
manager_helpers.go - Statistics and Utility Functions

Statistics (Stats):
  - TotalCount: records in the catalog
  - TotalSizeBytes: combined size of archives present on disk
  - MissingCount: records whose archive is gone
  - ManualCount/AutomaticCount: split by the manual description convention
  - DatabaseCount/ConfigCount/SourceCount: records per component
  - OldestBackup/NewestBackup: creation time range
  - Health: freshness of the newest backup

Health Thresholds:
  - healthy:  newest backup at most 2 days old
  - warning:  newest backup at most 7 days old
  - critical: anything older, or no backups at all

Statistics are computed on demand from the catalog and never cached.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"os"
	"time"

	"github.com/tomtom215/hoard/internal/metrics"
)

// Health thresholds
const (
	healthyMaxAge = 2 * 24 * time.Hour
	warningMaxAge = 7 * 24 * time.Hour
)

// Stats returns catalog statistics and health
func (m *Manager) Stats() *Stats {
	entries := m.catalog.List()
	stats := calculateStats(entries, m.now())
	m.publishCatalogGauges(entries)
	return stats
}

// calculateStats aggregates entries into Stats
func calculateStats(entries []Entry, now time.Time) *Stats {
	stats := &Stats{}

	for i := range entries {
		e := &entries[i]
		stats.TotalCount++

		if e.Exists {
			stats.TotalSizeBytes += e.Size
		} else {
			stats.MissingCount++
		}

		if e.IsManual() {
			stats.ManualCount++
		} else {
			stats.AutomaticCount++
		}

		if e.Components.Database {
			stats.DatabaseCount++
		}
		if e.Components.Config {
			stats.ConfigCount++
		}
		if e.Components.Source {
			stats.SourceCount++
		}

		updateOldestNewest(stats, e)
	}

	stats.Health = HealthFor(stats.NewestBackup, now)
	return stats
}

// updateOldestNewest tracks the oldest and newest backups
func updateOldestNewest(stats *Stats, e *Entry) {
	created := e.CreatedAt
	if stats.OldestBackup == nil || created.Before(*stats.OldestBackup) {
		stats.OldestBackup = &created
	}
	if stats.NewestBackup == nil || created.After(*stats.NewestBackup) {
		stats.NewestBackup = &created
		stats.NewestID = e.ID
	}
}

// HealthFor classifies the age of the newest backup relative to now
func HealthFor(newest *time.Time, now time.Time) Health {
	if newest == nil {
		return HealthCritical
	}
	age := now.Sub(*newest)
	switch {
	case age <= healthyMaxAge:
		return HealthHealthy
	case age <= warningMaxAge:
		return HealthWarning
	default:
		return HealthCritical
	}
}

// publishCatalogGauges pushes catalog size and freshness to metrics
func (m *Manager) publishCatalogGauges(entries []Entry) {
	var missing int
	var total int64
	var newest *time.Time
	for i := range entries {
		if entries[i].Exists {
			total += entries[i].Size
		} else {
			missing++
		}
		if newest == nil || entries[i].CreatedAt.After(*newest) {
			created := entries[i].CreatedAt
			newest = &created
		}
	}
	metrics.UpdateCatalogGauges(len(entries), missing, total, newest)
}

// Helper functions

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
