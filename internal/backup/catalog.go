// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
catalog.go - Backup Catalog

The catalog is a single JSON document holding an ordered array of backup
records, stored next to the archives:

	backups/system_backups_metadata.json

Operations:
  - Append: load, append, evict beyond the bound, rewrite
  - List: load, attach filesystem state, sort newest first
  - Replace: rewrite with the given records (used by retention)

Eviction is FIFO by insertion order: when more than maxEntries records are
present the ones at the front of the array are dropped, whatever their
timestamps. Append returns the evicted records so the caller can delete
their archives. Pinned ids are skipped over and the next oldest record is
evicted in their place.

Listing never fails: a missing document is an empty catalog and a corrupt
one is logged and listed as empty. Mutations are stricter. Append and
Remove move a corrupt document aside to <name>.corrupt-<timestamp> before
writing a fresh one, and Load returns ErrCatalogCorrupt. Writes go to a temp
file in the same directory, are fsynced and then renamed over the document,
so readers observe either the old or the new catalog.

Thread Safety:
A single mutex serializes every read-modify-write on the document.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/hoard/internal/logging"
)

// MetadataStore is the size-bounded backup catalog
type MetadataStore struct {
	path       string
	dir        string
	maxEntries int
	mu         sync.Mutex
}

// NewMetadataStore returns a catalog stored in dir, bounded to maxEntries records
func NewMetadataStore(dir string, maxEntries int) *MetadataStore {
	if maxEntries < 1 {
		maxEntries = DefaultMaxCatalogEntries
	}
	return &MetadataStore{
		path:       filepath.Join(dir, CatalogFileName),
		dir:        dir,
		maxEntries: maxEntries,
	}
}

// Path returns the catalog document path
func (s *MetadataStore) Path() string {
	return s.path
}

// ArchivePath returns the archive path for a backup id
func (s *MetadataStore) ArchivePath(id string) string {
	return filepath.Join(s.dir, id+".zip")
}

// Append adds a record, evicting the oldest insertions beyond the bound.
// Records whose id is in pinned are never evicted.
func (s *MetadataStore) Append(rec Record, pinned ...string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadForWriteLocked()
	if err != nil {
		return nil, err
	}
	records = append(records, rec)

	var evicted []Record
	if over := len(records) - s.maxEntries; over > 0 {
		kept := make([]Record, 0, len(records))
		last := len(records) - 1
		for i := range records {
			if over > 0 && i != last && !slices.Contains(pinned, records[i].ID) {
				logging.Debug().Str("backup_id", records[i].ID).Msg("Evicting catalog entry beyond bound")
				evicted = append(evicted, records[i])
				over--
				continue
			}
			kept = append(kept, records[i])
		}
		records = kept
	}

	if err := s.saveLocked(records); err != nil {
		return nil, err
	}
	return evicted, nil
}

// Replace overwrites the catalog with records
func (s *MetadataStore) Replace(records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if records == nil {
		records = []Record{}
	}
	return s.saveLocked(records)
}

// Load returns the raw catalog in on-disk (insertion) order. Unlike
// Records it fails when the document cannot be read or parsed.
func (s *MetadataStore) Load() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Records returns the raw catalog in on-disk (insertion) order, or an
// empty slice when the document is unreadable
func (s *MetadataStore) Records() []Record {
	records, err := s.Load()
	if err != nil {
		logging.Warn().Err(err).Str("path", s.path).Msg("Catalog unreadable, treating as empty")
		return []Record{}
	}
	return records
}

// List returns every record with its archive state, newest first
func (s *MetadataStore) List() []Entry {
	records := s.Records()

	entries := make([]Entry, 0, len(records))
	for i := range records {
		entries = append(entries, s.entryFor(records[i]))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

// Get returns the entry for id
func (s *MetadataStore) Get(id string) (Entry, error) {
	for _, rec := range s.Records() {
		if rec.ID == id {
			return s.entryFor(rec), nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Remove drops the record with id, reporting whether it was present
func (s *MetadataStore) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadForWriteLocked()
	if err != nil {
		return false, err
	}
	kept := records[:0]
	found := false
	for _, rec := range records {
		if rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		return false, nil
	}
	return true, s.saveLocked(kept)
}

// entryFor attaches the archive's filesystem state to a record
func (s *MetadataStore) entryFor(rec Record) Entry {
	entry := Entry{Record: rec}
	if err := ValidateID(rec.ID); err != nil {
		entry.Status = StatusMissing
		return entry
	}

	entry.Path = s.ArchivePath(rec.ID)
	info, err := os.Stat(entry.Path)
	if err != nil || !info.Mode().IsRegular() {
		entry.Status = StatusMissing
		return entry
	}
	entry.Exists = true
	entry.Size = info.Size()
	return entry
}

// loadLocked reads the catalog (must be called with mu held)
func (s *MetadataStore) loadLocked() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogCorrupt, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// loadForWriteLocked reads the catalog ahead of a rewrite. A corrupt
// document is moved aside so the rewrite cannot destroy it.
func (s *MetadataStore) loadForWriteLocked() ([]Record, error) {
	records, err := s.loadLocked()
	if err == nil || !errors.Is(err, ErrCatalogCorrupt) {
		return records, err
	}

	aside := s.path + ".corrupt-" + time.Now().UTC().Format("20060102_150405.000000000")
	if rnErr := os.Rename(s.path, aside); rnErr != nil {
		return nil, fmt.Errorf("%w; failed to move it aside: %v", err, rnErr)
	}
	logging.Warn().Err(err).Str("path", s.path).Str("moved_to", aside).Msg("Catalog corrupt, moved aside and starting a new one")
	return []Record{}, nil
}

// saveLocked atomically rewrites the catalog (must be called with mu held)
func (s *MetadataStore) saveLocked(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, CatalogFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create catalog temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck // Best effort cleanup on error
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()        //nolint:errcheck // Best effort cleanup on error
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("failed to sync catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("failed to close catalog: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("failed to set catalog permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("failed to replace catalog: %w", err)
	}

	return nil
}
