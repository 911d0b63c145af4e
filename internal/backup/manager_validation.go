// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
manager_validation.go - Backup Verification

Verification Steps:
 1. File Existence: the archive named by the record is on disk
 2. Checksum Verification: recomputed SHA-256 equals the cataloged hash
 3. Archive Readability: every member decompresses and passes its CRC
 4. Metadata Check: backup_metadata.json is present and names the same id
 5. Component Check: each recorded component has at least one member

Checks 1-4 are errors and make the backup invalid. A recorded component
without members (for example a database that was missing at backup time)
is reported as a warning.

Validation problems are collected in the result rather than returned as
errors; only lookup failures are returned.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zip"
)

// Verify checks the integrity of a cataloged backup
func (m *Manager) Verify(ctx context.Context, id string) (*VerifyResult, error) {
	entry, err := m.catalog.Get(id)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{
		BackupID:         id,
		Valid:            true,
		ExpectedHash:     entry.Hash,
		EntriesByType:    make(map[string]int),
		ArchiveSizeBytes: entry.Size,
	}

	if !entry.Exists {
		result.fail("backup archive does not exist")
		return result, nil
	}

	actual, err := Digest(ctx, entry.Path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result.fail(fmt.Sprintf("failed to calculate checksum: %v", err))
		return result, nil
	}
	result.ActualHash = actual
	if actual != entry.Hash {
		result.fail("checksum mismatch - backup may be corrupted")
	}

	if err := m.validateArchiveContents(ctx, entry, result); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result.fail(fmt.Sprintf("failed to read archive: %v", err))
		return result, nil
	}

	m.validateComponents(entry, result)
	return result, nil
}

func (r *VerifyResult) fail(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

// validateArchiveContents reads every member to EOF so the zip reader checks CRCs
func (m *Manager) validateArchiveContents(ctx context.Context, entry Entry, result *VerifyResult) error {
	r, err := openArchiveReader(entry.Path)
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck // Read-only archive

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if strings.HasSuffix(f.Name, "/") {
			continue
		}

		if f.Name == metadataFileName {
			result.MetadataPresent = true
			if err := checkArchivedMetadata(f, entry.ID); err != nil {
				result.fail(err.Error())
			}
			continue
		}

		if err := drainMember(f); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		if prefix, _, ok := strings.Cut(f.Name, "/"); ok {
			result.EntriesByType[prefix]++
		}
	}

	if !result.MetadataPresent {
		result.fail(metadataFileName + " missing from archive")
	}
	return nil
}

// validateComponents warns about recorded components without archive members
func (m *Manager) validateComponents(entry Entry, result *VerifyResult) {
	check := func(enabled bool, component string) {
		if enabled && result.EntriesByType[component] == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s component recorded but archive has no %s entries", component, component))
		}
	}
	check(entry.Components.Database, ComponentDatabase)
	check(entry.Components.Config, ComponentConfig)
	check(entry.Components.Source, ComponentSource)
}

// checkArchivedMetadata decodes backup_metadata.json and compares its id
func checkArchivedMetadata(f *zip.File, id string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", metadataFileName, err)
	}
	defer rc.Close() //nolint:errcheck // Read-only member

	var rec Record
	if err := json.NewDecoder(rc).Decode(&rec); err != nil {
		return fmt.Errorf("failed to decode %s: %w", metadataFileName, err)
	}
	if rec.ID != id {
		return fmt.Errorf("%s names backup %q, expected %q", metadataFileName, rec.ID, id)
	}
	return nil
}

// drainMember reads a member fully, surfacing decompression and CRC errors
func drainMember(f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close() //nolint:errcheck // Read-only member

	_, err = io.Copy(io.Discard, rc)
	return err
}
