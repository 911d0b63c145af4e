// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
restore.go - Restore Coordinator

Restore walks a fixed sequence of states:

	LOCATE -> [PRE_BACKUP] -> EXTRACT -> APPLY_COMPONENTS -> CLEANUP -> DONE

  - LOCATE finds the record; unknown ids fail with ErrNotFound and records
    whose archive is gone fail with ErrMissingArchive. Nothing on the live
    installation is touched before this succeeds.
  - PRE_BACKUP (optional) snapshots database, config and source. Failure is
    a warning only.
  - EXTRACT unpacks the archive into a private scratch directory. Entries
    escaping the directory or exceeding MaxEntrySize abort the restore.
  - APPLY_COMPONENTS writes database, config and source back independently;
    one failing component does not stop the others.
  - CLEANUP removes the scratch directory on every path.

Each file is written to a sibling temp file and renamed over its target,
so a single file is never left half-written. There is no rollback across
files or components; the pre-restore snapshot is the rollback point.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/tomtom215/hoard/internal/logging"
	"github.com/tomtom215/hoard/internal/metrics"
)

// PreRestoreDescription returns the description of the safety snapshot taken
// before restoring backupID
func PreRestoreDescription(backupID string) string {
	return "Pre-restore snapshot before " + backupID
}

// Restore writes the selected components of backup id back onto the live installation
func (m *Manager) Restore(ctx context.Context, id string, opts RestoreOptions) (result *RestoreResult, err error) {
	startTime := m.now()
	result = &RestoreResult{BackupID: id}
	rlog := logging.ForBackup(id, "restore")
	defer func() {
		result.Duration = time.Since(startTime)
		metrics.RecordRestore(result.Duration, err)
	}()

	release, err := m.acquire(ctx)
	if err != nil {
		return result, err
	}
	defer release()

	// LOCATE
	entry, err := m.locate(id)
	if err != nil {
		return result, err
	}

	// PRE_BACKUP
	if opts.PreBackup {
		m.restoreTarget = id
		m.createPreRestoreBackup(ctx, id, result)
		m.restoreTarget = ""
	}

	// EXTRACT
	tempDir, err := os.MkdirTemp("", "hoard-restore-*")
	if err != nil {
		return result, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	// CLEANUP
	defer func() {
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			rlog.Warn().Err(rmErr).Str("path", tempDir).Msg("Failed to remove restore scratch directory")
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to remove scratch directory %s: %v", tempDir, rmErr))
		}
	}()

	if err := m.extractArchive(ctx, entry.Path, tempDir); err != nil {
		return result, fmt.Errorf("failed to extract %s: %w", id, err)
	}

	// APPLY_COMPONENTS
	if opts.Database {
		m.applyComponent(ComponentDatabase, result, func() (int, error) {
			return m.restoreDatabase(ctx, tempDir)
		})
	}
	if opts.Config {
		m.applyComponent(ComponentConfig, result, func() (int, error) {
			return m.restoreTree(ctx, filepath.Join(tempDir, "config"))
		})
	}
	if opts.Source {
		m.applyComponent(ComponentSource, result, func() (int, error) {
			return m.restoreTree(ctx, filepath.Join(tempDir, "source"))
		})
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	rlog.Info().
		Str("restored", result.Restored.String()).
		Int("files", result.FilesRestored).
		Int("warnings", len(result.Warnings)).
		Msg("Restore completed")

	return result, nil
}

// locate finds a cataloged backup whose archive is present
func (m *Manager) locate(id string) (Entry, error) {
	for _, entry := range m.catalog.List() {
		if entry.ID != id {
			continue
		}
		if !entry.Exists {
			return entry, fmt.Errorf("%w: %s", ErrMissingArchive, id)
		}
		return entry, nil
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// createPreRestoreBackup takes the best-effort safety snapshot
func (m *Manager) createPreRestoreBackup(ctx context.Context, id string, result *RestoreResult) {
	pre, err := m.createLocked(ctx, CreateOptions{
		Components:  AllComponents(),
		Description: PreRestoreDescription(id),
	}, TriggerPreRestore)
	if err != nil {
		logging.Warn().Err(err).Str("backup_id", id).Msg("Pre-restore backup failed, continuing with restore")
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to create pre-restore backup: %v", err))
		return
	}
	result.PreRestoreBackupID = pre.Entry.ID
	result.Warnings = append(result.Warnings, pre.Warnings...)
}

// applyComponent runs one component restore, isolating its failure
func (m *Manager) applyComponent(component string, result *RestoreResult, apply func() (int, error)) {
	n, err := apply()
	result.FilesRestored += n
	metrics.RecordRestoreComponent(component, err)

	if err != nil {
		logging.Warn().Err(err).Str("component", component).Int("files", n).Msg("Component restore failed")
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s restore failed: %v", component, err))
		return
	}
	if n == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("backup contains no %s files", component))
		return
	}

	switch component {
	case ComponentDatabase:
		result.Restored.Database = true
	case ComponentConfig:
		result.Restored.Config = true
	case ComponentSource:
		result.Restored.Source = true
	}
}

// restoreDatabase copies database/<name> over the live database path
func (m *Manager) restoreDatabase(ctx context.Context, tempDir string) (int, error) {
	if m.cfg.DatabasePath == "" {
		return 0, fmt.Errorf("no database path configured")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	dbDir := filepath.Join(tempDir, "database")
	src := filepath.Join(dbDir, filepath.Base(m.cfg.DatabasePath))
	if !fileExists(src) {
		entries, err := os.ReadDir(dbDir)
		if err != nil || len(entries) == 0 {
			return 0, nil
		}
		src = filepath.Join(dbDir, entries[0].Name())
		logging.Warn().
			Str("archived_name", entries[0].Name()).
			Str("target", m.cfg.DatabasePath).
			Msg("Archived database name differs from configured path, restoring anyway")
	}

	if err := replaceFile(src, m.cfg.DatabasePath); err != nil {
		return 0, err
	}
	return 1, nil
}

// restoreTree copies every file below srcRoot onto the live root at the same relative path
func (m *Manager) restoreTree(ctx context.Context, srcRoot string) (int, error) {
	if _, err := os.Stat(srcRoot); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	restored := 0
	err := filepath.WalkDir(srcRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(srcRoot, p)
		if err != nil {
			return err
		}
		dst, err := validateAndBuildDestPath(m.cfg.RootDir, rel)
		if err != nil {
			return err
		}
		if err := replaceFile(p, dst); err != nil {
			return fmt.Errorf("failed to restore %s: %w", rel, err)
		}
		restored++
		return nil
	})
	return restored, err
}

// openArchiveReader opens a backup archive with the zstd codec registered
func openArchiveReader(path string) (*zip.ReadCloser, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	r.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	return r, nil
}

// extractArchive streams every member of the archive into tempDir
func (m *Manager) extractArchive(ctx context.Context, archivePath, tempDir string) error {
	r, err := openArchiveReader(archivePath)
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

		destPath, err := validateAndBuildDestPath(tempDir, f.Name)
		if err != nil {
			return err
		}
		if err := validateExtractionSize(int64(f.UncompressedSize64), m.cfg.MaxEntrySize); err != nil { //nolint:gosec // G115: bounded by the check itself
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
			return err
		}
		if err := extractZipFile(f, destPath, m.cfg.MaxEntrySize); err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

// extractZipFile copies one archive member to destPath
func extractZipFile(f *zip.File, destPath string, maxSize int64) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close() //nolint:errcheck // Read-only member

	return extractFile(rc, destPath, maxSize)
}

// validateAndBuildDestPath joins name onto baseDir, rejecting traversal out of it
func validateAndBuildDestPath(baseDir, name string) (string, error) {
	destPath := filepath.Join(baseDir, filepath.FromSlash(name))

	if !strings.HasPrefix(destPath, filepath.Clean(baseDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid file path in archive: %s", name)
	}

	return destPath, nil
}

// validateExtractionSize checks a member against the configured limit
func validateExtractionSize(size, maxSize int64) error {
	if size < 0 || size > maxSize {
		return fmt.Errorf("file too large: %d bytes (max %d)", size, maxSize)
	}
	return nil
}

// extractFile writes reader to destPath, refusing more than maxSize bytes
//
//nolint:gosec // G110: size is bounded, G304: destPath is validated by caller
func extractFile(reader io.Reader, destPath string, maxSize int64) error {
	outFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	n, err := io.Copy(outFile, io.LimitReader(reader, maxSize+1))
	closeErr := outFile.Close()

	if err == nil && n > maxSize {
		err = fmt.Errorf("file exceeds %d bytes", maxSize)
	}
	if err != nil {
		os.Remove(destPath) //nolint:errcheck // Best effort cleanup on error
		return err
	}
	if closeErr != nil {
		os.Remove(destPath) //nolint:errcheck // Best effort cleanup on error
		return closeErr
	}
	return nil
}

// replaceFile copies src to a temp file next to dst and renames it over dst,
// preserving src's permission bits.
//
//nolint:gosec // G304: paths are validated by caller
func replaceFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close() //nolint:errcheck // Read-only handle

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".restore-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := copyAndCloseDestFile(tmp, sourceFile); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		return err
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error
		return err
	}
	return nil
}

// copyAndCloseDestFile copies data from source to destination file and ensures proper cleanup
func copyAndCloseDestFile(destFile *os.File, sourceFile *os.File) error {
	_, err := io.Copy(destFile, sourceFile)
	if err != nil {
		destFile.Close() //nolint:errcheck // Best effort cleanup on error
		return err
	}

	if err := destFile.Sync(); err != nil {
		destFile.Close() //nolint:errcheck // Best effort cleanup on error
		return err
	}

	return destFile.Close()
}
