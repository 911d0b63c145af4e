// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
manager_archive.go - Backup Archive Creation

This file builds the zip container for a backup record.

Archive Structure:

	backup_{yyyymmdd}_{hhmmss}_{suffix}.zip
	├── database/
	│   └── app.db                 (database file, copied as it is on disk)
	├── config/
	│   └── <root-relative path>   (one entry per configured config file)
	├── source/
	│   ├── <dir>/...              (directory trees, exclusion-filtered)
	│   └── <root file>            (selected root-level files)
	└── backup_metadata.json       (the record, without its hash)

Archive Creation Process:
 1. Create the output file exclusively (never overwrite an archive)
 2. Register the configured codec (flate, zstd or store) on the zip writer
 3. Add members per component; missing inputs become warnings
 4. Append backup_metadata.json as the final member
 5. Close the zip writer, fsync and close the file
 6. On any error remove the partial archive

The context is checked before every member so a canceled build stops
between files and still removes its output.
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
	"path"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/tomtom215/hoard/internal/logging"
)

// Archive member prefixes and the metadata member name
const (
	databasePrefix   = "database/"
	configPrefix     = "config/"
	sourcePrefix     = "source/"
	metadataFileName = "backup_metadata.json"
)

// BuildReport describes what ArchiveBuilder.Build wrote
type BuildReport struct {
	Entries  int
	Bytes    int64
	Warnings []string
}

func (r *BuildReport) warn(msg string, err error, p string) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	r.Warnings = append(r.Warnings, msg)
	ev := logging.Warn().Str("path", p)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}

// ArchiveBuilder composes backup archives from the configured sources
type ArchiveBuilder struct {
	cfg      *Config
	excludes *ExcludeMatcher
	method   uint16
}

// NewArchiveBuilder compiles the exclusion patterns once for all builds
func NewArchiveBuilder(cfg *Config) (*ArchiveBuilder, error) {
	excludes, err := CompileExcludes(cfg.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	b := &ArchiveBuilder{cfg: cfg, excludes: excludes}
	switch cfg.Compression.Algorithm {
	case CompressionZstd:
		b.method = zstd.ZipMethodWinZip
	case CompressionStore:
		b.method = zip.Store
	default:
		b.method = zip.Deflate
	}
	return b, nil
}

// archiveWriters holds the writers needed for creating backup archives
type archiveWriters struct {
	outFile   *os.File
	zipWriter *zip.Writer
}

// Close finalizes the zip stream, then flushes the file to disk and closes it.
// The first error encountered is returned.
func (aw *archiveWriters) Close() error {
	firstErr := aw.zipWriter.Close()
	if err := aw.outFile.Sync(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := aw.outFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// setupArchiveWriters creates the output file and a zip writer with the codec registered
//
//nolint:gosec // G304: destPath is derived from a validated backup id
func (b *ArchiveBuilder) setupArchiveWriters(destPath string) (*archiveWriters, error) {
	outFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup file: %w", err)
	}

	zw := zip.NewWriter(outFile)
	level := b.cfg.Compression.Level
	switch b.method {
	case zip.Deflate:
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	case zstd.ZipMethodWinZip:
		zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor(zstd.WithEncoderLevel(zstd.EncoderLevel(level))))
	}

	return &archiveWriters{outFile: outFile, zipWriter: zw}, nil
}

// Build writes the archive for rec at destPath. The archive is committed only
// when Build returns a nil error; otherwise the partial file has been removed.
func (b *ArchiveBuilder) Build(ctx context.Context, destPath string, rec *Record) (report *BuildReport, err error) {
	report = &BuildReport{}

	aw, err := b.setupArchiveWriters(destPath)
	if err != nil {
		return report, err
	}
	defer func() {
		closeErr := aw.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			if rmErr := os.Remove(destPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				logging.Warn().Err(rmErr).Str("path", destPath).Msg("Failed to remove partial archive")
			}
		}
	}()

	if rec.Components.Database {
		if err := b.addDatabaseToArchive(ctx, aw.zipWriter, report); err != nil {
			return report, err
		}
	}
	if rec.Components.Config {
		if err := b.addConfigToArchive(ctx, aw.zipWriter, report); err != nil {
			return report, err
		}
	}
	if rec.Components.Source {
		if err := b.addSourceToArchive(ctx, aw.zipWriter, report); err != nil {
			return report, err
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, b.addMetadataToArchive(aw.zipWriter, rec, report)
}

// addDatabaseToArchive adds the database file under database/
func (b *ArchiveBuilder) addDatabaseToArchive(ctx context.Context, zw *zip.Writer, report *BuildReport) error {
	dbPath := b.cfg.DatabasePath
	if dbPath == "" || !fileExists(dbPath) {
		report.warn("database file not found, continuing without database", nil, dbPath)
		return nil
	}
	return b.addFileToArchive(ctx, zw, dbPath, databasePrefix+filepath.Base(dbPath), report)
}

// addConfigToArchive adds each configured file under config/<relative-path>
func (b *ArchiveBuilder) addConfigToArchive(ctx context.Context, zw *zip.Writer, report *BuildReport) error {
	for _, p := range b.cfg.ConfigFiles {
		rel, err := rootRelative(p)
		if err != nil {
			report.warn("skipping config file", err, p)
			continue
		}
		src := filepath.Join(b.cfg.RootDir, rel)
		if !fileExists(src) {
			report.warn("config file not found, skipping", nil, src)
			continue
		}
		if err := b.addFileToArchive(ctx, zw, src, configPrefix+filepath.ToSlash(rel), report); err != nil {
			return err
		}
	}
	return nil
}

// addSourceToArchive walks each source directory and adds the root-level files
func (b *ArchiveBuilder) addSourceToArchive(ctx context.Context, zw *zip.Writer, report *BuildReport) error {
	for _, dir := range b.cfg.SourceDirs {
		rel, err := rootRelative(dir)
		if err != nil {
			report.warn("skipping source directory", err, dir)
			continue
		}
		if err := b.addTreeToArchive(ctx, zw, rel, report); err != nil {
			return err
		}
	}

	for _, f := range b.cfg.SourceRootFiles {
		rel, err := rootRelative(f)
		if err != nil {
			report.warn("skipping source file", err, f)
			continue
		}
		src := filepath.Join(b.cfg.RootDir, rel)
		info, err := os.Stat(src)
		if err != nil || !info.Mode().IsRegular() {
			logging.Debug().Str("path", src).Msg("Root file not present, skipping")
			continue
		}
		if err := b.addFileToArchive(ctx, zw, src, sourcePrefix+filepath.ToSlash(rel), report); err != nil {
			return err
		}
	}
	return nil
}

// addTreeToArchive adds every non-excluded regular file below root/rel
func (b *ArchiveBuilder) addTreeToArchive(ctx context.Context, zw *zip.Writer, rel string, report *BuildReport) error {
	base := filepath.Join(b.cfg.RootDir, rel)
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		report.warn("source directory not found, skipping", err, base)
		return nil
	}
	backupDir := filepath.Clean(b.cfg.BackupDir)

	return filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			report.warn("failed to read source entry", walkErr, p)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == base {
			return nil
		}

		if d.IsDir() && filepath.Clean(p) == backupDir {
			return filepath.SkipDir
		}

		treeRel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		if b.excludes.Excluded(filepath.ToSlash(treeRel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		name := path.Join(sourcePrefix+filepath.ToSlash(rel), filepath.ToSlash(treeRel))
		return b.addFileToArchive(ctx, zw, p, name, report)
	})
}

// addFileToArchive streams one file into the archive under name
//
//nolint:gosec // G304: srcPath comes from configuration resolved under the root
func (b *ArchiveBuilder) addFileToArchive(ctx context.Context, zw *zip.Writer, srcPath, name string, report *BuildReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer file.Close() //nolint:errcheck // Read-only handle

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", srcPath, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create zip header for %s: %w", srcPath, err)
	}
	header.Name = name
	header.Method = b.method

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to write zip header for %s: %w", srcPath, err)
	}

	n, err := io.Copy(w, file)
	if err != nil {
		return fmt.Errorf("failed to copy %s to archive: %w", srcPath, err)
	}

	report.Entries++
	report.Bytes += n
	return nil
}

// addMetadataToArchive writes the record (without hash) as the final member
func (b *ArchiveBuilder) addMetadataToArchive(zw *zip.Writer, rec *Record, report *BuildReport) error {
	doc := *rec
	doc.Hash = ""

	metadataJSON, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup metadata: %w", err)
	}

	header := &zip.FileHeader{
		Name:     metadataFileName,
		Method:   b.method,
		Modified: time.Now(),
	}
	header.SetMode(0o640)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to write metadata header: %w", err)
	}
	if _, err := w.Write(metadataJSON); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	report.Entries++
	report.Bytes += int64(len(metadataJSON))
	return nil
}
