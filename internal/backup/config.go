// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Compression algorithms accepted by CompressionConfig
const (
	CompressionDeflate = "deflate"
	CompressionZstd    = "zstd"
	CompressionStore   = "store"
)

// Default values applied by DefaultConfig and NewManager
const (
	DefaultMaxCatalogEntries = 100
	DefaultRetentionDays     = 30
	DefaultMaxEntrySize      = int64(16 << 30)
	DefaultLockTimeout       = 30 * time.Second
	CatalogFileName          = "system_backups_metadata.json"
	lockFileName             = ".hoard.lock"
)

// Config holds the resolved paths and limits the backup subsystem works with.
// All paths are absolute once the configuration layer has resolved them.
type Config struct {
	// RootDir is the live installation root that source and config paths hang off
	RootDir string

	// BackupDir holds archives and the catalog document
	BackupDir string

	// DatabasePath is the database file copied verbatim
	DatabasePath string

	// ConfigFiles are root-relative configuration file paths
	ConfigFiles []string

	// SourceDirs are root-relative directory trees included with the source component
	SourceDirs []string

	// SourceRootFiles are root-relative files added individually with the source component
	SourceRootFiles []string

	// ExcludePatterns filter directory trees (exact substrings or globs)
	ExcludePatterns []string

	Compression CompressionConfig

	// MaxCatalogEntries bounds the catalog (FIFO eviction)
	MaxCatalogEntries int

	// MaxEntrySize bounds a single extracted archive member on restore
	MaxEntrySize int64

	// LockTimeout bounds how long an operation waits for the directory lock
	LockTimeout time.Duration

	Project ProjectInfo
}

// CompressionConfig selects the archive member codec
type CompressionConfig struct {
	// Algorithm is one of deflate, zstd or store
	Algorithm string

	// Level is the codec level (1-9 for deflate, 1-4 for zstd speed presets)
	Level int
}

// DefaultConfig returns a configuration rooted at root with conventional paths
func DefaultConfig(root string) *Config {
	return &Config{
		RootDir:         root,
		BackupDir:       filepath.Join(root, "backups"),
		DatabasePath:    filepath.Join(root, "data", "app.db"),
		ConfigFiles:     []string{".env"},
		SourceDirs:      []string{"src"},
		SourceRootFiles: []string{},
		ExcludePatterns: []string{"node_modules", ".git", "*.log", "*.tmp"},
		Compression: CompressionConfig{
			Algorithm: CompressionDeflate,
			Level:     6,
		},
		MaxCatalogEntries: DefaultMaxCatalogEntries,
		MaxEntrySize:      DefaultMaxEntrySize,
		LockTimeout:       DefaultLockTimeout,
	}
}

// Validate checks the configuration for values the Manager cannot work with
func (c *Config) Validate() error {
	if c.RootDir == "" {
		return fmt.Errorf("root directory is required")
	}
	if !filepath.IsAbs(c.RootDir) {
		return fmt.Errorf("root directory must be an absolute path, got: %s", c.RootDir)
	}
	if c.BackupDir == "" {
		return fmt.Errorf("backup directory is required")
	}
	if !filepath.IsAbs(c.BackupDir) {
		return fmt.Errorf("backup directory must be an absolute path, got: %s", c.BackupDir)
	}
	if c.DatabasePath != "" && !filepath.IsAbs(c.DatabasePath) {
		return fmt.Errorf("database path must be an absolute path, got: %s", c.DatabasePath)
	}

	for _, list := range [][]string{c.ConfigFiles, c.SourceDirs, c.SourceRootFiles} {
		for _, p := range list {
			if _, err := rootRelative(p); err != nil {
				return err
			}
		}
	}

	switch c.Compression.Algorithm {
	case CompressionDeflate:
		if c.Compression.Level < 1 || c.Compression.Level > 9 {
			return fmt.Errorf("deflate level must be between 1 and 9, got: %d", c.Compression.Level)
		}
	case CompressionZstd:
		if c.Compression.Level < 1 || c.Compression.Level > 4 {
			return fmt.Errorf("zstd level must be between 1 and 4, got: %d", c.Compression.Level)
		}
	case CompressionStore:
	default:
		return fmt.Errorf("compression must be one of: deflate, zstd, store")
	}

	if c.MaxCatalogEntries < 1 {
		return fmt.Errorf("catalog max entries must be at least 1, got: %d", c.MaxCatalogEntries)
	}
	if c.MaxEntrySize < 1 {
		return fmt.Errorf("max entry size must be positive, got: %d", c.MaxEntrySize)
	}

	return nil
}

// EnsureBackupDir creates the backup directory if it does not exist
func (c *Config) EnsureBackupDir() error {
	if err := os.MkdirAll(c.BackupDir, 0o750); err != nil {
		return fmt.Errorf("failed to create backup directory %s: %w", c.BackupDir, err)
	}
	return nil
}

// rootRelative cleans a configured path and rejects absolute or escaping ones
func rootRelative(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty path in source configuration")
	}
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("path must be relative to the installation root, got: %s", p)
	}
	cleaned := filepath.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes the installation root: %s", p)
	}
	return cleaned, nil
}
