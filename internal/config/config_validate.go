// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package config

import (
	"fmt"

	"github.com/tomtom215/hoard/internal/backup"
	"github.com/tomtom215/hoard/internal/validation"
)

// Validate checks struct tags first, then the cross-field rules tags cannot express
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateArchiveLevel(); err != nil {
		return err
	}
	return c.validateBackupDir()
}

// validateArchiveLevel checks the level range of the selected codec
func (c *Config) validateArchiveLevel() error {
	switch c.Archive.Compression {
	case backup.CompressionDeflate:
		if c.Archive.Level < 1 || c.Archive.Level > 9 {
			return fmt.Errorf("archive.level must be between 1 and 9 for deflate, got %d", c.Archive.Level)
		}
	case backup.CompressionZstd:
		if c.Archive.Level < 1 || c.Archive.Level > 4 {
			return fmt.Errorf("archive.level must be between 1 and 4 for zstd, got %d", c.Archive.Level)
		}
	}
	return nil
}

// validateBackupDir rejects a backup directory that is also a source tree
func (c *Config) validateBackupDir() error {
	bcfg, err := c.BackupConfig()
	if err != nil {
		return err
	}
	for _, dir := range c.Sources.Directories {
		if resolve(bcfg.RootDir, dir) == bcfg.BackupDir {
			return fmt.Errorf("backup_dir %s must not be a source directory", c.BackupDir)
		}
	}
	return nil
}
