// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestBackupConfig_ResolvesPaths(t *testing.T) {
	root := t.TempDir()
	cfg := defaultConfig()
	cfg.Root = root
	cfg.Database.Path = "db/app.db"
	cfg.Sources.ConfigFiles = []string{".env"}
	cfg.Project = ProjectConfig{Name: "shop", Version: "2.0.0"}
	cfg.Schedule.LockTimeout = 10 * time.Second

	bcfg, err := cfg.BackupConfig()
	if err != nil {
		t.Fatalf("BackupConfig failed: %v", err)
	}

	if bcfg.RootDir != root {
		t.Errorf("RootDir = %q, want %q", bcfg.RootDir, root)
	}
	if bcfg.BackupDir != filepath.Join(root, "backups") {
		t.Errorf("BackupDir = %q", bcfg.BackupDir)
	}
	if bcfg.DatabasePath != filepath.Join(root, "db", "app.db") {
		t.Errorf("DatabasePath = %q", bcfg.DatabasePath)
	}
	if bcfg.MaxCatalogEntries != 100 || bcfg.LockTimeout != 10*time.Second {
		t.Errorf("unexpected limits %+v", bcfg)
	}
	if bcfg.Project.Name != "shop" || bcfg.Project.Root != root {
		t.Errorf("unexpected project %+v", bcfg.Project)
	}
	if err := bcfg.Validate(); err != nil {
		t.Errorf("resolved backup config should validate: %v", err)
	}

	// Mutating the result must not leak back into the loaded config
	bcfg.ConfigFiles[0] = "changed"
	if cfg.Sources.ConfigFiles[0] != ".env" {
		t.Error("BackupConfig must copy slices")
	}
}

func TestBackupConfig_AbsolutePathsKept(t *testing.T) {
	root := t.TempDir()
	elsewhere := t.TempDir()

	cfg := defaultConfig()
	cfg.Root = root
	cfg.BackupDir = elsewhere
	cfg.Database.Path = filepath.Join(elsewhere, "live.db")

	bcfg, err := cfg.BackupConfig()
	if err != nil {
		t.Fatal(err)
	}
	if bcfg.BackupDir != elsewhere || bcfg.DatabasePath != filepath.Join(elsewhere, "live.db") {
		t.Errorf("absolute paths should be kept, got %q and %q", bcfg.BackupDir, bcfg.DatabasePath)
	}
}

func TestBackupConfig_EmptyDatabaseDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.Root = t.TempDir()
	cfg.Database.Path = ""

	bcfg, err := cfg.BackupConfig()
	if err != nil {
		t.Fatal(err)
	}
	if bcfg.DatabasePath != "" {
		t.Errorf("expected empty database path, got %q", bcfg.DatabasePath)
	}
}

func TestValidate_ArchiveLevel(t *testing.T) {
	tests := []struct {
		name        string
		compression string
		level       int
		wantErr     bool
	}{
		{"deflate default", "deflate", 6, false},
		{"deflate zero", "deflate", 0, true},
		{"zstd fastest", "zstd", 1, false},
		{"zstd best", "zstd", 4, false},
		{"zstd too high", "zstd", 5, true},
		{"store ignores level", "store", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Root = t.TempDir()
			cfg.Archive.Compression = tt.compression
			cfg.Archive.Level = tt.level

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_MetricsAddr(t *testing.T) {
	cfg := defaultConfig()
	cfg.Root = t.TempDir()

	cfg.Metrics.Addr = "127.0.0.1:9090"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid address rejected: %v", err)
	}

	cfg.Metrics.Addr = "not an address"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid metrics address to fail")
	}
}

func TestLoggingSettings(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging = LoggingConfig{Level: "debug", Format: "json", Caller: true}

	lc := cfg.LoggingSettings()
	if lc.Level != "debug" || lc.Format != "json" || !lc.Caller {
		t.Errorf("unexpected logging config %+v", lc)
	}
	if !lc.Timestamp || lc.Output == nil {
		t.Error("expected timestamp and output defaults to be kept")
	}
}
