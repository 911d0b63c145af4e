// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package backup

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testEnv holds a fake installation and its backup directory
type testEnv struct {
	root      string
	backupDir string
	dbPath    string
}

// newTestEnv creates an installation with a database, two config files and a source tree
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	env := &testEnv{
		root:      root,
		backupDir: filepath.Join(root, "backups"),
		dbPath:    filepath.Join(root, "data", "app.db"),
	}

	env.writeFile(t, "data/app.db", "test database content")
	env.writeFile(t, ".env", "APP_KEY=secret\n")
	env.writeFile(t, "config/app.yaml", "port: 8080\n")
	env.writeFile(t, "src/main.go", "package main\n")
	env.writeFile(t, "src/lib/util.go", "package lib\n")
	env.writeFile(t, "src/debug.log", "noise\n")
	env.writeFile(t, "src/node_modules/pkg/index.js", "module.exports = {}\n")
	env.writeFile(t, "go.mod", "module example.com/app\n")

	return env
}

// writeFile creates a root-relative file with content
func (e *testEnv) writeFile(t *testing.T, rel, content string) {
	t.Helper()
	p := filepath.Join(e.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatalf("failed to create dir for %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}

// readFile returns the content of a root-relative file
func (e *testEnv) readFile(t *testing.T, rel string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	return data
}

// newTestConfig creates a configuration for the test installation
func (e *testEnv) newTestConfig() *Config {
	cfg := DefaultConfig(e.root)
	cfg.DatabasePath = e.dbPath
	cfg.ConfigFiles = []string{".env", "config/app.yaml"}
	cfg.SourceDirs = []string{"src"}
	cfg.SourceRootFiles = []string{"go.mod", "README.md"}
	cfg.Project = ProjectInfo{Name: "testapp", Version: "1.2.3"}
	cfg.LockTimeout = 2 * time.Second
	return cfg
}

// newTestManager creates a manager with a stubbed host snapshot
func (e *testEnv) newTestManager(t *testing.T) *Manager {
	t.Helper()
	return e.newTestManagerWithConfig(t, e.newTestConfig())
}

func (e *testEnv) newTestManagerWithConfig(t *testing.T, cfg *Config) *Manager {
	t.Helper()
	manager, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	manager.systemInfo = func(context.Context) SystemInfo {
		return SystemInfo{Platform: "test", OS: "linux", Arch: "amd64", Hostname: "testhost", GoVersion: "go-test"}
	}
	return manager
}

// createBackup creates a backup and fails the test on error
func createBackup(t *testing.T, m *Manager, components Components, description string) *CreateResult {
	t.Helper()
	res, err := m.Create(context.Background(), CreateOptions{Components: components, Description: description})
	if err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	return res
}

// seedRecord writes an archive file and appends a record created at createdAt
func seedRecord(t *testing.T, m *Manager, createdAt time.Time, description string) Record {
	t.Helper()
	rec := Record{
		ID:          NewID(createdAt),
		Timestamp:   createdAt,
		CreatedAt:   createdAt,
		Description: description,
		Components:  Components{Database: true},
		Hash:        "deadbeef",
	}
	if err := os.WriteFile(m.catalog.ArchivePath(rec.ID), bytes.Repeat([]byte("x"), 16), 0o640); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	if _, err := m.catalog.Append(rec); err != nil {
		t.Fatalf("failed to append record: %v", err)
	}
	return rec
}
