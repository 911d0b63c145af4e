// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package backup

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

// writeCraftedArchive writes a zip with the given members and catalogs it
func writeCraftedArchive(t *testing.T, m *Manager, members map[string]string) Record {
	t.Helper()

	now := time.Now().UTC()
	rec := Record{
		ID:          NewID(now),
		Timestamp:   now,
		CreatedAt:   now,
		Description: "crafted",
		Components:  AllComponents(),
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}

	if err := os.WriteFile(m.catalog.ArchivePath(rec.ID), buf.Bytes(), 0o640); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	if _, err := m.catalog.Append(rec); err != nil {
		t.Fatalf("failed to append record: %v", err)
	}
	return rec
}

func TestValidateAndBuildDestPath(t *testing.T) {
	t.Parallel()
	base := t.TempDir()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "nested member", input: "config/app.yaml"},
		{name: "root member", input: "backup_metadata.json"},
		{name: "parent traversal", input: "../evil", wantErr: true},
		{name: "nested traversal", input: "config/../../evil", wantErr: true},
		{name: "base itself", input: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateAndBuildDestPath(base, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateAndBuildDestPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && !strings.HasPrefix(got, base) {
				t.Errorf("path %q escaped %q", got, base)
			}
		})
	}
}

func TestValidateExtractionSize(t *testing.T) {
	t.Parallel()

	if err := validateExtractionSize(10, 10); err != nil {
		t.Errorf("size at limit should pass: %v", err)
	}
	if err := validateExtractionSize(11, 10); err == nil {
		t.Error("size over limit should fail")
	}
	if err := validateExtractionSize(-1, 10); err == nil {
		t.Error("negative size should fail")
	}
}

func TestExtractFile_EnforcesLimit(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	dest := filepath.Join(dir, "ok.bin")
	if err := extractFile(strings.NewReader("12345"), dest, 5); err != nil {
		t.Fatalf("extract within limit failed: %v", err)
	}

	over := filepath.Join(dir, "over.bin")
	if err := extractFile(strings.NewReader("123456"), over, 5); err == nil {
		t.Error("expected error for oversized member")
	}
	if _, err := os.Stat(over); !os.IsNotExist(err) {
		t.Error("oversized member should be removed")
	}
}

func TestReplaceFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	src := filepath.Join(dir, "src.txt")
	if err := os.WriteFile(src, []byte("new content"), 0o600); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "nested", "dst.txt")

	if err := replaceFile(src, dst); err != nil {
		t.Fatalf("replaceFile failed: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "new content" {
		t.Errorf("unexpected destination content %q, err %v", data, err)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "nested", ".dst.txt.restore-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestRestore_RejectsTraversalMember(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	manager := env.newTestManager(t)

	rec := writeCraftedArchive(t, manager, map[string]string{
		"../evil":         "pwned",
		"config/app.yaml": "port: 1\n",
		metadataFileName:  "{}",
	})

	_, err := manager.Restore(context.Background(), rec.ID, RestoreOptions{Config: true})
	if err == nil {
		t.Fatal("expected restore to fail on traversal member")
	}
	if _, statErr := os.Stat(filepath.Join(os.TempDir(), "evil")); statErr == nil {
		t.Error("traversal member was written outside the scratch directory")
	}
	if got := string(env.readFile(t, "config/app.yaml")); got != "port: 8080\n" {
		t.Errorf("live config modified after failed extraction: %q", got)
	}
}

func TestRestore_OversizedMember(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	cfg := env.newTestConfig()
	cfg.MaxEntrySize = 4
	manager := env.newTestManagerWithConfig(t, cfg)

	rec := writeCraftedArchive(t, manager, map[string]string{
		"config/app.yaml": "port: 9999\n",
	})

	if _, err := manager.Restore(context.Background(), rec.ID, RestoreOptions{Config: true}); err == nil {
		t.Fatal("expected restore to fail on oversized member")
	}
}

func TestRestore_CorruptArchive(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	manager := env.newTestManager(t)

	rec := seedRecord(t, manager, time.Now(), "not really a zip")

	_, err := manager.Restore(context.Background(), rec.ID, RestoreOptions{Database: true})
	if err == nil {
		t.Fatal("expected restore of a corrupt archive to fail")
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMissingArchive) {
		t.Errorf("expected an extraction error, got %v", err)
	}
	if got := string(env.readFile(t, "data/app.db")); got != "test database content" {
		t.Errorf("live database modified: %q", got)
	}
}

func TestRestore_ScratchDirectoryRemoved(t *testing.T) {
	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	env := newTestEnv(t)
	manager := env.newTestManager(t)
	res := createBackup(t, manager, Components{Database: true, Config: true}, "scratch test")

	if _, err := manager.Restore(context.Background(), res.Entry.ID, RestoreOptions{Database: true, Config: true}); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	bad := seedRecord(t, manager, time.Now(), "corrupt")
	if _, err := manager.Restore(context.Background(), bad.ID, RestoreOptions{Database: true}); err == nil {
		t.Fatal("expected corrupt restore to fail")
	}

	leftovers, _ := filepath.Glob(filepath.Join(scratch, "hoard-restore-*"))
	if len(leftovers) != 0 {
		t.Errorf("scratch directories left behind: %v", leftovers)
	}
}

func TestRestore_ComponentAbsentFromArchive(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	manager := env.newTestManager(t)

	res := createBackup(t, manager, Components{Config: true}, "config only")

	result, err := manager.Restore(context.Background(), res.Entry.ID, RestoreOptions{Database: true, Config: true})
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if result.Restored.Database {
		t.Error("database must not be reported as restored")
	}
	if !result.Restored.Config {
		t.Error("config should be restored")
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for the absent database component")
	}
}

func TestRestore_DatabaseNameMismatch(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	manager := env.newTestManager(t)

	rec := writeCraftedArchive(t, manager, map[string]string{
		"database/other.db": "renamed database",
	})

	result, err := manager.Restore(context.Background(), rec.ID, RestoreOptions{Database: true})
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !result.Restored.Database {
		t.Error("database should be restored from the only archived file")
	}
	if got := string(env.readFile(t, "data/app.db")); got != "renamed database" {
		t.Errorf("unexpected database content %q", got)
	}
}

func TestRestore_CanceledContext(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	manager := env.newTestManager(t)
	res := createBackup(t, manager, AllComponents(), "cancel test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := manager.Restore(ctx, res.Entry.ID, DefaultRestoreOptions()); err == nil {
		t.Error("expected canceled restore to fail")
	}
}
