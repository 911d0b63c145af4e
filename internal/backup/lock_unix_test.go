// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

//go:build unix

package backup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestDirLock_Contended(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), lockFileName)

	first, err := acquireDirLock(context.Background(), path)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if _, err := acquireDirLock(ctx, path); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked while held, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	second, err := acquireDirLock(context.Background(), path)
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	if err := second.Release(); err != nil {
		t.Errorf("second release failed: %v", err)
	}
}

func TestManager_LockTimeout(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	cfg := env.newTestConfig()
	cfg.LockTimeout = 200 * time.Millisecond
	manager := env.newTestManagerWithConfig(t, cfg)

	// Another process holding the directory lock
	held, err := acquireDirLock(context.Background(), filepath.Join(cfg.BackupDir, lockFileName))
	if err != nil {
		t.Fatal(err)
	}
	defer held.Release() //nolint:errcheck // Test cleanup

	_, err = manager.Create(context.Background(), CreateOptions{Components: Components{Database: true}})
	if !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
}
