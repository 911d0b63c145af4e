// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package backup

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tomtom215/hoard/internal/logging"
)

// lockPollInterval is how often a contended lock is retried
const lockPollInterval = 100 * time.Millisecond

// dirLock is an advisory lock on a file inside the backup directory. It
// serializes mutating operations across processes sharing the directory.
type dirLock struct {
	path string
	file *os.File
}

// acquireDirLock blocks until the lock at path is held or ctx is done
//
//nolint:gosec // G304: path is the fixed lock file inside the backup directory
func acquireDirLock(ctx context.Context, path string) (*dirLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	logged := false
	for {
		ok, err := tryLockFile(f)
		if err != nil {
			f.Close() //nolint:errcheck // Best effort cleanup on error
			return nil, fmt.Errorf("failed to lock %s: %w", path, err)
		}
		if ok {
			return &dirLock{path: path, file: f}, nil
		}

		if !logged {
			logging.Info().Str("path", path).Msg("Waiting for another backup operation to finish")
			logged = true
		}

		select {
		case <-ctx.Done():
			f.Close() //nolint:errcheck // Best effort cleanup on error
			return nil, fmt.Errorf("%w: %v", ErrLocked, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Release unlocks and closes the lock file. The file itself is left in place.
func (l *dirLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlockFile(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
