// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

//go:build !unix && !windows

package backup

import "os"

// Platforms without advisory locks rely on the in-process semaphore only.
func tryLockFile(_ *os.File) (bool, error) {
	return true, nil
}

func unlockFile(_ *os.File) error {
	return nil
}
