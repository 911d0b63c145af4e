// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package backup

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// idTimeLayout is the UTC timestamp embedded in backup ids
const idTimeLayout = "20060102_150405"

var idPattern = regexp.MustCompile(`^backup_[0-9]{8}_[0-9]{6}_[0-9a-f]{8}$`)

// NewID returns a time-based backup id: backup_<utc timestamp>_<8 hex chars>
func NewID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return "backup_" + t.UTC().Format(idTimeLayout) + "_" + suffix
}

// ValidateID rejects anything that is not a backup id, so ids can be joined
// onto the backup directory safely.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// IDTime extracts the creation time embedded in a backup id
func IDTime(id string) (time.Time, error) {
	if err := ValidateID(id); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(idTimeLayout, id[len("backup_"):len("backup_")+len(idTimeLayout)], time.UTC)
}
