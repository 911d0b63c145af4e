// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package backup

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/tomtom215/hoard/internal/logging"
)

// collectSystemInfo snapshots the host for the record's informational block.
// gopsutil failures fall back to what the Go runtime knows.
func collectSystemInfo(ctx context.Context) SystemInfo {
	info := SystemInfo{
		Platform:  runtime.GOOS,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
	}

	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		logging.Debug().Err(err).Msg("Host info unavailable, using runtime values")
		if name, herr := os.Hostname(); herr == nil {
			info.Hostname = name
		}
		return info
	}

	info.Hostname = hi.Hostname
	if hi.Platform != "" {
		info.Platform = hi.Platform
		if hi.PlatformVersion != "" {
			info.Platform += " " + hi.PlatformVersion
		}
	}
	if hi.OS != "" {
		info.OS = hi.OS
	}
	if hi.KernelArch != "" {
		info.Arch = hi.KernelArch
	}
	info.KernelVersion = hi.KernelVersion
	return info
}
