// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tomtom215/hoard/internal/config"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprintf(a.out, "hoard %s (commit %s, %s %s/%s)\n", version, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)

			// The project block is informational; a broken config file must not hide the version
			cfg, err := config.LoadWithKoanf(a.configPath)
			if err != nil {
				return nil //nolint:nilerr // Version output does not depend on configuration
			}
			fmt.Fprintf(a.out, "project %s %s\n", cfg.Project.Name, cfg.Project.Version)
			return nil
		},
	}
}
