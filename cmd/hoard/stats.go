// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics and backup health",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s := a.manager.Stats()
			if asJSON {
				return writeJSON(a.out, s)
			}

			now := time.Now()
			fmt.Fprintf(a.out, "Health:          %s\n", strings.ToUpper(string(s.Health)))
			fmt.Fprintf(a.out, "Backups:         %d (%d manual, %d automatic)\n", s.TotalCount, s.ManualCount, s.AutomaticCount)
			fmt.Fprintf(a.out, "Total size:      %s\n", formatSize(s.TotalSizeBytes))
			fmt.Fprintf(a.out, "Missing:         %d\n", s.MissingCount)
			fmt.Fprintf(a.out, "Components:      database %d, config %d, source %d\n", s.DatabaseCount, s.ConfigCount, s.SourceCount)
			if s.NewestBackup != nil {
				fmt.Fprintf(a.out, "Newest:          %s %s\n", s.NewestID, formatAge(*s.NewestBackup, now))
			}
			if s.OldestBackup != nil {
				fmt.Fprintf(a.out, "Oldest:          %s\n", formatAge(*s.OldestBackup, now))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}
