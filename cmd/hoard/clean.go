// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [days]",
		Short: "Delete automatic backups older than the given age",
		Long: `Delete backups created more than [days] days ago (default: retention.max_age_days).
Backups whose description contains "manual" are kept regardless of age.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := a.cfg.Retention.MaxAgeDays
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid days %q: must be a whole number", args[0])
				}
				days = n
			}

			res, err := a.manager.Prune(cmd.Context(), days)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Deleted %d backup(s) older than %d day(s)\n", res.Deleted, days)
			fmt.Fprintf(a.out, "  Kept:   %d\n", res.Kept)
			fmt.Fprintf(a.out, "  Manual: %d\n", res.Exempt)
			if res.Failed > 0 {
				fmt.Fprintf(a.out, "  Failed: %d\n", res.Failed)
			}
			writeWarnings(a.out, res.Warnings)
			return nil
		},
	}
}
