// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id>",
		Short: "Check a backup's checksum and archive contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.manager.Verify(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			status := "VALID"
			if !res.Valid {
				status = "INVALID"
			}
			fmt.Fprintf(a.out, "Backup %s: %s\n", res.BackupID, status)
			fmt.Fprintf(a.out, "  Size:     %s\n", formatSize(res.ArchiveSizeBytes))
			fmt.Fprintf(a.out, "  Expected: %s\n", res.ExpectedHash)
			fmt.Fprintf(a.out, "  Actual:   %s\n", res.ActualHash)

			kinds := make([]string, 0, len(res.EntriesByType))
			for k := range res.EntriesByType {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				fmt.Fprintf(a.out, "  %-9s %d file(s)\n", k+":", res.EntriesByType[k])
			}

			for _, msg := range res.Errors {
				fmt.Fprintf(a.out, "  error: %s\n", msg)
			}
			writeWarnings(a.out, res.Warnings)

			if !res.Valid {
				return fmt.Errorf("backup %s failed verification", res.BackupID)
			}
			return nil
		},
	}
}
