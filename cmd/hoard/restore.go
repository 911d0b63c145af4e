// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/hoard/internal/backup"
)

func newRestoreCmd(a *app) *cobra.Command {
	var (
		noDB        bool
		noConfig    bool
		withSource  bool
		noPreBackup bool
	)

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a backup onto the live installation",
		Long: `Restore the database and configuration files from a backup. Source trees
are restored only with --source.

Unless --no-pre-backup is given, a full snapshot of the current state is
taken first so the restore itself can be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := backup.RestoreOptions{
				Database:  !noDB,
				Config:    !noConfig,
				Source:    withSource,
				PreBackup: !noPreBackup,
			}
			res, err := a.manager.Restore(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Restored backup %s\n", res.BackupID)
			if res.PreRestoreBackupID != "" {
				fmt.Fprintf(a.out, "  Pre-restore snapshot: %s\n", res.PreRestoreBackupID)
			}
			fmt.Fprintf(a.out, "  Components:           %s\n", componentList(res.Restored))
			fmt.Fprintf(a.out, "  Files restored:       %d\n", res.FilesRestored)
			fmt.Fprintf(a.out, "  Duration:             %s\n", res.Duration.Round(time.Millisecond))
			writeWarnings(a.out, res.Warnings)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&noDB, "no-db", false, "do not restore the database")
	flags.BoolVar(&noConfig, "no-config", false, "do not restore configuration files")
	flags.BoolVar(&withSource, "source", false, "restore source directories and root files")
	flags.BoolVar(&noPreBackup, "no-pre-backup", false, "skip the safety snapshot of the current state")
	return cmd
}
