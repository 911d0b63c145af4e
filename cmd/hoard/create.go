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

func newCreateCmd(a *app) *cobra.Command {
	var (
		withSource  bool
		description string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a backup of the database and configuration",
		Long: `Create a backup of the database file and configuration files. With --source
the configured source directories and root files are included too.

Backups whose description contains "manual" are never removed by clean or
the scheduled retention sweep.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if description == "" {
				description = backup.DefaultDescription
			}
			res, err := a.manager.Create(cmd.Context(), backup.CreateOptions{
				Components:  backup.Components{Database: true, Config: true, Source: withSource},
				Description: description,
			})
			if err != nil {
				return err
			}

			e := res.Entry
			if res.Cataloged {
				fmt.Fprintf(a.out, "Backup created: %s\n", e.ID)
			} else {
				fmt.Fprintf(a.out, "Backup archived but NOT cataloged: %s\n", e.ID)
			}
			fmt.Fprintf(a.out, "  Path:        %s\n", e.Path)
			fmt.Fprintf(a.out, "  Size:        %s\n", formatSize(e.Size))
			fmt.Fprintf(a.out, "  Components:  %s\n", componentList(e.Components))
			fmt.Fprintf(a.out, "  Description: %s\n", e.Description)
			fmt.Fprintf(a.out, "  SHA-256:     %s\n", e.Hash)
			fmt.Fprintf(a.out, "  Duration:    %s\n", res.Duration.Round(time.Millisecond))
			writeWarnings(a.out, res.Warnings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withSource, "source", false, "include source directories and root files")
	cmd.Flags().StringVarP(&description, "desc", "d", backup.DefaultDescription, "backup description")
	return cmd
}
