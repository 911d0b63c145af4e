// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/tomtom215/hoard/internal/backup"
)

const timeLayout = "2006-01-02 15:04:05"

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// formatAge renders a timestamp with its relative age, e.g. "2026-07-14 02:00:00 (3 days ago)"
func formatAge(t time.Time, now time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Local().Format(timeLayout), humanize.RelTime(t, now, "ago", "from now"))
}

func writeEntryTable(w io.Writer, entries []backup.Entry, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSIZE\tCOMPONENTS\tSTATUS\tDESCRIPTION")
	for i := range entries {
		e := &entries[i]
		size := formatSize(e.Size)
		status := "ok"
		if !e.Exists {
			size = "-"
			status = e.Status
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			humanize.RelTime(e.CreatedAt, now, "ago", "from now"),
			size,
			e.Components.String(),
			status,
			e.Description,
		)
	}
	return tw.Flush()
}

func writeWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "Warnings (%d):\n", len(warnings))
	for _, msg := range warnings {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
}

func componentList(c backup.Components) string {
	return strings.ReplaceAll(c.String(), ",", ", ")
}
