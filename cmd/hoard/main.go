// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

// Package main is the hoard command line tool.
//
// Hoard snapshots an installation's durable state (database file,
// configuration files and selected source trees) into integrity-checked zip
// archives, keeps a bounded catalog of them, restores them on demand and
// prunes old ones.
//
// # Commands
//
//	hoard create   [--source] [--desc TEXT]
//	hoard list     [--json]
//	hoard restore  <id> [--no-db] [--no-config] [--source] [--no-pre-backup]
//	hoard clean    [days]
//	hoard stats    [--json]
//	hoard schedule [--metrics-addr ADDR]
//	hoard verify   <id>
//	hoard delete   <id>
//	hoard version
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (HOARD_*)
//   - Config file (--config, HOARD_CONFIG, ./hoard.yaml or /etc/hoard/config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the running operation. Archive creation and
// restore stop between members, remove partial archives and scratch
// directories, and the command exits with status 1. The schedule command
// stops its supervisor tree and exits 0.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{out: stdout, errOut: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
