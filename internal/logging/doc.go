// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

// Package logging provides the process-wide zerolog logger.
//
// The logger is usable before configuration (JSON to stderr at info level)
// and is reconfigured once the CLI has loaded its settings:
//
//	logging.Init(logging.Config{
//	    Level:  "debug",
//	    Format: "console",
//	})
//
//	logging.Info().Str("backup_id", id).Msg("Backup created")
//	logging.Warn().Err(err).Str("path", p).Msg("Failed to remove scratch directory")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// chain emits nothing.
//
// # slog Bridge
//
// SlogHandler adapts zerolog to log/slog for libraries that only accept an
// *slog.Logger. The supervisor tree hands NewSlogLogger() to sutureslog so
// service restarts and failures are logged alongside everything else.
package logging
