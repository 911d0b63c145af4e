// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tomtom215/hoard/internal/backup"
	"github.com/tomtom215/hoard/internal/config"
	"github.com/tomtom215/hoard/internal/logging"
)

// skipConfigAnnotation marks commands that run without a loaded configuration
const skipConfigAnnotation = "hoard.skip-config"

// app carries state shared by all subcommands
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg     *config.Config
	manager *backup.Manager

	out    io.Writer
	errOut io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "hoard",
		Short: "Back up, restore and prune installation snapshots",
		Long: `Hoard snapshots an installation's database file, configuration files and
source trees into integrity-checked archives, keeps a catalog of them and
restores them on demand.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfigAnnotation] == "true" {
				return nil
			}
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default: $HOARD_CONFIG, ./hoard.yaml, /etc/hoard/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: json or console")

	root.AddCommand(
		newCreateCmd(a),
		newListCmd(a),
		newRestoreCmd(a),
		newCleanCmd(a),
		newStatsCmd(a),
		newScheduleCmd(a),
		newVerifyCmd(a),
		newDeleteCmd(a),
		newVersionCmd(a),
	)

	return root
}

// load reads configuration, configures logging and builds the backup manager
func (a *app) load() error {
	cfg, err := config.LoadWithKoanf(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}

	logSettings := cfg.LoggingSettings()
	logSettings.Output = a.errOut
	logging.Init(logSettings)

	backupCfg, err := cfg.BackupConfig()
	if err != nil {
		return err
	}
	manager, err := backup.NewManager(backupCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize backup manager: %w", err)
	}

	a.cfg = cfg
	a.manager = manager
	return nil
}
