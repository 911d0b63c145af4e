// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/hoard/internal/backup"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"hoard.yaml",
	"hoard.yml",
	"/etc/hoard/config.yaml",
	"/etc/hoard/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "HOARD_CONFIG"

// envPrefix is stripped from environment variable names before mapping
const envPrefix = "HOARD_"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Root:      ".",
		BackupDir: "backups",
		Database: DatabaseConfig{
			Path: "data/app.db",
		},
		Sources: SourcesConfig{
			ConfigFiles: []string{".env"},
			Directories: []string{"src"},
			RootFiles:   []string{},
			Exclude:     []string{"node_modules", ".git", "__pycache__", "*.log", "*.tmp"},
		},
		Archive: ArchiveConfig{
			Compression:  backup.CompressionDeflate,
			Level:        6,
			MaxEntrySize: backup.DefaultMaxEntrySize,
		},
		Catalog: CatalogConfig{
			MaxEntries: backup.DefaultMaxCatalogEntries,
		},
		Retention: RetentionConfig{
			MaxAgeDays: backup.DefaultRetentionDays,
		},
		Schedule: ScheduleConfig{
			Daily:       "0 2 * * *",
			Weekly:      "0 3 * * 0",
			LockTimeout: backup.DefaultLockTimeout,
		},
		Project: ProjectConfig{
			Name:    "hoard",
			Version: "dev",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
	}
}

// Defaults returns the built-in configuration without reading any file or environment
func Defaults() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML file (explicit path, HOARD_CONFIG, or DefaultConfigPaths)
//  3. Environment Variables: HOARD_* overrides
//
// An explicit path that does not exist is an error; a missing default file is not.
func LoadWithKoanf(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// HOARD_ARCHIVE_LEVEL -> archive.level
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile resolves the config file to load. Returns "" when none applies.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config file %s (from %s): %w", envPath, ConfigPathEnvVar, err)
		}
		return envPath, nil
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", nil
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"sources.config_files",
	"sources.directories",
	"sources.root_files",
	"sources.exclude",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings, YAML lists are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased variable names (without HOARD_) to koanf paths
var envMappings = map[string]string{
	"root":       "root",
	"backup_dir": "backup_dir",

	"database_path": "database.path",

	"config_files": "sources.config_files",
	"source_dirs":  "sources.directories",
	"root_files":   "sources.root_files",
	"exclude":      "sources.exclude",

	"compression":    "archive.compression",
	"archive_level":  "archive.level",
	"max_entry_size": "archive.max_entry_size",

	"catalog_max_entries": "catalog.max_entries",
	"retention_days":      "retention.max_age_days",

	"schedule_daily":  "schedule.daily",
	"schedule_weekly": "schedule.weekly",
	"lock_timeout":    "schedule.lock_timeout",

	"project_name":    "project.name",
	"project_version": "project.version",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"metrics_addr": "metrics.addr",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HOARD_DATABASE_PATH -> database.path
//   - HOARD_RETENTION_DAYS -> retention.max_age_days
//   - HOARD_LOG_LEVEL -> logging.level
//
// Unmapped variables (including HOARD_CONFIG) are skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return envMappings[key]
}
