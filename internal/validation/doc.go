// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator with the custom rules the
// configuration layer needs and translates field errors into readable
// messages named by their koanf paths.
//
// # Custom Validation Tags
//
//   - cron: five-field cron expression or descriptor (@daily, @every 1h).
//     An empty string passes so a schedule can be disabled.
//   - relpath: relative path (or slice of paths) that does not escape its
//     base directory
//
// # Usage
//
//	type ScheduleConfig struct {
//	    Daily string `koanf:"daily" validate:"cron"`
//	}
//
//	if verr := validation.ValidateStruct(&cfg); verr != nil {
//	    for _, fe := range verr.Errors() {
//	        fmt.Println(fe.Field(), fe.Error())
//	    }
//	}
//
// Field names in errors are dotted koanf paths such as "archive.level".
package validation
