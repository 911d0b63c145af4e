// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package backup

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is a single compiled exclusion rule. The only implementations are
// Exact and Glob.
type Pattern interface {
	// Match reports whether an entry with the given base name and
	// slash-separated path (relative to the walked directory) is excluded.
	Match(name, relPath string) bool

	isPattern()
}

// Exact excludes entries whose base name contains the literal substring
type Exact string

// Match implements Pattern
func (e Exact) Match(name, _ string) bool {
	return strings.Contains(name, string(e))
}

func (Exact) isPattern() {}

// Glob excludes entries whose base name or relative path matches a doublestar pattern
type Glob string

// Match implements Pattern
func (g Glob) Match(name, relPath string) bool {
	if ok, _ := doublestar.Match(string(g), name); ok {
		return true
	}
	ok, _ := doublestar.Match(string(g), relPath)
	return ok
}

func (Glob) isPattern() {}

// ParsePattern classifies a raw pattern: anything containing glob
// metacharacters becomes a Glob, everything else an Exact substring.
func ParsePattern(raw string) (Pattern, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty exclusion pattern")
	}
	if !strings.ContainsAny(raw, "*?[") {
		return Exact(raw), nil
	}
	if !doublestar.ValidatePattern(raw) {
		return nil, fmt.Errorf("invalid exclusion pattern: %s", raw)
	}
	return Glob(raw), nil
}

// ExcludeMatcher is a set of patterns compiled once and applied to every
// entry of a directory walk.
type ExcludeMatcher struct {
	patterns []Pattern
}

// CompileExcludes parses every raw pattern into an ExcludeMatcher
func CompileExcludes(raw []string) (*ExcludeMatcher, error) {
	m := &ExcludeMatcher{patterns: make([]Pattern, 0, len(raw))}
	for _, r := range raw {
		p, err := ParsePattern(r)
		if err != nil {
			return nil, err
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// Excluded reports whether the entry at relPath (slash-separated) is filtered out
func (m *ExcludeMatcher) Excluded(relPath string) bool {
	if m == nil {
		return false
	}
	name := path.Base(relPath)
	for _, p := range m.patterns {
		if p.Match(name, relPath) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns
func (m *ExcludeMatcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}
