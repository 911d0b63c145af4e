// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package backup

import "testing"

func TestParsePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		wantGlob bool
		wantErr  bool
	}{
		{name: "plain substring", raw: "node_modules", wantGlob: false},
		{name: "star glob", raw: "*.log", wantGlob: true},
		{name: "question glob", raw: "file?.txt", wantGlob: true},
		{name: "class glob", raw: "[ab].tmp", wantGlob: true},
		{name: "double star", raw: "**/cache/**", wantGlob: true},
		{name: "trimmed", raw: "  .git  ", wantGlob: false},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "invalid glob", raw: "[unclosed*", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePattern(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePattern(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			_, isGlob := p.(Glob)
			if isGlob != tt.wantGlob {
				t.Errorf("ParsePattern(%q) glob = %v, want %v", tt.raw, isGlob, tt.wantGlob)
			}
		})
	}
}

func TestExcludeMatcher(t *testing.T) {
	t.Parallel()

	m, err := CompileExcludes([]string{"node_modules", ".git", "*.log", "build/**"})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if m.Len() != 4 {
		t.Errorf("expected 4 patterns, got %d", m.Len())
	}

	tests := []struct {
		path string
		want bool
	}{
		{"node_modules", true},
		{"web/node_modules", true},
		{".git", true},
		{".github", true}, // substring semantics
		{"app.log", true},
		{"logs/app.log", true},
		{"app.log.gz", false},
		{"build/out/app.bin", true},
		{"main.go", false},
		{"lib/util.go", false},
	}

	for _, tt := range tests {
		if got := m.Excluded(tt.path); got != tt.want {
			t.Errorf("Excluded(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestExcludeMatcher_Nil(t *testing.T) {
	t.Parallel()
	var m *ExcludeMatcher
	if m.Excluded("anything") {
		t.Error("nil matcher must not exclude")
	}
	if m.Len() != 0 {
		t.Error("nil matcher has no patterns")
	}
}
