// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/hoard/internal/backup"
)

type createCall struct {
	opts    backup.CreateOptions
	trigger backup.Trigger
}

// mockRunner records calls in order
type mockRunner struct {
	mu        sync.Mutex
	creates   []createCall
	prunes    []int
	createErr error
	pruneErr  error
}

func (m *mockRunner) CreateWithTrigger(_ context.Context, opts backup.CreateOptions, trigger backup.Trigger) (*backup.CreateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates = append(m.creates, createCall{opts: opts, trigger: trigger})
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &backup.CreateResult{Entry: backup.Entry{Record: backup.Record{ID: backup.NewID(time.Now())}}}, nil
}

func (m *mockRunner) Prune(_ context.Context, days int) (*backup.PruneResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prunes = append(m.prunes, days)
	if m.pruneErr != nil {
		return nil, m.pruneErr
	}
	return &backup.PruneResult{}, nil
}

func (m *mockRunner) createCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.creates)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		runner  BackupRunner
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", runner: &mockRunner{}, cfg: Config{Daily: "0 2 * * *", Weekly: "0 3 * * 0", RetentionDays: 30}},
		{name: "descriptor", runner: &mockRunner{}, cfg: Config{Daily: "@daily"}},
		{name: "disabled", runner: &mockRunner{}, cfg: Config{}},
		{name: "nil runner", runner: nil, cfg: Config{Daily: "@daily"}, wantErr: true},
		{name: "bad daily", runner: &mockRunner{}, cfg: Config{Daily: "not a cron"}, wantErr: true},
		{name: "seconds field rejected", runner: &mockRunner{}, cfg: Config{Weekly: "0 0 3 * * 0"}, wantErr: true},
		{name: "negative retention", runner: &mockRunner{}, cfg: Config{RetentionDays: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.runner, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunDaily(t *testing.T) {
	t.Parallel()
	runner := &mockRunner{}
	s, err := New(runner, Config{Daily: "0 2 * * *", RetentionDays: 14})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.RunDaily(context.Background()); err != nil {
		t.Fatalf("RunDaily failed: %v", err)
	}

	if len(runner.creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(runner.creates))
	}
	call := runner.creates[0]
	if call.opts.Components != (backup.Components{Database: true, Config: true}) {
		t.Errorf("unexpected components %+v", call.opts.Components)
	}
	if call.opts.Description != DailyDescription || call.trigger != backup.TriggerScheduled {
		t.Errorf("unexpected call %+v", call)
	}
	if len(runner.prunes) != 1 || runner.prunes[0] != 14 {
		t.Errorf("expected prune(14), got %v", runner.prunes)
	}

	rec := backup.Record{Description: call.opts.Description}
	if rec.IsManual() {
		t.Error("scheduled backups must not be exempt from retention")
	}
}

func TestRunDaily_CreateFailureSkipsPrune(t *testing.T) {
	t.Parallel()
	runner := &mockRunner{createErr: errors.New("disk full")}
	s, err := New(runner, Config{Daily: "@daily"})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.RunDaily(context.Background()); err == nil {
		t.Error("expected error")
	}
	if len(runner.prunes) != 0 {
		t.Error("prune must not run after a failed backup")
	}
}

func TestRunWeekly(t *testing.T) {
	t.Parallel()
	runner := &mockRunner{}
	s, err := New(runner, Config{Weekly: "0 3 * * 0"})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.RunWeekly(context.Background()); err != nil {
		t.Fatalf("RunWeekly failed: %v", err)
	}
	if len(runner.creates) != 1 || runner.creates[0].opts.Components != backup.AllComponents() {
		t.Errorf("expected one full backup, got %+v", runner.creates)
	}
	if runner.creates[0].opts.Description != WeeklyDescription {
		t.Errorf("unexpected description %q", runner.creates[0].opts.Description)
	}
	if len(runner.prunes) != 0 {
		t.Error("weekly job does not prune")
	}
}

func TestNextRuns(t *testing.T) {
	t.Parallel()
	s, err := New(&mockRunner{}, Config{Daily: "0 2 * * *", Weekly: "0 3 * * 0"})
	if err != nil {
		t.Fatal(err)
	}

	// Wednesday
	now := time.Date(2026, 7, 15, 10, 0, 0, 0, time.Local)
	next := s.NextRuns(now)

	wantDaily := time.Date(2026, 7, 16, 2, 0, 0, 0, time.Local)
	wantWeekly := time.Date(2026, 7, 19, 3, 0, 0, 0, time.Local)
	if !next[JobDaily].Equal(wantDaily) {
		t.Errorf("daily next = %v, want %v", next[JobDaily], wantDaily)
	}
	if !next[JobWeekly].Equal(wantWeekly) {
		t.Errorf("weekly next = %v, want %v", next[JobWeekly], wantWeekly)
	}
}

func TestEarliest(t *testing.T) {
	t.Parallel()
	a := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	b := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := earliest(map[string]time.Time{"a": a, "b": b, "c": {}}); !got.Equal(b) {
		t.Errorf("earliest = %v, want %v", got, b)
	}
	if got := earliest(nil); !got.IsZero() {
		t.Errorf("earliest(nil) = %v, want zero", got)
	}
}

func TestServe_RunsDueJobs(t *testing.T) {
	t.Parallel()
	runner := &mockRunner{}
	s, err := New(runner, Config{Daily: "@every 1s", RetentionDays: 7})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	err = s.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context error, got %v", err)
	}
	if got := runner.createCount(); got < 1 {
		t.Errorf("expected at least one scheduled run, got %d", got)
	}
}

func TestServe_IdleWithoutJobs(t *testing.T) {
	t.Parallel()
	s, err := New(&mockRunner{}, Config{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_JobFailureKeepsRunning(t *testing.T) {
	t.Parallel()
	runner := &mockRunner{createErr: errors.New("boom")}
	s, err := New(runner, Config{Daily: "@every 1s"})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	_ = s.Serve(ctx)

	if got := runner.createCount(); got < 2 {
		t.Errorf("expected the loop to keep running after failures, got %d runs", got)
	}
}

func TestString(t *testing.T) {
	t.Parallel()
	s, _ := New(&mockRunner{}, Config{})
	if s.String() != "backup-scheduler" {
		t.Errorf("unexpected name %q", s.String())
	}
}
