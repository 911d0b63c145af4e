// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

/*
scheduler.go - Backup Scheduling

Runs the two recurring backup jobs as a long-lived service:

  - daily:  database + config, described "Automatic daily backup",
    followed by a retention sweep
  - weekly: full backup (database + config + source), described
    "Automatic weekly backup"

Both descriptions omit "manual", so scheduled backups are subject to
retention. Schedules are standard five-field cron expressions (or
descriptors such as @daily). An empty expression disables the job.

Timer Logic:
  - the next fire time of each job is computed from its cron schedule
  - a single timer waits for the earliest one
  - due jobs run sequentially, daily before weekly, and never overlap
  - the timer is reset after the jobs complete

Job failures are logged and counted; they never stop the loop.
*/

//nolint:staticcheck // File documentation, not package doc
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/hoard/internal/backup"
	"github.com/tomtom215/hoard/internal/logging"
	"github.com/tomtom215/hoard/internal/metrics"
)

// Job names used in logs and metrics
const (
	JobDaily  = "daily"
	JobWeekly = "weekly"
)

// Descriptions given to scheduled backups
const (
	DailyDescription  = "Automatic daily backup"
	WeeklyDescription = "Automatic weekly backup"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// BackupRunner is the part of *backup.Manager the scheduler drives
type BackupRunner interface {
	CreateWithTrigger(ctx context.Context, opts backup.CreateOptions, trigger backup.Trigger) (*backup.CreateResult, error)
	Prune(ctx context.Context, maxAgeDays int) (*backup.PruneResult, error)
}

// Config holds the job schedules
type Config struct {
	// Daily and Weekly are cron expressions; empty disables the job
	Daily  string
	Weekly string

	// RetentionDays is passed to Prune after each daily backup
	RetentionDays int
}

// ParseSchedule parses a cron expression the way the scheduler does
func ParseSchedule(expr string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return sched, nil
}

type job struct {
	name     string
	schedule cron.Schedule
	run      func(ctx context.Context) error
}

// Scheduler runs the daily and weekly jobs. It implements suture.Service.
type Scheduler struct {
	runner    BackupRunner
	retention int
	jobs      []job
	now       func() time.Time
}

// New validates the schedules and returns a Scheduler
func New(runner BackupRunner, cfg Config) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("backup runner is required")
	}
	if cfg.RetentionDays < 0 {
		return nil, fmt.Errorf("%w: %d", backup.ErrInvalidRetention, cfg.RetentionDays)
	}

	s := &Scheduler{
		runner:    runner,
		retention: cfg.RetentionDays,
		now:       time.Now,
	}

	if cfg.Daily != "" {
		sched, err := ParseSchedule(cfg.Daily)
		if err != nil {
			return nil, fmt.Errorf("daily schedule: %w", err)
		}
		s.jobs = append(s.jobs, job{name: JobDaily, schedule: sched, run: s.RunDaily})
	}
	if cfg.Weekly != "" {
		sched, err := ParseSchedule(cfg.Weekly)
		if err != nil {
			return nil, fmt.Errorf("weekly schedule: %w", err)
		}
		s.jobs = append(s.jobs, job{name: JobWeekly, schedule: sched, run: s.RunWeekly})
	}

	return s, nil
}

// RunDaily creates the daily database and config backup, then prunes
func (s *Scheduler) RunDaily(ctx context.Context) error {
	res, err := s.runner.CreateWithTrigger(ctx, backup.CreateOptions{
		Components:  backup.Components{Database: true, Config: true},
		Description: DailyDescription,
	}, backup.TriggerScheduled)
	if err != nil {
		return fmt.Errorf("daily backup failed: %w", err)
	}
	logging.Info().Str("backup_id", res.Entry.ID).Str("job", JobDaily).Msg("Scheduled backup completed")

	pruned, err := s.runner.Prune(ctx, s.retention)
	if err != nil {
		return fmt.Errorf("retention sweep failed: %w", err)
	}
	if pruned.Failed > 0 {
		logging.Warn().Int("failed", pruned.Failed).Msg("Retention sweep could not delete some backups")
	}
	return nil
}

// RunWeekly creates the weekly full backup
func (s *Scheduler) RunWeekly(ctx context.Context) error {
	res, err := s.runner.CreateWithTrigger(ctx, backup.CreateOptions{
		Components:  backup.AllComponents(),
		Description: WeeklyDescription,
	}, backup.TriggerScheduled)
	if err != nil {
		return fmt.Errorf("weekly backup failed: %w", err)
	}
	logging.Info().Str("backup_id", res.Entry.ID).Str("job", JobWeekly).Msg("Scheduled backup completed")
	return nil
}

// NextRuns returns the next fire time of every enabled job after now
func (s *Scheduler) NextRuns(now time.Time) map[string]time.Time {
	next := make(map[string]time.Time, len(s.jobs))
	for _, j := range s.jobs {
		next[j.name] = j.schedule.Next(now)
	}
	return next
}

// Serve implements suture.Service. It blocks until ctx is canceled.
func (s *Scheduler) Serve(ctx context.Context) error {
	if len(s.jobs) == 0 {
		logging.Info().Msg("No backup schedules configured, scheduler idle")
		<-ctx.Done()
		return ctx.Err()
	}

	next := s.NextRuns(s.now())
	s.publishNext(next)

	first := earliest(next)
	if first.IsZero() {
		logging.Warn().Msg("Backup schedules never fire, scheduler idle")
		<-ctx.Done()
		return ctx.Err()
	}

	timer := time.NewTimer(time.Until(first))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			fired := s.now()
			for _, j := range s.jobs {
				if next[j.name].After(fired) {
					continue
				}
				s.runJob(ctx, j)
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}

			// Jobs that were due are rescheduled from when they fired so a
			// long run does not skip the following slot.
			now := s.now()
			for _, j := range s.jobs {
				if !next[j.name].After(fired) {
					next[j.name] = j.schedule.Next(fired)
				}
				if !next[j.name].After(now) {
					next[j.name] = j.schedule.Next(now)
				}
			}
			s.publishNext(next)
			first = earliest(next)
			if first.IsZero() {
				<-ctx.Done()
				return ctx.Err()
			}
			timer.Reset(time.Until(first))
		}
	}
}

// String implements fmt.Stringer for logging.
func (s *Scheduler) String() string {
	return "backup-scheduler"
}

func (s *Scheduler) runJob(ctx context.Context, j job) {
	jlog := logging.WithComponent("scheduler").With().Str("job", j.name).Logger()
	jlog.Info().Msg("Running scheduled backup job")

	start := s.now()
	err := j.run(ctx)
	metrics.RecordSchedulerRun(j.name, err)
	if err != nil {
		jlog.Error().Err(err).Msg("Scheduled backup job failed")
		return
	}
	jlog.Info().Dur("duration", s.now().Sub(start)).Msg("Scheduled backup job finished")
}

func (s *Scheduler) publishNext(next map[string]time.Time) {
	for name, at := range next {
		metrics.SetSchedulerNextRun(name, at)
		logging.Debug().Str("job", name).Time("next_run", at).Msg("Next scheduled run")
	}
}

// earliest returns the soonest non-zero time in next
func earliest(next map[string]time.Time) time.Time {
	var first time.Time
	for _, at := range next {
		if at.IsZero() {
			continue
		}
		if first.IsZero() || at.Before(first) {
			first = at
		}
	}
	return first
}
