// Package cron schedules the periodic crawl run. It wraps robfig/cron
// with a single job, overlap protection and timezone awareness.
package cron

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/trendradar/trendradar/internal/logger"
)

// Parser accepts the standard five-field crontab syntax plus
// descriptors like @hourly, matching what the scheduler file accepts.
var Parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs one job on a cron schedule. A tick that fires while
// the previous run is still in flight is skipped.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	job      func(ctx context.Context)
	logger   *logger.Logger

	running atomic.Bool
	skipped atomic.Int64
	lastRun atomic.Pointer[time.Time]

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

// New validates the schedule and builds a scheduler. job receives a
// context cancelled on Stop.
func New(schedule string, location *time.Location, job func(ctx context.Context), log *logger.Logger) (*Scheduler, error) {
	if _, err := Parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	if location == nil {
		location = time.Local
	}

	return &Scheduler{
		cron:     cron.New(cron.WithParser(Parser), cron.WithLocation(location)),
		schedule: schedule,
		job:      job,
		logger:   log,
	}, nil
}

// Start registers the job and runs the scheduler until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	_, err := s.cron.AddFunc(s.schedule, func() { s.tick(runCtx) })
	if err != nil {
		s.started = false
		s.mu.Unlock()
		return fmt.Errorf("failed to register cron job: %w", err)
	}

	s.cron.Start()
	s.mu.Unlock()

	s.logger.Info("scheduler started",
		logger.Field{Key: "schedule", Value: s.schedule},
		logger.Field{Key: "description", Value: Describe(s.schedule)},
		logger.Field{Key: "next_run", Value: s.NextRun().Format(time.RFC3339)})

	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop halts the scheduler and waits for an in-flight run to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Warn("previous run still in flight, skipping tick",
			logger.Field{Key: "skipped_total", Value: s.skipped.Load()})
		return
	}
	defer s.running.Store(false)

	now := time.Now()
	s.lastRun.Store(&now)
	s.job(ctx)
}

// Trigger runs the job immediately, subject to the same overlap rule.
// Returns false when a run is already in flight.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	defer s.running.Store(false)

	now := time.Now()
	s.lastRun.Store(&now)
	s.job(ctx)
	return true
}

// Running reports whether a run is currently in flight.
func (s *Scheduler) Running() bool { return s.running.Load() }

// Skipped returns how many ticks were skipped due to overlap.
func (s *Scheduler) Skipped() int64 { return s.skipped.Load() }

// LastRun returns the start time of the most recent run, zero when the
// job has not run yet.
func (s *Scheduler) LastRun() time.Time {
	if t := s.lastRun.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

// NextRun returns the next scheduled fire time.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Schedule returns the configured cron expression.
func (s *Scheduler) Schedule() string { return s.schedule }
