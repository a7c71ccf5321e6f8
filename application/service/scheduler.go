package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	cron "github.com/robfig/cron"

	"github.com/pagekeep/doclink/internal/config"
)

// Scheduler fires workflow time triggers on a cron schedule.
type Scheduler struct {
	workflows *Workflow
	logger    *slog.Logger
	schedule  string
	enabled   bool

	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a new Scheduler from config and dependencies.
func NewScheduler(
	cfg config.SchedulerConfig,
	workflows *Workflow,
	logger *slog.Logger,
) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		workflows: workflows,
		logger:    logger,
		schedule:  cfg.Schedule(),
		enabled:   cfg.Enabled(),
	}
}

// Start begins scanning for due time triggers on the configured schedule.
// If disabled, this is a no-op. An immediate scan runs on startup so
// triggers that came due while the process was down fire right away.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.enabled {
		s.logger.Info("trigger scheduler disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)

	c := cron.New()
	if err := c.AddFunc(s.schedule, func() { s.trackedScan(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule trigger scan: %w", err)
	}

	s.cancel = cancel
	s.wg.Go(func() {
		s.scan(ctx)
	})

	c.Start()
	s.cron = c

	s.logger.Info("trigger scheduler started", slog.String("schedule", s.schedule))
	return nil
}

// Stop halts the schedule and cancels any in-flight scan.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	cancel := s.cancel
	s.cron = nil
	s.cancel = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	c.Stop()
	s.wg.Wait()
	s.logger.Info("trigger scheduler stopped")
}

// trackedScan runs a cron-fired scan under the WaitGroup, so Stop waits
// for it. cron's own Stop does not wait for running jobs; a fire racing
// Stop bails out here instead of scanning a closed client.
func (s *Scheduler) trackedScan(ctx context.Context) {
	s.mu.Lock()
	if s.cron == nil {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	s.scan(ctx)
}

func (s *Scheduler) scan(ctx context.Context) {
	fired, err := s.workflows.FireTimeTriggers(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("trigger scan failed", slog.String("error", err.Error()))
		return
	}
	if fired > 0 {
		s.logger.Info("time triggers fired", slog.Int("count", fired))
		return
	}
	s.logger.Debug("trigger scan complete", slog.Int("fired", 0))
}
