package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagekeep/doclink/internal/config"
)

func newTestScheduler(t *testing.T, cfg config.SchedulerConfig) *Scheduler {
	t.Helper()
	env := newTestEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewScheduler(cfg, env.workflows, logger)
}

func TestScheduler_DisabledIsNoOp(t *testing.T) {
	s := newTestScheduler(t, config.NewSchedulerConfig().WithEnabled(false))

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := newTestScheduler(t, config.NewSchedulerConfig().WithSchedule("not a schedule"))

	err := s.Start(context.Background())
	assert.Error(t, err)
	s.Stop()
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler(t, config.NewSchedulerConfig().WithSchedule("@every 1h"))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx), "second start is a no-op")

	s.Stop()
	s.Stop() // stopping twice is safe
}

func TestScheduler_ScanAfterStopIsNoOp(t *testing.T) {
	s := newTestScheduler(t, config.NewSchedulerConfig().WithSchedule("@every 1h"))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	s.Stop()

	// A cron fire landing after Stop must not scan; with the workflow
	// service gone it would panic if it did.
	s.workflows = nil
	s.trackedScan(ctx)
}
