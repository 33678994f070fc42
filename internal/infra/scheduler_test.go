package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdash/configs"
	"botdash/internal/logger"
)

type fakeJobs struct {
	swept     int
	remindArg int
	pruneArg  time.Duration
	err       error
}

func (f *fakeJobs) SweepSubscriptions(ctx context.Context) (int, error) {
	f.swept++
	return 1, f.err
}

func (f *fakeJobs) RemindExpiring(ctx context.Context, days int) (int, error) {
	f.remindArg = days
	return 0, f.err
}

func (f *fakeJobs) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	f.pruneArg = retention
	return 0, f.err
}

func testJobsConfig() configs.JobsConfig {
	return configs.JobsConfig{
		SweepSpec:       "0 * * * *",
		ReminderSpec:    "0 9 * * *",
		PruneSpec:       "",
		ReminderDays:    5,
		SignalRetention: 48 * time.Hour,
	}
}

func TestSchedulerRegistersConfiguredJobs(t *testing.T) {
	jobs := &fakeJobs{}
	s := NewScheduler(testJobsConfig(), jobs, jobs, jobs, time.UTC, logger.Discard().Entry())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 2, s.Entries())
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	cfg := testJobsConfig()
	cfg.SweepSpec = "every hour"
	jobs := &fakeJobs{}
	s := NewScheduler(cfg, jobs, jobs, jobs, time.UTC, logger.Discard().Entry())

	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscription-sweep")
}

func TestSchedulerJobsPassConfig(t *testing.T) {
	jobs := &fakeJobs{}
	s := NewScheduler(testJobsConfig(), jobs, jobs, jobs, time.UTC, logger.Discard().Entry())

	s.RunSweepNow()
	s.runReminders()
	s.runPrune()

	assert.Equal(t, 1, jobs.swept)
	assert.Equal(t, 5, jobs.remindArg)
	assert.Equal(t, 48*time.Hour, jobs.pruneArg)

	jobs.err = errors.New("db down")
	assert.NotPanics(t, s.RunSweepNow)
}
