package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ski-portal/pkg/utils"

	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type SchedulerTestSuite struct {
	suite.Suite
	scheduler *Scheduler
}

func (s *SchedulerTestSuite) SetupTest() {
	sched, err := New(zap.NewNop())
	s.Require().NoError(err)
	s.scheduler = sched
}

func (s *SchedulerTestSuite) TearDownTest() {
	_ = s.scheduler.Stop()
}

func (s *SchedulerTestSuite) waitForRuns(id string, runs int) JobInfo {
	var info JobInfo
	s.Require().Eventually(func() bool {
		var ok bool
		info, ok = s.scheduler.Job(id)
		return ok && info.RunCount == runs && info.Status != JobStatusRunning
	}, 5*time.Second, 10*time.Millisecond)
	return info
}

func (s *SchedulerTestSuite) TestRunJobNowRecordsSuccess() {
	var calls atomic.Int32
	err := s.scheduler.AddJob("ok", "Always works", "hourly", gocron.DurationJob(time.Hour),
		func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})
	s.Require().NoError(err)

	s.scheduler.Start()
	s.Require().NoError(s.scheduler.RunJobNow("ok"))

	info := s.waitForRuns("ok", 1)
	s.Equal(JobStatusCompleted, info.Status)
	s.Zero(info.ErrorCount)
	s.Equal(int32(1), calls.Load())
	s.False(info.LastRun.IsZero())
}

func (s *SchedulerTestSuite) TestRunJobNowRecordsFailure() {
	err := s.scheduler.AddJob("broken", "Always fails", "hourly", gocron.DurationJob(time.Hour),
		func(ctx context.Context) error {
			return errors.New("database is down")
		})
	s.Require().NoError(err)

	s.scheduler.Start()
	s.Require().NoError(s.scheduler.RunJobNow("broken"))

	info := s.waitForRuns("broken", 1)
	s.Equal(JobStatusFailed, info.Status)
	s.Equal(1, info.ErrorCount)
	s.Equal("database is down", info.LastError)
}

func (s *SchedulerTestSuite) TestDuplicateAndUnknownJobs() {
	noop := func(ctx context.Context) error { return nil }
	s.Require().NoError(s.scheduler.AddJob("dup", "Dup", "hourly", gocron.DurationJob(time.Hour), noop))

	err := s.scheduler.AddJob("dup", "Dup", "hourly", gocron.DurationJob(time.Hour), noop)
	s.ErrorContains(err, "already registered")

	s.ErrorContains(s.scheduler.RunJobNow("missing"), "not found")

	_, ok := s.scheduler.Job("missing")
	s.False(ok)
}

type fakeMaintenance struct {
	cleaned  atomic.Int32
	resynced atomic.Int32
}

func (f *fakeMaintenance) CleanExpiredSessions(ctx context.Context) (int64, error) {
	f.cleaned.Add(1)
	return 3, nil
}

func (f *fakeMaintenance) ResyncRatings(ctx context.Context) (int, error) {
	f.resynced.Add(1)
	return 7, nil
}

func (s *SchedulerTestSuite) TestRegisterJobs() {
	fake := &fakeMaintenance{}
	config := utils.SchedulerConfig{
		Enabled:        true,
		SessionCleanup: "0 * * * *",
		RatingResync:   "30 3 * * *",
	}

	s.Require().NoError(s.scheduler.RegisterJobs(config, fake, fake))
	s.scheduler.Start()

	cleanup, ok := s.scheduler.Job(JobSessionCleanup)
	s.Require().True(ok)
	s.Equal("0 * * * *", cleanup.Schedule)
	s.False(cleanup.NextRun.IsZero())

	s.Require().NoError(s.scheduler.RunJobNow(JobRatingResync))
	s.waitForRuns(JobRatingResync, 1)
	s.Equal(int32(1), fake.resynced.Load())
	s.Equal(int32(0), fake.cleaned.Load())

	jobs := s.scheduler.Jobs()
	s.Require().Len(jobs, 2)
	s.Equal(JobRatingResync, jobs[0].ID)
	s.Equal(JobStatusCompleted, jobs[0].Status)
	s.Equal(JobSessionCleanup, jobs[1].ID)
	s.Equal(JobStatusScheduled, jobs[1].Status)
}

func (s *SchedulerTestSuite) TestRegisterJobsRejectsBadCron() {
	fake := &fakeMaintenance{}
	err := s.scheduler.RegisterJobs(utils.SchedulerConfig{
		SessionCleanup: "every hour please",
		RatingResync:   "30 3 * * *",
	}, fake, fake)
	s.ErrorContains(err, "session cleanup")
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

func TestLoggerAdapter(t *testing.T) {
	l := newLogger(zap.NewNop())
	require.NotNil(t, l)
	assert.NotPanics(t, func() {
		l.Debug("gocron: new job", "job", "cleanup", "id", 1)
		l.Info("gocron: started")
		l.Warn("gocron: slow", "elapsed", time.Second)
		l.Error("gocron: failed", "error", errors.New("boom"))
	})
}
