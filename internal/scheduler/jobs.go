package scheduler

import (
	"context"
	"fmt"

	"ski-portal/pkg/utils"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	JobSessionCleanup = "session-cleanup"
	JobRatingResync   = "rating-resync"
)

// SessionCleaner drops sessions that can no longer be used.
type SessionCleaner interface {
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

// RatingResyncer recomputes every resort's stored rating aggregate.
type RatingResyncer interface {
	ResyncRatings(ctx context.Context) (int, error)
}

// RegisterJobs adds the maintenance jobs on their configured cron schedules.
func (s *Scheduler) RegisterJobs(config utils.SchedulerConfig, sessions SessionCleaner, ratings RatingResyncer) error {
	err := s.AddJob(JobSessionCleanup, "Expired session cleanup", config.SessionCleanup,
		gocron.CronJob(config.SessionCleanup, false),
		func(ctx context.Context) error {
			removed, err := sessions.CleanExpiredSessions(ctx)
			if err != nil {
				return err
			}
			s.log.Info("Expired sessions removed", zap.Int64("count", removed))
			return nil
		})
	if err != nil {
		return fmt.Errorf("register session cleanup: %w", err)
	}

	err = s.AddJob(JobRatingResync, "Resort rating resync", config.RatingResync,
		gocron.CronJob(config.RatingResync, false),
		func(ctx context.Context) error {
			refreshed, err := ratings.ResyncRatings(ctx)
			s.log.Info("Resort ratings resynced", zap.Int("resorts", refreshed))
			return err
		})
	if err != nil {
		return fmt.Errorf("register rating resync: %w", err)
	}

	return nil
}
