// Package scheduler runs the background maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/jon4hz/whispr/internal/config"
	"github.com/jon4hz/whispr/internal/database"
)

// Scheduler periodically purges unverified accounts whose verification code
// expired long ago, so abandoned signups don't squat on emails and usernames.
type Scheduler struct {
	gocron gocron.Scheduler
	db     database.DB
	cfg    *config.CleanupConfig
}

// New creates a new scheduler with the purge job registered.
func New(db database.DB, cfg *config.CleanupConfig) (*Scheduler, error) {
	gocronScheduler, err := gocron.NewScheduler(gocron.WithLogger(newLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	s := &Scheduler{
		gocron: gocronScheduler,
		db:     db,
		cfg:    cfg,
	}

	if cfg != nil && cfg.Enabled {
		_, err = gocronScheduler.NewJob(
			gocron.DurationJob(cfg.Interval),
			gocron.NewTask(s.purgeStaleUnverified),
			gocron.WithName("purge-stale-unverified"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to register purge job: %w", err)
		}
	}

	return s, nil
}

// Run starts the scheduler and blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.cfg == nil || !s.cfg.Enabled {
		log.Debug("Cleanup job is disabled")
		<-ctx.Done()
		return nil
	}

	log.Info("Starting job scheduler", "interval", s.cfg.Interval)
	s.gocron.Start()

	<-ctx.Done()
	return s.gocron.Shutdown()
}

func (s *Scheduler) purgeStaleUnverified() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.cfg.UnverifiedMaxAge)
	purged, err := s.db.PurgeStaleUnverifiedUsers(ctx, cutoff)
	if err != nil {
		log.Error("Failed to purge stale unverified users", "error", err)
		return
	}
	if purged > 0 {
		log.Info("Purged stale unverified users", "count", purged)
	}
}
