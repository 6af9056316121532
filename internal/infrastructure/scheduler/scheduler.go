package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	"github.com/heavybid/auction-media/internal/domain/media"
	"github.com/heavybid/auction-media/internal/infrastructure/metrics"
)

// Scheduler runs the periodic purge sweep on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	cfg    *config.Config
	purger *media.Purger
	log    zerolog.Logger
}

func New(cfg *config.Config, purger *media.Purger, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		cfg:    cfg,
		purger: purger,
		log:    log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the purge job and begins the cron loop. Returns without
// starting anything when the sweep is disabled.
func (s *Scheduler) Start() error {
	if !s.cfg.PurgeEnabled {
		s.log.Info().Msg("purge sweep disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.PurgeSchedule, s.runPurge); err != nil {
		return fmt.Errorf("register purge job: %w", err)
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.cfg.PurgeSchedule).Msg("purge sweep scheduled")
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.log.Warn().Msg("timed out waiting for running jobs to finish")
	}
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	stats, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("purge sweep failed")
		return
	}
	metrics.PurgedFilesTotal.Add(float64(stats.RowsDeleted))
}
