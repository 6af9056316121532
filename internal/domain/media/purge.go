package media

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
)

// Purger hard-deletes detached rows that have outlived the grace window,
// removing the physical object once no active row references its key.
// Only rows carrying this application's origin marker are considered; files
// attributed to the external drive-picker flow are never touched.
type Purger struct {
	cfg   *config.Config
	repo  Repository
	store ObjectDeleter
	log   zerolog.Logger
	clock func() time.Time
}

func NewPurger(cfg *config.Config, repo Repository, store ObjectDeleter, log zerolog.Logger) *Purger {
	return &Purger{
		cfg:   cfg,
		repo:  repo,
		store: store,
		log:   log.With().Str("component", "media-purger").Logger(),
		clock: time.Now,
	}
}

// PurgeExpired runs one sweep. Per-row failures are collected, never fatal;
// only an unreachable metadata store aborts the run.
func (p *Purger) PurgeExpired(ctx context.Context) (*PurgeStats, error) {
	cutoff := p.clock().Add(-p.cfg.GraceWindow())
	rows, err := p.repo.ListDetachedBefore(ctx, cutoff, p.cfg.OriginMarker)
	if err != nil {
		return nil, err
	}

	stats := &PurgeStats{}
	for i := range rows {
		row := &rows[i]
		if err := p.repo.DeleteByID(ctx, row.ID); err != nil {
			stats.Failures = append(stats.Failures, fmt.Sprintf("%s: %v", row.ID, err))
			continue
		}
		stats.RowsDeleted++

		if row.SourceKey == nil {
			continue
		}
		// The row is already gone, so an active count of zero means no other
		// group still references this key.
		active, err := p.repo.CountActiveBySourceKey(ctx, *row.SourceKey)
		if err != nil {
			stats.Failures = append(stats.Failures, fmt.Sprintf("%s: %v", *row.SourceKey, err))
			continue
		}
		if active > 0 {
			continue
		}
		if err := p.store.Delete(ctx, *row.SourceKey); err != nil {
			stats.Failures = append(stats.Failures, fmt.Sprintf("%s: %v", *row.SourceKey, err))
			continue
		}
		stats.ObjectsDeleted++
	}

	p.log.Info().
		Int("rows_deleted", stats.RowsDeleted).
		Int("objects_deleted", stats.ObjectsDeleted).
		Int("failures", len(stats.Failures)).
		Time("cutoff", cutoff).
		Msg("purge sweep finished")

	return stats, nil
}
