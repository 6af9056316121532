package publish

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/utils/platformerrors"
)

// Repository defines the read-only persistence operations needed by the monitor.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Job, error)
	FindByFileID(ctx context.Context, fileID string) (*Job, error)
	ListRecent(ctx context.Context, limit int) ([]Job, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]Job, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// StatusCache caches job status lookups between poll cycles. Implementations
// must tolerate a nil receiver so the cache stays optional.
type StatusCache interface {
	GetStatus(ctx context.Context, jobID int64) (Status, bool)
	SetStatus(ctx context.Context, jobID int64, status Status)
}

// Monitor is the read-only view over publish jobs. The external worker owns
// every mutation; this service renders and polls.
type Monitor struct {
	repo  Repository
	cache StatusCache
	log   zerolog.Logger
}

func NewMonitor(repo Repository, cache StatusCache, log zerolog.Logger) *Monitor {
	return &Monitor{
		repo:  repo,
		cache: cache,
		log:   log.With().Str("component", "publish-monitor").Logger(),
	}
}

// Get returns one job by ID.
func (m *Monitor) Get(ctx context.Context, id int64) (*Job, error) {
	job, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			"publish job not found",
			nil,
			"e3b6a1f4-2c8d-4f0a-9b5e-7d1c3a9f6e2b",
		)
	}
	return job, nil
}

// Poll returns the current status of a job, consulting the cache first so
// tight UI poll loops do not hammer the metadata store.
func (m *Monitor) Poll(ctx context.Context, id int64) (Status, error) {
	if m.cache != nil {
		if status, ok := m.cache.GetStatus(ctx, id); ok {
			return status, nil
		}
	}
	job, err := m.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if m.cache != nil && !job.Status.IsTerminal() {
		m.cache.SetStatus(ctx, id, job.Status)
	}
	return job.Status, nil
}

// List returns recent jobs, optionally filtered by status.
func (m *Monitor) List(ctx context.Context, status Status, limit int) ([]Job, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if status == "" {
		return m.repo.ListRecent(ctx, limit)
	}
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
	default:
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"unknown job status filter",
			nil,
			"9f4c2d7e-1a6b-4e3f-8c0d-5b2a7e9f4c1d",
		)
	}
	return m.repo.ListByStatus(ctx, status, limit)
}

// Stats aggregates job counts by status.
func (m *Monitor) Stats(ctx context.Context) (*Stats, error) {
	counts, err := m.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Pending:    counts[StatusPending],
		Processing: counts[StatusProcessing],
		Completed:  counts[StatusCompleted],
		Failed:     counts[StatusFailed],
	}, nil
}
