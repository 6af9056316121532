package publish_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/domain/publish"
	"github.com/heavybid/auction-media/internal/utils/platformerrors"
)

type fakeJobRepo struct {
	jobs      map[int64]*publish.Job
	recent    []publish.Job
	byStatus  map[publish.Status][]publish.Job
	counts    map[publish.Status]int64
	getCalls  int
	lastLimit int
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id int64) (*publish.Job, error) {
	f.getCalls++
	return f.jobs[id], nil
}

func (f *fakeJobRepo) FindByFileID(ctx context.Context, fileID string) (*publish.Job, error) {
	return nil, nil
}

func (f *fakeJobRepo) ListRecent(ctx context.Context, limit int) ([]publish.Job, error) {
	f.lastLimit = limit
	return f.recent, nil
}

func (f *fakeJobRepo) ListByStatus(ctx context.Context, status publish.Status, limit int) ([]publish.Job, error) {
	f.lastLimit = limit
	return f.byStatus[status], nil
}

func (f *fakeJobRepo) CountByStatus(ctx context.Context) (map[publish.Status]int64, error) {
	return f.counts, nil
}

type memCache struct {
	values map[int64]publish.Status
	hits   int
	writes int
}

func (m *memCache) GetStatus(ctx context.Context, jobID int64) (publish.Status, bool) {
	status, ok := m.values[jobID]
	if ok {
		m.hits++
	}
	return status, ok
}

func (m *memCache) SetStatus(ctx context.Context, jobID int64, status publish.Status) {
	m.writes++
	m.values[jobID] = status
}

func TestMonitor_Get(t *testing.T) {
	repo := &fakeJobRepo{jobs: map[int64]*publish.Job{
		42: {ID: 42, Status: publish.StatusProcessing},
	}}
	monitor := publish.NewMonitor(repo, nil, zerolog.Nop())

	t.Run("found", func(t *testing.T) {
		job, err := monitor.Get(context.Background(), 42)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if job.Status != publish.StatusProcessing {
			t.Errorf("Status = %q, want processing", job.Status)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := monitor.Get(context.Background(), 99)
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			t.Fatalf("Get() error = %v, want not found", err)
		}
	})
}

func TestMonitor_Poll(t *testing.T) {
	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := &fakeJobRepo{jobs: map[int64]*publish.Job{}}
		cache := &memCache{values: map[int64]publish.Status{7: publish.StatusProcessing}}
		monitor := publish.NewMonitor(repo, cache, zerolog.Nop())

		status, err := monitor.Poll(context.Background(), 7)
		if err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		if status != publish.StatusProcessing {
			t.Errorf("status = %q, want processing", status)
		}
		if repo.getCalls != 0 {
			t.Errorf("repository called %d times, want 0", repo.getCalls)
		}
	})

	t.Run("cache miss caches non-terminal status", func(t *testing.T) {
		repo := &fakeJobRepo{jobs: map[int64]*publish.Job{
			7: {ID: 7, Status: publish.StatusPending},
		}}
		cache := &memCache{values: map[int64]publish.Status{}}
		monitor := publish.NewMonitor(repo, cache, zerolog.Nop())

		if _, err := monitor.Poll(context.Background(), 7); err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		if cache.writes != 1 {
			t.Errorf("cache writes = %d, want 1", cache.writes)
		}
	})

	t.Run("terminal status is not cached", func(t *testing.T) {
		repo := &fakeJobRepo{jobs: map[int64]*publish.Job{
			7: {ID: 7, Status: publish.StatusCompleted},
		}}
		cache := &memCache{values: map[int64]publish.Status{}}
		monitor := publish.NewMonitor(repo, cache, zerolog.Nop())

		if _, err := monitor.Poll(context.Background(), 7); err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		if cache.writes != 0 {
			t.Errorf("cache writes = %d, want 0", cache.writes)
		}
	})

	t.Run("works without a cache", func(t *testing.T) {
		repo := &fakeJobRepo{jobs: map[int64]*publish.Job{
			7: {ID: 7, Status: publish.StatusPending},
		}}
		monitor := publish.NewMonitor(repo, nil, zerolog.Nop())

		status, err := monitor.Poll(context.Background(), 7)
		if err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		if status != publish.StatusPending {
			t.Errorf("status = %q, want pending", status)
		}
	})
}

func TestMonitor_List(t *testing.T) {
	repo := &fakeJobRepo{
		recent: []publish.Job{{ID: 1}, {ID: 2}},
		byStatus: map[publish.Status][]publish.Job{
			publish.StatusFailed: {{ID: 3, Status: publish.StatusFailed}},
		},
	}
	monitor := publish.NewMonitor(repo, nil, zerolog.Nop())

	t.Run("no filter returns recent", func(t *testing.T) {
		jobs, err := monitor.List(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(jobs) != 2 {
			t.Errorf("jobs = %d, want 2", len(jobs))
		}
		if repo.lastLimit != 100 {
			t.Errorf("default limit = %d, want 100", repo.lastLimit)
		}
	})

	t.Run("limit is clamped", func(t *testing.T) {
		if _, err := monitor.List(context.Background(), "", 10000); err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if repo.lastLimit != 100 {
			t.Errorf("clamped limit = %d, want 100", repo.lastLimit)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		jobs, err := monitor.List(context.Background(), publish.StatusFailed, 10)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(jobs) != 1 || jobs[0].ID != 3 {
			t.Errorf("jobs = %v, want [3]", jobs)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := monitor.List(context.Background(), "sideways", 10)
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
			t.Fatalf("List() error = %v, want validation error", err)
		}
	})
}

func TestMonitor_Stats(t *testing.T) {
	repo := &fakeJobRepo{counts: map[publish.Status]int64{
		publish.StatusPending:   3,
		publish.StatusCompleted: 10,
	}}
	monitor := publish.NewMonitor(repo, nil, zerolog.Nop())

	stats, err := monitor.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Pending != 3 || stats.Completed != 10 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want pending=3 completed=10 failed=0", stats)
	}
}

func TestJob_Exhausted(t *testing.T) {
	tests := []struct {
		name string
		job  publish.Job
		want bool
	}{
		{"fresh", publish.Job{RetryCount: 0, MaxRetries: 3}, false},
		{"mid-flight", publish.Job{RetryCount: 2, MaxRetries: 3}, false},
		{"exhausted", publish.Job{RetryCount: 3, MaxRetries: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.job.Exhausted(); got != tt.want {
				t.Errorf("Exhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}
