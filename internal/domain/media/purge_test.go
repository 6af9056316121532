package media_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/domain/media"
)

type fakeDeleter struct {
	deleted []string
	errs    map[string]error
}

func (f *fakeDeleter) Delete(ctx context.Context, key string) error {
	if err := f.errs[key]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func strPtr(s string) *string { return &s }

func TestPurger_PurgeExpired(t *testing.T) {
	detachedAt := time.Now().Add(-31 * 24 * time.Hour)

	t.Run("deletes rows and orphaned objects", func(t *testing.T) {
		repo := &fakeRepo{
			detachedRows: []media.MediaFile{
				{ID: "mf_1", SourceKey: strPtr("a.jpg"), DetachedAt: &detachedAt},
				{ID: "mf_2", SourceKey: strPtr("b.jpg"), DetachedAt: &detachedAt},
			},
			activeCounts: map[string]int64{"b.jpg": 1},
		}
		store := &fakeDeleter{}
		purger := media.NewPurger(testConfig(), repo, store, zerolog.Nop())

		stats, err := purger.PurgeExpired(context.Background())
		if err != nil {
			t.Fatalf("PurgeExpired() error = %v", err)
		}
		if stats.RowsDeleted != 2 {
			t.Errorf("RowsDeleted = %d, want 2", stats.RowsDeleted)
		}
		// b.jpg is still referenced by an active row, so only a.jpg goes.
		if stats.ObjectsDeleted != 1 {
			t.Errorf("ObjectsDeleted = %d, want 1", stats.ObjectsDeleted)
		}
		if len(store.deleted) != 1 || store.deleted[0] != "a.jpg" {
			t.Errorf("deleted keys = %v, want [a.jpg]", store.deleted)
		}
	})

	t.Run("row without source key skips storage", func(t *testing.T) {
		repo := &fakeRepo{
			detachedRows: []media.MediaFile{
				{ID: "mf_1", DetachedAt: &detachedAt},
			},
		}
		store := &fakeDeleter{}
		purger := media.NewPurger(testConfig(), repo, store, zerolog.Nop())

		stats, err := purger.PurgeExpired(context.Background())
		if err != nil {
			t.Fatalf("PurgeExpired() error = %v", err)
		}
		if stats.RowsDeleted != 1 || stats.ObjectsDeleted != 0 {
			t.Errorf("stats = %+v, want 1 row, 0 objects", stats)
		}
	})

	t.Run("per-row failures are collected", func(t *testing.T) {
		repo := &fakeRepo{
			detachedRows: []media.MediaFile{
				{ID: "mf_1", SourceKey: strPtr("a.jpg"), DetachedAt: &detachedAt},
				{ID: "mf_2", SourceKey: strPtr("b.jpg"), DetachedAt: &detachedAt},
			},
			deleteErr:    map[string]error{"mf_1": errors.New("db down")},
			activeCounts: map[string]int64{},
		}
		store := &fakeDeleter{errs: map[string]error{"b.jpg": errors.New("store down")}}
		purger := media.NewPurger(testConfig(), repo, store, zerolog.Nop())

		stats, err := purger.PurgeExpired(context.Background())
		if err != nil {
			t.Fatalf("PurgeExpired() error = %v", err)
		}
		if stats.RowsDeleted != 1 {
			t.Errorf("RowsDeleted = %d, want 1", stats.RowsDeleted)
		}
		if stats.ObjectsDeleted != 0 {
			t.Errorf("ObjectsDeleted = %d, want 0", stats.ObjectsDeleted)
		}
		if len(stats.Failures) != 2 {
			t.Errorf("Failures = %v, want 2 entries", stats.Failures)
		}
	})
}

func TestMediaFile_PurgeDue(t *testing.T) {
	now := time.Now()
	grace := 30 * 24 * time.Hour

	old := now.Add(-31 * 24 * time.Hour)
	recent := now.Add(-time.Hour)

	tests := []struct {
		name string
		file media.MediaFile
		want bool
	}{
		{"active row", media.MediaFile{}, false},
		{"recently detached", media.MediaFile{DetachedAt: &recent}, false},
		{"past grace window", media.MediaFile{DetachedAt: &old}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.file.PurgeDue(grace, now); got != tt.want {
				t.Errorf("PurgeDue() = %v, want %v", got, tt.want)
			}
		})
	}
}
