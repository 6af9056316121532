package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	"github.com/heavybid/auction-media/internal/domain/reconcile"
	"github.com/heavybid/auction-media/internal/domain/upload"
)

type fakeObjects struct {
	objects   []upload.ObjectInfo
	listErr   error
	existing  map[string]bool
	existsErr error
	deleted   []string
	deleteErr map[string]error
}

func (f *fakeObjects) List(ctx context.Context) ([]upload.ObjectInfo, error) {
	return f.objects, f.listErr
}

func (f *fakeObjects) Exists(ctx context.Context, key string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[key], nil
}

func (f *fakeObjects) Delete(ctx context.Context, key string) error {
	if err := f.deleteErr[key]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeMeta struct {
	records    []reconcile.Record
	listErr    error
	liveItems  map[string]bool
	deleted    []string
	deletedNil []string // keys deleted where itemID was nil
}

func (f *fakeMeta) ListByOrigin(ctx context.Context, origin string) ([]reconcile.Record, error) {
	return f.records, f.listErr
}

func (f *fakeMeta) ItemExists(ctx context.Context, itemID string) (bool, error) {
	return f.liveItems[itemID], nil
}

func (f *fakeMeta) DeleteByKeyAndItem(ctx context.Context, key string, itemID *string) error {
	if itemID == nil {
		f.deletedNil = append(f.deletedNil, key)
	} else {
		f.deleted = append(f.deleted, key)
	}
	return nil
}

func strPtr(s string) *string { return &s }

func reconcileConfig() *config.Config {
	return &config.Config{OriginMarker: "app"}
}

func newService(store *fakeObjects, meta *fakeMeta) *reconcile.Service {
	return reconcile.NewService(reconcileConfig(), store, meta, zerolog.Nop())
}

func TestService_BuildReport_Partition(t *testing.T) {
	store := &fakeObjects{objects: []upload.ObjectInfo{
		{Key: "known.jpg", Size: 100},
		{Key: "stray.jpg", Size: 50},
	}}
	meta := &fakeMeta{
		records: []reconcile.Record{
			{FileID: "mf_1", Key: "known.jpg", ItemID: strPtr("item-1"), Size: 100},
			{FileID: "mf_2", Key: "gone.jpg", ItemID: strPtr("item-1"), Size: 70},
			{FileID: "mf_3", Key: "orphan-owner.jpg", ItemID: strPtr("item-dead"), Size: 30},
			{FileID: "mf_4", Key: "floating.jpg", Size: 20},
		},
		liveItems: map[string]bool{"item-1": true},
	}

	report, err := newService(store, meta).BuildReport(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}

	if len(report.StorageOrphans) != 1 || report.StorageOrphans[0].Key != "stray.jpg" {
		t.Errorf("StorageOrphans = %v, want [stray.jpg]", report.StorageOrphans)
	}
	if len(report.Unassigned) != 1 || report.Unassigned[0].FileID != "mf_4" {
		t.Errorf("Unassigned = %v, want [mf_4]", report.Unassigned)
	}
	if len(report.DBOrphans) != 2 {
		t.Fatalf("DBOrphans = %v, want 2 entries", report.DBOrphans)
	}
	reasons := map[string]string{}
	for _, o := range report.DBOrphans {
		reasons[o.FileID] = o.Reason
	}
	if reasons["mf_3"] != "owner-deleted" {
		t.Errorf("mf_3 reason = %q, want owner-deleted", reasons["mf_3"])
	}
	if reasons["mf_2"] != "file-missing" {
		t.Errorf("mf_2 reason = %q, want file-missing", reasons["mf_2"])
	}

	// storage orphan (50) + unassigned (20)
	if report.WastedBytes != 70 {
		t.Errorf("WastedBytes = %d, want 70", report.WastedBytes)
	}
	if report.ScannedObjects != 2 || report.ScannedRecords != 4 {
		t.Errorf("scanned = %d/%d, want 2/4", report.ScannedObjects, report.ScannedRecords)
	}
}

func TestService_BuildReport_ListingFailure(t *testing.T) {
	meta := &fakeMeta{
		records: []reconcile.Record{
			{FileID: "mf_1", Key: "a.jpg", ItemID: strPtr("item-1"), Size: 10},
		},
		liveItems: map[string]bool{"item-1": true},
	}

	t.Run("downgrades to metadata-only checks", func(t *testing.T) {
		store := &fakeObjects{listErr: errors.New("store down")}
		report, err := newService(store, meta).BuildReport(context.Background(), reconcile.Options{})
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if !report.ListingFailed {
			t.Error("ListingFailed = false, want true")
		}
		// Without a listing there is no evidence either way; nothing may be
		// classified file-missing or storage-orphan.
		if len(report.StorageOrphans) != 0 || len(report.DBOrphans) != 0 {
			t.Errorf("orphans = %v / %v, want none", report.StorageOrphans, report.DBOrphans)
		}
	})

	t.Run("probe fallback finds missing files", func(t *testing.T) {
		store := &fakeObjects{listErr: errors.New("store down"), existing: map[string]bool{}}
		report, err := newService(store, meta).BuildReport(context.Background(), reconcile.Options{ProbeMissing: true})
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if len(report.DBOrphans) != 1 || report.DBOrphans[0].Reason != "file-missing" {
			t.Errorf("DBOrphans = %v, want one file-missing entry", report.DBOrphans)
		}
	})

	t.Run("metadata failure aborts", func(t *testing.T) {
		store := &fakeObjects{}
		badMeta := &fakeMeta{listErr: errors.New("db down")}
		if _, err := newService(store, badMeta).BuildReport(context.Background(), reconcile.Options{}); err == nil {
			t.Fatal("BuildReport() expected error")
		}
	})
}

func TestService_CleanupOrphanedFiles(t *testing.T) {
	t.Run("confirmation gate skips", func(t *testing.T) {
		store := &fakeObjects{}
		svc := newService(store, &fakeMeta{})

		confirm := func(key string) bool { return key != "keep.jpg" }
		result := svc.CleanupOrphanedFiles(context.Background(), []string{"a.jpg", "keep.jpg"}, confirm)

		if len(result.Deleted) != 1 || result.Deleted[0] != "a.jpg" {
			t.Errorf("Deleted = %v, want [a.jpg]", result.Deleted)
		}
		if len(result.Skipped) != 1 || result.Skipped[0] != "keep.jpg" {
			t.Errorf("Skipped = %v, want [keep.jpg]", result.Skipped)
		}
		if len(result.Failed) != 0 {
			t.Errorf("Failed = %v, want none", result.Failed)
		}
	})

	t.Run("one failure never blocks the rest", func(t *testing.T) {
		store := &fakeObjects{deleteErr: map[string]error{"bad.jpg": errors.New("denied")}}
		svc := newService(store, &fakeMeta{})

		result := svc.CleanupOrphanedFiles(context.Background(), []string{"bad.jpg", "ok.jpg"}, nil)
		if len(result.Deleted) != 1 || result.Deleted[0] != "ok.jpg" {
			t.Errorf("Deleted = %v, want [ok.jpg]", result.Deleted)
		}
		if len(result.Failed) != 1 || result.Failed[0].Key != "bad.jpg" {
			t.Errorf("Failed = %v, want [bad.jpg]", result.Failed)
		}
	})
}

func TestService_CleanupOrphanedDBRecords(t *testing.T) {
	meta := &fakeMeta{}
	svc := newService(&fakeObjects{}, meta)

	refs := []reconcile.RecordRef{
		{Key: "owned.jpg", ItemID: strPtr("item-1")},
		{Key: "floating.jpg"},
	}
	result := svc.CleanupOrphanedDBRecords(context.Background(), refs)

	if len(result.Deleted) != 2 {
		t.Fatalf("Deleted = %v, want 2 entries", result.Deleted)
	}
	if len(meta.deleted) != 1 || meta.deleted[0] != "owned.jpg" {
		t.Errorf("owner-matched deletes = %v, want [owned.jpg]", meta.deleted)
	}
	// The nil owner must flow through as nil so the store can use IS NULL.
	if len(meta.deletedNil) != 1 || meta.deletedNil[0] != "floating.jpg" {
		t.Errorf("null-owner deletes = %v, want [floating.jpg]", meta.deletedNil)
	}
}
