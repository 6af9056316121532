package media_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	"github.com/heavybid/auction-media/internal/domain/media"
	"github.com/heavybid/auction-media/internal/domain/publish"
	"github.com/heavybid/auction-media/internal/utils/platformerrors"
	"github.com/heavybid/auction-media/utils/assetid"
)

func testConfig() *config.Config {
	return &config.Config{
		OriginMarker:     "app",
		GraceWindowDays:  30,
		JobPollAttempts:  3,
		JobPollBaseDelay: time.Millisecond,
		JobPollMaxDelay:  time.Millisecond,
	}
}

type fakeRepo struct {
	created      []*media.MediaFile
	group        []media.MediaFile
	byItem       []media.MediaFile
	detached     int64
	detachErr    error
	createErr    error
	detachedRows []media.MediaFile
	deleted      []string
	deleteErr    map[string]error
	activeCounts map[string]int64
}

func (f *fakeRepo) CreateSource(ctx context.Context, file *media.MediaFile) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, file)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*media.MediaFile, error) {
	return nil, nil
}

func (f *fakeRepo) GetGroup(ctx context.Context, groupID string) ([]media.MediaFile, error) {
	return f.group, nil
}

func (f *fakeRepo) ListByItem(ctx context.Context, itemID string) ([]media.MediaFile, error) {
	return f.byItem, nil
}

func (f *fakeRepo) DetachGroup(ctx context.Context, groupID string, at time.Time) (int64, error) {
	return f.detached, f.detachErr
}

func (f *fakeRepo) ListDetachedBefore(ctx context.Context, cutoff time.Time, origin string) ([]media.MediaFile, error) {
	return f.detachedRows, nil
}

func (f *fakeRepo) DeleteByID(ctx context.Context, id string) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) CountActiveBySourceKey(ctx context.Context, key string) (int64, error) {
	return f.activeCounts[key], nil
}

type fakeJobFinder struct {
	findAfter int
	calls     int
	job       *publish.Job
	err       error
}

func (f *fakeJobFinder) FindByFileID(ctx context.Context, fileID string) (*publish.Job, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls < f.findAfter {
		return nil, nil
	}
	return f.job, nil
}

type fakeURLs struct{}

func (fakeURLs) PublicURL(key string) string { return "https://cdn.example/" + key }

func TestService_Attach(t *testing.T) {
	job := &publish.Job{ID: 7, Status: publish.StatusPending}

	t.Run("job appears after polling", func(t *testing.T) {
		repo := &fakeRepo{}
		finder := &fakeJobFinder{findAfter: 3, job: job}
		svc := media.NewService(testConfig(), repo, finder, fakeURLs{}, zerolog.Nop())

		file, gotJob, err := svc.Attach(context.Background(), media.AttachInput{
			StorageKey:   "1732000000-photo.jpg",
			OriginalName: "photo.jpg",
		})
		if err != nil {
			t.Fatalf("Attach() error = %v", err)
		}
		if gotJob.ID != 7 {
			t.Errorf("job ID = %d, want 7", gotJob.ID)
		}
		if finder.calls != 3 {
			t.Errorf("poll calls = %d, want 3", finder.calls)
		}
		if !assetid.IsFile(file.ID) {
			t.Errorf("file ID %q is not a valid file id", file.ID)
		}
		if !assetid.IsGroup(file.AssetGroupID) {
			t.Errorf("group ID %q is not a valid group id", file.AssetGroupID)
		}
		if file.Variant != media.VariantSource {
			t.Errorf("variant = %q, want source", file.Variant)
		}
		if file.PublishStatus != media.PublishPending {
			t.Errorf("publish status = %q, want pending", file.PublishStatus)
		}
		if file.UploadSource != "app" {
			t.Errorf("upload source = %q, want app", file.UploadSource)
		}
		if len(repo.created) != 1 {
			t.Fatalf("created %d rows, want 1", len(repo.created))
		}
	})

	t.Run("missing storage key", func(t *testing.T) {
		svc := media.NewService(testConfig(), &fakeRepo{}, &fakeJobFinder{}, fakeURLs{}, zerolog.Nop())
		_, _, err := svc.Attach(context.Background(), media.AttachInput{OriginalName: "photo.jpg"})
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
			t.Fatalf("Attach() error = %v, want validation error", err)
		}
	})

	t.Run("missing original name", func(t *testing.T) {
		svc := media.NewService(testConfig(), &fakeRepo{}, &fakeJobFinder{}, fakeURLs{}, zerolog.Nop())
		_, _, err := svc.Attach(context.Background(), media.AttachInput{StorageKey: "k"})
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
			t.Fatalf("Attach() error = %v, want validation error", err)
		}
	})

	t.Run("job never created", func(t *testing.T) {
		finder := &fakeJobFinder{findAfter: 100}
		svc := media.NewService(testConfig(), &fakeRepo{}, finder, fakeURLs{}, zerolog.Nop())

		_, _, err := svc.Attach(context.Background(), media.AttachInput{
			StorageKey:   "1732000000-photo.jpg",
			OriginalName: "photo.jpg",
		})
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) {
			t.Fatalf("Attach() error = %v, want external error", err)
		}
		// initial attempt plus the configured retries
		if finder.calls != 4 {
			t.Errorf("poll calls = %d, want 4", finder.calls)
		}
	})

	t.Run("insert failure propagates", func(t *testing.T) {
		wantErr := errors.New("insert failed")
		svc := media.NewService(testConfig(), &fakeRepo{createErr: wantErr}, &fakeJobFinder{}, fakeURLs{}, zerolog.Nop())
		_, _, err := svc.Attach(context.Background(), media.AttachInput{
			StorageKey:   "k",
			OriginalName: "photo.jpg",
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("Attach() error = %v, want %v", err, wantErr)
		}
	})
}

func TestService_Detach(t *testing.T) {
	t.Run("malformed group id", func(t *testing.T) {
		svc := media.NewService(testConfig(), &fakeRepo{}, &fakeJobFinder{}, fakeURLs{}, zerolog.Nop())
		err := svc.Detach(context.Background(), "not-a-group")
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
			t.Fatalf("Detach() error = %v, want validation error", err)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		svc := media.NewService(testConfig(), &fakeRepo{detached: 0}, &fakeJobFinder{}, fakeURLs{}, zerolog.Nop())
		err := svc.Detach(context.Background(), assetid.NewGroup())
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			t.Fatalf("Detach() error = %v, want not found", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		svc := media.NewService(testConfig(), &fakeRepo{detached: 3}, &fakeJobFinder{}, fakeURLs{}, zerolog.Nop())
		if err := svc.Detach(context.Background(), assetid.NewGroup()); err != nil {
			t.Fatalf("Detach() error = %v", err)
		}
	})
}

func TestService_GetGroup(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc := media.NewService(testConfig(), &fakeRepo{}, &fakeJobFinder{}, fakeURLs{}, zerolog.Nop())
		_, err := svc.GetGroup(context.Background(), assetid.NewGroup())
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			t.Fatalf("GetGroup() error = %v, want not found", err)
		}
	})

	t.Run("fills cdn urls for published variants only", func(t *testing.T) {
		thumbKey := "thumb/abc.webp"
		repo := &fakeRepo{group: []media.MediaFile{
			{ID: "mf_1", Variant: media.VariantSource, PublishStatus: media.PublishPending},
			{ID: "mf_2", Variant: media.VariantThumbnail, ProcessedKey: &thumbKey, PublishStatus: media.Published},
		}}
		svc := media.NewService(testConfig(), repo, &fakeJobFinder{}, fakeURLs{}, zerolog.Nop())

		files, err := svc.GetGroup(context.Background(), assetid.NewGroup())
		if err != nil {
			t.Fatalf("GetGroup() error = %v", err)
		}
		if files[0].CDNUrl != nil {
			t.Errorf("pending variant got CDN URL %q", *files[0].CDNUrl)
		}
		if files[1].CDNUrl == nil || *files[1].CDNUrl != "https://cdn.example/thumb/abc.webp" {
			t.Errorf("published variant CDN URL = %v, want https://cdn.example/thumb/abc.webp", files[1].CDNUrl)
		}
	})
}
