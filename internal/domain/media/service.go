package media

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	"github.com/heavybid/auction-media/internal/domain/publish"
	"github.com/heavybid/auction-media/internal/domain/retry"
	"github.com/heavybid/auction-media/internal/infrastructure/metrics"
	"github.com/heavybid/auction-media/internal/utils/platformerrors"
	"github.com/heavybid/auction-media/utils/assetid"
)

// Repository defines persistence operations needed by the service.
type Repository interface {
	CreateSource(ctx context.Context, file *MediaFile) error
	GetByID(ctx context.Context, id string) (*MediaFile, error)
	GetGroup(ctx context.Context, groupID string) ([]MediaFile, error)
	ListByItem(ctx context.Context, itemID string) ([]MediaFile, error)
	DetachGroup(ctx context.Context, groupID string, at time.Time) (int64, error)
	ListDetachedBefore(ctx context.Context, cutoff time.Time, origin string) ([]MediaFile, error)
	DeleteByID(ctx context.Context, id string) error
	CountActiveBySourceKey(ctx context.Context, key string) (int64, error)
}

// JobFinder locates the publish job the metadata store is expected to create
// as a side effect of a source insert. Returns nil when no job exists yet.
type JobFinder interface {
	FindByFileID(ctx context.Context, fileID string) (*publish.Job, error)
}

// ObjectDeleter issues physical deletes against the object store.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// URLBuilder maps a processed storage key to a public CDN URL.
type URLBuilder interface {
	PublicURL(key string) string
}

// Service bridges uploaded physical files to asset groups and owning items.
type Service struct {
	cfg   *config.Config
	repo  Repository
	jobs  JobFinder
	urls  URLBuilder
	poll  retry.Policy
	log   zerolog.Logger
	clock func() time.Time
}

func NewService(cfg *config.Config, repo Repository, jobs JobFinder, urls URLBuilder, log zerolog.Logger) *Service {
	poll := retry.JobPollPolicy()
	if cfg.JobPollAttempts > 0 {
		poll.MaxRetries = cfg.JobPollAttempts
	}
	if cfg.JobPollBaseDelay > 0 {
		poll.InitialDelay = cfg.JobPollBaseDelay
	}
	if cfg.JobPollMaxDelay > 0 {
		poll.MaxDelay = cfg.JobPollMaxDelay
	}
	return &Service{
		cfg:   cfg,
		repo:  repo,
		jobs:  jobs,
		urls:  urls,
		poll:  poll,
		log:   log.With().Str("component", "media-service").Logger(),
		clock: time.Now,
	}
}

// Attach inserts a source MediaFile row for an uploaded storage key under a
// fresh asset group, then waits for the publish job the metadata store
// creates as a side effect. Job creation is an external collaborator: the
// insert is trusted to trigger it, and its absence after the poll budget is
// surfaced as an error rather than silently ignored.
func (s *Service) Attach(ctx context.Context, in AttachInput) (*MediaFile, *publish.Job, error) {
	if strings.TrimSpace(in.StorageKey) == "" {
		return nil, nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"storage key is required",
			nil,
			"4b8e2f1a-9c3d-4a7e-b5f0-6d2c8a1e9f3b",
		)
	}
	if strings.TrimSpace(in.OriginalName) == "" {
		return nil, nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"original file name is required",
			nil,
			"7c1d9e4f-2b6a-4c8d-a3e5-0f9b7d2c4a6e",
		)
	}

	now := s.clock()
	key := in.StorageKey
	file := &MediaFile{
		ID:            assetid.NewFile(),
		ItemID:        in.ItemID,
		AssetGroupID:  assetid.NewGroup(),
		Variant:       VariantSource,
		SourceKey:     &key,
		OriginalName:  in.OriginalName,
		SizeBytes:     in.SizeBytes,
		MimeType:      in.MimeType,
		PublishStatus: PublishPending,
		Priority:      in.Priority,
		UploadSource:  s.cfg.OriginMarker,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateSource(ctx, file); err != nil {
		return nil, nil, err
	}

	job, err := retry.ExecuteWithResult(ctx, s.poll, func(ctx context.Context, attempt int) (*publish.Job, error) {
		found, err := s.jobs.FindByFileID(ctx, file.ID)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, errJobNotYetCreated
		}
		metrics.JobPollAttempts.Observe(float64(attempt + 1))
		return found, nil
	})
	if err != nil {
		if err == errJobNotYetCreated {
			return nil, nil, platformerrors.NewErrorWithContext(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeExternal,
				"publish job was not created for source file",
				nil,
				"1e5a3c7d-8f2b-4d6e-9a0c-3b7f5d1e8c4a",
				map[string]any{"file_id": file.ID},
			)
		}
		return nil, nil, err
	}

	return file, job, nil
}

var errJobNotYetCreated = &jobNotYetCreatedError{}

type jobNotYetCreatedError struct{}

func (*jobNotYetCreatedError) Error() string { return "publish job not yet created" }

// Detach soft-deletes every row of an asset group. Never issues a physical
// delete; the purge sweep handles removal after the grace window. Detaching
// an already-detached group succeeds and overwrites the timestamp.
func (s *Service) Detach(ctx context.Context, groupID string) error {
	if !assetid.IsGroup(groupID) {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"malformed asset group id",
			nil,
			"6d9f2b4e-1c8a-4e3d-b7f5-9a0c6e2d8b4f",
		)
	}
	affected, err := s.repo.DetachGroup(ctx, groupID, s.clock())
	if err != nil {
		return err
	}
	if affected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			"asset group not found",
			nil,
			"2a7e5c9f-4d1b-4a8e-8c3f-6b9d0e7a2c5f",
		)
	}
	return nil
}

// GetGroup returns all variants of an asset group with CDN URLs filled in
// for published variants.
func (s *Service) GetGroup(ctx context.Context, groupID string) ([]MediaFile, error) {
	files, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			"asset group not found",
			nil,
			"8f3b6d1e-5a9c-4f2d-a0e7-4c8b2f6d9a1e",
		)
	}
	s.decorate(files)
	return files, nil
}

// ListByItem returns all active files referencing an inventory item.
func (s *Service) ListByItem(ctx context.Context, itemID string) ([]MediaFile, error) {
	files, err := s.repo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	s.decorate(files)
	return files, nil
}

func (s *Service) decorate(files []MediaFile) {
	if s.urls == nil {
		return
	}
	for i := range files {
		f := &files[i]
		if f.CDNUrl == nil && f.ProcessedKey != nil && f.PublishStatus == Published {
			url := s.urls.PublicURL(*f.ProcessedKey)
			f.CDNUrl = &url
		}
	}
}
