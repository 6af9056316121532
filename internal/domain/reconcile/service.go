package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	"github.com/heavybid/auction-media/internal/domain/upload"
)

// ObjectStore is the slice of storage operations the reconciler needs.
type ObjectStore interface {
	List(ctx context.Context) ([]upload.ObjectInfo, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// MetadataStore is the slice of metadata operations the reconciler needs.
// ListByOrigin must return only rows carrying the given origin marker;
// DeleteByKeyAndItem must use an IS NULL predicate when itemID is nil.
type MetadataStore interface {
	ListByOrigin(ctx context.Context, origin string) ([]Record, error)
	ItemExists(ctx context.Context, itemID string) (bool, error)
	DeleteByKeyAndItem(ctx context.Context, key string, itemID *string) error
}

// Options tune one report run.
type Options struct {
	// ProbeMissing enables the per-record existence probe when the bulk
	// listing failed. One HEAD per row; slow on large tables.
	ProbeMissing bool
}

// ConfirmFunc gates each physical delete during cleanup. Returning false
// skips the key without recording a failure.
type ConfirmFunc func(key string) bool

// Service produces orphan reports and performs the destructive cleanups.
// Reports are read-only; only the Cleanup methods mutate anything. Scope is
// limited to rows carrying the configured origin marker — objects uploaded
// through the external drive-picker flow are never listed, classified, or
// deleted here.
type Service struct {
	store  ObjectStore
	meta   MetadataStore
	origin string
	log    zerolog.Logger
	clock  func() time.Time
}

func NewService(cfg *config.Config, store ObjectStore, meta MetadataStore, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		meta:   meta,
		origin: cfg.OriginMarker,
		log:    log.With().Str("component", "reconciler").Logger(),
		clock:  time.Now,
	}
}

// BuildReport computes a fresh audit. A failed physical listing is
// downgraded to proceed-with-empty-list so the database-side checks still
// run; only an unreachable metadata store aborts.
func (s *Service) BuildReport(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{GeneratedAt: s.clock()}

	objects, err := s.store.List(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("storage listing failed, continuing with metadata-only checks")
		report.ListingFailed = true
		objects = nil
	}
	report.ScannedObjects = len(objects)

	records, err := s.meta.ListByOrigin(ctx, s.origin)
	if err != nil {
		return nil, err
	}
	report.ScannedRecords = len(records)

	knownKeys := make(map[string]struct{}, len(records))
	for i := range records {
		knownKeys[records[i].Key] = struct{}{}
	}

	listedKeys := make(map[string]struct{}, len(objects))
	for i := range objects {
		listedKeys[objects[i].Key] = struct{}{}
		if _, ok := knownKeys[objects[i].Key]; !ok {
			report.StorageOrphans = append(report.StorageOrphans, StorageOrphan{
				Key:  objects[i].Key,
				Size: objects[i].Size,
			})
			report.WastedBytes += objects[i].Size
		}
	}

	for i := range records {
		rec := &records[i]

		if rec.ItemID == nil {
			report.Unassigned = append(report.Unassigned, UnassignedRecord{
				FileID: rec.FileID,
				Key:    rec.Key,
				Size:   rec.Size,
			})
			report.WastedBytes += rec.Size
			continue
		}

		exists, err := s.meta.ItemExists(ctx, *rec.ItemID)
		if err != nil {
			return nil, err
		}
		if !exists {
			report.DBOrphans = append(report.DBOrphans, DBOrphan{
				FileID: rec.FileID,
				Key:    rec.Key,
				ItemID: rec.ItemID,
				Size:   rec.Size,
				Reason: "owner-deleted",
			})
			continue
		}

		if !report.ListingFailed {
			if _, ok := listedKeys[rec.Key]; !ok {
				report.DBOrphans = append(report.DBOrphans, DBOrphan{
					FileID: rec.FileID,
					Key:    rec.Key,
					ItemID: rec.ItemID,
					Size:   rec.Size,
					Reason: "file-missing",
				})
			}
			continue
		}

		if opts.ProbeMissing {
			present, err := s.store.Exists(ctx, rec.Key)
			if err != nil {
				s.log.Warn().Err(err).Str("key", rec.Key).Msg("existence probe failed")
				continue
			}
			if !present {
				report.DBOrphans = append(report.DBOrphans, DBOrphan{
					FileID: rec.FileID,
					Key:    rec.Key,
					ItemID: rec.ItemID,
					Size:   rec.Size,
					Reason: "file-missing",
				})
			}
		}
	}

	s.log.Info().
		Int("storage_orphans", len(report.StorageOrphans)).
		Int("db_orphans", len(report.DBOrphans)).
		Int("unassigned", len(report.Unassigned)).
		Int64("wasted_bytes", report.WastedBytes).
		Bool("listing_failed", report.ListingFailed).
		Msg("reconciliation report built")

	return report, nil
}

// CleanupOrphanedFiles deletes physical objects. Each key passes through the
// optional confirmation gate; one failure never blocks the rest.
func (s *Service) CleanupOrphanedFiles(ctx context.Context, keys []string, confirm ConfirmFunc) *CleanupResult {
	result := &CleanupResult{}
	for _, key := range keys {
		if confirm != nil && !confirm(key) {
			result.Skipped = append(result.Skipped, key)
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			result.Failed = append(result.Failed, CleanupFailure{Key: key, Error: err.Error()})
			continue
		}
		result.Deleted = append(result.Deleted, key)
	}
	return result
}

// CleanupOrphanedDBRecords deletes metadata rows matched by (key, owner)
// pairs. Rows without an owner are matched with an explicit IS NULL
// predicate; equality against NULL never matches in SQL, so the distinction
// is load-bearing.
func (s *Service) CleanupOrphanedDBRecords(ctx context.Context, refs []RecordRef) *CleanupResult {
	result := &CleanupResult{}
	for _, ref := range refs {
		if err := s.meta.DeleteByKeyAndItem(ctx, ref.Key, ref.ItemID); err != nil {
			result.Failed = append(result.Failed, CleanupFailure{Key: ref.Key, Error: err.Error()})
			continue
		}
		result.Deleted = append(result.Deleted, ref.Key)
	}
	return result
}

// Summary renders a one-line human summary for CLI output.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d storage orphans, %d db orphans, %d unassigned, ~%d bytes wasted",
		len(r.StorageOrphans), len(r.DBOrphans), len(r.Unassigned), r.WastedBytes)
}
