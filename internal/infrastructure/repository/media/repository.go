package media

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/heavybid/auction-media/internal/domain/media"
	"github.com/heavybid/auction-media/internal/domain/reconcile"
	"github.com/heavybid/auction-media/internal/infrastructure/database/entities"
	"github.com/heavybid/auction-media/internal/utils/platformerrors"
)

// Repository handles media file persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateSource(ctx context.Context, file *domain.MediaFile) error {
	entity := mapDomain(file)
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create source file row",
			err,
			"3f7a1d5c-9e2b-4c6f-8a0d-4b1e7c3f9a5d",
		)
	}
	file.CreatedAt = entity.CreatedAt
	file.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.MediaFile, error) {
	var entity entities.MediaFile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"media file not found",
				err,
				"6b2d8f4a-1c7e-4a9d-b3f5-8e0c2a6d4f1b",
			)
		}
		return nil, r.dbError(ctx, "failed to get media file", err, "9a4f2c7d-5e1b-4d8a-a6c0-3f9b5d2e7a4c")
	}
	obj := mapEntity(entity)
	return &obj, nil
}

func (r *Repository) GetGroup(ctx context.Context, groupID string) ([]domain.MediaFile, error) {
	var rows []entities.MediaFile
	err := r.db.WithContext(ctx).
		Where("asset_group_id = ?", groupID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.dbError(ctx, "failed to load asset group", err, "2c8e4a6f-7b1d-4f3e-9d5a-0c7b2e8f4a6d")
	}
	return mapEntities(rows), nil
}

func (r *Repository) ListByItem(ctx context.Context, itemID string) ([]domain.MediaFile, error) {
	var rows []entities.MediaFile
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND detached_at IS NULL", itemID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.dbError(ctx, "failed to list files for item", err, "7d3f9b5e-2a8c-4e6d-b0f4-1a9c7e3d5b8f")
	}
	return mapEntities(rows), nil
}

// DetachGroup soft-deletes all rows of a group. The timestamp is overwritten
// on repeat calls, which makes detach idempotent from the caller's view.
func (r *Repository) DetachGroup(ctx context.Context, groupID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.MediaFile{}).
		Where("asset_group_id = ?", groupID).
		Updates(map[string]any{"detached_at": at, "updated_at": at})
	if res.Error != nil {
		return 0, r.dbError(ctx, "failed to detach asset group", res.Error, "4e9a2f7c-6d3b-4a1e-8c5f-9b0d4e6a2c7f")
	}
	return res.RowsAffected, nil
}

func (r *Repository) ListDetachedBefore(ctx context.Context, cutoff time.Time, origin string) ([]domain.MediaFile, error) {
	var rows []entities.MediaFile
	err := r.db.WithContext(ctx).
		Where("upload_source = ? AND detached_at IS NOT NULL AND detached_at < ?", origin, cutoff).
		Find(&rows).Error
	if err != nil {
		return nil, r.dbError(ctx, "failed to list purgeable rows", err, "8c5b1e9d-3f7a-4d2c-a4e6-7f0b9d5c1a3e")
	}
	return mapEntities(rows), nil
}

func (r *Repository) DeleteByID(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.MediaFile{}).Error; err != nil {
		return r.dbError(ctx, "failed to delete media file row", err, "1f6d3a8e-9c4b-4e7f-b2d0-5a8c1f3e6d9b")
	}
	return nil
}

// CountActiveBySourceKey counts non-detached rows referencing a storage key.
func (r *Repository) CountActiveBySourceKey(ctx context.Context, key string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.MediaFile{}).
		Where("source_key = ? AND detached_at IS NULL", key).
		Count(&count).Error
	if err != nil {
		return 0, r.dbError(ctx, "failed to count source key references", err, "5d2c7f4b-8e1a-4c9d-a3f6-0e7b5d2a8c4f")
	}
	return count, nil
}

// ListByOrigin projects all rows carrying the given origin marker into
// reconciliation records. Detached rows are included: they still occupy
// storage during the grace window and must not be misread as orphans.
func (r *Repository) ListByOrigin(ctx context.Context, origin string) ([]reconcile.Record, error) {
	var rows []entities.MediaFile
	err := r.db.WithContext(ctx).
		Where("upload_source = ? AND source_key IS NOT NULL", origin).
		Find(&rows).Error
	if err != nil {
		return nil, r.dbError(ctx, "failed to list files by origin", err, "0b9e5c2f-4a7d-4f1e-8d3a-6c2f9b0e5a7d")
	}

	records := make([]reconcile.Record, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		var size int64
		if row.SizeBytes != nil {
			size = *row.SizeBytes
		}
		records = append(records, reconcile.Record{
			FileID:   row.ID,
			Key:      *row.SourceKey,
			ItemID:   row.ItemID,
			Size:     size,
			Detached: row.DetachedAt != nil,
		})
	}
	return records, nil
}

func (r *Repository) ItemExists(ctx context.Context, itemID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.InventoryItem{}).
		Where("id = ?", itemID).
		Count(&count).Error
	if err != nil {
		return false, r.dbError(ctx, "failed to check item existence", err, "7a4d1f8c-2e9b-4b5d-9c0f-3e6a8d4f1b7c")
	}
	return count > 0, nil
}

// DeleteByKeyAndItem removes rows matched by (key, owner). A nil itemID
// matches with IS NULL; equality against NULL never matches, so the two
// predicates are not interchangeable.
func (r *Repository) DeleteByKeyAndItem(ctx context.Context, key string, itemID *string) error {
	query := r.db.WithContext(ctx).Where("source_key = ?", key)
	if itemID == nil {
		query = query.Where("item_id IS NULL")
	} else {
		query = query.Where("item_id = ?", *itemID)
	}
	if err := query.Delete(&entities.MediaFile{}).Error; err != nil {
		return r.dbError(ctx, "failed to delete orphaned rows", err, "3e8b6d1a-5f2c-4d7e-b9a4-0c3f7e1d8b5a")
	}
	return nil
}

func (r *Repository) dbError(ctx context.Context, message string, err error, uuid string) *platformerrors.PlatformError {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		message,
		err,
		uuid,
	)
}

func mapDomain(file *domain.MediaFile) entities.MediaFile {
	return entities.MediaFile{
		ID:            file.ID,
		ItemID:        file.ItemID,
		AssetGroupID:  file.AssetGroupID,
		Variant:       string(file.Variant),
		SourceKey:     file.SourceKey,
		ProcessedKey:  file.ProcessedKey,
		CDNUrl:        file.CDNUrl,
		OriginalName:  file.OriginalName,
		SizeBytes:     file.SizeBytes,
		MimeType:      file.MimeType,
		Width:         file.Width,
		Height:        file.Height,
		DurationSecs:  file.DurationSecs,
		PublishStatus: string(file.PublishStatus),
		Priority:      file.Priority,
		UploadSource:  file.UploadSource,
		DetachedAt:    file.DetachedAt,
	}
}

func mapEntity(entity entities.MediaFile) domain.MediaFile {
	return domain.MediaFile{
		ID:            entity.ID,
		ItemID:        entity.ItemID,
		AssetGroupID:  entity.AssetGroupID,
		Variant:       domain.Variant(entity.Variant),
		SourceKey:     entity.SourceKey,
		ProcessedKey:  entity.ProcessedKey,
		CDNUrl:        entity.CDNUrl,
		OriginalName:  entity.OriginalName,
		SizeBytes:     entity.SizeBytes,
		MimeType:      entity.MimeType,
		Width:         entity.Width,
		Height:        entity.Height,
		DurationSecs:  entity.DurationSecs,
		PublishStatus: domain.PublishStatus(entity.PublishStatus),
		Priority:      entity.Priority,
		UploadSource:  entity.UploadSource,
		DetachedAt:    entity.DetachedAt,
		CreatedAt:     entity.CreatedAt,
		UpdatedAt:     entity.UpdatedAt,
	}
}

func mapEntities(rows []entities.MediaFile) []domain.MediaFile {
	out := make([]domain.MediaFile, 0, len(rows))
	for i := range rows {
		out = append(out, mapEntity(rows[i]))
	}
	return out
}
