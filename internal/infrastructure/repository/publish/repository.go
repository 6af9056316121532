package publish

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/heavybid/auction-media/internal/domain/publish"
	"github.com/heavybid/auction-media/internal/infrastructure/database/entities"
	"github.com/heavybid/auction-media/internal/utils/platformerrors"
)

// Repository handles read-only publish job persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	var entity entities.PublishJob
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, r.dbError(ctx, "failed to get publish job", err, "b4e7a2d9-6c1f-4d8b-9e3a-5f0c7b4d2e8a")
	}
	job := mapEntity(entity)
	return &job, nil
}

// FindByFileID returns the newest job for a source file, or nil when none
// exists yet. The attach flow polls this.
func (r *Repository) FindByFileID(ctx context.Context, fileID string) (*domain.Job, error) {
	var entity entities.PublishJob
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("created_at DESC").
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, r.dbError(ctx, "failed to find job by file", err, "d8c2f5a1-3e9b-4a6d-8f0c-7b4e1d9a5c2f")
	}
	job := mapEntity(entity)
	return &job, nil
}

func (r *Repository) ListRecent(ctx context.Context, limit int) ([]domain.Job, error) {
	var rows []entities.PublishJob
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.dbError(ctx, "failed to list jobs", err, "a1f8d4c7-9b2e-4c5f-b6d0-3a7e9f1c8d4b")
	}
	return mapEntities(rows), nil
}

func (r *Repository) ListByStatus(ctx context.Context, status domain.Status, limit int) ([]domain.Job, error) {
	var rows []entities.PublishJob
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.dbError(ctx, "failed to list jobs by status", err, "f6b3e9d2-4a8c-4f1d-a7e5-0d2b8f6a3c9e")
	}
	return mapEntities(rows), nil
}

func (r *Repository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&entities.PublishJob{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, r.dbError(ctx, "failed to count jobs by status", err, "c9d5a3f8-1e7b-4b2d-9c4a-6f8e0d3b5a7c")
	}
	counts := make(map[domain.Status]int64, len(rows))
	for _, row := range rows {
		counts[domain.Status(row.Status)] = row.Count
	}
	return counts, nil
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

func mapEntity(entity entities.PublishJob) domain.Job {
	return domain.Job{
		ID:           entity.ID,
		FileID:       entity.FileID,
		AssetGroupID: entity.AssetGroupID,
		Status:       domain.Status(entity.Status),
		Priority:     entity.Priority,
		RetryCount:   entity.RetryCount,
		MaxRetries:   entity.MaxRetries,
		ErrorMessage: entity.ErrorMessage,
		StartedAt:    entity.StartedAt,
		CompletedAt:  entity.CompletedAt,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
}

func mapEntities(rows []entities.PublishJob) []domain.Job {
	out := make([]domain.Job, 0, len(rows))
	for i := range rows {
		out = append(out, mapEntity(rows[i]))
	}
	return out
}
