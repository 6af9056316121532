package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/heavybid/auction-media/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.InventoryItem{},
		&entities.MediaFile{},
		&entities.PublishJob{},
	); err != nil {
		return err
	}
	log.Info().Msg("applied media schema migrations")
	return nil
}
