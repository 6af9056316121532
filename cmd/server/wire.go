//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/heavybid/auction-media/internal/config"
	domain "github.com/heavybid/auction-media/internal/domain/media"
	"github.com/heavybid/auction-media/internal/domain/publish"
	"github.com/heavybid/auction-media/internal/domain/reconcile"
	"github.com/heavybid/auction-media/internal/domain/upload"
	"github.com/heavybid/auction-media/internal/infrastructure/auth"
	"github.com/heavybid/auction-media/internal/infrastructure/cache"
	"github.com/heavybid/auction-media/internal/infrastructure/cdn"
	"github.com/heavybid/auction-media/internal/infrastructure/database"
	"github.com/heavybid/auction-media/internal/infrastructure/logger"
	mediarepo "github.com/heavybid/auction-media/internal/infrastructure/repository/media"
	publishrepo "github.com/heavybid/auction-media/internal/infrastructure/repository/publish"
	"github.com/heavybid/auction-media/internal/infrastructure/scheduler"
	"github.com/heavybid/auction-media/internal/interfaces/httpserver"
	"github.com/heavybid/auction-media/internal/interfaces/httpserver/handlers"
)

var repositorySet = wire.NewSet(
	mediarepo.NewRepository,
	wire.Bind(new(domain.Repository), new(*mediarepo.Repository)),
	wire.Bind(new(reconcile.MetadataStore), new(*mediarepo.Repository)),
	publishrepo.NewRepository,
	wire.Bind(new(publish.Repository), new(*publishrepo.Repository)),
	wire.Bind(new(domain.JobFinder), new(*publishrepo.Repository)),
)

var domainSet = wire.NewSet(
	cdn.NewBuilder,
	wire.Bind(new(domain.URLBuilder), new(*cdn.Builder)),
	cache.NewJobStatusCache,
	wire.Bind(new(publish.StatusCache), new(*cache.JobStatusCache)),
	domain.NewService,
	domain.NewPurger,
	upload.NewOrchestrator,
	publish.NewMonitor,
	reconcile.NewService,
)

// BuildApplication assembles the service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		auth.NewValidator,
		newGormDB,
		provideStorage,
		wire.Bind(new(domain.ObjectDeleter), new(upload.ObjectStore)),
		wire.Bind(new(reconcile.ObjectStore), new(upload.ObjectStore)),
		repositorySet,
		domainSet,
		handlers.NewProvider,
		httpserver.New,
		scheduler.New,
		NewApplication,
	)
	return nil, nil
}

func newGormDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(database.FromAppConfig(cfg))
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}
