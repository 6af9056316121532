package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

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
	"github.com/heavybid/auction-media/internal/infrastructure/observability"
	mediarepo "github.com/heavybid/auction-media/internal/infrastructure/repository/media"
	publishrepo "github.com/heavybid/auction-media/internal/infrastructure/repository/publish"
	"github.com/heavybid/auction-media/internal/infrastructure/scheduler"
	"github.com/heavybid/auction-media/internal/infrastructure/storage"
	"github.com/heavybid/auction-media/internal/interfaces/httpserver"
	"github.com/heavybid/auction-media/internal/interfaces/httpserver/handlers"
)

// @title Auction Media API
// @version 1.0
// @description Media upload, attachment and publish monitoring for equipment listings
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	scheduler  *scheduler.Scheduler
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, sched *scheduler.Scheduler, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		scheduler:  sched,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	if err := a.scheduler.Start(); err != nil {
		return err
	}
	defer a.scheduler.Stop()
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.FromAppConfig(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	store, err := provideStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth")
	}

	mediaRepository := mediarepo.NewRepository(db)
	publishRepository := publishrepo.NewRepository(db)
	jobCache := cache.NewJobStatusCache(cfg, log)
	urls := cdn.NewBuilder(cfg)

	mediaService := domain.NewService(cfg, mediaRepository, publishRepository, urls, log)
	orchestrator := upload.NewOrchestrator(cfg, store, log)
	monitor := publish.NewMonitor(publishRepository, jobCache, log)
	reconciler := reconcile.NewService(cfg, store, mediaRepository, log)
	purger := domain.NewPurger(cfg, mediaRepository, store, log)

	handlerProvider := handlers.NewProvider(cfg, mediaService, orchestrator, monitor, reconciler, log)
	httpServer := httpserver.New(cfg, log, handlerProvider, store, authValidator)
	sched := scheduler.New(cfg, purger, log)

	app := NewApplication(httpServer, sched, log)
	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// provideStorage selects the object store backend from configuration. Drive
// is the default; S3 and local are opt-in.
func provideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (upload.ObjectStore, error) {
	switch {
	case cfg.IsLocalStorage():
		return storage.NewLocalStorage(cfg, log)
	case cfg.IsS3Storage():
		return storage.NewS3Storage(ctx, cfg, log)
	default:
		return storage.NewDriveStorage(cfg, log), nil
	}
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
