package handlers

import (
	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	domain "github.com/heavybid/auction-media/internal/domain/media"
	"github.com/heavybid/auction-media/internal/domain/publish"
	"github.com/heavybid/auction-media/internal/domain/reconcile"
	"github.com/heavybid/auction-media/internal/domain/upload"
)

// Provider wires HTTP handlers.
type Provider struct {
	Media     *MediaHandler
	Jobs      *JobHandler
	Reconcile *ReconcileHandler
}

func NewProvider(
	cfg *config.Config,
	mediaService *domain.Service,
	orchestrator *upload.Orchestrator,
	monitor *publish.Monitor,
	reconciler *reconcile.Service,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Media:     NewMediaHandler(cfg, mediaService, orchestrator, log),
		Jobs:      NewJobHandler(monitor, log),
		Reconcile: NewReconcileHandler(reconciler, log),
	}
}
