package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/heavybid/auction-media/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under the /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	group.POST("/media/upload", r.handlers.Media.Upload)
	group.POST("/media/attach", r.handlers.Media.Attach)
	group.GET("/media/groups/:groupID", r.handlers.Media.GetGroup)
	group.DELETE("/media/groups/:groupID", r.handlers.Media.Detach)
	group.GET("/media/items/:itemID", r.handlers.Media.ListByItem)

	group.GET("/jobs", r.handlers.Jobs.List)
	group.GET("/jobs/stats", r.handlers.Jobs.Stats)
	group.GET("/jobs/:id", r.handlers.Jobs.Get)
	group.GET("/jobs/:id/status", r.handlers.Jobs.Poll)

	admin := group.Group("/admin")
	admin.GET("/reconcile", r.handlers.Reconcile.Report)
	admin.POST("/reconcile/cleanup-files", r.handlers.Reconcile.CleanupFiles)
	admin.POST("/reconcile/cleanup-records", r.handlers.Reconcile.CleanupRecords)
}
