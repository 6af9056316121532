package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/domain/reconcile"
	"github.com/heavybid/auction-media/internal/infrastructure/metrics"
	"github.com/heavybid/auction-media/internal/interfaces/httpserver/requests"
	"github.com/heavybid/auction-media/internal/interfaces/httpserver/responses"
	"github.com/heavybid/auction-media/internal/utils/platformerrors"
)

// ReconcileHandler exposes the admin audit and cleanup surface.
type ReconcileHandler struct {
	service *reconcile.Service
	log     zerolog.Logger
}

func NewReconcileHandler(service *reconcile.Service, log zerolog.Logger) *ReconcileHandler {
	return &ReconcileHandler{
		service: service,
		log:     log.With().Str("component", "reconcile-handler").Logger(),
	}
}

// Report godoc
// @Summary      Build an orphan reconciliation report
// @Description  Read-only audit comparing the object store against the metadata store. Scoped to files this application uploaded; drive-picker files are never inspected.
// @Tags         admin
// @Produce      json
// @Param        probe  query     bool  false  "Probe each record with a HEAD request when the bulk listing failed"
// @Success      200    {object}  reconcile.Report
// @Failure      500    {object}  responses.ErrorResponse
// @Router       /v1/admin/reconcile [get]
func (h *ReconcileHandler) Report(c *gin.Context) {
	opts := reconcile.Options{ProbeMissing: c.Query("probe") == "true"}
	report, err := h.service.BuildReport(c.Request.Context(), opts)
	if err != nil {
		responses.HandleError(c, err, "reconciliation failed")
		return
	}
	metrics.RecordReconcileReport(len(report.StorageOrphans), len(report.DBOrphans), len(report.Unassigned))
	c.JSON(http.StatusOK, report)
}

// CleanupFiles godoc
// @Summary      Delete orphaned physical objects
// @Description  Destructive. Requires confirm=true in the body; unconfirmed keys are skipped, not failed.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      requests.CleanupFilesRequest  true  "Keys to delete"
// @Success      200      {object}  reconcile.CleanupResult
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/admin/reconcile/cleanup-files [post]
func (h *ReconcileHandler) CleanupFiles(c *gin.Context) {
	var req requests.CleanupFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(),
			"f2b8d6a4-0e9c-4a3f-b7d1-5c8e2f6a9d4b")
		return
	}

	confirm := func(string) bool { return req.Confirm }
	result := h.service.CleanupOrphanedFiles(c.Request.Context(), req.Keys, confirm)
	c.JSON(http.StatusOK, result)
}

// CleanupRecords godoc
// @Summary      Delete orphaned metadata rows
// @Description  Destructive. Rows are matched by (key, owner); a null owner is matched explicitly.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      requests.CleanupRecordsRequest  true  "Rows to delete"
// @Success      200      {object}  reconcile.CleanupResult
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/admin/reconcile/cleanup-records [post]
func (h *ReconcileHandler) CleanupRecords(c *gin.Context) {
	var req requests.CleanupRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(),
			"a9e3c7f1-4d6b-4f8a-9c2e-7b0d5a3f8e6c")
		return
	}

	result := h.service.CleanupOrphanedDBRecords(c.Request.Context(), req.ToDomain())
	c.JSON(http.StatusOK, result)
}
