package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
	domain "github.com/heavybid/auction-media/internal/domain/media"
	"github.com/heavybid/auction-media/internal/domain/upload"
	"github.com/heavybid/auction-media/internal/infrastructure/metrics"
	"github.com/heavybid/auction-media/internal/interfaces/httpserver/requests"
	"github.com/heavybid/auction-media/internal/interfaces/httpserver/responses"
	"github.com/heavybid/auction-media/internal/utils/platformerrors"
)

// MediaHandler exposes upload and asset-group endpoints.
type MediaHandler struct {
	cfg          *config.Config
	service      *domain.Service
	orchestrator *upload.Orchestrator
	log          zerolog.Logger
}

func NewMediaHandler(cfg *config.Config, service *domain.Service, orchestrator *upload.Orchestrator, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		cfg:          cfg,
		service:      service,
		orchestrator: orchestrator,
		log:          log.With().Str("component", "media-handler").Logger(),
	}
}

// Upload godoc
// @Summary      Upload files to the object store
// @Description  Accepts multipart files and transfers them to the object store in fixed-size batches. A failed batch is reported per file; remaining batches still run.
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "Files to upload"
// @Success      200    {object}  responses.UploadResponse
// @Failure      400    {object}  responses.ErrorResponse
// @Router       /v1/media/upload [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "multipart form is required",
			"3d7f1b9e-6c2a-4e8d-b0f5-9a4c7e1d3b6f")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "no files provided",
			"8b2e6d4f-1a9c-4f7e-8d3b-0c5a9f2e6d1b")
		return
	}

	files := make([]upload.FileUpload, 0, len(headers))
	for _, header := range headers {
		opened, err := header.Open()
		if err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "failed to read "+header.Filename,
				"5f9c3a7e-2d8b-4b1f-a6e0-7c4d9b2f5a8e")
			return
		}
		content, err := io.ReadAll(opened)
		opened.Close()
		if err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "failed to read "+header.Filename,
				"0a6e4d8c-9f3b-4c7d-b2a5-1e8f6c0d4b9a")
			return
		}
		files = append(files, upload.FileUpload{
			Name:     header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Content:  content,
		})
	}

	result, err := h.orchestrator.Upload(c.Request.Context(), files, func(done, total int) {
		h.log.Debug().Int("done", done).Int("total", total).Msg("upload progress")
	})
	if err != nil {
		responses.HandleError(c, err, "upload failed")
		return
	}
	for i := range result.Stored {
		metrics.RecordUpload(result.Stored[i].MimeType, "success", result.Stored[i].Size)
	}
	for range result.Errors {
		metrics.RecordUpload("unknown", "error", 0)
	}

	c.JSON(http.StatusOK, responses.BuildUploadResponse(result))
}

// Attach godoc
// @Summary      Attach an uploaded file to a new asset group
// @Description  Creates the source metadata row and waits for the publish job the metadata store creates for it.
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        request  body      requests.AttachRequest  true  "Attach request"
// @Success      201      {object}  responses.AttachResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      502      {object}  responses.ErrorResponse
// @Router       /v1/media/attach [post]
func (h *MediaHandler) Attach(c *gin.Context) {
	var req requests.AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(),
			"b4d8f2a6-7e1c-4d9b-a3f0-6c2e8b5d1f7a")
		return
	}

	file, job, err := h.service.Attach(c.Request.Context(), req.ToDomain())
	if err != nil {
		responses.HandleError(c, err, "attach failed")
		return
	}

	c.JSON(http.StatusCreated, responses.AttachResponse{
		File: responses.BuildMediaFileResponse(file),
		Job:  responses.BuildJobResponse(job),
	})
}

// Detach godoc
// @Summary      Detach an asset group
// @Description  Soft-deletes every variant of the group. Physical removal happens after the grace window.
// @Tags         media
// @Produce      json
// @Param        groupID  path  string  true  "Asset group ID"
// @Success      204
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/media/groups/{groupID} [delete]
func (h *MediaHandler) Detach(c *gin.Context) {
	if err := h.service.Detach(c.Request.Context(), c.Param("groupID")); err != nil {
		responses.HandleError(c, err, "detach failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetGroup godoc
// @Summary      Get all variants of an asset group
// @Tags         media
// @Produce      json
// @Param        groupID  path      string  true  "Asset group ID"
// @Success      200      {array}   responses.MediaFileResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Router       /v1/media/groups/{groupID} [get]
func (h *MediaHandler) GetGroup(c *gin.Context) {
	files, err := h.service.GetGroup(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		responses.HandleError(c, err, "group lookup failed")
		return
	}
	c.JSON(http.StatusOK, responses.BuildMediaFileList(files))
}

// ListByItem godoc
// @Summary      List active media attached to an inventory item
// @Tags         media
// @Produce      json
// @Param        itemID  path     string  true  "Inventory item ID"
// @Success      200     {array}  responses.MediaFileResponse
// @Router       /v1/media/items/{itemID} [get]
func (h *MediaHandler) ListByItem(c *gin.Context) {
	files, err := h.service.ListByItem(c.Request.Context(), c.Param("itemID"))
	if err != nil {
		responses.HandleError(c, err, "item media lookup failed")
		return
	}
	c.JSON(http.StatusOK, responses.BuildMediaFileList(files))
}
