package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/domain/publish"
	"github.com/heavybid/auction-media/internal/interfaces/httpserver/responses"
	"github.com/heavybid/auction-media/internal/utils/platformerrors"
)

// JobHandler exposes the read-only publish-job monitoring surface.
type JobHandler struct {
	monitor *publish.Monitor
	log     zerolog.Logger
}

func NewJobHandler(monitor *publish.Monitor, log zerolog.Logger) *JobHandler {
	return &JobHandler{
		monitor: monitor,
		log:     log.With().Str("component", "job-handler").Logger(),
	}
}

// Get godoc
// @Summary      Get one publish job
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  responses.JobResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}
	job, err := h.monitor.Get(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "job lookup failed")
		return
	}
	c.JSON(http.StatusOK, responses.BuildJobResponse(job))
}

// Poll godoc
// @Summary      Poll a job's current status
// @Description  Cheap status-only endpoint intended for tight UI poll loops; answers from cache when possible.
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/jobs/{id}/status [get]
func (h *JobHandler) Poll(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}
	status, err := h.monitor.Poll(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "job poll failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(status)})
}

// List godoc
// @Summary      List recent publish jobs
// @Tags         jobs
// @Produce      json
// @Param        status  query    string  false  "Filter by status"
// @Param        limit   query    int     false  "Max rows (default 100, cap 500)"
// @Success      200     {array}  responses.JobResponse
// @Failure      400     {object} responses.ErrorResponse
// @Router       /v1/jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	jobs, err := h.monitor.List(c.Request.Context(), publish.Status(c.Query("status")), limit)
	if err != nil {
		responses.HandleError(c, err, "job listing failed")
		return
	}
	c.JSON(http.StatusOK, responses.BuildJobList(jobs))
}

// Stats godoc
// @Summary      Aggregate job counts by status
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  publish.Stats
// @Router       /v1/jobs/stats [get]
func (h *JobHandler) Stats(c *gin.Context) {
	stats, err := h.monitor.Stats(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "job stats failed")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *JobHandler) jobID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "job id must be an integer",
			"c7a1e5d9-3f8b-4b2e-9d6a-0f4c8e2b7d5a")
		return 0, false
	}
	return id, true
}
