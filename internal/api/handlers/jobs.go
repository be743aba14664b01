package handlers

import (
	"context"
	"net/http"

	"gigmatch/internal/models"
	"gigmatch/internal/services"
	"gigmatch/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// JobHandler holds dependencies for job operations.
type JobHandler struct {
	service   services.JobService
	validator *validator.Validate
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(service services.JobService, validate *validator.Validate) *JobHandler {
	return &JobHandler{
		service:   service,
		validator: validate,
	}
}

// CreateJob posts a new job. The hirer is the caller; the response carries the
// completion PIN.
func (h *JobHandler) CreateJob(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CreateJobRequest
	if !bindJSON(c, &req, false) || !validate(c, h.validator, req) {
		return
	}
	req.UserID = userID

	job, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewJobResponse(job, userID))
}

// ListJobs pages through jobs. Without a status filter only open jobs are listed.
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if !bindQuery(c, &req) || !validate(c, h.validator, req) {
		return
	}

	page, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetJobByID returns one job. Only its hirer sees the completion PIN.
func (h *JobHandler) GetJobByID(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	job, err := h.service.Get(c.Request.Context(), &dto.GetJobRequest{ID: jobID, UserID: userID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(job, userID))
}

// StartJob moves an assigned job to in_progress.
func (h *JobHandler) StartJob(c *gin.Context) {
	h.act(c, h.service.Start)
}

// CancelJob cancels an open or assigned job.
func (h *JobHandler) CancelJob(c *gin.Context) {
	h.act(c, h.service.Cancel)
}

// CompleteJob confirms completion with the hirer's PIN.
func (h *JobHandler) CompleteJob(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CompleteJobRequest
	if !bindJSON(c, &req, false) {
		return
	}
	req.JobID = jobID
	req.UserID = userID
	if !validate(c, h.validator, req) {
		return
	}

	job, err := h.service.Complete(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(job, userID))
}

func (h *JobHandler) act(c *gin.Context, fn func(ctx context.Context, req *dto.JobActionRequest) (*models.Job, error)) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	job, err := fn(c.Request.Context(), &dto.JobActionRequest{JobID: jobID, UserID: userID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(job, userID))
}
