package handlers

import (
	"net/http"

	"gigmatch/internal/services"
	"gigmatch/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ApplicationHandler holds dependencies for job application operations.
type ApplicationHandler struct {
	service   services.ApplicationService
	validator *validator.Validate
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(service services.ApplicationService, validate *validator.Validate) *ApplicationHandler {
	return &ApplicationHandler{service: service, validator: validate}
}

// ApplyToJob records the caller's application to an open job.
func (h *ApplicationHandler) ApplyToJob(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ApplyRequest
	if !bindJSON(c, &req, true) {
		return
	}
	req.JobID = jobID
	req.UserID = userID
	if !validate(c, h.validator, req) {
		return
	}

	app, err := h.service.Apply(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// ListApplications lists a job's applications. The hirer sees all of them,
// an applicant only their own.
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ListApplicationsRequest
	if !bindQuery(c, &req) {
		return
	}
	req.JobID = jobID
	req.UserID = userID
	if !validate(c, h.validator, req) {
		return
	}

	apps, err := h.service.ListForJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// AcceptApplication accepts one pending application and assigns the job.
func (h *ApplicationHandler) AcceptApplication(c *gin.Context) {
	req, ok := h.decision(c)
	if !ok {
		return
	}

	job, err := h.service.Accept(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(job, req.UserID))
}

// RejectApplication rejects one pending application.
func (h *ApplicationHandler) RejectApplication(c *gin.Context) {
	req, ok := h.decision(c)
	if !ok {
		return
	}

	app, err := h.service.Reject(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) decision(c *gin.Context) (*dto.DecideApplicationRequest, bool) {
	userID, ok := callerID(c)
	if !ok {
		return nil, false
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return nil, false
	}
	providerID, ok := pathUUID(c, "providerId")
	if !ok {
		return nil, false
	}
	return &dto.DecideApplicationRequest{JobID: jobID, ProviderID: providerID, UserID: userID}, true
}
