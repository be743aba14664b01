package handlers

import (
	"net/http"

	"gigmatch/internal/services"
	"gigmatch/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// MatchingHandler serves the proximity searches.
type MatchingHandler struct {
	service   services.MatchingService
	validator *validator.Validate
}

// NewMatchingHandler creates a new MatchingHandler.
func NewMatchingHandler(service services.MatchingService, validate *validator.Validate) *MatchingHandler {
	return &MatchingHandler{service: service, validator: validate}
}

// NearbyJobs lists open jobs near the calling provider.
func (h *MatchingHandler) NearbyJobs(c *gin.Context) {
	req, ok := h.nearbyRequest(c)
	if !ok {
		return
	}
	jobs, err := h.service.NearbyJobsForProvider(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// NearbyProviders lists available providers near a point.
func (h *MatchingHandler) NearbyProviders(c *gin.Context) {
	req, ok := h.nearbyRequest(c)
	if !ok {
		return
	}
	providers, err := h.service.NearbyProvidersForHirer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, providers)
}

func (h *MatchingHandler) nearbyRequest(c *gin.Context) (*dto.NearbyRequest, bool) {
	userID, ok := callerID(c)
	if !ok {
		return nil, false
	}
	var req dto.NearbyRequest
	if !bindQuery(c, &req) || !validate(c, h.validator, req) {
		return nil, false
	}
	req.UserID = userID
	return &req, true
}
