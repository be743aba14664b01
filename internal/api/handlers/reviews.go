package handlers

import (
	"net/http"

	"gigmatch/internal/services"
	"gigmatch/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ReviewHandler holds dependencies for review operations.
type ReviewHandler struct {
	service   services.ReviewService
	validator *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service services.ReviewService, validate *validator.Validate) *ReviewHandler {
	return &ReviewHandler{service: service, validator: validate}
}

// SubmitReview reviews the other party of a completed job.
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.SubmitReviewRequest
	if !bindJSON(c, &req, false) {
		return
	}
	req.JobID = jobID
	req.ReviewerID = userID
	if !validate(c, h.validator, req) {
		return
	}

	review, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// ListUserReviews lists reviews received by a user.
func (h *ReviewHandler) ListUserReviews(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.service.ListForUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// GetUserReviewStats aggregates the reviews received by a user.
func (h *ReviewHandler) GetUserReviewStats(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
