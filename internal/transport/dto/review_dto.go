package dto

import (
	"github.com/google/uuid"
)

// SubmitReviewRequest defines the structure for reviewing the other party of a job.
type SubmitReviewRequest struct {
	JobID      uuid.UUID `json:"-" validate:"required"` // From URL path
	ReviewerID uuid.UUID `json:"-"`                     // Set from user context
	Rating     int       `json:"rating" validate:"required,min=1,max=5"`
	Comment    string    `json:"comment" validate:"omitempty,max=1000"`
	Tags       []string  `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
}
