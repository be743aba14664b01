package dto

import (
	"github.com/google/uuid"
)

// ApplyRequest defines the structure for applying to a job.
type ApplyRequest struct {
	JobID      uuid.UUID `json:"-" validate:"required"` // From URL path
	ProviderID uuid.UUID `json:"providerId"`            // Defaults to the caller
	UserID     uuid.UUID `json:"-"`                     // Set from user context
	Message    string    `json:"message" validate:"omitempty,max=1000"`
}

// ListApplicationsRequest defines parameters for listing a job's applications.
type ListApplicationsRequest struct {
	JobID  uuid.UUID `json:"-" validate:"required"`
	UserID uuid.UUID `json:"-"`
	Status string    `form:"status" validate:"omitempty,oneof=pending accepted rejected"`
}

// DecideApplicationRequest identifies one application for accept or reject.
type DecideApplicationRequest struct {
	JobID      uuid.UUID `json:"-" validate:"required"` // From URL path
	ProviderID uuid.UUID `json:"-" validate:"required"` // From URL path
	UserID     uuid.UUID `json:"-"`                     // Set from user context
}
