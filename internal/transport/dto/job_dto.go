// internal/transport/dto/job_dto.go
package dto

import (
	"gigmatch/internal/geo"
	"gigmatch/internal/models"

	"github.com/google/uuid"
)

// CreateJobRequest defines the structure for posting a new job.
type CreateJobRequest struct {
	HirerID     uuid.UUID  `json:"hirerId"` // Defaults to the caller
	UserID      uuid.UUID  `json:"-"`       // Set from user context
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description" validate:"required,max=2000"`
	Category    string     `json:"category" validate:"required,max=50"`
	Budget      int64      `json:"budget" validate:"required,gt=0"`
	BudgetType  string     `json:"budgetType" validate:"required,oneof=fixed hourly"`
	Location    string     `json:"location" validate:"required,max=200"`
	Coordinates *geo.Point `json:"coordinates,omitempty"`
	IsUrgent    bool       `json:"isUrgent"`
}

// GetJobRequest defines the structure for getting a job by ID.
type GetJobRequest struct {
	ID     uuid.UUID `json:"-" validate:"required"`
	UserID uuid.UUID `json:"-"`
}

// ListJobsRequest defines the query parameters for listing jobs.
type ListJobsRequest struct {
	Latitude   *float64 `form:"latitude" validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude  *float64 `form:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	Radius     *float64 `form:"radius" validate:"omitempty,gt=0"`
	Category   string   `form:"category"`
	IsUrgent   *bool    `form:"isUrgent"`
	Status     string   `form:"status" validate:"omitempty,oneof=open assigned in_progress completed cancelled"`
	HirerID    string   `form:"hirerId" validate:"omitempty,uuid"`
	ProviderID string   `form:"providerId" validate:"omitempty,uuid"`
	Limit      int      `form:"limit,default=20" validate:"omitempty,gte=1,lte=100"`
	Offset     int      `form:"offset,default=0" validate:"omitempty,gte=0"`
}

// JobActionRequest identifies a job and the caller acting on it (start, cancel).
type JobActionRequest struct {
	JobID  uuid.UUID `json:"-" validate:"required"` // From URL path
	UserID uuid.UUID `json:"-"`                     // Set from user context
}

// CompleteJobRequest confirms completion with the hirer's PIN.
type CompleteJobRequest struct {
	JobID  uuid.UUID `json:"-" validate:"required"`
	UserID uuid.UUID `json:"-"`
	Pin    string    `json:"pin" validate:"required,len=4,numeric"`
}

// JobResponse is a job as shown to one caller. CompletionPin is only set for the hirer.
type JobResponse struct {
	models.Job
	CompletionPin *string `json:"completionPin,omitempty"`
}

// NewJobResponse maps a job for viewer, revealing the PIN to its hirer only.
func NewJobResponse(j *models.Job, viewer uuid.UUID) JobResponse {
	resp := JobResponse{Job: *j}
	if j.HirerID == viewer {
		pin := j.CompletionPin
		resp.CompletionPin = &pin
	}
	return resp
}

// JobListItem is one row of a job listing with the parties' summaries.
type JobListItem struct {
	models.JobListing
	Hirer    *models.ProviderSummary `json:"hirer,omitempty"`
	Provider *models.ProviderSummary `json:"provider,omitempty"`
}

// JobListResponse is a page of jobs.
type JobListResponse struct {
	Jobs    []JobListItem `json:"jobs"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"hasMore"`
}
