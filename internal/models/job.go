package models

import (
	"time"

	"gigmatch/internal/geo"

	"github.com/google/uuid"
)

// Job is a posting owned by one hirer for its whole lifetime.
type Job struct {
	ID                 uuid.UUID  `json:"id"`
	HirerID            uuid.UUID  `json:"hirerId"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Budget             int64      `json:"budget"`
	BudgetType         BudgetType `json:"budgetType"`
	Location           string     `json:"location"`
	Coordinates        *geo.Point `json:"coordinates,omitempty"`
	IsUrgent           bool       `json:"isUrgent"`
	Status             JobStatus  `json:"status"`
	AssignedProviderID *uuid.UUID `json:"assignedProviderId,omitempty"`
	CompletionPin      string     `json:"-"`
	AssignedAt         *time.Time `json:"assignedAt,omitempty"`
	StartedAt          *time.Time `json:"startedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// IsParty reports whether userID is the hirer or the assigned provider.
func (j *Job) IsParty(userID uuid.UUID) bool {
	return j.HirerID == userID || j.IsAssignedTo(userID)
}

// IsAssignedTo reports whether userID is the assigned provider.
func (j *Job) IsAssignedTo(userID uuid.UUID) bool {
	return j.AssignedProviderID != nil && *j.AssignedProviderID == userID
}

// Searchable reports whether the job belongs in the job proximity index.
func (j *Job) Searchable() bool {
	return j.Status == JobStatusOpen && j.Coordinates != nil
}

// JobListing is a job row with the aggregates the listing endpoint shows.
type JobListing struct {
	Job
	ApplicationCount int      `json:"applicationCount"`
	DistanceKm       *float64 `json:"distanceKm,omitempty"`
}

// Application is one provider's bid on one job.
type Application struct {
	ID         uuid.UUID         `json:"id"`
	JobID      uuid.UUID         `json:"jobId"`
	ProviderID uuid.UUID         `json:"providerId"`
	Status     ApplicationStatus `json:"status"`
	Message    string            `json:"message"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// ApplicationView is an application joined with its provider at read time.
type ApplicationView struct {
	Application
	Provider ProviderSummary `json:"provider"`
}
