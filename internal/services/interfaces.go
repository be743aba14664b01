package services

import (
	"context"

	"gigmatch/internal/models"
	"gigmatch/internal/transport/dto"

	"github.com/google/uuid"
)

// UserService defines the interface for user-related business logic.
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, req *dto.ListUsersRequest) ([]models.UserListing, error)
	Update(ctx context.Context, req *dto.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, req *dto.DeleteUserRequest) error
}

// JobService defines the interface for the job lifecycle.
type JobService interface {
	Create(ctx context.Context, req *dto.CreateJobRequest) (*models.Job, error)
	Get(ctx context.Context, req *dto.GetJobRequest) (*models.Job, error)
	List(ctx context.Context, req *dto.ListJobsRequest) (*dto.JobListResponse, error)
	// Assign moves an open job to assigned without an application. Accepting
	// an application goes through the same transition.
	Assign(ctx context.Context, jobID, providerID uuid.UUID) (*models.Job, error)
	Start(ctx context.Context, req *dto.JobActionRequest) (*models.Job, error)
	Complete(ctx context.Context, req *dto.CompleteJobRequest) (*models.Job, error)
	Cancel(ctx context.Context, req *dto.JobActionRequest) (*models.Job, error)
}

// ApplicationService defines the interface for job application business logic.
type ApplicationService interface {
	Apply(ctx context.Context, req *dto.ApplyRequest) (*models.Application, error)
	ListForJob(ctx context.Context, req *dto.ListApplicationsRequest) ([]models.ApplicationView, error)
	Accept(ctx context.Context, req *dto.DecideApplicationRequest) (*models.Job, error) // Returns the assigned Job
	Reject(ctx context.Context, req *dto.DecideApplicationRequest) (*models.Application, error)
}

// LedgerService defines the interface for provider earnings.
type LedgerService interface {
	RecordCompletion(ctx context.Context, jobID uuid.UUID) (*models.LedgerEntry, error)
	Withdraw(ctx context.Context, req *dto.WithdrawRequest) (*dto.WithdrawalResponse, error)
	Summarize(ctx context.Context, providerID uuid.UUID) (*models.EarningsSummary, error)
	ListEntries(ctx context.Context, providerID uuid.UUID) ([]models.LedgerEntry, error)
	ListWithdrawals(ctx context.Context, providerID uuid.UUID) ([]models.Withdrawal, error)
}

// ReviewService defines the interface for post-completion reviews.
type ReviewService interface {
	Submit(ctx context.Context, req *dto.SubmitReviewRequest) (*models.Review, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error)
	Stats(ctx context.Context, userID uuid.UUID) (*models.ReviewStats, error)
}

// MatchingService answers proximity searches over the geo index.
type MatchingService interface {
	NearbyJobsForProvider(ctx context.Context, req *dto.NearbyRequest) ([]dto.NearbyJob, error)
	NearbyProvidersForHirer(ctx context.Context, req *dto.NearbyRequest) ([]dto.NearbyProvider, error)
	Reindex(ctx context.Context) error
}
