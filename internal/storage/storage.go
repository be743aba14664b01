package storage

import (
	"context"
	"time"

	"gigmatch/internal/geo"
	"gigmatch/internal/models"

	"github.com/google/uuid"
)

// UserFilter narrows a user listing. Zero values mean "any".
type UserFilter struct {
	Role      *models.Role
	Available *bool
	Skill     string
	Near      *geo.Point
	RadiusKm  float64
	Limit     int
	Offset    int
}

// UserUpdate carries the fields of a partial profile update. Nil fields are
// left untouched; Skills and PortfolioImages replace the stored lists.
type UserUpdate struct {
	Name            *string
	ProfileImageURL *string
	Location        *string
	Bio             *string
	Coordinates     *geo.Point
	IsAvailable     *bool
	Skills          *[]string
	PortfolioImages *[]string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.ProfileImageURL == nil && u.Location == nil && u.Bio == nil &&
		u.Coordinates == nil && u.IsAvailable == nil && u.Skills == nil && u.PortfolioImages == nil
}

// CounterDelta is added to a user's cumulative counters.
type CounterDelta struct {
	Jobs     int
	Earnings int64
	Spent    int64
}

// JobFilter narrows a job listing. Zero values mean "any".
type JobFilter struct {
	HirerID    *uuid.UUID
	ProviderID *uuid.UUID
	Category   string
	Status     *models.JobStatus
	IsUrgent   *bool
	Near       *geo.Point
	RadiusKm   float64
	Limit      int
	Offset     int
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.UserListing, error)
	Update(ctx context.Context, id uuid.UUID, update UserUpdate) (*models.User, error)
	AddCounters(ctx context.Context, id uuid.UUID, delta CounterDelta) error
	SetRating(ctx context.Context, id uuid.UUID, rating float64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// JobRepository defines the interface for job data operations.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	// GetForUpdate reads the job and holds it exclusively until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Job, error)
	List(ctx context.Context, filter JobFilter) ([]models.JobListing, error)
	// UpdateLifecycle persists status, assignment and lifecycle timestamps.
	UpdateLifecycle(ctx context.Context, job *models.Job) error
	SumBudgetForProvider(ctx context.Context, providerID uuid.UUID, statuses []models.JobStatus) (int64, error)
}

// ApplicationRepository defines the interface for application data operations.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	Get(ctx context.Context, jobID, providerID uuid.UUID) (*models.Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, status *models.ApplicationStatus) ([]models.ApplicationView, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error
	// RejectByJob moves every application of the job whose status is in
	// from to rejected, except the one with id except (if non-nil).
	RejectByJob(ctx context.Context, jobID uuid.UUID, except *uuid.UUID, from []models.ApplicationStatus) (int64, error)
}

// LedgerRepository defines the interface for ledger data operations.
type LedgerRepository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	GetByJob(ctx context.Context, jobID uuid.UUID) (*models.LedgerEntry, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.LedgerEntry, error)
	// ListWithdrawable returns completed entries with an unwithdrawn
	// remainder, oldest completion first, locked for the transaction.
	ListWithdrawable(ctx context.Context, providerID uuid.UUID) ([]models.LedgerEntry, error)
	MarkWithdrawn(ctx context.Context, id uuid.UUID, withdrawnAmount int64, withdrawnAt *time.Time) error
	CreateWithdrawal(ctx context.Context, w *models.Withdrawal) error
	ListWithdrawals(ctx context.Context, providerID uuid.UUID) ([]models.Withdrawal, error)
}

// ReviewRepository defines the interface for review data operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByReviewee(ctx context.Context, userID uuid.UUID) ([]models.Review, error)
	Stats(ctx context.Context, userID uuid.UUID) (*models.ReviewStats, error)
}

// Repositories groups the repositories that share one connection or transaction.
type Repositories interface {
	Users() UserRepository
	Jobs() JobRepository
	Applications() ApplicationRepository
	Ledger() LedgerRepository
	Reviews() ReviewRepository
}

// Store is the data-access contract the services are written against.
type Store interface {
	Repositories
	// RunInTx runs fn inside one unit of work. Any error returned by fn
	// discards every write fn made.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
	Ping(ctx context.Context) error
	Close()
}
