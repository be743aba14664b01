// internal/storage/postgres/jobs.go
package postgres

import (
	"context"
	"fmt"

	"gigmatch/internal/models"
	"gigmatch/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// JobRepo implements the storage.JobRepository interface using PostgreSQL.
type JobRepo struct {
	db Querier
}

// NewJobRepo creates a new JobRepo.
func NewJobRepo(db *pgxpool.Pool) *JobRepo {
	return &JobRepo{db: db}
}

// WithTx creates a new JobRepo with the transaction.
func (r *JobRepo) WithTx(tx pgx.Tx) storage.JobRepository {
	return &JobRepo{db: tx}
}

// Compile-time check to ensure JobRepo implements JobRepository
var _ storage.JobRepository = (*JobRepo)(nil)

const jobColumns = `j.id, j.hirer_id, j.title, j.description, j.category, j.budget, j.budget_type,
	j.location, j.latitude, j.longitude, j.is_urgent, j.status, j.assigned_provider_id,
	j.completion_pin, j.assigned_at, j.started_at, j.completed_at, j.cancelled_at,
	j.created_at, j.updated_at`

func scanJob(row pgx.Row, extra ...interface{}) (models.Job, error) {
	var (
		j        models.Job
		lat, lon *float64
	)
	dest := []interface{}{
		&j.ID, &j.HirerID, &j.Title, &j.Description, &j.Category, &j.Budget, &j.BudgetType,
		&j.Location, &lat, &lon, &j.IsUrgent, &j.Status, &j.AssignedProviderID,
		&j.CompletionPin, &j.AssignedAt, &j.StartedAt, &j.CompletedAt, &j.CancelledAt,
		&j.CreatedAt, &j.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return j, err
	}
	j.Coordinates = pointFrom(lat, lon)
	return j, nil
}

// Create saves a new job posting.
func (r *JobRepo) Create(ctx context.Context, job *models.Job) error {
	lat, lon := pointArgs(job.Coordinates)
	job.CreatedAt = nowIfZero(job.CreatedAt)

	query := `
		INSERT INTO jobs (id, hirer_id, title, description, category, budget, budget_type,
			location, latitude, longitude, is_urgent, status, completion_pin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		job.ID, job.HirerID, job.Title, job.Description, job.Category, job.Budget, job.BudgetType,
		job.Location, lat, lon, job.IsUrgent, job.Status, job.CompletionPin, job.CreatedAt,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return mapPgError(err, "creating job")
	}
	zap.L().Debug("job created", zap.Stringer("id", job.ID), zap.Stringer("hirer", job.HirerID))
	return nil
}

// GetByID retrieves a specific job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return r.get(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = $1`, id)
}

// GetForUpdate reads the job and locks its row until the transaction ends.
func (r *JobRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return r.get(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = $1 FOR UPDATE`, id)
}

func (r *JobRepo) get(ctx context.Context, query string, id uuid.UUID) (*models.Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("getting job %s", id))
	}
	return &j, nil
}

func (r *JobRepo) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Job, error) {
	out := make(map[uuid.UUID]*models.Job, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = ANY($1)`, ids)
	if err != nil {
		return nil, mapPgError(err, "querying jobs")
	}
	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Job, error) {
		return scanJob(row)
	})
	if err != nil {
		return nil, mapPgError(err, "scanning jobs")
	}
	for i := range jobs {
		out[jobs[i].ID] = &jobs[i]
	}
	return out, nil
}

// List retrieves jobs matching the filter with their application counts.
func (r *JobRepo) List(ctx context.Context, f storage.JobFilter) ([]models.JobListing, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if f.HirerID != nil {
		args = append(args, *f.HirerID)
		conditions = append(conditions, fmt.Sprintf("j.hirer_id = $%d", len(args)))
	}
	if f.ProviderID != nil {
		args = append(args, *f.ProviderID)
		conditions = append(conditions, fmt.Sprintf("j.assigned_provider_id = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conditions = append(conditions, fmt.Sprintf("j.category = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conditions = append(conditions, fmt.Sprintf("j.status = $%d", len(args)))
	}
	if f.IsUrgent != nil {
		args = append(args, *f.IsUrgent)
		conditions = append(conditions, fmt.Sprintf("j.is_urgent = $%d", len(args)))
	}
	distance := addNear("j", f.Near, f.RadiusKm, &conditions, &args)

	baseQuery := `SELECT ` + jobColumns + `,
		(SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id) AS application_count,
		` + distance + ` AS distance_km
		FROM jobs j`
	query := buildListQuery(baseQuery, conditions, &args,
		"j.is_urgent DESC, distance_km ASC NULLS LAST, j.created_at DESC, j.id", f.Offset, f.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "querying jobs")
	}
	listings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.JobListing, error) {
		var l models.JobListing
		j, err := scanJob(row, &l.ApplicationCount, &l.DistanceKm)
		l.Job = j
		return l, err
	})
	if err != nil {
		return nil, mapPgError(err, "scanning jobs")
	}
	if listings == nil {
		listings = []models.JobListing{} // Return empty slice, not nil
	}
	return listings, nil
}

// UpdateLifecycle persists the status, assignment and lifecycle timestamps.
func (r *JobRepo) UpdateLifecycle(ctx context.Context, job *models.Job) error {
	query := `
		UPDATE jobs
		SET status = $2, assigned_provider_id = $3, assigned_at = $4, started_at = $5,
			completed_at = $6, cancelled_at = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		job.ID, job.Status, job.AssignedProviderID, job.AssignedAt, job.StartedAt,
		job.CompletedAt, job.CancelledAt,
	).Scan(&job.UpdatedAt)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("updating job %s", job.ID))
	}
	zap.L().Debug("job lifecycle updated", zap.Stringer("id", job.ID), zap.String("status", string(job.Status)))
	return nil
}

func (r *JobRepo) SumBudgetForProvider(ctx context.Context, providerID uuid.UUID, statuses []models.JobStatus) (int64, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(budget), 0)::bigint FROM jobs WHERE assigned_provider_id = $1 AND status = ANY($2)`,
		providerID, names,
	).Scan(&total)
	if err != nil {
		return 0, mapPgError(err, "summing provider budgets")
	}
	return total, nil
}
