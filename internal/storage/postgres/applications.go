package postgres

import (
	"context"
	"fmt"

	"gigmatch/internal/models"
	"gigmatch/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationRepo implements the storage.ApplicationRepository interface using PostgreSQL.
type ApplicationRepo struct {
	db Querier
}

// NewApplicationRepo creates a new ApplicationRepo.
func NewApplicationRepo(db *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

// WithTx creates a new ApplicationRepo with the transaction.
func (r *ApplicationRepo) WithTx(tx pgx.Tx) storage.ApplicationRepository {
	return &ApplicationRepo{db: tx}
}

var _ storage.ApplicationRepository = (*ApplicationRepo)(nil)

const applicationColumns = `a.id, a.job_id, a.provider_id, a.status, a.message, a.created_at, a.updated_at`

func scanApplication(row pgx.Row, extra ...interface{}) (models.Application, error) {
	var a models.Application
	dest := []interface{}{&a.ID, &a.JobID, &a.ProviderID, &a.Status, &a.Message, &a.CreatedAt, &a.UpdatedAt}
	return a, row.Scan(append(dest, extra...)...)
}

func (r *ApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	app.CreatedAt = nowIfZero(app.CreatedAt)
	query := `
		INSERT INTO applications (id, job_id, provider_id, status, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, app.ID, app.JobID, app.ProviderID, app.Status, app.Message, app.CreatedAt).
		Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return mapPgError(err, "creating application")
	}
	return nil
}

func (r *ApplicationRepo) Get(ctx context.Context, jobID, providerID uuid.UUID) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications a WHERE a.job_id = $1 AND a.provider_id = $2`
	a, err := scanApplication(r.db.QueryRow(ctx, query, jobID, providerID))
	if err != nil {
		return nil, mapPgError(err, "getting application")
	}
	return &a, nil
}

// ListByJob returns the job's applications, oldest first, joined with the
// applicant's current profile.
func (r *ApplicationRepo) ListByJob(ctx context.Context, jobID uuid.UUID, status *models.ApplicationStatus) ([]models.ApplicationView, error) {
	conditions := []string{"a.job_id = $1"}
	args := []interface{}{jobID}
	if status != nil {
		args = append(args, *status)
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)))
	}
	baseQuery := `SELECT ` + applicationColumns + `,
		u.name, u.profile_image_url, u.rating, u.total_jobs, u.is_verified, u.skills
		FROM applications a JOIN users u ON u.id = a.provider_id`
	query := buildListQuery(baseQuery, conditions, &args, "a.created_at ASC, a.id", 0, 0)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "querying applications")
	}
	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ApplicationView, error) {
		var v models.ApplicationView
		p := &v.Provider
		a, err := scanApplication(row, &p.Name, &p.ProfileImageURL, &p.Rating, &p.TotalJobs, &p.IsVerified, &p.Skills)
		v.Application = a
		p.ID = a.ProviderID
		p.Skills = nonNil(p.Skills)
		return v, err
	})
	if err != nil {
		return nil, mapPgError(err, "scanning applications")
	}
	if views == nil {
		views = []models.ApplicationView{}
	}
	return views, nil
}

func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("updating application %s", id))
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepo) RejectByJob(ctx context.Context, jobID uuid.UUID, except *uuid.UUID, from []models.ApplicationStatus) (int64, error) {
	names := make([]string, len(from))
	for i, s := range from {
		names[i] = string(s)
	}
	query := `
		UPDATE applications SET status = 'rejected', updated_at = NOW()
		WHERE job_id = $1 AND status = ANY($2) AND ($3::uuid IS NULL OR id <> $3)
	`
	tag, err := r.db.Exec(ctx, query, jobID, names, except)
	if err != nil {
		return 0, mapPgError(err, fmt.Sprintf("rejecting applications of job %s", jobID))
	}
	return tag.RowsAffected(), nil
}
