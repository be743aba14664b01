package postgres

import (
	"context"
	"fmt"
	"strings"

	"gigmatch/internal/models"
	"gigmatch/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// UserRepo implements the storage.UserRepository interface using PostgreSQL.
type UserRepo struct {
	db Querier
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

// WithTx creates a new UserRepo bound to the transaction.
func (r *UserRepo) WithTx(tx pgx.Tx) storage.UserRepository {
	return &UserRepo{db: tx}
}

// Compile-time check to ensure UserRepo implements UserRepository
var _ storage.UserRepository = (*UserRepo)(nil)

const userColumns = `u.id, u.phone, u.name, u.language, u.bio, u.profile_image_url, u.location,
	u.latitude, u.longitude, u.role, u.is_verified, u.rating, u.total_jobs,
	u.skills, u.portfolio_images, u.is_available, u.total_earnings, u.total_spent,
	u.created_at, u.updated_at`

// scanUser reads the userColumns (plus any extra trailing destinations).
func scanUser(row pgx.Row, extra ...interface{}) (models.User, error) {
	var (
		u               models.User
		lat, lon        *float64
		role            models.Role
		skills, images  []string
		available       bool
		earnings, spent int64
	)
	dest := []interface{}{
		&u.ID, &u.Phone, &u.Name, &u.Language, &u.Bio, &u.ProfileImageURL, &u.Location,
		&lat, &lon, &role, &u.IsVerified, &u.Rating, &u.TotalJobs,
		&skills, &images, &available, &earnings, &spent,
		&u.CreatedAt, &u.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return u, err
	}
	u.Coordinates = pointFrom(lat, lon)
	switch role {
	case models.RoleProvider:
		u.Profile = models.ProviderProfile{
			Skills:          nonNil(skills),
			PortfolioImages: nonNil(images),
			IsAvailable:     available,
			TotalEarnings:   earnings,
		}
	default:
		u.Profile = models.HirerProfile{TotalSpent: spent}
	}
	return u, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Create inserts a user of either role.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	var (
		skills, images = []string{}, []string{}
		available      bool
	)
	if p, ok := user.Provider(); ok {
		skills, images, available = nonNil(p.Skills), nonNil(p.PortfolioImages), p.IsAvailable
	}
	lat, lon := pointArgs(user.Coordinates)
	user.CreatedAt = nowIfZero(user.CreatedAt)

	query := `
		INSERT INTO users (id, phone, name, language, bio, profile_image_url, location,
			latitude, longitude, role, is_verified, skills, portfolio_images, is_available,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		user.ID, user.Phone, user.Name, user.Language, user.Bio, user.ProfileImageURL, user.Location,
		lat, lon, user.Role(), user.IsVerified, skills, images, available,
		user.CreatedAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return mapPgError(err, "creating user")
	}
	zap.L().Debug("user created", zap.Stringer("id", user.ID), zap.String("role", string(user.Role())))
	return nil
}

// GetByID retrieves a specific user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("getting user %s", id))
	}
	return &u, nil
}

// GetMany loads the users with the given IDs; unknown IDs are absent from the result.
func (r *UserRepo) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	out := make(map[uuid.UUID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, mapPgError(err, "querying users")
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, mapPgError(err, "scanning users")
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// List retrieves users matching the filter, nearest first when a point is given.
func (r *UserRepo) List(ctx context.Context, f storage.UserFilter) ([]models.UserListing, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if f.Role != nil {
		args = append(args, *f.Role)
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", len(args)))
	}
	if f.Available != nil {
		args = append(args, *f.Available)
		conditions = append(conditions, fmt.Sprintf("u.role = 'provider' AND u.is_available = $%d", len(args)))
	}
	if f.Skill != "" {
		args = append(args, f.Skill)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(u.skills)", len(args)))
	}
	distance := addNear("u", f.Near, f.RadiusKm, &conditions, &args)

	baseQuery := `SELECT ` + userColumns + `, ` + distance + ` AS distance_km FROM users u`
	query := buildListQuery(baseQuery, conditions, &args,
		"distance_km ASC NULLS LAST, u.rating DESC, u.created_at DESC, u.id", f.Offset, f.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "querying users")
	}
	listings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserListing, error) {
		var l models.UserListing
		u, err := scanUser(row, &l.DistanceKm)
		l.User = u
		return l, err
	})
	if err != nil {
		return nil, mapPgError(err, "scanning users")
	}
	if listings == nil {
		listings = []models.UserListing{} // Return empty slice, not nil
	}
	return listings, nil
}

// Update applies the non-nil fields. Provider-only fields are ignored for hirers.
func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, upd storage.UserUpdate) (*models.User, error) {
	var setClauses []string
	args := []interface{}{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	setProvider := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses,
			fmt.Sprintf("%[1]s = CASE WHEN role = 'provider' THEN $%[2]d ELSE %[1]s END", column, len(args)))
	}

	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.ProfileImageURL != nil {
		set("profile_image_url", *upd.ProfileImageURL)
	}
	if upd.Location != nil {
		set("location", *upd.Location)
	}
	if upd.Bio != nil {
		set("bio", *upd.Bio)
	}
	if upd.Coordinates != nil {
		set("latitude", upd.Coordinates.Latitude)
		set("longitude", upd.Coordinates.Longitude)
	}
	if upd.IsAvailable != nil {
		setProvider("is_available", *upd.IsAvailable)
	}
	if upd.Skills != nil {
		setProvider("skills", nonNil(*upd.Skills))
	}
	if upd.PortfolioImages != nil {
		setProvider("portfolio_images", nonNil(*upd.PortfolioImages))
	}
	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE users u
		SET %s
		WHERE u.id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), len(args), userColumns)

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("updating user %s", id))
	}
	return &u, nil
}

// AddCounters increments the job count and the role's money counter.
func (r *UserRepo) AddCounters(ctx context.Context, id uuid.UUID, delta storage.CounterDelta) error {
	query := `
		UPDATE users SET
			total_jobs = total_jobs + $2,
			total_earnings = total_earnings + CASE WHEN role = 'provider' THEN $3::bigint ELSE 0 END,
			total_spent = total_spent + CASE WHEN role = 'hirer' THEN $4::bigint ELSE 0 END,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, delta.Jobs, delta.Earnings, delta.Spent)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("updating counters of user %s", id))
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetRating(ctx context.Context, id uuid.UUID, rating float64) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET rating = $2, updated_at = NOW() WHERE id = $1`, id, rating)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("setting rating of user %s", id))
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes a user. Users still referenced by jobs or ledger entries
// cannot be deleted.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("deleting user %s", id))
	}
	if cmdTag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	zap.L().Debug("user deleted", zap.Stringer("id", id))
	return nil
}
