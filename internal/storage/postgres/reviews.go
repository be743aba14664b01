package postgres

import (
	"context"

	"gigmatch/internal/models"
	"gigmatch/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepo implements the storage.ReviewRepository interface using PostgreSQL.
type ReviewRepo struct {
	db Querier
}

// NewReviewRepo creates a new ReviewRepo.
func NewReviewRepo(db *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// WithTx creates a new ReviewRepo with the transaction.
func (r *ReviewRepo) WithTx(tx pgx.Tx) storage.ReviewRepository {
	return &ReviewRepo{db: tx}
}

var _ storage.ReviewRepository = (*ReviewRepo)(nil)

func (r *ReviewRepo) Create(ctx context.Context, review *models.Review) error {
	review.CreatedAt = nowIfZero(review.CreatedAt)
	tags := nonNil(review.Tags)
	err := r.db.QueryRow(ctx, `
		INSERT INTO reviews (id, job_id, reviewer_id, reviewee_id, rating, comment, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		review.ID, review.JobID, review.ReviewerID, review.RevieweeID, review.Rating, review.Comment, tags, review.CreatedAt,
	).Scan(&review.CreatedAt)
	if err != nil {
		return mapPgError(err, "creating review")
	}
	return nil
}

func (r *ReviewRepo) ListByReviewee(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, job_id, reviewer_id, reviewee_id, rating, comment, tags, created_at
		FROM reviews WHERE reviewee_id = $1
		ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, mapPgError(err, "querying reviews")
	}
	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Review, error) {
		var rv models.Review
		err := row.Scan(&rv.ID, &rv.JobID, &rv.ReviewerID, &rv.RevieweeID, &rv.Rating, &rv.Comment, &rv.Tags, &rv.CreatedAt)
		rv.Tags = nonNil(rv.Tags)
		return rv, err
	})
	if err != nil {
		return nil, mapPgError(err, "scanning reviews")
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// Stats aggregates the reviews a user received. AverageRating is unrounded.
func (r *ReviewRepo) Stats(ctx context.Context, userID uuid.UUID) (*models.ReviewStats, error) {
	stats := &models.ReviewStats{Distribution: map[int]int{}, PopularTags: []models.TagCount{}}

	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM reviews WHERE reviewee_id = $1`, userID,
	).Scan(&stats.AverageRating, &stats.TotalReviews)
	if err != nil {
		return nil, mapPgError(err, "aggregating reviews")
	}
	if stats.TotalReviews == 0 {
		return stats, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT rating, COUNT(*) FROM reviews WHERE reviewee_id = $1 GROUP BY rating`, userID)
	if err != nil {
		return nil, mapPgError(err, "querying rating distribution")
	}
	buckets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([2]int, error) {
		var b [2]int
		err := row.Scan(&b[0], &b[1])
		return b, err
	})
	if err != nil {
		return nil, mapPgError(err, "scanning rating distribution")
	}
	for _, b := range buckets {
		stats.Distribution[b[0]] = b[1]
	}

	rows, err = r.db.Query(ctx, `
		SELECT tag, COUNT(*) AS n FROM reviews, unnest(tags) AS tag
		WHERE reviewee_id = $1
		GROUP BY tag ORDER BY n DESC, tag ASC LIMIT 5`, userID)
	if err != nil {
		return nil, mapPgError(err, "querying popular tags")
	}
	tags, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TagCount, error) {
		var tc models.TagCount
		err := row.Scan(&tc.Tag, &tc.Count)
		return tc, err
	})
	if err != nil {
		return nil, mapPgError(err, "scanning popular tags")
	}
	if tags != nil {
		stats.PopularTags = tags
	}
	return stats, nil
}
