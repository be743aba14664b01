package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"gigmatch/internal/models"
	"gigmatch/internal/storage"
	"gigmatch/internal/transport/dto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type reviewService struct {
	store storage.Store
	cfg   Settings
}

// NewReviewService creates a new instance of ReviewService.
func NewReviewService(store storage.Store, cfg Settings) ReviewService {
	return &reviewService{store: store, cfg: cfg}
}

// roundRating rounds to one decimal place.
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func (s *reviewService) Submit(ctx context.Context, req *dto.SubmitReviewRequest) (review *models.Review, err error) {
	ctx, span, log := startSpan(ctx, "ReviewService.Submit",
		attribute.String("job.id", req.JobID.String()), attribute.String("reviewer.id", req.ReviewerID.String()))
	defer func() { endSpan(span, err) }()

	if req.Rating < 1 || req.Rating > 5 {
		return nil, validationError("rating must be between 1 and 5")
	}
	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		tags = append(tags, strings.ToLower(strings.TrimSpace(t)))
	}

	err = inTx(ctx, s.store, "submitting review", func(ctx context.Context, tx storage.Repositories) error {
		job, err := tx.Jobs().GetByID(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if job.Status != models.JobStatusCompleted {
			return fmt.Errorf("%w: only completed jobs can be reviewed", ErrInvalidTransition)
		}
		if !job.IsParty(req.ReviewerID) {
			return fmt.Errorf("%w: only the job's parties may review it", ErrForbidden)
		}
		reviewee := job.HirerID
		if reviewee == req.ReviewerID {
			reviewee = *job.AssignedProviderID
		}

		review = &models.Review{
			ID:         uuid.New(),
			JobID:      job.ID,
			ReviewerID: req.ReviewerID,
			RevieweeID: reviewee,
			Rating:     req.Rating,
			Comment:    strings.TrimSpace(req.Comment),
			Tags:       models.NormalizeSkills(tags),
			CreatedAt:  s.cfg.now(),
		}
		if err := tx.Reviews().Create(ctx, review); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return fmt.Errorf("%w: job already reviewed by this user", ErrConflict)
			}
			return mapRepoError(err, "creating review")
		}

		stats, err := tx.Reviews().Stats(ctx, reviewee)
		if err != nil {
			return mapRepoError(err, "computing review stats")
		}
		if err := tx.Users().SetRating(ctx, reviewee, roundRating(stats.AverageRating)); err != nil {
			return mapRepoError(err, "updating rating")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("review submitted", zap.Stringer("job", review.JobID),
		zap.Stringer("reviewee", review.RevieweeID), zap.Int("rating", review.Rating))
	return review, nil
}

func (s *reviewService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching user %s", userID))
	}
	reviews, err := s.store.Reviews().ListByReviewee(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, "listing reviews")
	}
	return reviews, nil
}

func (s *reviewService) Stats(ctx context.Context, userID uuid.UUID) (*models.ReviewStats, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching user %s", userID))
	}
	stats, err := s.store.Reviews().Stats(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, "computing review stats")
	}
	stats.AverageRating = roundRating(stats.AverageRating)
	return stats, nil
}
