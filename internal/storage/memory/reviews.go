package memory

import (
	"context"
	"fmt"
	"sort"

	"gigmatch/internal/models"
	"gigmatch/internal/storage"

	"github.com/google/uuid"
)

// ReviewRepo implements storage.ReviewRepository over the in-memory tables.
type ReviewRepo struct {
	h handle
}

var _ storage.ReviewRepository = (*ReviewRepo)(nil)

func (r *ReviewRepo) Create(_ context.Context, review *models.Review) error {
	return r.h.write(func(st *state) error {
		key := reviewKey{job: review.JobID, reviewer: review.ReviewerID}
		if _, dup := st.reviewKeys[key]; dup {
			return fmt.Errorf("review of job %s by %s: %w", review.JobID, review.ReviewerID, storage.ErrConflict)
		}
		if _, ok := st.users[review.RevieweeID]; !ok {
			return fmt.Errorf("failed to create review: invalid reviewee ID: %w", storage.ErrConflict)
		}
		if review.CreatedAt.IsZero() {
			review.CreatedAt = r.h.now()
		}
		c := *review
		c.Tags = append([]string(nil), review.Tags...)
		st.reviews[review.ID] = c
		st.reviewKeys[key] = review.ID
		st.stamp(review.ID)
		return nil
	})
}

func (r *ReviewRepo) ListByReviewee(_ context.Context, userID uuid.UUID) ([]models.Review, error) {
	out := []models.Review{}
	seqs := map[uuid.UUID]int64{}
	r.h.read(func(st *state) {
		for _, rv := range st.reviews {
			if rv.RevieweeID == userID {
				out = append(out, rv)
				seqs[rv.ID] = st.seqs[rv.ID]
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return seqs[out[i].ID] > seqs[out[j].ID]
	})
	return out, nil
}

func (r *ReviewRepo) Stats(ctx context.Context, userID uuid.UUID) (*models.ReviewStats, error) {
	reviews, err := r.ListByReviewee(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := &models.ReviewStats{Distribution: map[int]int{}, PopularTags: []models.TagCount{}}
	if len(reviews) == 0 {
		return stats, nil
	}

	sum := 0
	tags := map[string]int{}
	for _, rv := range reviews {
		sum += rv.Rating
		stats.Distribution[rv.Rating]++
		for _, t := range rv.Tags {
			tags[t]++
		}
	}
	stats.TotalReviews = len(reviews)
	stats.AverageRating = float64(sum) / float64(len(reviews))

	for t, n := range tags {
		stats.PopularTags = append(stats.PopularTags, models.TagCount{Tag: t, Count: n})
	}
	sort.Slice(stats.PopularTags, func(i, j int) bool {
		a, b := stats.PopularTags[i], stats.PopularTags[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Tag < b.Tag
	})
	if len(stats.PopularTags) > 5 {
		stats.PopularTags = stats.PopularTags[:5]
	}
	return stats, nil
}
