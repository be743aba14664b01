package services_test

import (
	"testing"

	"gigmatch/internal/models"
	"gigmatch/internal/services"
	"gigmatch/internal/transport/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewService_Submit(t *testing.T) {
	env := newTestEnv(t)
	hirer := env.registerHirer(t, "+911")
	provider := env.registerProvider(t, "+912", nil)
	stranger := env.registerProvider(t, "+913", nil)

	open := env.postJob(t, hirer.ID, 500, nil)
	_, err := env.reviews.Submit(env.ctx, &dto.SubmitReviewRequest{JobID: open.ID, ReviewerID: hirer.ID, Rating: 5})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	job := env.completedJob(t, hirer.ID, provider.ID, 500)

	_, err = env.reviews.Submit(env.ctx, &dto.SubmitReviewRequest{JobID: job.ID, ReviewerID: stranger.ID, Rating: 5})
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = env.reviews.Submit(env.ctx, &dto.SubmitReviewRequest{JobID: job.ID, ReviewerID: hirer.ID, Rating: 6})
	assert.ErrorIs(t, err, services.ErrValidation)

	review, err := env.reviews.Submit(env.ctx, &dto.SubmitReviewRequest{
		JobID: job.ID, ReviewerID: hirer.ID, Rating: 5, Comment: " great ", Tags: []string{"Punctual", "punctual ", "tidy"},
	})
	require.NoError(t, err)
	assert.Equal(t, provider.ID, review.RevieweeID)
	assert.Equal(t, "great", review.Comment)
	assert.Equal(t, []string{"punctual", "tidy"}, review.Tags)

	_, err = env.reviews.Submit(env.ctx, &dto.SubmitReviewRequest{JobID: job.ID, ReviewerID: hirer.ID, Rating: 1})
	assert.ErrorIs(t, err, services.ErrConflict)

	back, err := env.reviews.Submit(env.ctx, &dto.SubmitReviewRequest{JobID: job.ID, ReviewerID: provider.ID, Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, hirer.ID, back.RevieweeID)

	p, err := env.users.GetByID(env.ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, p.Rating)
	h, err := env.users.GetByID(env.ctx, hirer.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, h.Rating)
}

func TestReviewService_RatingAndStats(t *testing.T) {
	env := newTestEnv(t)
	hirer := env.registerHirer(t, "+911")
	provider := env.registerProvider(t, "+912", nil)

	for _, r := range []struct {
		rating int
		tags   []string
	}{
		{5, []string{"punctual", "tidy"}},
		{4, []string{"punctual"}},
		{4, []string{"friendly", "punctual"}},
	} {
		job := env.completedJob(t, hirer.ID, provider.ID, 500)
		_, err := env.reviews.Submit(env.ctx, &dto.SubmitReviewRequest{JobID: job.ID, ReviewerID: hirer.ID, Rating: r.rating, Tags: r.tags})
		require.NoError(t, err)
	}

	p, err := env.users.GetByID(env.ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.3, p.Rating, "13/3 rounded to one decimal")

	stats, err := env.reviews.Stats(env.ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalReviews)
	assert.Equal(t, 4.3, stats.AverageRating)
	assert.Equal(t, map[int]int{4: 2, 5: 1}, stats.Distribution)
	assert.Equal(t, []models.TagCount{
		{Tag: "punctual", Count: 3},
		{Tag: "friendly", Count: 1},
		{Tag: "tidy", Count: 1},
	}, stats.PopularTags)

	list, err := env.reviews.ListForUser(env.ctx, provider.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 4, list[0].Rating, "newest first")

	empty, err := env.reviews.Stats(env.ctx, hirer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalReviews)
	assert.NotNil(t, empty.Distribution)
}
