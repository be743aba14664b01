package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is one party's rating of the other after a completed job.
type Review struct {
	ID         uuid.UUID `json:"id"`
	JobID      uuid.UUID `json:"jobId"`
	ReviewerID uuid.UUID `json:"reviewerId"`
	RevieweeID uuid.UUID `json:"revieweeId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TagCount is one entry of a user's popular review tags.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ReviewStats aggregates the reviews a user received.
type ReviewStats struct {
	AverageRating float64     `json:"averageRating"`
	TotalReviews  int         `json:"totalReviews"`
	Distribution  map[int]int `json:"distribution"`
	PopularTags   []TagCount  `json:"popularTags"`
}
