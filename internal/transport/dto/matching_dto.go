package dto

import (
	"gigmatch/internal/geo"
	"gigmatch/internal/models"

	"github.com/google/uuid"
)

// NearbyRequest defines the query parameters of both proximity searches.
// For providers looking for jobs the point defaults to their stored location.
type NearbyRequest struct {
	UserID    uuid.UUID `form:"-"` // Set from user context
	Latitude  *float64  `form:"latitude" validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude *float64  `form:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	Radius    *float64  `form:"radius"`
	Category  string    `form:"category"`
	Limit     int       `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// Point returns the requested center, if both coordinates were given.
func (r *NearbyRequest) Point() *geo.Point {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// NearbyJob is an open job with its distance from the search center.
type NearbyJob struct {
	models.Job
	DistanceKm float64 `json:"distanceKm"`
}

// NearbyProvider is an available provider with its distance from the search center.
type NearbyProvider struct {
	models.ProviderSummary
	Coordinates geo.Point `json:"coordinates"`
	DistanceKm  float64   `json:"distanceKm"`
}
