// internal/transport/dto/user_dto.go
package dto

import (
	"time"

	"gigmatch/internal/geo"
	"gigmatch/internal/models"

	"github.com/google/uuid"
)

// CreateUserRequest registers the authenticated subject as a hirer or provider.
type CreateUserRequest struct {
	UserID          uuid.UUID  `json:"-"` // Set from user context
	Phone           string     `json:"phone" validate:"required,min=6,max=20"`
	Name            string     `json:"name" validate:"required,min=1,max=100"`
	Role            string     `json:"role" validate:"required,oneof=hirer provider"`
	Language        string     `json:"language" validate:"omitempty,max=10"`
	Bio             string     `json:"bio" validate:"omitempty,max=500"`
	ProfileImageURL string     `json:"profileImageUrl" validate:"omitempty,url"`
	Location        string     `json:"location" validate:"omitempty,max=200"`
	Coordinates     *geo.Point `json:"coordinates,omitempty"`
	// Provider-only fields
	Skills          []string `json:"skills,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
	PortfolioImages []string `json:"portfolioImages,omitempty" validate:"omitempty,max=20,dive,url"`
	IsAvailable     *bool    `json:"isAvailable,omitempty"`
}

// ListUsersRequest defines the query parameters for listing users.
type ListUsersRequest struct {
	Role        string   `form:"role" validate:"omitempty,oneof=hirer provider"`
	IsAvailable *bool    `form:"isAvailable"`
	Category    string   `form:"category"`
	Latitude    *float64 `form:"latitude" validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude   *float64 `form:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	Radius      *float64 `form:"radius" validate:"omitempty,gt=0"`
	Limit       int      `form:"limit,default=20" validate:"omitempty,gte=1,lte=100"`
	Offset      int      `form:"offset,default=0" validate:"omitempty,gte=0"`
}

// UpdateUserRequest carries a partial profile update. Nil fields are left unchanged.
type UpdateUserRequest struct {
	ID              uuid.UUID  `json:"-" validate:"required"` // From URL path
	UserID          uuid.UUID  `json:"-"`                     // Set from user context
	Name            *string    `json:"name" validate:"omitempty,min=1,max=100"`
	ProfileImageURL *string    `json:"profileImageUrl" validate:"omitempty,url"`
	Location        *string    `json:"location" validate:"omitempty,max=200"`
	Bio             *string    `json:"bio" validate:"omitempty,max=500"`
	Coordinates     *geo.Point `json:"coordinates"`
	IsAvailable     *bool      `json:"isAvailable"`
	Skills          *[]string  `json:"skills" validate:"omitempty,max=20,dive,min=1,max=40"`
	PortfolioImages *[]string  `json:"portfolioImages" validate:"omitempty,max=20,dive,url"`
}

// DeleteUserRequest defines the structure for deleting a user.
type DeleteUserRequest struct {
	ID     uuid.UUID `json:"-" validate:"required"`
	UserID uuid.UUID `json:"-"`
}

// UserResponse flattens the role profile into the user document.
type UserResponse struct {
	ID              uuid.UUID   `json:"id"`
	Phone           string      `json:"phone"`
	Name            string      `json:"name"`
	Role            models.Role `json:"role"`
	Language        string      `json:"language"`
	Bio             string      `json:"bio"`
	ProfileImageURL string      `json:"profileImageUrl"`
	Location        string      `json:"location"`
	Coordinates     *geo.Point  `json:"coordinates,omitempty"`
	IsVerified      bool        `json:"isVerified"`
	Rating          float64     `json:"rating"`
	TotalJobs       int         `json:"totalJobs"`
	DistanceKm      *float64    `json:"distanceKm,omitempty"`

	TotalSpent *int64 `json:"totalSpent,omitempty"`

	Skills          []string `json:"skills,omitempty"`
	PortfolioImages []string `json:"portfolioImages,omitempty"`
	IsAvailable     *bool    `json:"isAvailable,omitempty"`
	TotalEarnings   *int64   `json:"totalEarnings,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserResponse maps a user to its public document.
func NewUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:              u.ID,
		Phone:           u.Phone,
		Name:            u.Name,
		Role:            u.Role(),
		Language:        u.Language,
		Bio:             u.Bio,
		ProfileImageURL: u.ProfileImageURL,
		Location:        u.Location,
		Coordinates:     u.Coordinates,
		IsVerified:      u.IsVerified,
		Rating:          u.Rating,
		TotalJobs:       u.TotalJobs,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	switch p := u.Profile.(type) {
	case models.HirerProfile:
		resp.TotalSpent = &p.TotalSpent
	case models.ProviderProfile:
		resp.Skills = append([]string{}, p.Skills...)
		resp.PortfolioImages = append([]string{}, p.PortfolioImages...)
		resp.IsAvailable = &p.IsAvailable
		resp.TotalEarnings = &p.TotalEarnings
	}
	return resp
}

// NewUserListResponse maps listing rows, keeping their distances.
func NewUserListResponse(listings []models.UserListing) []UserResponse {
	out := make([]UserResponse, 0, len(listings))
	for i := range listings {
		r := NewUserResponse(&listings[i].User)
		r.DistanceKm = listings[i].DistanceKm
		out = append(out, r)
	}
	return out
}
