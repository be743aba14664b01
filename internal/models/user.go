package models

import (
	"time"

	"gigmatch/internal/geo"

	"github.com/google/uuid"
)

// Profile is the role-specific part of a user. It is closed: only
// HirerProfile and ProviderProfile implement it.
type Profile interface {
	Role() Role
	isProfile()
}

// HirerProfile is carried by accounts that post jobs.
type HirerProfile struct {
	TotalSpent int64 `json:"totalSpent"`
}

func (HirerProfile) Role() Role { return RoleHirer }
func (HirerProfile) isProfile() {}

// ProviderProfile is carried by accounts that perform jobs.
type ProviderProfile struct {
	Skills          []string `json:"skills"`
	PortfolioImages []string `json:"portfolioImages"`
	IsAvailable     bool     `json:"isAvailable"`
	TotalEarnings   int64    `json:"totalEarnings"`
}

func (ProviderProfile) Role() Role { return RoleProvider }
func (ProviderProfile) isProfile() {}

// HasSkill reports whether skill is one of the provider's tags.
func (p ProviderProfile) HasSkill(skill string) bool {
	for _, s := range p.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// User is an account of either role.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Phone           string     `json:"phone"`
	Name            string     `json:"name"`
	Language        string     `json:"language"`
	Bio             string     `json:"bio"`
	ProfileImageURL string     `json:"profileImageUrl"`
	Location        string     `json:"location"`
	Coordinates     *geo.Point `json:"coordinates,omitempty"`
	IsVerified      bool       `json:"isVerified"`
	Rating          float64    `json:"rating"`
	TotalJobs       int        `json:"totalJobs"`
	Profile         Profile    `json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Role returns the role of the user's profile variant.
func (u *User) Role() Role {
	if u.Profile == nil {
		return ""
	}
	return u.Profile.Role()
}

// Provider returns the provider profile when the user is a provider.
func (u *User) Provider() (ProviderProfile, bool) {
	p, ok := u.Profile.(ProviderProfile)
	return p, ok
}

// Hirer returns the hirer profile when the user is a hirer.
func (u *User) Hirer() (HirerProfile, bool) {
	h, ok := u.Profile.(HirerProfile)
	return h, ok
}

// Searchable reports whether the user belongs in the provider proximity index.
func (u *User) Searchable() bool {
	p, ok := u.Provider()
	return ok && p.IsAvailable && u.Coordinates != nil
}

// Clone returns a copy that shares no slices with u.
func (u User) Clone() User {
	if u.Coordinates != nil {
		pt := *u.Coordinates
		u.Coordinates = &pt
	}
	if p, ok := u.Profile.(ProviderProfile); ok {
		p.Skills = append([]string(nil), p.Skills...)
		p.PortfolioImages = append([]string(nil), p.PortfolioImages...)
		u.Profile = p
	}
	return u
}

// ProviderSummary is the provider view joined onto applications and jobs.
type ProviderSummary struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	ProfileImageURL string    `json:"profileImageUrl"`
	Rating          float64   `json:"rating"`
	TotalJobs       int       `json:"totalJobs"`
	IsVerified      bool      `json:"isVerified"`
	Skills          []string  `json:"skills"`
}

// Summarize builds the public summary of a user.
func (u *User) Summarize() ProviderSummary {
	s := ProviderSummary{
		ID:              u.ID,
		Name:            u.Name,
		ProfileImageURL: u.ProfileImageURL,
		Rating:          u.Rating,
		TotalJobs:       u.TotalJobs,
		IsVerified:      u.IsVerified,
		Skills:          []string{},
	}
	if p, ok := u.Provider(); ok {
		s.Skills = append(s.Skills, p.Skills...)
	}
	return s
}

// NormalizeSkills trims duplicates and empty tags, keeping first occurrence order.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// UserListing is a user row with its distance from a search point.
type UserListing struct {
	User
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}
