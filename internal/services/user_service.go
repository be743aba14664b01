package services

import (
	"context"
	"fmt"
	"strings"

	"gigmatch/internal/geo"
	"gigmatch/internal/models"
	"gigmatch/internal/storage"
	"gigmatch/internal/transport/dto"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type userService struct {
	store storage.Store
	index indexSync
	cfg   Settings
}

// NewUserService creates a new instance of UserService.
func NewUserService(store storage.Store, index geo.Index, cfg Settings) UserService {
	return &userService{store: store, index: indexSync{index: index}, cfg: cfg}
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (user *models.User, err error) {
	ctx, span, log := startSpan(ctx, "UserService.Create")
	defer func() { endSpan(span, err) }()

	if req.UserID == uuid.Nil {
		return nil, validationError("user id is required")
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		return nil, validationError("role must be hirer or provider")
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" {
		return nil, validationError("name and phone are required")
	}
	if req.Coordinates != nil {
		if err := req.Coordinates.Validate(); err != nil {
			return nil, validationError("coordinates: %v", err)
		}
	}

	var profile models.Profile
	switch role {
	case models.RoleHirer:
		if len(req.Skills) > 0 || len(req.PortfolioImages) > 0 || req.IsAvailable != nil {
			return nil, validationError("skills, portfolioImages and isAvailable are provider-only fields")
		}
		profile = models.HirerProfile{}
	case models.RoleProvider:
		available := true
		if req.IsAvailable != nil {
			available = *req.IsAvailable
		}
		profile = models.ProviderProfile{
			Skills:          models.NormalizeSkills(req.Skills),
			PortfolioImages: append([]string{}, req.PortfolioImages...),
			IsAvailable:     available,
		}
	}

	language := req.Language
	if language == "" {
		language = "en"
	}
	user = &models.User{
		ID:              req.UserID,
		Phone:           strings.TrimSpace(req.Phone),
		Name:            strings.TrimSpace(req.Name),
		Language:        language,
		Bio:             req.Bio,
		ProfileImageURL: req.ProfileImageURL,
		Location:        req.Location,
		Coordinates:     req.Coordinates,
		Profile:         profile,
		CreatedAt:       s.cfg.now(),
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, mapRepoError(err, "creating user")
	}

	s.index.user(ctx, user)
	log.Info("user registered", zap.Stringer("user", user.ID), zap.String("role", string(role)))
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching user %s", id))
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, req *dto.ListUsersRequest) ([]models.UserListing, error) {
	limit, offset := clampPage(req.Limit, req.Offset)
	filter := storage.UserFilter{
		Available: req.IsAvailable,
		Skill:     strings.TrimSpace(req.Category),
		Limit:     limit,
		Offset:    offset,
	}
	if req.Role != "" {
		role := models.Role(req.Role)
		if !role.Valid() {
			return nil, validationError("unknown role %q", req.Role)
		}
		filter.Role = &role
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, validationError("latitude and longitude must be given together")
	}
	if req.Latitude != nil {
		center := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
		q := geo.Query{Center: center, RadiusKm: s.cfg.DefaultRadiusKm}
		if req.Radius != nil {
			q.RadiusKm = *req.Radius
		}
		if err := q.Validate(); err != nil {
			return nil, validationError("%v", err)
		}
		filter.Near, filter.RadiusKm = &center, q.RadiusKm
	}

	users, err := s.store.Users().List(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err, "listing users")
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, req *dto.UpdateUserRequest) (user *models.User, err error) {
	ctx, span, log := startSpan(ctx, "UserService.Update")
	defer func() { endSpan(span, err) }()

	if req.ID != req.UserID {
		return nil, fmt.Errorf("%w: users may only update their own profile", ErrForbidden)
	}
	current, err := s.store.Users().GetByID(ctx, req.ID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching user %s", req.ID))
	}
	if current.Role() != models.RoleProvider &&
		(req.Skills != nil || req.PortfolioImages != nil || req.IsAvailable != nil) {
		return nil, fmt.Errorf("%w: skills, portfolioImages and isAvailable are provider-only fields", ErrInvalidRole)
	}
	if req.Coordinates != nil {
		if err := req.Coordinates.Validate(); err != nil {
			return nil, validationError("coordinates: %v", err)
		}
	}

	upd := storage.UserUpdate{
		Name:            req.Name,
		ProfileImageURL: req.ProfileImageURL,
		Location:        req.Location,
		Bio:             req.Bio,
		Coordinates:     req.Coordinates,
		IsAvailable:     req.IsAvailable,
		PortfolioImages: req.PortfolioImages,
	}
	if req.Skills != nil {
		skills := models.NormalizeSkills(*req.Skills)
		upd.Skills = &skills
	}
	if upd.Empty() {
		return current, nil
	}

	user, err = s.store.Users().Update(ctx, req.ID, upd)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("updating user %s", req.ID))
	}
	if req.Coordinates != nil || req.IsAvailable != nil || req.Skills != nil {
		s.index.user(ctx, user)
	}
	log.Debug("user updated", zap.Stringer("user", user.ID))
	return user, nil
}

func (s *userService) Delete(ctx context.Context, req *dto.DeleteUserRequest) error {
	if req.ID != req.UserID {
		return fmt.Errorf("%w: users may only delete their own account", ErrForbidden)
	}
	if err := s.store.Users().Delete(ctx, req.ID); err != nil {
		return mapRepoError(err, fmt.Sprintf("deleting user %s", req.ID))
	}
	s.index.removeUser(ctx, req.ID)
	zap.L().Info("user deleted", zap.Stringer("user", req.ID))
	return nil
}
