package memory

import (
	"context"
	"fmt"
	"sort"

	"gigmatch/internal/geo"
	"gigmatch/internal/models"
	"gigmatch/internal/storage"

	"github.com/google/uuid"
)

// UserRepo implements storage.UserRepository over the in-memory tables.
type UserRepo struct {
	h handle
}

var _ storage.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, user *models.User) error {
	return r.h.write(func(st *state) error {
		if _, exists := st.users[user.ID]; exists {
			return fmt.Errorf("user %s already exists: %w", user.ID, storage.ErrConflict)
		}
		if _, exists := st.phones[user.Phone]; exists {
			return fmt.Errorf("phone already registered: %w", storage.ErrConflict)
		}
		now := r.h.now()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		user.UpdatedAt = user.CreatedAt
		st.users[user.ID] = user.Clone()
		st.phones[user.Phone] = user.ID
		st.stamp(user.ID)
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	var (
		u  models.User
		ok bool
	)
	r.h.read(func(st *state) {
		u, ok = st.users[id]
		u = u.Clone()
	})
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetMany(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	out := make(map[uuid.UUID]*models.User, len(ids))
	r.h.read(func(st *state) {
		for _, id := range ids {
			if u, ok := st.users[id]; ok {
				c := u.Clone()
				out[id] = &c
			}
		}
	})
	return out, nil
}

func (r *UserRepo) List(_ context.Context, f storage.UserFilter) ([]models.UserListing, error) {
	var (
		listings []models.UserListing
		seqs     = map[uuid.UUID]int64{}
	)
	r.h.read(func(st *state) {
		for _, u := range st.users {
			if f.Role != nil && u.Role() != *f.Role {
				continue
			}
			p, isProvider := u.Provider()
			if f.Available != nil && (!isProvider || p.IsAvailable != *f.Available) {
				continue
			}
			if f.Skill != "" && (!isProvider || !p.HasSkill(f.Skill)) {
				continue
			}
			l := models.UserListing{User: u.Clone()}
			if f.Near != nil {
				if u.Coordinates == nil {
					continue
				}
				d, ok := geo.Within(*f.Near, *u.Coordinates, f.RadiusKm)
				if !ok {
					continue
				}
				l.DistanceKm = &d
			}
			listings = append(listings, l)
			seqs[u.ID] = st.seqs[u.ID]
		}
	})

	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm {
			return *a.DistanceKm < *b.DistanceKm
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return seqs[a.ID] > seqs[b.ID]
	})
	return paginate(listings, f.Offset, f.Limit), nil
}

func (r *UserRepo) Update(_ context.Context, id uuid.UUID, upd storage.UserUpdate) (*models.User, error) {
	var out models.User
	err := r.h.write(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return storage.ErrNotFound
		}
		u = u.Clone()
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.ProfileImageURL != nil {
			u.ProfileImageURL = *upd.ProfileImageURL
		}
		if upd.Location != nil {
			u.Location = *upd.Location
		}
		if upd.Bio != nil {
			u.Bio = *upd.Bio
		}
		if upd.Coordinates != nil {
			pt := *upd.Coordinates
			u.Coordinates = &pt
		}
		if p, isProvider := u.Provider(); isProvider {
			if upd.IsAvailable != nil {
				p.IsAvailable = *upd.IsAvailable
			}
			if upd.Skills != nil {
				p.Skills = append([]string(nil), (*upd.Skills)...)
			}
			if upd.PortfolioImages != nil {
				p.PortfolioImages = append([]string(nil), (*upd.PortfolioImages)...)
			}
			u.Profile = p
		}
		u.UpdatedAt = r.h.now()
		st.users[id] = u
		out = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepo) AddCounters(_ context.Context, id uuid.UUID, delta storage.CounterDelta) error {
	return r.h.write(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return storage.ErrNotFound
		}
		u = u.Clone()
		u.TotalJobs += delta.Jobs
		switch p := u.Profile.(type) {
		case models.ProviderProfile:
			p.TotalEarnings += delta.Earnings
			u.Profile = p
		case models.HirerProfile:
			p.TotalSpent += delta.Spent
			u.Profile = p
		}
		u.UpdatedAt = r.h.now()
		st.users[id] = u
		return nil
	})
}

func (r *UserRepo) SetRating(_ context.Context, id uuid.UUID, rating float64) error {
	return r.h.write(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return storage.ErrNotFound
		}
		u.Rating = rating
		u.UpdatedAt = r.h.now()
		st.users[id] = u
		return nil
	})
}

func (r *UserRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.h.write(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return storage.ErrNotFound
		}
		for _, j := range st.jobs {
			if j.HirerID == id || j.IsAssignedTo(id) {
				return fmt.Errorf("user %s is referenced by job %s: %w", id, j.ID, storage.ErrConflict)
			}
		}
		for _, e := range st.entries {
			if e.ProviderID == id || e.HirerID == id {
				return fmt.Errorf("user %s is referenced by ledger entry %s: %w", id, e.ID, storage.ErrConflict)
			}
		}
		for appID, a := range st.apps {
			if a.ProviderID == id {
				delete(st.apps, appID)
				delete(st.appKeys, appKey{job: a.JobID, provider: a.ProviderID})
			}
		}
		delete(st.users, id)
		delete(st.phones, u.Phone)
		delete(st.seqs, id)
		return nil
	})
}
