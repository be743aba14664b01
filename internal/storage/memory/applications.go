package memory

import (
	"context"
	"fmt"
	"sort"

	"gigmatch/internal/models"
	"gigmatch/internal/storage"

	"github.com/google/uuid"
)

// ApplicationRepo implements storage.ApplicationRepository over the in-memory tables.
type ApplicationRepo struct {
	h handle
}

var _ storage.ApplicationRepository = (*ApplicationRepo)(nil)

func (r *ApplicationRepo) Create(_ context.Context, app *models.Application) error {
	return r.h.write(func(st *state) error {
		key := appKey{job: app.JobID, provider: app.ProviderID}
		if _, dup := st.appKeys[key]; dup {
			return fmt.Errorf("application for job %s by provider %s: %w", app.JobID, app.ProviderID, storage.ErrConflict)
		}
		if _, ok := st.jobs[app.JobID]; !ok {
			return fmt.Errorf("failed to create application: invalid job ID: %w", storage.ErrConflict)
		}
		if _, ok := st.users[app.ProviderID]; !ok {
			return fmt.Errorf("failed to create application: invalid provider ID: %w", storage.ErrConflict)
		}
		if app.CreatedAt.IsZero() {
			app.CreatedAt = r.h.now()
		}
		app.UpdatedAt = app.CreatedAt
		st.apps[app.ID] = *app
		st.appKeys[key] = app.ID
		st.stamp(app.ID)
		return nil
	})
}

func (r *ApplicationRepo) Get(_ context.Context, jobID, providerID uuid.UUID) (*models.Application, error) {
	var (
		app models.Application
		ok  bool
	)
	r.h.read(func(st *state) {
		var id uuid.UUID
		if id, ok = st.appKeys[appKey{job: jobID, provider: providerID}]; ok {
			app = st.apps[id]
		}
	})
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &app, nil
}

func (r *ApplicationRepo) ListByJob(_ context.Context, jobID uuid.UUID, status *models.ApplicationStatus) ([]models.ApplicationView, error) {
	views := []models.ApplicationView{}
	seqs := map[uuid.UUID]int64{}
	r.h.read(func(st *state) {
		for _, a := range st.apps {
			if a.JobID != jobID {
				continue
			}
			if status != nil && a.Status != *status {
				continue
			}
			v := models.ApplicationView{Application: a}
			if u, ok := st.users[a.ProviderID]; ok {
				v.Provider = u.Summarize()
			}
			views = append(views, v)
			seqs[a.ID] = st.seqs[a.ID]
		}
	})
	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].CreatedAt.Before(views[j].CreatedAt)
		}
		return seqs[views[i].ID] < seqs[views[j].ID]
	})
	return views, nil
}

func (r *ApplicationRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	return r.h.write(func(st *state) error {
		a, ok := st.apps[id]
		if !ok {
			return storage.ErrNotFound
		}
		if status == models.ApplicationAccepted {
			for _, other := range st.apps {
				if other.JobID == a.JobID && other.ID != id && other.Status == models.ApplicationAccepted {
					return fmt.Errorf("job %s already has an accepted application: %w", a.JobID, storage.ErrConflict)
				}
			}
		}
		a.Status = status
		a.UpdatedAt = r.h.now()
		st.apps[id] = a
		return nil
	})
}

func (r *ApplicationRepo) RejectByJob(_ context.Context, jobID uuid.UUID, except *uuid.UUID, from []models.ApplicationStatus) (int64, error) {
	var n int64
	err := r.h.write(func(st *state) error {
		now := r.h.now()
		for id, a := range st.apps {
			if a.JobID != jobID || (except != nil && id == *except) {
				continue
			}
			for _, s := range from {
				if a.Status == s {
					a.Status = models.ApplicationRejected
					a.UpdatedAt = now
					st.apps[id] = a
					n++
					break
				}
			}
		}
		return nil
	})
	return n, err
}
