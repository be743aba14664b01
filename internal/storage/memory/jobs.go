package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gigmatch/internal/geo"
	"gigmatch/internal/models"
	"gigmatch/internal/storage"

	"github.com/google/uuid"
)

// JobRepo implements storage.JobRepository over the in-memory tables.
type JobRepo struct {
	h handle
}

var _ storage.JobRepository = (*JobRepo)(nil)

func cloneJob(j models.Job) models.Job {
	if j.Coordinates != nil {
		pt := *j.Coordinates
		j.Coordinates = &pt
	}
	if j.AssignedProviderID != nil {
		id := *j.AssignedProviderID
		j.AssignedProviderID = &id
	}
	for _, ts := range []**time.Time{&j.AssignedAt, &j.StartedAt, &j.CompletedAt, &j.CancelledAt} {
		if *ts != nil {
			t := **ts
			*ts = &t
		}
	}
	return j
}

func (r *JobRepo) Create(_ context.Context, job *models.Job) error {
	return r.h.write(func(st *state) error {
		if _, exists := st.jobs[job.ID]; exists {
			return fmt.Errorf("job %s already exists: %w", job.ID, storage.ErrConflict)
		}
		if _, ok := st.users[job.HirerID]; !ok {
			return fmt.Errorf("failed to create job: invalid hirer ID: %w", storage.ErrConflict)
		}
		now := r.h.now()
		if job.CreatedAt.IsZero() {
			job.CreatedAt = now
		}
		job.UpdatedAt = job.CreatedAt
		st.jobs[job.ID] = cloneJob(*job)
		st.stamp(job.ID)
		return nil
	})
}

func (r *JobRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	var (
		j  models.Job
		ok bool
	)
	r.h.read(func(st *state) {
		j, ok = st.jobs[id]
		j = cloneJob(j)
	})
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &j, nil
}

// GetForUpdate needs no extra locking: transactions already hold the store
// exclusively.
func (r *JobRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return r.GetByID(ctx, id)
}

func (r *JobRepo) GetMany(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Job, error) {
	out := make(map[uuid.UUID]*models.Job, len(ids))
	r.h.read(func(st *state) {
		for _, id := range ids {
			if j, ok := st.jobs[id]; ok {
				c := cloneJob(j)
				out[id] = &c
			}
		}
	})
	return out, nil
}

func (r *JobRepo) List(_ context.Context, f storage.JobFilter) ([]models.JobListing, error) {
	var (
		listings []models.JobListing
		seqs     = map[uuid.UUID]int64{}
	)
	r.h.read(func(st *state) {
		counts := map[uuid.UUID]int{}
		for _, a := range st.apps {
			counts[a.JobID]++
		}
		for _, j := range st.jobs {
			if f.HirerID != nil && j.HirerID != *f.HirerID {
				continue
			}
			if f.ProviderID != nil && !j.IsAssignedTo(*f.ProviderID) {
				continue
			}
			if f.Category != "" && j.Category != f.Category {
				continue
			}
			if f.Status != nil && j.Status != *f.Status {
				continue
			}
			if f.IsUrgent != nil && j.IsUrgent != *f.IsUrgent {
				continue
			}
			l := models.JobListing{Job: cloneJob(j), ApplicationCount: counts[j.ID]}
			if f.Near != nil {
				if j.Coordinates == nil {
					continue
				}
				d, ok := geo.Within(*f.Near, *j.Coordinates, f.RadiusKm)
				if !ok {
					continue
				}
				l.DistanceKm = &d
			}
			listings = append(listings, l)
			seqs[j.ID] = st.seqs[j.ID]
		}
	})

	sort.SliceStable(listings, func(i, k int) bool {
		a, b := listings[i], listings[k]
		if a.IsUrgent != b.IsUrgent {
			return a.IsUrgent
		}
		if a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm {
			return *a.DistanceKm < *b.DistanceKm
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return seqs[a.ID] > seqs[b.ID]
	})
	return paginate(listings, f.Offset, f.Limit), nil
}

func (r *JobRepo) UpdateLifecycle(_ context.Context, job *models.Job) error {
	return r.h.write(func(st *state) error {
		cur, ok := st.jobs[job.ID]
		if !ok {
			return storage.ErrNotFound
		}
		if job.AssignedProviderID != nil {
			if _, ok := st.users[*job.AssignedProviderID]; !ok {
				return fmt.Errorf("invalid provider ID: %w", storage.ErrConflict)
			}
		}
		upd := cloneJob(*job)
		cur.Status = upd.Status
		cur.AssignedProviderID = upd.AssignedProviderID
		cur.AssignedAt = upd.AssignedAt
		cur.StartedAt = upd.StartedAt
		cur.CompletedAt = upd.CompletedAt
		cur.CancelledAt = upd.CancelledAt
		cur.UpdatedAt = r.h.now()
		job.UpdatedAt = cur.UpdatedAt
		st.jobs[job.ID] = cur
		return nil
	})
}

func (r *JobRepo) SumBudgetForProvider(_ context.Context, providerID uuid.UUID, statuses []models.JobStatus) (int64, error) {
	var total int64
	r.h.read(func(st *state) {
		for _, j := range st.jobs {
			if !j.IsAssignedTo(providerID) {
				continue
			}
			for _, s := range statuses {
				if j.Status == s {
					total += j.Budget
					break
				}
			}
		}
	})
	return total, nil
}
