package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gigmatch/internal/geo"
	"gigmatch/internal/models"
	"gigmatch/internal/storage"
	"gigmatch/internal/storage/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helper Functions ---

func createHirer(t *testing.T, ctx context.Context, s *memory.Store, phone string) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.New(), Phone: phone, Name: "Hirer " + phone, Profile: models.HirerProfile{}}
	require.NoError(t, s.Users().Create(ctx, u), "Failed to create hirer %s", phone)
	return u
}

func createProvider(t *testing.T, ctx context.Context, s *memory.Store, phone string, at *geo.Point, skills ...string) *models.User {
	t.Helper()
	u := &models.User{
		ID:          uuid.New(),
		Phone:       phone,
		Name:        "Provider " + phone,
		Coordinates: at,
		Profile:     models.ProviderProfile{Skills: skills, IsAvailable: true},
	}
	require.NoError(t, s.Users().Create(ctx, u), "Failed to create provider %s", phone)
	return u
}

func createJob(t *testing.T, ctx context.Context, s *memory.Store, hirerID uuid.UUID, at *geo.Point, urgent bool) *models.Job {
	t.Helper()
	j := &models.Job{
		ID:          uuid.New(),
		HirerID:     hirerID,
		Title:       "Fix tap",
		Category:    "plumbing",
		Budget:      2500,
		BudgetType:  models.BudgetFixed,
		Coordinates: at,
		IsUrgent:    urgent,
		Status:      models.JobStatusOpen,
	}
	require.NoError(t, s.Jobs().Create(ctx, j))
	return j
}

func ptr[T any](v T) *T { return &v }

// --- Test Cases ---

func TestUsers_CreateConflicts(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := createHirer(t, ctx, s, "+910000000001")

	err := s.Users().Create(ctx, &models.User{ID: uuid.New(), Phone: h.Phone, Profile: models.HirerProfile{}})
	assert.ErrorIs(t, err, storage.ErrConflict, "duplicate phone")

	err = s.Users().Create(ctx, &models.User{ID: h.ID, Phone: "+910000000002", Profile: models.HirerProfile{}})
	assert.ErrorIs(t, err, storage.ErrConflict, "duplicate id")

	_, err = s.Users().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUsers_ReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	p := createProvider(t, ctx, s, "+910000000001", &geo.Point{Latitude: 1, Longitude: 1}, "plumbing")

	got, err := s.Users().GetByID(ctx, p.ID)
	require.NoError(t, err)
	prof, _ := got.Provider()
	prof.Skills[0] = "mutated"
	got.Coordinates.Latitude = 50

	again, err := s.Users().GetByID(ctx, p.ID)
	require.NoError(t, err)
	prof, _ = again.Provider()
	assert.Equal(t, []string{"plumbing"}, prof.Skills)
	assert.Equal(t, 1.0, again.Coordinates.Latitude)
}

func TestUsers_UpdateIgnoresProviderFieldsForHirer(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := createHirer(t, ctx, s, "+910000000001")

	skills := []string{"x"}
	got, err := s.Users().Update(ctx, h.ID, storage.UserUpdate{Name: ptr("New"), Skills: &skills, IsAvailable: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, models.RoleHirer, got.Role())
}

func TestUsers_AddCountersByRole(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := createHirer(t, ctx, s, "+910000000001")
	p := createProvider(t, ctx, s, "+910000000002", nil)

	delta := storage.CounterDelta{Jobs: 1, Earnings: 2125, Spent: 2500}
	require.NoError(t, s.Users().AddCounters(ctx, h.ID, delta))
	require.NoError(t, s.Users().AddCounters(ctx, p.ID, delta))

	hu, _ := s.Users().GetByID(ctx, h.ID)
	hp, _ := hu.Hirer()
	assert.Equal(t, 1, hu.TotalJobs)
	assert.Equal(t, int64(2500), hp.TotalSpent)

	pu, _ := s.Users().GetByID(ctx, p.ID)
	pp, _ := pu.Provider()
	assert.Equal(t, 1, pu.TotalJobs)
	assert.Equal(t, int64(2125), pp.TotalEarnings)
}

func TestUsers_DeleteReferencedHirer(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := createHirer(t, ctx, s, "+910000000001")
	createJob(t, ctx, s, h.ID, nil, false)

	assert.ErrorIs(t, s.Users().Delete(ctx, h.ID), storage.ErrConflict)
	assert.ErrorIs(t, s.Users().Delete(ctx, uuid.New()), storage.ErrNotFound)
}

func TestUsers_ListNearFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	center := geo.Point{Latitude: 12.9716, Longitude: 77.5946}
	far := createProvider(t, ctx, s, "+910000000001", &geo.Point{Latitude: 13.0, Longitude: 77.5946}, "plumbing")
	near := createProvider(t, ctx, s, "+910000000002", &geo.Point{Latitude: 12.98, Longitude: 77.5946}, "plumbing")
	createProvider(t, ctx, s, "+910000000003", &geo.Point{Latitude: 14, Longitude: 77.5946}, "plumbing")
	createProvider(t, ctx, s, "+910000000004", &geo.Point{Latitude: 12.98, Longitude: 77.5946}, "electrical")

	role := models.RoleProvider
	got, err := s.Users().List(ctx, storage.UserFilter{Role: &role, Skill: "plumbing", Near: &center, RadiusKm: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, near.ID, got[0].ID)
	assert.Equal(t, far.ID, got[1].ID)
	require.NotNil(t, got[0].DistanceKm)
	assert.Less(t, *got[0].DistanceKm, *got[1].DistanceKm)
}

func TestJobs_CreateRequiresHirer(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	err := s.Jobs().Create(ctx, &models.Job{ID: uuid.New(), HirerID: uuid.New(), Status: models.JobStatusOpen})
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestJobs_ListOrderAndPagination(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := createHirer(t, ctx, s, "+910000000001")
	older := createJob(t, ctx, s, h.ID, nil, false)
	newer := createJob(t, ctx, s, h.ID, nil, false)
	urgent := createJob(t, ctx, s, h.ID, nil, true)

	got, err := s.Jobs().List(ctx, storage.JobFilter{HirerID: &h.ID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uuid.UUID{urgent.ID, newer.ID, older.ID}, []uuid.UUID{got[0].ID, got[1].ID, got[2].ID})

	page, err := s.Jobs().List(ctx, storage.JobFilter{HirerID: &h.ID, Limit: 1, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, older.ID, page[0].ID)

	empty, err := s.Jobs().List(ctx, storage.JobFilter{HirerID: &h.ID, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestApplications_UniquePerJobAndProvider(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := createHirer(t, ctx, s, "+910000000001")
	p := createProvider(t, ctx, s, "+910000000002", nil)
	j := createJob(t, ctx, s, h.ID, nil, false)

	app := &models.Application{ID: uuid.New(), JobID: j.ID, ProviderID: p.ID, Status: models.ApplicationPending}
	require.NoError(t, s.Applications().Create(ctx, app))
	dup := &models.Application{ID: uuid.New(), JobID: j.ID, ProviderID: p.ID, Status: models.ApplicationPending}
	assert.ErrorIs(t, s.Applications().Create(ctx, dup), storage.ErrConflict)

	views, err := s.Applications().ListByJob(ctx, j.ID, nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, p.Name, views[0].Provider.Name)
}

func TestApplications_SingleAccepted(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := createHirer(t, ctx, s, "+910000000001")
	p1 := createProvider(t, ctx, s, "+910000000002", nil)
	p2 := createProvider(t, ctx, s, "+910000000003", nil)
	j := createJob(t, ctx, s, h.ID, nil, false)

	a1 := &models.Application{ID: uuid.New(), JobID: j.ID, ProviderID: p1.ID, Status: models.ApplicationPending}
	a2 := &models.Application{ID: uuid.New(), JobID: j.ID, ProviderID: p2.ID, Status: models.ApplicationPending}
	require.NoError(t, s.Applications().Create(ctx, a1))
	require.NoError(t, s.Applications().Create(ctx, a2))

	require.NoError(t, s.Applications().UpdateStatus(ctx, a1.ID, models.ApplicationAccepted))
	assert.ErrorIs(t, s.Applications().UpdateStatus(ctx, a2.ID, models.ApplicationAccepted), storage.ErrConflict)

	n, err := s.Applications().RejectByJob(ctx, j.ID, &a1.ID, []models.ApplicationStatus{models.ApplicationPending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rejected := models.ApplicationRejected
	views, err := s.Applications().ListByJob(ctx, j.ID, &rejected)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, p2.ID, views[0].ProviderID)
}

func TestLedger_WithdrawableOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := createHirer(t, ctx, s, "+910000000001")
	p := createProvider(t, ctx, s, "+910000000002", nil)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var ids, jobIDs []uuid.UUID
	for i := 0; i < 3; i++ {
		j := createJob(t, ctx, s, h.ID, nil, false)
		jobIDs = append(jobIDs, j.ID)
		e := &models.LedgerEntry{
			ID: uuid.New(), JobID: j.ID, ProviderID: p.ID, HirerID: h.ID,
			Gross: 1000, Fee: 150, Net: 850, Status: models.PaymentCompleted,
			CompletedAt: base.Add(time.Duration(2-i) * time.Hour),
		}
		require.NoError(t, s.Ledger().Create(ctx, e))
		ids = append(ids, e.ID)
	}

	dup := &models.LedgerEntry{ID: uuid.New(), JobID: jobIDs[0], ProviderID: p.ID, Gross: 1, Net: 1}
	assert.ErrorIs(t, s.Ledger().Create(ctx, dup), storage.ErrConflict)

	w, err := s.Ledger().ListWithdrawable(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, w, 3)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1], ids[0]}, []uuid.UUID{w[0].ID, w[1].ID, w[2].ID})

	now := base.Add(5 * time.Hour)
	require.NoError(t, s.Ledger().MarkWithdrawn(ctx, ids[2], 850, &now))
	require.NoError(t, s.Ledger().MarkWithdrawn(ctx, ids[1], 100, nil))

	w, err = s.Ledger().ListWithdrawable(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, w, 2)
	assert.Equal(t, int64(750), w[0].Available())

	assert.Error(t, s.Ledger().MarkWithdrawn(ctx, ids[0], 851, nil))
}

func TestReviews_StatsAndUniqueness(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := createHirer(t, ctx, s, "+910000000001")
	p := createProvider(t, ctx, s, "+910000000002", nil)

	tags := [][]string{{"punctual", "tidy"}, {"punctual"}, {"friendly", "tidy", "punctual"}}
	for i, r := range []int{5, 4, 5} {
		j := createJob(t, ctx, s, h.ID, nil, false)
		require.NoError(t, s.Reviews().Create(ctx, &models.Review{
			ID: uuid.New(), JobID: j.ID, ReviewerID: h.ID, RevieweeID: p.ID, Rating: r, Tags: tags[i],
		}))
		if i == 0 {
			err := s.Reviews().Create(ctx, &models.Review{ID: uuid.New(), JobID: j.ID, ReviewerID: h.ID, RevieweeID: p.ID, Rating: 1})
			assert.ErrorIs(t, err, storage.ErrConflict)
		}
	}

	stats, err := s.Reviews().Stats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalReviews)
	assert.InDelta(t, 14.0/3.0, stats.AverageRating, 1e-9)
	assert.Equal(t, map[int]int{4: 1, 5: 2}, stats.Distribution)
	assert.Equal(t, []models.TagCount{{Tag: "punctual", Count: 3}, {Tag: "tidy", Count: 2}, {Tag: "friendly", Count: 1}}, stats.PopularTags)

	empty, err := s.Reviews().Stats(ctx, h.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalReviews)
	assert.Empty(t, empty.PopularTags)
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := createHirer(t, ctx, s, "+910000000001")
	boom := errors.New("boom")

	var jobID uuid.UUID
	err := s.RunInTx(ctx, func(ctx context.Context, tx storage.Repositories) error {
		j := &models.Job{ID: uuid.New(), HirerID: h.ID, Status: models.JobStatusOpen}
		jobID = j.ID
		if err := tx.Jobs().Create(ctx, j); err != nil {
			return err
		}
		if err := tx.Users().AddCounters(ctx, h.ID, storage.CounterDelta{Jobs: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Jobs().GetByID(ctx, jobID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	u, err := s.Users().GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Zero(t, u.TotalJobs)
}

func TestRunInTx_CancelledContext(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.RunInTx(ctx, func(context.Context, storage.Repositories) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRunInTx_Serialized(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := createHirer(t, ctx, s, "+910000000001")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RunInTx(ctx, func(ctx context.Context, tx storage.Repositories) error {
				u, err := tx.Users().GetByID(ctx, h.ID)
				if err != nil {
					return err
				}
				// read-modify-write; lost updates would show up as a short count
				return tx.Users().SetRating(ctx, h.ID, u.Rating+1)
			})
		}()
	}
	wg.Wait()

	u, err := s.Users().GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, u.Rating)
}
