package services_test

import (
	"context"
	"testing"
	"time"

	"gigmatch/internal/events"
	"gigmatch/internal/geo"
	"gigmatch/internal/models"
	"gigmatch/internal/services"
	"gigmatch/internal/storage/memory"
	"gigmatch/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv wires every service against the in-memory store and index.
type testEnv struct {
	ctx   context.Context
	store *memory.Store
	index *geo.MemoryIndex
	rec   *events.Recorder
	now   time.Time // zero means wall clock

	users    services.UserService
	jobs     services.JobService
	apps     services.ApplicationService
	ledger   services.LedgerService
	reviews  services.ReviewService
	matching services.MatchingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Cleanup(zap.ReplaceGlobals(zap.NewNop()))

	env := &testEnv{
		ctx:   context.Background(),
		store: memory.New(),
		index: geo.NewMemoryIndex(),
		rec:   events.NewRecorder(),
	}
	cfg := services.DefaultSettings()
	cfg.Clock = func() time.Time {
		if env.now.IsZero() {
			return time.Now()
		}
		return env.now
	}

	env.users = services.NewUserService(env.store, env.index, cfg)
	env.jobs = services.NewJobService(env.store, env.index, env.rec, cfg)
	env.apps = services.NewApplicationService(env.store, env.index, env.rec, cfg)
	env.ledger = services.NewLedgerService(env.store, env.rec, cfg)
	env.reviews = services.NewReviewService(env.store, cfg)
	env.matching = services.NewMatchingService(env.store, env.index, cfg)
	return env
}

var (
	bangalore = geo.Point{Latitude: 12.9716, Longitude: 77.5946}
	// about 1.1 km north of bangalore
	nearby = geo.Point{Latitude: 12.9816, Longitude: 77.5946}
	// about 111 km north of bangalore
	faraway = geo.Point{Latitude: 13.9716, Longitude: 77.5946}
)

func (e *testEnv) registerHirer(t *testing.T, phone string) *models.User {
	t.Helper()
	u, err := e.users.Create(e.ctx, &dto.CreateUserRequest{
		UserID: uuid.New(), Phone: phone, Name: "Hirer " + phone, Role: "hirer",
	})
	require.NoError(t, err, "Failed to register hirer %s", phone)
	return u
}

func (e *testEnv) registerProvider(t *testing.T, phone string, at *geo.Point, skills ...string) *models.User {
	t.Helper()
	u, err := e.users.Create(e.ctx, &dto.CreateUserRequest{
		UserID: uuid.New(), Phone: phone, Name: "Provider " + phone, Role: "provider",
		Coordinates: at, Skills: skills,
	})
	require.NoError(t, err, "Failed to register provider %s", phone)
	return u
}

func (e *testEnv) postJob(t *testing.T, hirerID uuid.UUID, budget int64, at *geo.Point) *models.Job {
	t.Helper()
	j, err := e.jobs.Create(e.ctx, &dto.CreateJobRequest{
		UserID:      hirerID,
		Title:       "Fix kitchen tap",
		Description: "Leaking since Monday",
		Category:    "plumbing",
		Budget:      budget,
		BudgetType:  "fixed",
		Location:    "Indiranagar",
		Coordinates: at,
	})
	require.NoError(t, err, "Failed to post job")
	return j
}

// assignedJob posts a job and assigns it to providerID through apply + accept.
func (e *testEnv) assignedJob(t *testing.T, hirerID, providerID uuid.UUID, budget int64) *models.Job {
	t.Helper()
	j := e.postJob(t, hirerID, budget, nil)
	_, err := e.apps.Apply(e.ctx, &dto.ApplyRequest{JobID: j.ID, UserID: providerID, Message: "I can do it"})
	require.NoError(t, err)
	assigned, err := e.apps.Accept(e.ctx, &dto.DecideApplicationRequest{JobID: j.ID, ProviderID: providerID, UserID: hirerID})
	require.NoError(t, err)
	assigned.CompletionPin = j.CompletionPin
	return assigned
}

func (e *testEnv) startedJob(t *testing.T, hirerID, providerID uuid.UUID, budget int64) *models.Job {
	t.Helper()
	j := e.assignedJob(t, hirerID, providerID, budget)
	started, err := e.jobs.Start(e.ctx, &dto.JobActionRequest{JobID: j.ID, UserID: providerID})
	require.NoError(t, err)
	started.CompletionPin = j.CompletionPin
	return started
}

func (e *testEnv) completedJob(t *testing.T, hirerID, providerID uuid.UUID, budget int64) *models.Job {
	t.Helper()
	j := e.startedJob(t, hirerID, providerID, budget)
	done, err := e.jobs.Complete(e.ctx, &dto.CompleteJobRequest{JobID: j.ID, UserID: providerID, Pin: j.CompletionPin})
	require.NoError(t, err)
	return done
}

// wrongPin returns a valid-looking PIN different from pin.
func wrongPin(pin string) string {
	if pin == "1000" {
		return "1001"
	}
	return "1000"
}

func ptr[T any](v T) *T { return &v }
