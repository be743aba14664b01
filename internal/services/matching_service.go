package services

import (
	"context"
	"fmt"

	"gigmatch/internal/geo"
	"gigmatch/internal/models"
	"gigmatch/internal/storage"
	"gigmatch/internal/transport/dto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// indexSync keeps the proximity index in step with committed writes. Index
// failures are logged only; Reindex repairs drift at the next start.
type indexSync struct {
	index geo.Index
}

func jobEntry(j *models.Job) geo.Entry {
	return geo.Entry{
		ID:        j.ID,
		Point:     *j.Coordinates,
		Tags:      []string{j.Category},
		Urgent:    j.IsUrgent,
		CreatedAt: j.CreatedAt,
	}
}

func providerEntry(u *models.User) geo.Entry {
	p, _ := u.Provider()
	return geo.Entry{ID: u.ID, Point: *u.Coordinates, Tags: p.Skills, CreatedAt: u.CreatedAt}
}

func (s indexSync) job(ctx context.Context, j *models.Job) {
	if s.index == nil {
		return
	}
	var err error
	if j.Searchable() {
		err = s.index.Upsert(ctx, geo.KindJobs, jobEntry(j))
	} else {
		err = s.index.Remove(ctx, geo.KindJobs, j.ID)
	}
	if err != nil {
		zap.L().Warn("failed to sync job into geo index", zap.Stringer("job", j.ID), zap.Error(err))
	}
}

func (s indexSync) user(ctx context.Context, u *models.User) {
	if s.index == nil || u.Role() != models.RoleProvider {
		return
	}
	var err error
	if u.Searchable() {
		err = s.index.Upsert(ctx, geo.KindProviders, providerEntry(u))
	} else {
		err = s.index.Remove(ctx, geo.KindProviders, u.ID)
	}
	if err != nil {
		zap.L().Warn("failed to sync provider into geo index", zap.Stringer("user", u.ID), zap.Error(err))
	}
}

func (s indexSync) removeUser(ctx context.Context, id uuid.UUID) {
	if s.index == nil {
		return
	}
	if err := s.index.Remove(ctx, geo.KindProviders, id); err != nil {
		zap.L().Warn("failed to remove provider from geo index", zap.Stringer("user", id), zap.Error(err))
	}
}

type matchingService struct {
	store storage.Store
	index geo.Index
	cfg   Settings
}

// NewMatchingService creates a new instance of MatchingService.
func NewMatchingService(store storage.Store, index geo.Index, cfg Settings) MatchingService {
	return &matchingService{store: store, index: index, cfg: cfg}
}

// query builds the geo query, defaulting the radius and validating the center.
func (s *matchingService) query(center geo.Point, radius *float64, category string, limit int) (geo.Query, error) {
	q := geo.Query{Center: center, RadiusKm: s.cfg.DefaultRadiusKm, Tag: category, Limit: limit}
	if radius != nil {
		q.RadiusKm = *radius
	}
	if err := q.Validate(); err != nil {
		return q, validationError("%v", err)
	}
	return q, nil
}

func (s *matchingService) NearbyJobsForProvider(ctx context.Context, req *dto.NearbyRequest) (out []dto.NearbyJob, err error) {
	ctx, span, log := startSpan(ctx, "MatchingService.NearbyJobsForProvider",
		attribute.String("provider.id", req.UserID.String()))
	defer func() { endSpan(span, err) }()

	provider, err := s.store.Users().GetByID(ctx, req.UserID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching provider %s", req.UserID))
	}
	if provider.Role() != models.RoleProvider {
		return nil, fmt.Errorf("%w: only providers search for nearby jobs", ErrInvalidRole)
	}
	center := req.Point()
	if center == nil {
		center = provider.Coordinates
	}
	if center == nil {
		return nil, validationError("no search point given and provider has no stored location")
	}
	q, err := s.query(*center, req.Radius, req.Category, req.Limit)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	q.Limit = 0
	results, err := s.index.Within(ctx, geo.KindJobs, q)
	if err != nil {
		log.Error("geo query failed", zap.Error(err))
		return nil, fmt.Errorf("internal error searching nearby jobs: %w", err)
	}

	out = make([]dto.NearbyJob, 0, pageCap(len(results), limit))
	err = fillPage(results, limit, func(batch []geo.Result) (int, error) {
		jobs, err := s.store.Jobs().GetMany(ctx, resultIDs(batch))
		if err != nil {
			return 0, mapRepoError(err, "hydrating nearby jobs")
		}
		var added int
		for _, r := range batch {
			j, ok := jobs[r.ID]
			if !ok || j.Status != models.JobStatusOpen {
				// stale index entry; the job moved on after the index was written
				continue
			}
			out = append(out, dto.NearbyJob{Job: *j, DistanceKm: r.DistanceKm})
			added++
		}
		return added, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *matchingService) NearbyProvidersForHirer(ctx context.Context, req *dto.NearbyRequest) (out []dto.NearbyProvider, err error) {
	ctx, span, log := startSpan(ctx, "MatchingService.NearbyProvidersForHirer")
	defer func() { endSpan(span, err) }()

	center := req.Point()
	if center == nil {
		return nil, validationError("latitude and longitude are required")
	}
	q, err := s.query(*center, req.Radius, req.Category, req.Limit)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	q.Limit = 0
	results, err := s.index.Within(ctx, geo.KindProviders, q)
	if err != nil {
		log.Error("geo query failed", zap.Error(err))
		return nil, fmt.Errorf("internal error searching nearby providers: %w", err)
	}

	out = make([]dto.NearbyProvider, 0, pageCap(len(results), limit))
	err = fillPage(results, limit, func(batch []geo.Result) (int, error) {
		users, err := s.store.Users().GetMany(ctx, resultIDs(batch))
		if err != nil {
			return 0, mapRepoError(err, "hydrating nearby providers")
		}
		var added int
		for _, r := range batch {
			u, ok := users[r.ID]
			if !ok || !u.Searchable() {
				continue
			}
			out = append(out, dto.NearbyProvider{
				ProviderSummary: u.Summarize(),
				Coordinates:     *u.Coordinates,
				DistanceKm:      r.DistanceKm,
			})
			added++
		}
		return added, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// fillPage hydrates ranked results in order until limit live entries were
// added or the results run out. Each round fetches only as many as are still
// missing, so stale index entries never shorten the page. A limit of 0 takes
// everything in one round.
func fillPage(results []geo.Result, limit int, hydrate func(batch []geo.Result) (int, error)) error {
	var got int
	for start := 0; start < len(results) && (limit <= 0 || got < limit); {
		end := len(results)
		if limit > 0 && start+limit-got < end {
			end = start + limit - got
		}
		n, err := hydrate(results[start:end])
		if err != nil {
			return err
		}
		got += n
		start = end
	}
	return nil
}

func pageCap(n, limit int) int {
	if limit > 0 && limit < n {
		return limit
	}
	return n
}

func resultIDs(results []geo.Result) []uuid.UUID {
	ids := make([]uuid.UUID, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

// Reindex loads every open located job and available located provider into
// the index.
func (s *matchingService) Reindex(ctx context.Context) (err error) {
	ctx, span, log := startSpan(ctx, "MatchingService.Reindex")
	defer func() { endSpan(span, err) }()

	open := models.JobStatusOpen
	jobs, err := s.store.Jobs().List(ctx, storage.JobFilter{Status: &open})
	if err != nil {
		return mapRepoError(err, "listing open jobs for reindex")
	}
	var indexedJobs int
	for i := range jobs {
		j := &jobs[i].Job
		if !j.Searchable() {
			continue
		}
		if err := s.index.Upsert(ctx, geo.KindJobs, jobEntry(j)); err != nil {
			return fmt.Errorf("failed to index job %s: %w", j.ID, err)
		}
		indexedJobs++
	}

	role, available := models.RoleProvider, true
	providers, err := s.store.Users().List(ctx, storage.UserFilter{Role: &role, Available: &available})
	if err != nil {
		return mapRepoError(err, "listing providers for reindex")
	}
	var indexedProviders int
	for i := range providers {
		u := &providers[i].User
		if !u.Searchable() {
			continue
		}
		if err := s.index.Upsert(ctx, geo.KindProviders, providerEntry(u)); err != nil {
			return fmt.Errorf("failed to index provider %s: %w", u.ID, err)
		}
		indexedProviders++
	}

	log.Info("geo index rebuilt", zap.Int("jobs", indexedJobs), zap.Int("providers", indexedProviders))
	return nil
}
