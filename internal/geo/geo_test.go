package geo_test

import (
	"context"
	"math"
	"testing"
	"time"

	"gigmatch/internal/geo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance_KnownPairs(t *testing.T) {
	tests := []struct {
		name string
		a, b geo.Point
		want float64
		tol  float64
	}{
		{"same point", geo.Point{Latitude: 12.97, Longitude: 77.59}, geo.Point{Latitude: 12.97, Longitude: 77.59}, 0, 1e-9},
		{"one degree of longitude on the equator", geo.Point{}, geo.Point{Longitude: 1}, 111.195, 0.01},
		{"Bengaluru to Chennai", geo.Point{Latitude: 12.9716, Longitude: 77.5946}, geo.Point{Latitude: 13.0827, Longitude: 80.2707}, 290.2, 1.0},
		{"antipodal", geo.Point{Latitude: 0, Longitude: 0}, geo.Point{Latitude: 0, Longitude: 180}, math.Pi * geo.EarthRadiusKm, 1e-6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, geo.Distance(tt.a, tt.b), tt.tol)
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	points := []geo.Point{
		{Latitude: 12.9716, Longitude: 77.5946},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 51.5074, Longitude: -0.1278},
		{Latitude: 89.9, Longitude: -179.9},
		{Latitude: -45.5, Longitude: 0.0001},
	}
	for _, a := range points {
		for _, b := range points {
			assert.Equal(t, geo.Distance(a, b), geo.Distance(b, a), "distance(%v,%v)", a, b)
		}
	}
}

func TestWithin_BoundaryIsInclusive(t *testing.T) {
	center := geo.Point{Latitude: 12.9716, Longitude: 77.5946}
	p := geo.Point{Latitude: 13.02, Longitude: 77.63}
	r := geo.Distance(center, p)

	_, ok := geo.Within(center, p, r)
	assert.True(t, ok, "point exactly at the radius is included")

	_, ok = geo.Within(center, p, r-1e-9)
	assert.False(t, ok, "point just beyond the radius is excluded")
}

func TestPoint_Validate(t *testing.T) {
	assert.NoError(t, geo.Point{Latitude: 90, Longitude: -180}.Validate())
	assert.Error(t, geo.Point{Latitude: 90.01, Longitude: 0}.Validate())
	assert.Error(t, geo.Point{Latitude: 0, Longitude: 180.5}.Validate())
	assert.Error(t, geo.Point{Latitude: math.NaN(), Longitude: 0}.Validate())
}

func TestMemoryIndex_WithinOrdersUrgentThenDistanceThenRecency(t *testing.T) {
	ctx := context.Background()
	idx := geo.NewMemoryIndex()
	center := geo.Point{Latitude: 12.9716, Longitude: 77.5946}
	now := time.Now()

	near := uuid.New()
	far := uuid.New()
	urgentFar := uuid.New()
	tieOld := uuid.New()
	tieNew := uuid.New()
	outside := uuid.New()

	require.NoError(t, idx.Upsert(ctx, geo.KindJobs, geo.Entry{ID: near, Point: geo.Point{Latitude: 12.975, Longitude: 77.5946}, Tags: []string{"plumbing"}, CreatedAt: now}))
	require.NoError(t, idx.Upsert(ctx, geo.KindJobs, geo.Entry{ID: far, Point: geo.Point{Latitude: 13.02, Longitude: 77.5946}, Tags: []string{"plumbing"}, CreatedAt: now}))
	require.NoError(t, idx.Upsert(ctx, geo.KindJobs, geo.Entry{ID: urgentFar, Point: geo.Point{Latitude: 13.03, Longitude: 77.5946}, Tags: []string{"plumbing"}, Urgent: true, CreatedAt: now}))
	tiePoint := geo.Point{Latitude: 12.99, Longitude: 77.5946}
	require.NoError(t, idx.Upsert(ctx, geo.KindJobs, geo.Entry{ID: tieOld, Point: tiePoint, Tags: []string{"plumbing"}, CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, idx.Upsert(ctx, geo.KindJobs, geo.Entry{ID: tieNew, Point: tiePoint, Tags: []string{"plumbing"}, CreatedAt: now}))
	require.NoError(t, idx.Upsert(ctx, geo.KindJobs, geo.Entry{ID: outside, Point: geo.Point{Latitude: 14.0, Longitude: 77.5946}, Tags: []string{"plumbing"}, CreatedAt: now}))

	results, err := idx.Within(ctx, geo.KindJobs, geo.Query{Center: center, RadiusKm: 10})
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []uuid.UUID{urgentFar, near, tieNew, tieOld, far}, ids)
	for i := 1; i < len(results); i++ {
		if results[i-1].Urgent == results[i].Urgent {
			assert.LessOrEqual(t, results[i-1].DistanceKm, results[i].DistanceKm)
		}
	}
}

func TestMemoryIndex_TagFilterAndRemove(t *testing.T) {
	ctx := context.Background()
	idx := geo.NewMemoryIndex()
	center := geo.Point{Latitude: 28.6139, Longitude: 77.2090}

	electrician := uuid.New()
	carpenter := uuid.New()
	require.NoError(t, idx.Upsert(ctx, geo.KindProviders, geo.Entry{ID: electrician, Point: center, Tags: []string{"electrician", "ac-repair"}}))
	require.NoError(t, idx.Upsert(ctx, geo.KindProviders, geo.Entry{ID: carpenter, Point: center, Tags: []string{"carpenter"}}))

	results, err := idx.Within(ctx, geo.KindProviders, geo.Query{Center: center, RadiusKm: 1, Tag: "ac-repair"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, electrician, results[0].ID)

	require.NoError(t, idx.Remove(ctx, geo.KindProviders, electrician))
	results, err = idx.Within(ctx, geo.KindProviders, geo.Query{Center: center, RadiusKm: 1, Tag: "ac-repair"})
	require.NoError(t, err)
	assert.Empty(t, results)

	// kinds are separate populations
	results, err = idx.Within(ctx, geo.KindJobs, geo.Query{Center: center, RadiusKm: 1})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryIndex_RejectsBadQueries(t *testing.T) {
	idx := geo.NewMemoryIndex()
	_, err := idx.Within(context.Background(), geo.KindJobs, geo.Query{Center: geo.Point{}, RadiusKm: 0})
	assert.ErrorIs(t, err, geo.ErrInvalidRadius)

	for _, r := range []float64{-1, math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err = idx.Within(context.Background(), geo.KindJobs, geo.Query{Center: geo.Point{}, RadiusKm: r})
		assert.ErrorIs(t, err, geo.ErrInvalidRadius, "radius %v", r)
	}

	_, err = idx.Within(context.Background(), geo.KindJobs, geo.Query{Center: geo.Point{Latitude: 95}, RadiusKm: 5})
	assert.Error(t, err)

	err = idx.Upsert(context.Background(), geo.KindJobs, geo.Entry{ID: uuid.New(), Point: geo.Point{Longitude: 200}})
	assert.Error(t, err)
}

func TestMemoryIndex_RadiusBoundary(t *testing.T) {
	ctx := context.Background()
	idx := geo.NewMemoryIndex()
	center := geo.Point{Latitude: 19.0760, Longitude: 72.8777}
	p := geo.Point{Latitude: 19.1, Longitude: 72.9}
	id := uuid.New()
	require.NoError(t, idx.Upsert(ctx, geo.KindJobs, geo.Entry{ID: id, Point: p}))

	r := geo.Distance(center, p)
	results, err := idx.Within(ctx, geo.KindJobs, geo.Query{Center: center, RadiusKm: r})
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = idx.Within(ctx, geo.KindJobs, geo.Query{Center: center, RadiusKm: r * (1 - 1e-9)})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryIndex_ConcurrentReadersAndWriters(t *testing.T) {
	ctx := context.Background()
	idx := geo.NewMemoryIndex()
	center := geo.Point{Latitude: 12.9716, Longitude: 77.5946}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			id := uuid.New()
			_ = idx.Upsert(ctx, geo.KindProviders, geo.Entry{ID: id, Point: center})
			if i%2 == 0 {
				_ = idx.Remove(ctx, geo.KindProviders, id)
			}
		}
	}()
	for i := 0; i < 200; i++ {
		_, err := idx.Within(ctx, geo.KindProviders, geo.Query{Center: center, RadiusKm: 1})
		require.NoError(t, err)
	}
	<-done
	assert.Equal(t, 100, idx.Len(geo.KindProviders))
}
