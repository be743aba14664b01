package geo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"gigmatch/internal/geo"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisIndex connects to TEST_REDIS_URL (e.g. redis://localhost:6379/15)
// and namespaces keys per test so runs do not interfere.
func newTestRedisIndex(t *testing.T) *geo.RedisIndex {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping Redis geo index tests")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err(), "redis not reachable")

	prefix := "gigmatch-test-" + uuid.NewString()
	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
	})
	return geo.NewRedisIndex(client, prefix)
}

func TestRedisIndex_MatchesMemoryIndexOrdering(t *testing.T) {
	ctx := context.Background()
	ridx := newTestRedisIndex(t)
	midx := geo.NewMemoryIndex()
	center := geo.Point{Latitude: 12.9716, Longitude: 77.5946}
	now := time.Now()

	entries := []geo.Entry{
		{ID: uuid.New(), Point: geo.Point{Latitude: 12.975, Longitude: 77.5946}, Tags: []string{"cleaning"}, CreatedAt: now},
		{ID: uuid.New(), Point: geo.Point{Latitude: 13.02, Longitude: 77.5946}, Tags: []string{"cleaning"}, Urgent: true, CreatedAt: now},
		{ID: uuid.New(), Point: geo.Point{Latitude: 13.00, Longitude: 77.61}, Tags: []string{"painting"}, CreatedAt: now.Add(-time.Minute)},
		{ID: uuid.New(), Point: geo.Point{Latitude: 13.5, Longitude: 77.5946}, Tags: []string{"cleaning"}, CreatedAt: now},
	}
	for _, e := range entries {
		require.NoError(t, ridx.Upsert(ctx, geo.KindJobs, e))
		require.NoError(t, midx.Upsert(ctx, geo.KindJobs, e))
	}

	for _, q := range []geo.Query{
		{Center: center, RadiusKm: 10},
		{Center: center, RadiusKm: 10, Tag: "cleaning"},
		{Center: center, RadiusKm: 100, Limit: 2},
	} {
		want, err := midx.Within(ctx, geo.KindJobs, q)
		require.NoError(t, err)
		got, err := ridx.Within(ctx, geo.KindJobs, q)
		require.NoError(t, err)

		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
			assert.InDelta(t, want[i].DistanceKm, got[i].DistanceKm, 1e-9)
			assert.Equal(t, want[i].Urgent, got[i].Urgent)
		}
	}
}

func TestRedisIndex_BoundaryAndRemove(t *testing.T) {
	ctx := context.Background()
	ridx := newTestRedisIndex(t)
	center := geo.Point{Latitude: 19.0760, Longitude: 72.8777}
	p := geo.Point{Latitude: 19.1, Longitude: 72.9}
	id := uuid.New()
	require.NoError(t, ridx.Upsert(ctx, geo.KindProviders, geo.Entry{ID: id, Point: p, Tags: []string{"driver"}}))

	r := geo.Distance(center, p)
	got, err := ridx.Within(ctx, geo.KindProviders, geo.Query{Center: center, RadiusKm: r})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = ridx.Within(ctx, geo.KindProviders, geo.Query{Center: center, RadiusKm: r * (1 - 1e-9)})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, ridx.Remove(ctx, geo.KindProviders, id))
	got, err = ridx.Within(ctx, geo.KindProviders, geo.Query{Center: center, RadiusKm: 50})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisIndex_RejectsPolarLatitudesWithoutRedis(t *testing.T) {
	// nothing listens here; the rejection must happen before any command
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	idx := geo.NewRedisIndex(client, "unused")
	ctx := context.Background()

	for _, lat := range []float64{85.06, -85.06, 90} {
		err := idx.Upsert(ctx, geo.KindJobs, geo.Entry{ID: uuid.New(), Point: geo.Point{Latitude: lat}})
		assert.ErrorIs(t, err, geo.ErrLatitudeUnsupported, "latitude %v", lat)
	}
	_, err := idx.Within(ctx, geo.KindJobs, geo.Query{Center: geo.Point{Latitude: 89}, RadiusKm: 5})
	assert.ErrorIs(t, err, geo.ErrLatitudeUnsupported)
}

func TestRedisIndex_RejectedPolarUpsertLeavesNoEntry(t *testing.T) {
	ctx := context.Background()
	idx := newTestRedisIndex(t)
	polar := geo.Entry{ID: uuid.New(), Point: geo.Point{Latitude: 85.5, Longitude: 10}, CreatedAt: time.Now()}
	edge := geo.Entry{ID: uuid.New(), Point: geo.Point{Latitude: geo.RedisMaxLatitude, Longitude: 10}, CreatedAt: time.Now()}

	assert.ErrorIs(t, idx.Upsert(ctx, geo.KindJobs, polar), geo.ErrLatitudeUnsupported)
	require.NoError(t, idx.Upsert(ctx, geo.KindJobs, edge))

	got, err := idx.Within(ctx, geo.KindJobs, geo.Query{Center: geo.Point{Latitude: 85, Longitude: 10}, RadiusKm: 200})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, edge.ID, got[0].ID)
}
