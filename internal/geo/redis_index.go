package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis measures with a slightly larger earth radius and stores geohashes, so
// candidate searches are widened and every hit is re-measured with Distance.
const (
	redisRadiusFactor = 1.001
	redisRadiusPadKm  = 0.05

	// RedisMaxLatitude is the limit of the Web Mercator projection GEOADD
	// accepts.
	RedisMaxLatitude = 85.05112878
)

var ErrLatitudeUnsupported = errors.New("latitude outside the range the redis geo index can store")

func checkRedisLatitude(p Point) error {
	if math.Abs(p.Latitude) > RedisMaxLatitude {
		return fmt.Errorf("%w: %v", ErrLatitudeUnsupported, p.Latitude)
	}
	return nil
}

// RedisIndex stores positions in a Redis GEO set per kind, plus a hash with
// the exact coordinates and ranking metadata of every member.
type RedisIndex struct {
	client *redis.Client
	prefix string
}

func NewRedisIndex(client *redis.Client, prefix string) *RedisIndex {
	if prefix == "" {
		prefix = "gigmatch"
	}
	return &RedisIndex{client: client, prefix: prefix}
}

var _ Index = (*RedisIndex)(nil)

type redisMeta struct {
	Point     Point    `json:"p"`
	Tags      []string `json:"t,omitempty"`
	Urgent    bool     `json:"u,omitempty"`
	CreatedAt int64    `json:"c"`
}

// geoKey returns "{prefix}:geo:{kind}".
func (r *RedisIndex) geoKey(kind Kind) string {
	return fmt.Sprintf("%s:geo:%s", r.prefix, kind)
}

// metaKey returns "{prefix}:geo:{kind}:meta".
func (r *RedisIndex) metaKey(kind Kind) string {
	return fmt.Sprintf("%s:geo:%s:meta", r.prefix, kind)
}

// Upsert writes the position and metadata in one MULTI. Points beyond
// RedisMaxLatitude are rejected before anything is sent.
func (r *RedisIndex) Upsert(ctx context.Context, kind Kind, e Entry) error {
	if err := e.Point.Validate(); err != nil {
		return err
	}
	if err := checkRedisLatitude(e.Point); err != nil {
		return err
	}
	meta, err := json.Marshal(redisMeta{
		Point:     e.Point,
		Tags:      e.Tags,
		Urgent:    e.Urgent,
		CreatedAt: e.CreatedAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("encode geo meta: %w", err)
	}

	member := e.ID.String()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.GeoAdd(ctx, r.geoKey(kind), &redis.GeoLocation{
			Name:      member,
			Longitude: e.Point.Longitude,
			Latitude:  e.Point.Latitude,
		})
		pipe.HSet(ctx, r.metaKey(kind), member, meta)
		return nil
	})
	if err != nil {
		return fmt.Errorf("geo upsert %s %s: %w", kind, member, err)
	}
	return nil
}

func (r *RedisIndex) Remove(ctx context.Context, kind Kind, id uuid.UUID) error {
	member := id.String()
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, r.geoKey(kind), member)
		pipe.HDel(ctx, r.metaKey(kind), member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("geo remove %s %s: %w", kind, member, err)
	}
	return nil
}

func (r *RedisIndex) Within(ctx context.Context, kind Kind, q Query) ([]Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := checkRedisLatitude(q.Center); err != nil {
		return nil, err
	}

	candidates, err := r.client.GeoSearch(ctx, r.geoKey(kind), &redis.GeoSearchQuery{
		Longitude:  q.Center.Longitude,
		Latitude:   q.Center.Latitude,
		Radius:     q.RadiusKm*redisRadiusFactor + redisRadiusPadKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geo search %s: %w", kind, err)
	}
	if len(candidates) == 0 {
		return []Result{}, nil
	}

	raw, err := r.client.HMGet(ctx, r.metaKey(kind), candidates...).Result()
	if err != nil {
		return nil, fmt.Errorf("geo meta %s: %w", kind, err)
	}

	results := make([]Result, 0, len(candidates))
	for i, member := range candidates {
		s, ok := raw[i].(string)
		if !ok {
			// removed between the two reads
			continue
		}
		id, err := uuid.Parse(member)
		if err != nil {
			zap.L().Warn("skipping malformed geo member", zap.String("kind", string(kind)), zap.String("member", member))
			continue
		}
		var meta redisMeta
		if err := json.Unmarshal([]byte(s), &meta); err != nil {
			zap.L().Warn("skipping undecodable geo meta", zap.String("member", member), zap.Error(err))
			continue
		}
		if !hasTag(meta.Tags, q.Tag) {
			continue
		}
		d, inside := Within(q.Center, meta.Point, q.RadiusKm)
		if !inside {
			continue
		}
		results = append(results, Result{
			ID:         id,
			DistanceKm: d,
			Urgent:     meta.Urgent,
			CreatedAt:  unixNano(meta.CreatedAt),
		})
	}

	Rank(results)
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func unixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
