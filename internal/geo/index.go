package geo

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind selects which population an index query runs against.
type Kind string

const (
	KindJobs      Kind = "jobs"
	KindProviders Kind = "providers"
)

var ErrInvalidRadius = errors.New("radius must be a positive number of kilometers")

// Entry is one located entity in the index.
type Entry struct {
	ID        uuid.UUID
	Point     Point
	Tags      []string // job category, or provider skills
	Urgent    bool
	CreatedAt time.Time
}

// Query describes a radius search.
type Query struct {
	Center   Point
	RadiusKm float64
	Tag      string // exact match against Entry.Tags when non-empty
	Limit    int    // 0 means unbounded
}

// Result is an entry annotated with its distance from the query center.
type Result struct {
	ID         uuid.UUID
	DistanceKm float64
	Urgent     bool
	CreatedAt  time.Time
}

// Index answers "within radius" queries over jobs and providers.
type Index interface {
	Upsert(ctx context.Context, kind Kind, e Entry) error
	Remove(ctx context.Context, kind Kind, id uuid.UUID) error
	Within(ctx context.Context, kind Kind, q Query) ([]Result, error)
}

// Validate checks the query center and radius. The radius must be finite.
func (q Query) Validate() error {
	if math.IsNaN(q.RadiusKm) || math.IsInf(q.RadiusKm, 0) || q.RadiusKm <= 0 {
		return ErrInvalidRadius
	}
	return q.Center.Validate()
}

// Rank orders results urgent first, then by ascending distance, then newest first.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Urgent != b.Urgent {
			return a.Urgent
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func hasTag(tags []string, tag string) bool {
	if tag == "" {
		return true
	}
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MemoryIndex keeps entries in process. Each upsert replaces the whole entry
// so readers never observe a half-updated entity.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[Kind]map[uuid.UUID]Entry
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		entries: map[Kind]map[uuid.UUID]Entry{
			KindJobs:      {},
			KindProviders: {},
		},
	}
}

var _ Index = (*MemoryIndex)(nil)

func (m *MemoryIndex) Upsert(_ context.Context, kind Kind, e Entry) error {
	if err := e.Point.Validate(); err != nil {
		return err
	}
	tags := make([]string, len(e.Tags))
	copy(tags, e.Tags)
	e.Tags = tags

	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.entries[kind]
	if !ok {
		bucket = map[uuid.UUID]Entry{}
		m.entries[kind] = bucket
	}
	bucket[e.ID] = e
	return nil
}

func (m *MemoryIndex) Remove(_ context.Context, kind Kind, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries[kind], id)
	return nil
}

func (m *MemoryIndex) Within(_ context.Context, kind Kind, q Query) ([]Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	results := make([]Result, 0)
	for _, e := range m.entries[kind] {
		if !hasTag(e.Tags, q.Tag) {
			continue
		}
		d, ok := Within(q.Center, e.Point, q.RadiusKm)
		if !ok {
			continue
		}
		results = append(results, Result{ID: e.ID, DistanceKm: d, Urgent: e.Urgent, CreatedAt: e.CreatedAt})
	}
	m.mu.RUnlock()

	Rank(results)
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

// Len returns the number of entries of the given kind.
func (m *MemoryIndex) Len(kind Kind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries[kind])
}
