// Package memory is an in-process implementation of the storage contract,
// used by tests and by `serve` when storage.driver is "memory".
package memory

import (
	"context"
	"sync"
	"time"

	"gigmatch/internal/models"
	"gigmatch/internal/storage"

	"github.com/google/uuid"
)

type appKey struct{ job, provider uuid.UUID }

type reviewKey struct{ job, reviewer uuid.UUID }

type state struct {
	users       map[uuid.UUID]models.User
	phones      map[string]uuid.UUID
	jobs        map[uuid.UUID]models.Job
	apps        map[uuid.UUID]models.Application
	appKeys     map[appKey]uuid.UUID
	entries     map[uuid.UUID]models.LedgerEntry
	entryByJob  map[uuid.UUID]uuid.UUID
	withdrawals map[uuid.UUID]models.Withdrawal
	reviews     map[uuid.UUID]models.Review
	reviewKeys  map[reviewKey]uuid.UUID
	// insertion sequence, used to break timestamp ties
	seqs map[uuid.UUID]int64
	seq  int64
}

func newState() *state {
	return &state{
		users:       map[uuid.UUID]models.User{},
		phones:      map[string]uuid.UUID{},
		jobs:        map[uuid.UUID]models.Job{},
		apps:        map[uuid.UUID]models.Application{},
		appKeys:     map[appKey]uuid.UUID{},
		entries:     map[uuid.UUID]models.LedgerEntry{},
		entryByJob:  map[uuid.UUID]uuid.UUID{},
		withdrawals: map[uuid.UUID]models.Withdrawal{},
		reviews:     map[uuid.UUID]models.Review{},
		reviewKeys:  map[reviewKey]uuid.UUID{},
		seqs:        map[uuid.UUID]int64{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies every table. Stored values are never mutated in place, so a
// shallow copy of each map is enough for isolation.
func (s *state) clone() *state {
	return &state{
		users:       cloneMap(s.users),
		phones:      cloneMap(s.phones),
		jobs:        cloneMap(s.jobs),
		apps:        cloneMap(s.apps),
		appKeys:     cloneMap(s.appKeys),
		entries:     cloneMap(s.entries),
		entryByJob:  cloneMap(s.entryByJob),
		withdrawals: cloneMap(s.withdrawals),
		reviews:     cloneMap(s.reviews),
		reviewKeys:  cloneMap(s.reviewKeys),
		seqs:        cloneMap(s.seqs),
		seq:         s.seq,
	}
}

func (s *state) stamp(id uuid.UUID) {
	s.seq++
	s.seqs[id] = s.seq
}

// Store keeps all tables in memory. Transactions are serialized and work on
// a private copy that replaces the live tables on success.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Users() storage.UserRepository { return &UserRepo{h: handle{s: s}} }
func (s *Store) Jobs() storage.JobRepository { return &JobRepo{h: handle{s: s}} }
func (s *Store) Applications() storage.ApplicationRepository { return &ApplicationRepo{h: handle{s: s}} }
func (s *Store) Ledger() storage.LedgerRepository { return &LedgerRepo{h: handle{s: s}} }
func (s *Store) Reviews() storage.ReviewRepository { return &ReviewRepo{h: handle{s: s}} }

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx storage.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, txRepos{h: handle{s: s, tx: work}}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() {}

type txRepos struct{ h handle }

func (t txRepos) Users() storage.UserRepository { return &UserRepo{h: t.h} }
func (t txRepos) Jobs() storage.JobRepository { return &JobRepo{h: t.h} }
func (t txRepos) Applications() storage.ApplicationRepository { return &ApplicationRepo{h: t.h} }
func (t txRepos) Ledger() storage.LedgerRepository { return &LedgerRepo{h: t.h} }
func (t txRepos) Reviews() storage.ReviewRepository { return &ReviewRepo{h: t.h} }

// handle routes repository calls either to the live tables under the store
// lock, or to a transaction's private copy (already exclusively held).
type handle struct {
	s  *Store
	tx *state
}

func (h handle) read(fn func(st *state)) {
	if h.tx != nil {
		fn(h.tx)
		return
	}
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	fn(h.s.st)
}

func (h handle) write(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return fn(h.s.st)
}

func (h handle) now() time.Time { return h.s.now() }

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
