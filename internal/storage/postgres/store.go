// Package postgres implements the storage contract on PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"

	"gigmatch/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so every
// repository works the same inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store bundles the repositories over one connection pool.
type Store struct {
	pool *pgxpool.Pool

	users        *UserRepo
	jobs         *JobRepo
	applications *ApplicationRepo
	ledger       *LedgerRepo
	reviews      *ReviewRepo
}

// NewStore wraps an established pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:         pool,
		users:        NewUserRepo(pool),
		jobs:         NewJobRepo(pool),
		applications: NewApplicationRepo(pool),
		ledger:       NewLedgerRepo(pool),
		reviews:      NewReviewRepo(pool),
	}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Users() storage.UserRepository { return s.users }
func (s *Store) Jobs() storage.JobRepository { return s.jobs }
func (s *Store) Applications() storage.ApplicationRepository { return s.applications }
func (s *Store) Ledger() storage.LedgerRepository { return s.ledger }
func (s *Store) Reviews() storage.ReviewRepository { return s.reviews }

// RunInTx begins a transaction, hands fn repositories bound to it and commits
// when fn succeeds. Any error rolls everything back.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx storage.Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		zap.L().Error("postgres: error beginning transaction", zap.Error(err))
		return fmt.Errorf("internal error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	if err := fn(ctx, txRepos{store: s, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		zap.L().Error("postgres: error committing transaction", zap.Error(err))
		return mapPgError(err, "committing transaction")
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() { s.pool.Close() }

// txRepos rebinds the store's repositories to one transaction.
type txRepos struct {
	store *Store
	tx    pgx.Tx
}

func (t txRepos) Users() storage.UserRepository { return t.store.users.WithTx(t.tx) }
func (t txRepos) Jobs() storage.JobRepository { return t.store.jobs.WithTx(t.tx) }
func (t txRepos) Applications() storage.ApplicationRepository {
	return t.store.applications.WithTx(t.tx)
}
func (t txRepos) Ledger() storage.LedgerRepository { return t.store.ledger.WithTx(t.tx) }
func (t txRepos) Reviews() storage.ReviewRepository { return t.store.reviews.WithTx(t.tx) }
