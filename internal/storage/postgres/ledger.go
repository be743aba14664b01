package postgres

import (
	"context"
	"fmt"
	"time"

	"gigmatch/internal/models"
	"gigmatch/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// LedgerRepo implements the storage.LedgerRepository interface using PostgreSQL.
type LedgerRepo struct {
	db Querier
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(db *pgxpool.Pool) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// WithTx creates a new LedgerRepo with the transaction.
func (r *LedgerRepo) WithTx(tx pgx.Tx) storage.LedgerRepository {
	return &LedgerRepo{db: tx}
}

var _ storage.LedgerRepository = (*LedgerRepo)(nil)

const entryColumns = `id, job_id, provider_id, hirer_id, gross, fee, net, status,
	withdrawn_amount, withdrawn_at, completed_at, created_at`

func scanEntry(row pgx.Row) (models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := row.Scan(&e.ID, &e.JobID, &e.ProviderID, &e.HirerID, &e.Gross, &e.Fee, &e.Net, &e.Status,
		&e.WithdrawnAmount, &e.WithdrawnAt, &e.CompletedAt, &e.CreatedAt)
	return e, err
}

func (r *LedgerRepo) collectEntries(ctx context.Context, query string, args ...interface{}) ([]models.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "querying ledger entries")
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LedgerEntry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, mapPgError(err, "scanning ledger entries")
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return entries, nil
}

func (r *LedgerRepo) Create(ctx context.Context, entry *models.LedgerEntry) error {
	entry.CreatedAt = nowIfZero(entry.CreatedAt)
	query := `
		INSERT INTO ledger_entries (id, job_id, provider_id, hirer_id, gross, fee, net, status,
			withdrawn_amount, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		entry.ID, entry.JobID, entry.ProviderID, entry.HirerID, entry.Gross, entry.Fee, entry.Net,
		entry.Status, entry.WithdrawnAmount, entry.CompletedAt, entry.CreatedAt,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return mapPgError(err, "creating ledger entry")
	}
	zap.L().Debug("ledger entry created", zap.Stringer("job", entry.JobID), zap.Int64("net", entry.Net))
	return nil
}

func (r *LedgerRepo) GetByJob(ctx context.Context, jobID uuid.UUID) (*models.LedgerEntry, error) {
	e, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE job_id = $1`, jobID))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("getting ledger entry of job %s", jobID))
	}
	return &e, nil
}

func (r *LedgerRepo) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.LedgerEntry, error) {
	return r.collectEntries(ctx,
		`SELECT `+entryColumns+` FROM ledger_entries WHERE provider_id = $1 ORDER BY completed_at DESC, created_at DESC, id`,
		providerID)
}

// ListWithdrawable locks the provider's entries that still hold money.
func (r *LedgerRepo) ListWithdrawable(ctx context.Context, providerID uuid.UUID) ([]models.LedgerEntry, error) {
	return r.collectEntries(ctx, `
		SELECT `+entryColumns+` FROM ledger_entries
		WHERE provider_id = $1 AND status = 'completed' AND withdrawn_amount < net
		ORDER BY completed_at ASC, created_at ASC, id
		FOR UPDATE`,
		providerID)
}

func (r *LedgerRepo) MarkWithdrawn(ctx context.Context, id uuid.UUID, withdrawnAmount int64, withdrawnAt *time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE ledger_entries SET withdrawn_amount = $2, withdrawn_at = $3 WHERE id = $1`,
		id, withdrawnAmount, withdrawnAt)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("marking ledger entry %s withdrawn", id))
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *LedgerRepo) CreateWithdrawal(ctx context.Context, w *models.Withdrawal) error {
	w.CreatedAt = nowIfZero(w.CreatedAt)
	err := r.db.QueryRow(ctx, `
		INSERT INTO withdrawals (id, provider_id, amount, entry_ids, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		w.ID, w.ProviderID, w.Amount, w.EntryIDs, w.CreatedAt,
	).Scan(&w.CreatedAt)
	if err != nil {
		return mapPgError(err, "creating withdrawal")
	}
	return nil
}

func (r *LedgerRepo) ListWithdrawals(ctx context.Context, providerID uuid.UUID) ([]models.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, provider_id, amount, entry_ids, created_at FROM withdrawals
		WHERE provider_id = $1 ORDER BY created_at DESC, id`, providerID)
	if err != nil {
		return nil, mapPgError(err, "querying withdrawals")
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Withdrawal, error) {
		var w models.Withdrawal
		err := row.Scan(&w.ID, &w.ProviderID, &w.Amount, &w.EntryIDs, &w.CreatedAt)
		return w, err
	})
	if err != nil {
		return nil, mapPgError(err, "scanning withdrawals")
	}
	if out == nil {
		out = []models.Withdrawal{}
	}
	return out, nil
}
