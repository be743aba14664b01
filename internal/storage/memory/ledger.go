package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gigmatch/internal/models"
	"gigmatch/internal/storage"

	"github.com/google/uuid"
)

// LedgerRepo implements storage.LedgerRepository over the in-memory tables.
type LedgerRepo struct {
	h handle
}

var _ storage.LedgerRepository = (*LedgerRepo)(nil)

func cloneEntry(e models.LedgerEntry) models.LedgerEntry {
	if e.WithdrawnAt != nil {
		t := *e.WithdrawnAt
		e.WithdrawnAt = &t
	}
	return e
}

func (r *LedgerRepo) Create(_ context.Context, entry *models.LedgerEntry) error {
	return r.h.write(func(st *state) error {
		if _, dup := st.entryByJob[entry.JobID]; dup {
			return fmt.Errorf("ledger entry for job %s: %w", entry.JobID, storage.ErrConflict)
		}
		if _, ok := st.jobs[entry.JobID]; !ok {
			return fmt.Errorf("failed to create ledger entry: invalid job ID: %w", storage.ErrConflict)
		}
		if entry.Gross != entry.Fee+entry.Net {
			return fmt.Errorf("ledger entry for job %s does not balance", entry.JobID)
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = r.h.now()
		}
		st.entries[entry.ID] = cloneEntry(*entry)
		st.entryByJob[entry.JobID] = entry.ID
		st.stamp(entry.ID)
		return nil
	})
}

func (r *LedgerRepo) GetByJob(_ context.Context, jobID uuid.UUID) (*models.LedgerEntry, error) {
	var (
		e  models.LedgerEntry
		ok bool
	)
	r.h.read(func(st *state) {
		var id uuid.UUID
		if id, ok = st.entryByJob[jobID]; ok {
			e = cloneEntry(st.entries[id])
		}
	})
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &e, nil
}

func (r *LedgerRepo) collect(providerID uuid.UUID, keep func(models.LedgerEntry) bool) ([]models.LedgerEntry, map[uuid.UUID]int64) {
	out := []models.LedgerEntry{}
	seqs := map[uuid.UUID]int64{}
	r.h.read(func(st *state) {
		for _, e := range st.entries {
			if e.ProviderID != providerID || !keep(e) {
				continue
			}
			out = append(out, cloneEntry(e))
			seqs[e.ID] = st.seqs[e.ID]
		}
	})
	return out, seqs
}

func (r *LedgerRepo) ListByProvider(_ context.Context, providerID uuid.UUID) ([]models.LedgerEntry, error) {
	entries, seqs := r.collect(providerID, func(models.LedgerEntry) bool { return true })
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CompletedAt.Equal(entries[j].CompletedAt) {
			return entries[i].CompletedAt.After(entries[j].CompletedAt)
		}
		return seqs[entries[i].ID] > seqs[entries[j].ID]
	})
	return entries, nil
}

func (r *LedgerRepo) ListWithdrawable(_ context.Context, providerID uuid.UUID) ([]models.LedgerEntry, error) {
	entries, seqs := r.collect(providerID, func(e models.LedgerEntry) bool { return e.Available() > 0 })
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CompletedAt.Equal(entries[j].CompletedAt) {
			return entries[i].CompletedAt.Before(entries[j].CompletedAt)
		}
		return seqs[entries[i].ID] < seqs[entries[j].ID]
	})
	return entries, nil
}

func (r *LedgerRepo) MarkWithdrawn(_ context.Context, id uuid.UUID, withdrawnAmount int64, withdrawnAt *time.Time) error {
	return r.h.write(func(st *state) error {
		e, ok := st.entries[id]
		if !ok {
			return storage.ErrNotFound
		}
		if withdrawnAmount < 0 || withdrawnAmount > e.Net {
			return fmt.Errorf("withdrawn amount %d outside [0, %d] for entry %s", withdrawnAmount, e.Net, id)
		}
		e.WithdrawnAmount = withdrawnAmount
		e.WithdrawnAt = nil
		if withdrawnAt != nil {
			t := *withdrawnAt
			e.WithdrawnAt = &t
		}
		st.entries[id] = e
		return nil
	})
}

func (r *LedgerRepo) CreateWithdrawal(_ context.Context, w *models.Withdrawal) error {
	return r.h.write(func(st *state) error {
		if _, dup := st.withdrawals[w.ID]; dup {
			return fmt.Errorf("withdrawal %s: %w", w.ID, storage.ErrConflict)
		}
		if w.CreatedAt.IsZero() {
			w.CreatedAt = r.h.now()
		}
		c := *w
		c.EntryIDs = append([]uuid.UUID(nil), w.EntryIDs...)
		st.withdrawals[w.ID] = c
		st.stamp(w.ID)
		return nil
	})
}

func (r *LedgerRepo) ListWithdrawals(_ context.Context, providerID uuid.UUID) ([]models.Withdrawal, error) {
	out := []models.Withdrawal{}
	seqs := map[uuid.UUID]int64{}
	r.h.read(func(st *state) {
		for _, w := range st.withdrawals {
			if w.ProviderID == providerID {
				out = append(out, w)
				seqs[w.ID] = st.seqs[w.ID]
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return seqs[out[i].ID] > seqs[out[j].ID] })
	return out, nil
}
