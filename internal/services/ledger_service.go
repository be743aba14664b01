package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gigmatch/internal/events"
	"gigmatch/internal/models"
	"gigmatch/internal/storage"
	"gigmatch/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ledgerService struct {
	store  storage.Store
	events events.Publisher
	cfg    Settings
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(store storage.Store, pub events.Publisher, cfg Settings) LedgerService {
	return &ledgerService{store: store, events: pub, cfg: cfg}
}

func ledgerEvent(e *models.LedgerEntry) events.Event {
	return events.New(events.LedgerRecorded, e.ProviderID.String(), e)
}

// recordCompletion credits a completed job inside tx. It is the only place
// ledger entries are created, and it refuses a second entry for the job.
func recordCompletion(ctx context.Context, tx storage.Repositories, job *models.Job, rate decimal.Decimal, now time.Time) (*models.LedgerEntry, error) {
	if job.Status != models.JobStatusCompleted || job.AssignedProviderID == nil {
		return nil, fmt.Errorf("%w: job %s is %s, not completed", ErrInvalidTransition, job.ID, job.Status)
	}
	_, err := tx.Ledger().GetByJob(ctx, job.ID)
	switch {
	case err == nil:
		return nil, ErrAlreadyRecorded
	case !errors.Is(err, storage.ErrNotFound):
		return nil, mapRepoError(err, fmt.Sprintf("checking ledger for job %s", job.ID))
	}

	fee, net := computeFee(job.Budget, rate)
	completedAt := now
	if job.CompletedAt != nil {
		completedAt = *job.CompletedAt
	}
	entry := &models.LedgerEntry{
		ID:          uuid.New(),
		JobID:       job.ID,
		ProviderID:  *job.AssignedProviderID,
		HirerID:     job.HirerID,
		Gross:       job.Budget,
		Fee:         fee,
		Net:         net,
		Status:      models.PaymentCompleted,
		CompletedAt: completedAt,
		CreatedAt:   now,
	}
	if err := tx.Ledger().Create(ctx, entry); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrAlreadyRecorded
		}
		return nil, mapRepoError(err, fmt.Sprintf("recording ledger entry for job %s", job.ID))
	}

	if err := tx.Users().AddCounters(ctx, entry.HirerID, storage.CounterDelta{Spent: entry.Gross}); err != nil {
		return nil, mapRepoError(err, "crediting hirer spend")
	}
	if err := tx.Users().AddCounters(ctx, entry.ProviderID, storage.CounterDelta{Earnings: entry.Net}); err != nil {
		return nil, mapRepoError(err, "crediting provider earnings")
	}
	return entry, nil
}

func (s *ledgerService) RecordCompletion(ctx context.Context, jobID uuid.UUID) (entry *models.LedgerEntry, err error) {
	ctx, span, log := startSpan(ctx, "LedgerService.RecordCompletion", attribute.String("job.id", jobID.String()))
	defer func() { endSpan(span, err) }()

	err = inTx(ctx, s.store, "recording completion", func(ctx context.Context, tx storage.Repositories) error {
		job, err := tx.Jobs().GetForUpdate(ctx, jobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", jobID))
		}
		entry, err = recordCompletion(ctx, tx, job, s.cfg.FeeRate, s.cfg.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, ledgerEvent(entry))
	log.Info("completion recorded", zap.Stringer("job", jobID), zap.Int64("fee", entry.Fee), zap.Int64("net", entry.Net))
	return entry, nil
}

func (s *ledgerService) requireProvider(ctx context.Context, users storage.UserRepository, id uuid.UUID) error {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err, fmt.Sprintf("fetching provider %s", id))
	}
	if u.Role() != models.RoleProvider {
		return fmt.Errorf("%w: only providers have earnings", ErrInvalidRole)
	}
	return nil
}

func (s *ledgerService) Withdraw(ctx context.Context, req *dto.WithdrawRequest) (resp *dto.WithdrawalResponse, err error) {
	ctx, span, log := startSpan(ctx, "LedgerService.Withdraw", attribute.String("provider.id", req.ProviderID.String()))
	defer func() { endSpan(span, err) }()

	err = inTx(ctx, s.store, "withdrawing earnings", func(ctx context.Context, tx storage.Repositories) error {
		if err := s.requireProvider(ctx, tx.Users(), req.ProviderID); err != nil {
			return err
		}
		entries, err := tx.Ledger().ListWithdrawable(ctx, req.ProviderID)
		if err != nil {
			return mapRepoError(err, "listing withdrawable entries")
		}
		var balance int64
		for i := range entries {
			balance += entries[i].Available()
		}

		amount := balance
		if req.Amount != nil {
			amount = *req.Amount
		}
		if balance < s.cfg.MinWithdrawal || amount < s.cfg.MinWithdrawal {
			return fmt.Errorf("%w: minimum is %d, requested %d of %d available",
				ErrBelowMinimum, s.cfg.MinWithdrawal, amount, balance)
		}
		if amount > balance {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientBalance, amount, balance)
		}

		now := s.cfg.now()
		w := &models.Withdrawal{ID: uuid.New(), ProviderID: req.ProviderID, Amount: amount, CreatedAt: now}
		remaining := amount
		for i := range entries {
			if remaining == 0 {
				break
			}
			e := &entries[i]
			take := e.Available()
			if take > remaining {
				take = remaining
			}
			withdrawn := e.WithdrawnAmount + take
			var at *time.Time
			if withdrawn == e.Net {
				at = &now
			}
			if err := tx.Ledger().MarkWithdrawn(ctx, e.ID, withdrawn, at); err != nil {
				return mapRepoError(err, fmt.Sprintf("debiting ledger entry %s", e.ID))
			}
			w.EntryIDs = append(w.EntryIDs, e.ID)
			remaining -= take
		}
		if err := tx.Ledger().CreateWithdrawal(ctx, w); err != nil {
			return mapRepoError(err, "recording withdrawal")
		}
		resp = &dto.WithdrawalResponse{Withdrawal: *w, RemainingBalance: balance - amount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.New(events.WithdrawalRequested, req.ProviderID.String(), resp.Withdrawal))
	log.Info("withdrawal requested", zap.Stringer("provider", req.ProviderID),
		zap.Int64("amount", resp.Amount), zap.Int64("remaining", resp.RemainingBalance))
	return resp, nil
}

// periodStarts returns the first instant of now's UTC month and ISO week.
func periodStarts(now time.Time) (month, week time.Time) {
	now = now.UTC()
	y, m, d := now.Date()
	month = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	sinceMonday := (int(now.Weekday()) + 6) % 7
	week = time.Date(y, m, d-sinceMonday, 0, 0, 0, 0, time.UTC)
	return month, week
}

func (s *ledgerService) Summarize(ctx context.Context, providerID uuid.UUID) (sum *models.EarningsSummary, err error) {
	ctx, span, _ := startSpan(ctx, "LedgerService.Summarize", attribute.String("provider.id", providerID.String()))
	defer func() { endSpan(span, err) }()

	if err := s.requireProvider(ctx, s.store.Users(), providerID); err != nil {
		return nil, err
	}
	entries, err := s.store.Ledger().ListByProvider(ctx, providerID)
	if err != nil {
		return nil, mapRepoError(err, "listing ledger entries")
	}
	pending, err := s.store.Jobs().SumBudgetForProvider(ctx, providerID,
		[]models.JobStatus{models.JobStatusAssigned, models.JobStatusInProgress})
	if err != nil {
		return nil, mapRepoError(err, "summing ongoing jobs")
	}

	month, week := periodStarts(s.cfg.now())
	sum = &models.EarningsSummary{PendingFromOngoingJobs: pending}
	for i := range entries {
		e := &entries[i]
		if e.Status != models.PaymentCompleted {
			continue
		}
		sum.CompletedJobs++
		sum.Total += e.Net
		sum.Withdrawn += e.WithdrawnAmount
		sum.AvailableForWithdrawal += e.Available()
		if !e.CompletedAt.Before(month) {
			sum.ThisMonth += e.Net
		}
		if !e.CompletedAt.Before(week) {
			sum.ThisWeek += e.Net
		}
	}
	return sum, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, providerID uuid.UUID) ([]models.LedgerEntry, error) {
	if err := s.requireProvider(ctx, s.store.Users(), providerID); err != nil {
		return nil, err
	}
	entries, err := s.store.Ledger().ListByProvider(ctx, providerID)
	if err != nil {
		return nil, mapRepoError(err, "listing ledger entries")
	}
	return entries, nil
}

func (s *ledgerService) ListWithdrawals(ctx context.Context, providerID uuid.UUID) ([]models.Withdrawal, error) {
	if err := s.requireProvider(ctx, s.store.Users(), providerID); err != nil {
		return nil, err
	}
	withdrawals, err := s.store.Ledger().ListWithdrawals(ctx, providerID)
	if err != nil {
		return nil, mapRepoError(err, "listing withdrawals")
	}
	return withdrawals, nil
}
