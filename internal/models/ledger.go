package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEntry records the payout of one completed job.
type LedgerEntry struct {
	ID              uuid.UUID     `json:"id"`
	JobID           uuid.UUID     `json:"jobId"`
	ProviderID      uuid.UUID     `json:"providerId"`
	HirerID         uuid.UUID     `json:"hirerId"`
	Gross           int64         `json:"gross"`
	Fee             int64         `json:"fee"`
	Net             int64         `json:"net"`
	Status          PaymentStatus `json:"status"`
	WithdrawnAmount int64         `json:"withdrawnAmount"`
	WithdrawnAt     *time.Time    `json:"withdrawnAt,omitempty"`
	CompletedAt     time.Time     `json:"completedAt"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Available is the part of the net amount not yet withdrawn.
func (e *LedgerEntry) Available() int64 {
	if e.Status != PaymentCompleted {
		return 0
	}
	return e.Net - e.WithdrawnAmount
}

// Withdrawal is one cash-out request by a provider.
type Withdrawal struct {
	ID         uuid.UUID   `json:"id"`
	ProviderID uuid.UUID   `json:"providerId"`
	Amount     int64       `json:"amount"`
	EntryIDs   []uuid.UUID `json:"entryIds"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// EarningsSummary aggregates a provider's ledger.
type EarningsSummary struct {
	Total                  int64 `json:"total"`
	ThisMonth              int64 `json:"thisMonth"`
	ThisWeek               int64 `json:"thisWeek"`
	AvailableForWithdrawal int64 `json:"availableForWithdrawal"`
	PendingFromOngoingJobs int64 `json:"pendingFromOngoingJobs"`
	Withdrawn              int64 `json:"withdrawn"`
	CompletedJobs          int   `json:"completedJobs"`
}
