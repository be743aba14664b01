package dto

import (
	"gigmatch/internal/models"

	"github.com/google/uuid"
)

// WithdrawRequest asks to cash out. A nil Amount withdraws the whole balance.
type WithdrawRequest struct {
	ProviderID uuid.UUID `json:"-"` // Set from user context
	Amount     *int64    `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

// WithdrawalResponse is a withdrawal plus the balance left after it.
type WithdrawalResponse struct {
	models.Withdrawal
	RemainingBalance int64 `json:"remainingBalance"`
}
