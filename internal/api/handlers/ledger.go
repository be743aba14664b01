package handlers

import (
	"net/http"

	"gigmatch/internal/services"
	"gigmatch/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// LedgerHandler exposes the caller's earnings.
type LedgerHandler struct {
	service   services.LedgerService
	validator *validator.Validate
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(service services.LedgerService, validate *validator.Validate) *LedgerHandler {
	return &LedgerHandler{service: service, validator: validate}
}

// GetSummary returns the caller's earnings summary.
func (h *LedgerHandler) GetSummary(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	summary, err := h.service.Summarize(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListEntries returns the caller's ledger entries, newest first.
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	entries, err := h.service.ListEntries(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListWithdrawals returns the caller's withdrawal history, newest first.
func (h *LedgerHandler) ListWithdrawals(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	withdrawals, err := h.service.ListWithdrawals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withdrawals)
}

// Withdraw cashes out the requested amount, or the whole balance when omitted.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.WithdrawRequest
	if !bindJSON(c, &req, true) || !validate(c, h.validator, req) {
		return
	}
	req.ProviderID = userID

	resp, err := h.service.Withdraw(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
