package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gigmatch/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: title", services.ErrValidation), http.StatusBadRequest, "VALIDATION"},
		{services.ErrInvalidTransition, http.StatusBadRequest, "INVALID_TRANSITION"},
		{services.ErrInvalidPin, http.StatusBadRequest, "INVALID_PIN"},
		{services.ErrBelowMinimum, http.StatusBadRequest, "BELOW_MINIMUM"},
		{services.ErrInsufficientBalance, http.StatusBadRequest, "INSUFFICIENT_BALANCE"},
		{services.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{services.ErrApplicationNotFound, http.StatusNotFound, "APPLICATION_NOT_FOUND"},
		{services.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{services.ErrInvalidRole, http.StatusForbidden, "INVALID_ROLE"},
		{services.ErrConflict, http.StatusConflict, "CONFLICT"},
		{services.ErrDuplicateApplication, http.StatusConflict, "DUPLICATE_APPLICATION"},
		{services.ErrJobNotOpen, http.StatusConflict, "JOB_NOT_OPEN"},
		{fmt.Errorf("record: %w", services.ErrAlreadyRecorded), http.StatusConflict, "ALREADY_RECORDED"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}

	require.Equal(t, 1, logs.Len(), "only the unknown error is logged")
	assert.Equal(t, "request failed", logs.All()[0].Message)
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	got := FormatValidationErrors(errors.New("boom"))
	assert.Equal(t, map[string]string{"error": "boom"}, got)
}
