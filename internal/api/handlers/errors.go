package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"gigmatch/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// errorKind maps a service error to its wire code and status.
type errorKind struct {
	err    error
	code   string
	status int
}

// Specific kinds come before the general ones they wrap.
var errorKinds = []errorKind{
	{services.ErrInvalidRole, "INVALID_ROLE", http.StatusForbidden},
	{services.ErrJobNotOpen, "JOB_NOT_OPEN", http.StatusConflict},
	{services.ErrDuplicateApplication, "DUPLICATE_APPLICATION", http.StatusConflict},
	{services.ErrAlreadyRecorded, "ALREADY_RECORDED", http.StatusConflict},
	{services.ErrApplicationNotFound, "APPLICATION_NOT_FOUND", http.StatusNotFound},
	{services.ErrValidation, "VALIDATION", http.StatusBadRequest},
	{services.ErrInvalidTransition, "INVALID_TRANSITION", http.StatusBadRequest},
	{services.ErrInvalidPin, "INVALID_PIN", http.StatusBadRequest},
	{services.ErrBelowMinimum, "BELOW_MINIMUM", http.StatusBadRequest},
	{services.ErrInsufficientBalance, "INSUFFICIENT_BALANCE", http.StatusBadRequest},
	{services.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{services.ErrForbidden, "FORBIDDEN", http.StatusForbidden},
	{services.ErrConflict, "CONFLICT", http.StatusConflict},
}

// respondError writes the error body for err. Unknown errors are logged and
// answered with a generic 500.
func respondError(c *gin.Context, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			c.JSON(k.status, gin.H{"error": err.Error(), "code": k.code})
			return
		}
	}
	zap.L().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "INTERNAL"})
}

// respondBadRequest answers a malformed body, query or path parameter.
func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "VALIDATION"})
}

// respondValidation answers a struct validation failure with per-field details.
func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Validation failed",
		"code":    "VALIDATION",
		"details": FormatValidationErrors(err),
	})
}

// FormatValidationErrors turns validator errors into field -> message.
func FormatValidationErrors(err error) map[string]string {
	errorsMap := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorsMap["error"] = err.Error()
		return errorsMap
	}
	for _, fieldError := range validationErrors {
		fieldName := fieldError.Field()
		switch fieldError.Tag() {
		case "required":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' is required", fieldName)
		case "required_with":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' is required together with %s", fieldName, fieldError.Param())
		case "min":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be at least %s", fieldName, fieldError.Param())
		case "max":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be at most %s", fieldName, fieldError.Param())
		case "oneof":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be one of [%s]", fieldName, fieldError.Param())
		case "uuid":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be a valid UUID", fieldName)
		case "url":
			errorsMap[fieldName] = fmt.Sprintf("Field '%s' must be a valid URL", fieldName)
		default:
			errorsMap[fieldName] = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fieldName, fieldError.Tag())
		}
	}
	return errorsMap
}
