package handlers

import (
	"net/http"

	"gigmatch/internal/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// callerID returns the authenticated user, answering 401 when it is missing.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		zap.L().Warn("user ID missing from context", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "UNAUTHORIZED"})
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a UUID path parameter, answering 400 when it is malformed.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondBadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body into req. An empty body is accepted when optional is set.
func bindJSON(c *gin.Context, req interface{}, optional bool) bool {
	if optional && c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// bindQuery decodes query parameters into req.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return false
	}
	return true
}

// validate runs struct validation, answering 400 with field details on failure.
func validate(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := v.Struct(req); err != nil {
		respondValidation(c, err)
		return false
	}
	return true
}
