package handlers

import (
	"net/http"

	"gigmatch/internal/services"
	"gigmatch/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// UserHandler holds the service dependency for user operations
type UserHandler struct {
	service   services.UserService
	validator *validator.Validate
}

// NewUserHandler creates a new UserHandler with the given service
func NewUserHandler(service services.UserService, validate *validator.Validate) *UserHandler {
	return &UserHandler{service: service, validator: validate}
}

// CreateUser registers the authenticated subject as a hirer or provider.
func (h *UserHandler) CreateUser(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if !bindJSON(c, &req, false) || !validate(c, h.validator, req) {
		return
	}
	req.UserID = userID

	user, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// GetUsers lists users, optionally filtered by role, availability, skill and distance.
func (h *UserHandler) GetUsers(c *gin.Context) {
	var req dto.ListUsersRequest
	if !bindQuery(c, &req) || !validate(c, h.validator, req) {
		return
	}

	users, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserListResponse(users))
}

// GetUserByID returns one user.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateUser applies a partial update to the caller's own profile.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req, false) {
		return
	}
	req.ID = id
	req.UserID = userID
	if !validate(c, h.validator, req) {
		return
	}

	user, err := h.service.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// DeleteUser removes the caller's own account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	req := dto.DeleteUserRequest{ID: id, UserID: userID}
	if err := h.service.Delete(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
