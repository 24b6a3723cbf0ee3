package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/services"
	"github.com/mathconnect/tuition-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListUsers lists users with optional role/email/id equality filters.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.List(c.Request.Context(), c.Query("role"), c.Query("email"), c.Query("id"))
	if err != nil {
		h.LogError(c, err, "Failed to list users")
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns one user, or a JSON null when the id is unknown.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		h.LogError(c, err, "Failed to get user")
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser registers a user (admin only, enforced by the route).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	user, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "User created", "created_id", user.ID, "role", user.Role)
	c.JSON(http.StatusOK, user)
}

// UpdateUser applies a partial update. Students may only update their own
// record; admins may update anyone's.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")

	actor, _ := CurrentUser(c)
	if actor.Role != models.RoleAdmin && actor.ID != id {
		h.handleServiceError(c, services.NewPermissionError(actor.ID, "user", "update", "not the record owner"))
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}
	// Role changes stay an admin power even on one's own record.
	if _, ok := fields["role"]; ok && actor.Role != models.RoleAdmin {
		h.handleServiceError(c, services.NewPermissionError(actor.ID, "user", "update", "role changes require admin"))
		return
	}

	user, err := h.service.Update(c.Request.Context(), id, fields)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user and every assignment assigned to them.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogRequest(c, "User deleted", "deleted_id", id)
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
