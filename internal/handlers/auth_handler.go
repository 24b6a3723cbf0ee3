package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mathconnect/tuition-service/internal/services"
	"github.com/mathconnect/tuition-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
	session *SessionManager
}

func NewAuthHandler(service services.AuthService, session *SessionManager, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		session:     session,
	}
}

// Login verifies credentials and issues the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	user, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.session.Issue(c, user)
	h.LogRequest(c, "Login", "user_id", user.ID, "role", user.Role)
	c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie. Always succeeds, cookie or not.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.session.Clear(c)
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Me returns the session user, or a JSON null for anonymous and stale
// sessions so the frontend can probe without tripping error handling.
func (h *AuthHandler) Me(c *gin.Context) {
	if user, ok := CurrentUser(c); ok {
		c.JSON(http.StatusOK, user)
		return
	}
	c.JSON(http.StatusOK, nil)
}
