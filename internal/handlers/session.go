package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mathconnect/tuition-service/internal/config"
	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/services"
	"github.com/mathconnect/tuition-service/internal/utils"
)

// Context keys the session middleware populates.
const (
	ContextUserKey     = "current_user"
	ContextUserIDKey   = "user_id"
	ContextUserRoleKey = "user_role"
)

// SessionManager issues and resolves the session cookie. The cookie value is
// the user id; HttpOnly and SameSite=Strict keep it away from scripts and
// cross-site requests.
type SessionManager struct {
	cfg    config.SessionConfig
	auth   services.AuthService
	logger utils.Logger
}

func NewSessionManager(cfg config.SessionConfig, auth services.AuthService, logger utils.Logger) *SessionManager {
	return &SessionManager{cfg: cfg, auth: auth, logger: logger}
}

// Issue sets the session cookie for a freshly authenticated user.
func (sm *SessionManager) Issue(c *gin.Context, user *models.User) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sm.cfg.CookieName, user.ID, int(sm.cfg.TTL.Seconds()), "/", "", sm.cfg.Secure, true)
}

// Clear expires the session cookie.
func (sm *SessionManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sm.cfg.CookieName, "", -1, "/", "", sm.cfg.Secure, true)
}

// Token returns the raw cookie value, empty when absent.
func (sm *SessionManager) Token(c *gin.Context) string {
	token, err := c.Cookie(sm.cfg.CookieName)
	if err != nil {
		return ""
	}
	return token
}

// Middleware resolves the cookie to a user and stores it in the gin context.
// It never aborts: routes that require a user layer RequireAuth on top, and
// /auth/me wants to answer null for anonymous callers.
func (sm *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sm.Token(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := sm.auth.Current(c.Request.Context(), token)
		if err != nil {
			sm.logger.Error("session resolution failed", "error", err, "request_id", c.GetString("request_id"))
			c.Next()
			return
		}
		if user == nil {
			// Stale cookie for a deleted user; treated as anonymous.
			c.Next()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserRoleKey, string(user.Role))
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func (sm *SessionManager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authentication required",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests from anyone but an admin.
func (sm *SessionManager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authentication required",
			})
			return
		}
		if user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the session user resolved by the middleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
