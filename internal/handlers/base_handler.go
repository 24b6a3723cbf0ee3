package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/services"
	"github.com/mathconnect/tuition-service/internal/utils"
)

type ErrorResponse = models.ErrorResponse
type SuccessResponse = models.SuccessResponse

// BaseHandler carries the shared logging helpers embedded by every handler.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	reqArgs := append([]any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetString("request_id"),
	}, args...)
	h.logger.Info(msg, reqArgs...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	reqArgs := append([]any{
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetString("request_id"),
	}, args...)
	h.logger.Error(msg, reqArgs...)
}

// handleServiceError maps service errors onto HTTP statuses. Unmapped errors
// become an opaque 500 so internals never leak to clients.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: map[string]interface{}{
				"field":   validationError.Field,
				"message": validationError.Message,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource":  permissionError.Resource,
				"operation": permissionError.Operation,
				"reason":    permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid email or password",
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Authentication required",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
		})
	case errors.Is(err, services.ErrDuplicateKey):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Resource already exists",
		})
	case errors.Is(err, services.ErrAlreadyGraded):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Assignment is already graded",
		})
	case errors.Is(err, services.ErrNotSubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Assignment has not been submitted yet",
		})
	case errors.Is(err, services.ErrNotAssignedTo):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Assignment belongs to another student",
		})
	case errors.Is(err, services.ErrAssignToAdmin):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Assignments can only be assigned to students",
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
