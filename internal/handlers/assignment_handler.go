package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/services"
	"github.com/mathconnect/tuition-service/internal/utils"
)

type AssignmentHandler struct {
	BaseHandler
	service services.AssignmentService
}

func NewAssignmentHandler(service services.AssignmentService, logger utils.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListAssignments lists assignments newest-first. Students are scoped to
// their own assignments whatever filter they send; admins may filter by
// assignedTo.
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	actor, _ := CurrentUser(c)

	assignedTo := c.Query("assignedTo")
	if actor.Role != models.RoleAdmin {
		assignedTo = actor.ID
	}

	assignments, err := h.service.List(c.Request.Context(), assignedTo)
	if err != nil {
		h.LogError(c, err, "Failed to list assignments")
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// GetAssignment returns one assignment. Students can only read their own.
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	assignment, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	actor, _ := CurrentUser(c)
	if actor.Role != models.RoleAdmin && assignment.AssignedTo != actor.ID {
		h.handleServiceError(c, services.ErrNotAssignedTo)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// CreateAssignment creates a PENDING assignment for a student.
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	assignment, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Assignment created", "assignment_id", assignment.ID, "assigned_to", assignment.AssignedTo)
	c.JSON(http.StatusOK, assignment)
}

// UpdateAssignment applies a raw partial merge; the lifecycle endpoints below
// are the checked path for submissions and grading.
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	assignment, err := h.service.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment removes an assignment.
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogRequest(c, "Assignment deleted", "assignment_id", id)
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// SubmitFiles uploads answer scripts for the session student.
func (h *AssignmentHandler) SubmitFiles(c *gin.Context) {
	var req services.SubmitFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	actor, _ := CurrentUser(c)
	assignment, err := h.service.SubmitFiles(c.Request.Context(), c.Param("id"), actor.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Files submitted", "assignment_id", assignment.ID, "files", len(req.Files))
	c.JSON(http.StatusOK, assignment)
}

// RemoveFile withdraws one submitted file for the session student.
func (h *AssignmentHandler) RemoveFile(c *gin.Context) {
	actor, _ := CurrentUser(c)
	assignment, err := h.service.RemoveFile(c.Request.Context(), c.Param("id"), actor.ID, c.Param("fileId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// GradeAssignment records score and remarks for a submitted assignment.
func (h *AssignmentHandler) GradeAssignment(c *gin.Context) {
	var req services.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	assignment, err := h.service.Grade(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Assignment graded", "assignment_id", assignment.ID, "score", req.Score)
	c.JSON(http.StatusOK, assignment)
}
