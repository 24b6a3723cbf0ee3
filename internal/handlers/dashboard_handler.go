package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/services"
	"github.com/mathconnect/tuition-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// AdminStats returns the whole-school overview the admin dashboard renders.
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	stats, err := h.service.AdminStats(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Failed to build admin stats")
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StudentStats returns the session student's own aggregates. Admins may
// inspect any student via ?studentId=.
func (h *DashboardHandler) StudentStats(c *gin.Context) {
	actor, _ := CurrentUser(c)

	studentID := actor.ID
	if actor.Role == models.RoleAdmin {
		if qs := c.Query("studentId"); qs != "" {
			studentID = qs
		}
	}

	stats, err := h.service.StudentStats(c.Request.Context(), studentID)
	if err != nil {
		h.LogError(c, err, "Failed to build student stats")
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GradeReport streams the graded assignments as an xlsx download.
func (h *DashboardHandler) GradeReport(c *gin.Context) {
	report, err := h.service.GradeReport(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Failed to build grade report")
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("grade-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, xlsxContentType, report)
}
