package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mathconnect/tuition-service/internal/config"
	"github.com/mathconnect/tuition-service/internal/repositories"
	"github.com/mathconnect/tuition-service/internal/services"
	"github.com/mathconnect/tuition-service/internal/utils"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	userHandler       *UserHandler
	assignmentHandler *AssignmentHandler
	dashboardHandler  *DashboardHandler
	session           *SessionManager
	repo              repositories.Repository
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	sessionConfig config.SessionConfig,
	repo repositories.Repository,
	logger utils.Logger,
) *HandlerManager {
	session := NewSessionManager(sessionConfig, serviceManager.Auth(), logger)

	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), session, logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		assignmentHandler: NewAssignmentHandler(serviceManager.Assignment(), logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), logger),
		session:           session,
		repo:              repo,
	}
}

// SetupRoutes mounts the API.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	api := router.Group("/api")
	api.Use(hm.session.Middleware())
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/logout", hm.authHandler.Logout)
			auth.GET("/me", hm.authHandler.Me)
		}

		users := api.Group("/users")
		users.Use(hm.session.RequireAuth())
		{
			users.GET("", hm.session.RequireAdmin(), hm.userHandler.ListUsers)
			users.POST("", hm.session.RequireAdmin(), hm.userHandler.CreateUser)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PATCH("/:id", hm.userHandler.UpdateUser)
			users.DELETE("/:id", hm.session.RequireAdmin(), hm.userHandler.DeleteUser)
		}

		assignments := api.Group("/assignments")
		assignments.Use(hm.session.RequireAuth())
		{
			assignments.GET("", hm.assignmentHandler.ListAssignments)
			assignments.POST("", hm.session.RequireAdmin(), hm.assignmentHandler.CreateAssignment)
			assignments.GET("/:id", hm.assignmentHandler.GetAssignment)
			assignments.PATCH("/:id", hm.assignmentHandler.UpdateAssignment)
			assignments.DELETE("/:id", hm.session.RequireAdmin(), hm.assignmentHandler.DeleteAssignment)

			assignments.POST("/:id/submissions", hm.assignmentHandler.SubmitFiles)
			assignments.DELETE("/:id/submissions/:fileId", hm.assignmentHandler.RemoveFile)
			assignments.POST("/:id/grade", hm.session.RequireAdmin(), hm.assignmentHandler.GradeAssignment)
		}

		dashboard := api.Group("/dashboard")
		dashboard.Use(hm.session.RequireAuth())
		{
			dashboard.GET("/admin/stats", hm.session.RequireAdmin(), hm.dashboardHandler.AdminStats)
			dashboard.GET("/admin/report", hm.session.RequireAdmin(), hm.dashboardHandler.GradeReport)
			dashboard.GET("/student/stats", hm.dashboardHandler.StudentStats)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"service":   "tuition-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
