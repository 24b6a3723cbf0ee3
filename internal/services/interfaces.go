package services

import (
	"context"

	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/validator"
)

// Request DTOs are shared with the validator package.
type LoginRequest = validator.LoginRequest
type CreateUserRequest = validator.CreateUserRequest
type CreateAssignmentRequest = validator.CreateAssignmentRequest
type SubmitFilesRequest = validator.SubmitFilesRequest
type GradeRequest = validator.GradeRequest

// AuthService resolves credentials and session tokens to users.
type AuthService interface {
	// Login verifies the credentials; unknown email and wrong password are
	// indistinguishable to the caller.
	Login(ctx context.Context, req *LoginRequest) (*models.User, error)

	// Current resolves a session token (the raw user id) to a user. A stale
	// token resolves to (nil, nil) rather than an error.
	Current(ctx context.Context, token string) (*models.User, error)
}

// UserService owns the users collection and the cascading delete.
type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, role, email, id string) ([]*models.User, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error)

	// Delete removes the user and every assignment assigned to them within
	// one transaction.
	Delete(ctx context.Context, id string) error
}

// AssignmentService is the lifecycle manager for assignments.
type AssignmentService interface {
	Create(ctx context.Context, req *CreateAssignmentRequest) (*models.Assignment, error)
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	List(ctx context.Context, assignedTo string) ([]*models.Assignment, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Assignment, error)
	Delete(ctx context.Context, id string) error

	// SubmitFiles appends answer scripts for the owning student and derives
	// the resulting status.
	SubmitFiles(ctx context.Context, id, studentID string, req *SubmitFilesRequest) (*models.Assignment, error)

	// RemoveFile drops one submitted file; removing the last one re-enters
	// PENDING.
	RemoveFile(ctx context.Context, id, studentID, fileID string) (*models.Assignment, error)

	// Grade moves a SUBMITTED assignment to GRADED, its terminal state.
	Grade(ctx context.Context, id string, req *GradeRequest) (*models.Assignment, error)
}

// ===== DASHBOARD DTOs =====

type AdminStatsResponse struct {
	TotalStudents    int64                `json:"total_students"`
	TotalAssignments int64                `json:"total_assignments"`
	Pending          int64                `json:"pending"`
	Submitted        int64                `json:"submitted"`
	Graded           int64                `json:"graded"`
	AverageScore     float64              `json:"average_score"`
	Students         []StudentSummaryItem `json:"students"`
}

type StudentSummaryItem struct {
	StudentID    string  `json:"student_id"`
	Name         string  `json:"name"`
	Class        *string `json:"class,omitempty"`
	Total        int     `json:"total"`
	Submitted    int     `json:"submitted"`
	Graded       int     `json:"graded"`
	AverageScore float64 `json:"average_score"`
}

type StudentStatsResponse struct {
	Total        int                  `json:"total"`
	Pending      int                  `json:"pending"`
	Submitted    int                  `json:"submitted"`
	Graded       int                  `json:"graded"`
	AverageScore float64              `json:"average_score"`
	Upcoming     []UpcomingAssignment `json:"upcoming"`
}

type UpcomingAssignment struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Subject string `json:"subject"`
	DueDate string `json:"dueDate"`
}

// DashboardService derives the role-specific aggregates the dashboards
// render.
type DashboardService interface {
	AdminStats(ctx context.Context) (*AdminStatsResponse, error)
	StudentStats(ctx context.Context, studentID string) (*StudentStatsResponse, error)

	// GradeReport renders the graded assignments as an xlsx workbook.
	GradeReport(ctx context.Context) ([]byte, error)
}

// ServiceManager wires the services and owns their lifecycle.
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Assignment() AssignmentService
	Dashboard() DashboardService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
