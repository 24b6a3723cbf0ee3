package validator

import (
	"github.com/mathconnect/tuition-service/internal/models"
)

// LoginRequest carries the login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest is the admin registration payload. ID is optional; a
// fresh one is generated when absent.
type CreateUserRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name" validate:"required,min=1,max=100"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=4"`
	Role     models.UserRole `json:"role" validate:"required,user_role"`

	Class     *string `json:"class"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	JoinDate  *string `json:"joinDate"`
	AvatarURL *string `json:"avatarUrl"`
}

// CreateAssignmentRequest is the admin creation payload. Status and
// submittedFiles are deliberately absent: creation always starts at PENDING
// with no submissions, whatever the caller sends.
type CreateAssignmentRequest struct {
	Title          string              `json:"title" validate:"required,assignment_title"`
	Subject        string              `json:"subject" validate:"max=100"`
	Description    string              `json:"description" validate:"max=5000"`
	DueDate        string              `json:"dueDate"`
	AssignedTo     string              `json:"assignedTo" validate:"required"`
	QuestionPapers []models.Attachment `json:"questionPapers"`
	MaxScore       *float64            `json:"maxScore" validate:"omitempty,gt=0"`
}

// SubmitFilesRequest appends answer scripts to an assignment.
type SubmitFilesRequest struct {
	Files []models.Attachment `json:"files" validate:"required,min=1,dive"`
}

// GradeRequest records score and remarks for a submitted assignment.
type GradeRequest struct {
	Score   float64 `json:"score" validate:"gte=0"`
	Remarks string  `json:"remarks" validate:"max=5000"`
}
