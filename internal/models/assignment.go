package models

import (
	"time"

	"gorm.io/datatypes"
)

type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "PENDING"
	StatusSubmitted AssignmentStatus = "SUBMITTED"
	StatusGraded    AssignmentStatus = "GRADED"
)

func (s AssignmentStatus) Valid() bool {
	return s == StatusPending || s == StatusSubmitted || s == StatusGraded
}

// Attachment is a value object embedded in its owning assignment. URL holds
// either a data URL with the inlined payload or a plain http(s) locator.
type Attachment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Type      string `json:"type"`
	CreatedAt string `json:"createdAt"`
}

// AttachmentList is stored as a JSONB column on the assignment row; the
// attachments have no identity outside their parent.
type AttachmentList = datatypes.JSONSlice[Attachment]

type Assignment struct {
	ID          string           `json:"id" gorm:"primaryKey;size:64"`
	Title       string           `json:"title" gorm:"not null;size:200"`
	Subject     string           `json:"subject" gorm:"size:100"`
	Description string           `json:"description" gorm:"type:text"`
	DueDate     string           `json:"dueDate" gorm:"size:64"`
	AssignedTo  string           `json:"assignedTo" gorm:"not null;index;size:64"`
	Status      AssignmentStatus `json:"status" gorm:"not null;default:PENDING;index;size:16"`

	QuestionPapers AttachmentList `json:"questionPapers" gorm:"type:jsonb"`
	SubmittedFiles AttachmentList `json:"submittedFiles" gorm:"type:jsonb"`

	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	Score       *float64   `json:"score,omitempty"`
	MaxScore    float64    `json:"maxScore" gorm:"not null;default:100"`
	Remarks     *string    `json:"remarks,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// IsGraded reports whether the assignment has reached its terminal state.
func (a *Assignment) IsGraded() bool {
	return a.Status == StatusGraded
}
