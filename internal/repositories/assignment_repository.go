package repositories

import (
	"context"

	"github.com/mathconnect/tuition-service/internal/models"
)

// AssignmentFilters are the equality-only filters supported for assignments.
type AssignmentFilters struct {
	AssignedTo *string
	Status     *models.AssignmentStatus
}

// AssignmentRepository is the persistence gateway for the assignments
// collection. List results come back sorted by id descending, newest-first,
// matching the order the dashboards render.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	List(ctx context.Context, filters AssignmentFilters) ([]*models.Assignment, error)

	Create(ctx context.Context, assignment *models.Assignment) error

	// Update applies a partial-field merge and returns the updated record.
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Assignment, error)

	Delete(ctx context.Context, id string) error

	// DeleteByAssignedTo removes every assignment owned by a user; used by
	// the cascading user delete.
	DeleteByAssignedTo(ctx context.Context, userID string) error
}
