package repositories

import (
	"context"

	"github.com/mathconnect/tuition-service/internal/models"
)

// UserFilters are the equality-only filters the gateway supports for users.
type UserFilters struct {
	Role  *models.UserRole
	Email *string
	ID    *string
}

// UserRepository is the persistence gateway for the users collection.
//
// Reads scrub the credential hash except GetByEmailWithPassword, which the
// login flow needs for comparison.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, error)

	// Create fails with a duplicate-key error when the email or id is taken.
	Create(ctx context.Context, user *models.User) error

	// Update applies a partial-field merge and returns the updated record.
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error)

	Delete(ctx context.Context, id string) error

	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
