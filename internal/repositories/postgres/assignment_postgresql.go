package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mathconnect/tuition-service/internal/cache"
	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAssignmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *AssignmentPostgreSQL) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	cacheKey := "id:" + id
	var assignment models.Assignment

	err := r.cacheManager.Assignment.CacheOrExecute(ctx, cacheKey, &assignment, cache.EntityTTL, func() (interface{}, error) {
		var dbAssignment models.Assignment
		if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbAssignment).Error; err != nil {
			return nil, err
		}
		return &dbAssignment, nil
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentPostgreSQL) List(ctx context.Context, filters repositories.AssignmentFilters) ([]*models.Assignment, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{})
	query = applyAssignmentFilters(query, filters)

	// Ids are time-ordered at creation, so id DESC is newest-first.
	var assignments []*models.Assignment
	if err := query.Order("id DESC").Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (r *AssignmentPostgreSQL) Create(ctx context.Context, assignment *models.Assignment) error {
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: assignment id already exists", repositories.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	r.cacheManager.InvalidateAssignment(ctx, assignment.ID, assignment.AssignedTo)
	return nil
}

func (r *AssignmentPostgreSQL) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Assignment, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Assignment{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update assignment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	var assignment models.Assignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return nil, err
	}

	r.cacheManager.InvalidateAssignment(ctx, id, assignment.AssignedTo)
	return &assignment, nil
}

func (r *AssignmentPostgreSQL) Delete(ctx context.Context, id string) error {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	r.cacheManager.InvalidateAssignment(ctx, id, assignment.AssignedTo)
	return nil
}

func (r *AssignmentPostgreSQL) DeleteByAssignedTo(ctx context.Context, userID string) error {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("assigned_to = ?", userID).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("failed to collect assignments for user: %w", err)
	}

	if err := r.db.WithContext(ctx).Where("assigned_to = ?", userID).Delete(&models.Assignment{}).Error; err != nil {
		return fmt.Errorf("failed to delete assignments for user: %w", err)
	}

	for _, id := range ids {
		r.cacheManager.InvalidateAssignment(ctx, id, userID)
	}
	return nil
}

func applyAssignmentFilters(query *gorm.DB, filters repositories.AssignmentFilters) *gorm.DB {
	if filters.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filters.AssignedTo)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	return query
}
