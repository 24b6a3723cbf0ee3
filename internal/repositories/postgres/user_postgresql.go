package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mathconnect/tuition-service/internal/cache"
	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/repositories"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserRepository {
	return &UserPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := "id:" + id
	var user models.User

	err := r.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.EntityTTL, func() (interface{}, error) {
		var dbUser models.User
		if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error; err != nil {
			return nil, err
		}
		return dbUser.Scrubbed(), nil
	})
	if err != nil {
		return nil, err
	}
	return user.Scrubbed(), nil
}

// GetByEmailWithPassword keeps the credential hash on the returned record.
// Login is the only caller; it bypasses the cache so scrubbed entries can
// never be confused with full ones.
func (r *UserPostgreSQL) GetByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	query = applyUserFilters(query, filters)

	var users []*models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	for i, u := range users {
		users[i] = u.Scrubbed()
	}
	return users, nil
}

func (r *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: user email or id already exists", repositories.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	r.cacheManager.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *UserPostgreSQL) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			if repositories.IsDuplicateKeyError(res.Error) {
				return nil, fmt.Errorf("%w: user email already exists", repositories.ErrDuplicateKey)
			}
			return nil, fmt.Errorf("failed to update user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}

	r.cacheManager.InvalidateUser(ctx, id)
	return user.Scrubbed(), nil
}

func (r *UserPostgreSQL) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cacheManager.InvalidateUser(ctx, id)
	return nil
}

func (r *UserPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func applyUserFilters(query *gorm.DB, filters repositories.UserFilters) *gorm.DB {
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Email != nil {
		query = query.Where("email = ?", *filters.Email)
	}
	if filters.ID != nil {
		query = query.Where("id = ?", *filters.ID)
	}
	return query
}
