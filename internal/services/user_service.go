package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mathconnect/tuition-service/internal/events"
	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/repositories"
	"github.com/mathconnect/tuition-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.Publisher) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := req.ID
	if id == "" {
		id = newEntityID(time.Now())
	}

	user := &models.User{
		ID:        id,
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hash),
		Role:      req.Role,
		Class:     req.Class,
		Phone:     req.Phone,
		Address:   req.Address,
		JoinDate:  req.JoinDate,
		AvatarURL: req.AvatarURL,
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: email or id already in use", ErrDuplicateKey)
		}
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	return user.Scrubbed(), nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, role, email, id string) ([]*models.User, error) {
	var filters repositories.UserFilters
	if role != "" {
		r := models.UserRole(role)
		filters.Role = &r
	}
	if email != "" {
		filters.Email = &email
	}
	if id != "" {
		filters.ID = &id
	}
	return s.repo.User().List(ctx, filters)
}

func (s *userService) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	// A new password arrives in plaintext on the wire and is hashed before
	// it reaches the store.
	if raw, ok := fields["password"]; ok {
		password, _ := raw.(string)
		if password == "" {
			return nil, NewValidationError("password", "must not be empty", raw)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		fields["password"] = string(hash)
	}

	columns, err := userColumns(fields)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User().Update(ctx, id, columns)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		if repositories.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: email already in use", ErrDuplicateKey)
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the user and cascades to every assignment assigned to them.
// Both steps run in one transaction so a crash cannot orphan assignments.
func (s *userService) Delete(ctx context.Context, id string) error {
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Assignment().DeleteByAssignedTo(ctx, id); err != nil {
			return err
		}
		return tx.User().Delete(ctx, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", id)
	if err := s.publisher.Publish(ctx, events.NewEvent(events.TypeUserDeleted, map[string]string{"user_id": id})); err != nil {
		s.logger.Error("failed to publish event", "type", events.TypeUserDeleted, "user_id", id, "error", err)
	}
	return nil
}
