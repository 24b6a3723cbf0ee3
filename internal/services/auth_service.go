package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/repositories"
	"github.com/mathconnect/tuition-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) AuthService {
	return &authService{repo: repo, logger: logger, validator: v}
}

// Login verifies credentials against the stored bcrypt hash. An unknown email
// and a wrong password take the same path and return the same error, so the
// response does not reveal whether the account exists.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	user, err := s.repo.User().GetByEmailWithPassword(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Burn a comparison anyway to keep timing consistent with
			// the wrong-password path.
			bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return user.Scrubbed(), nil
}

// Current resolves a session token, which holds the raw user id. A token for
// a deleted user resolves to nil without error; the stale cookie is left for
// the client to replace on its next login.
func (s *authService) Current(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	user, err := s.repo.User().GetByID(ctx, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	return user, nil
}
