package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mathconnect/tuition-service/internal/cache"
	"github.com/mathconnect/tuition-service/internal/config"
	"github.com/mathconnect/tuition-service/internal/events"
	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/repositories"
	"github.com/mathconnect/tuition-service/internal/validator"
)

// defaultAdminID matches the id the original deployment seeded, so existing
// session cookies survive a migration.
const defaultAdminID = "admin-001"

type serviceManager struct {
	repo       repositories.Repository
	logger     *slog.Logger
	validator  *validator.Validator
	publisher  events.Publisher
	statsCache *cache.CacheHelper
	seed       config.SeedConfig

	authService       AuthService
	userService       UserService
	assignmentService AssignmentService
	dashboardService  DashboardService

	initialized bool
	mu          sync.RWMutex
}

// NewServiceManager wires the services over the shared dependencies. The
// stats cache may be built over a nil redis client, in which case dashboard
// aggregates are computed per request.
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.Publisher, statsCache *cache.CacheHelper, seed config.SeedConfig) ServiceManager {
	return &serviceManager{
		repo:       repo,
		logger:     logger,
		validator:  v,
		publisher:  publisher,
		statsCache: statsCache,
		seed:       seed,
	}
}

func (m *serviceManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	m.authService = NewAuthService(m.repo, m.logger, m.validator)
	m.userService = NewUserService(m.repo, m.logger, m.validator, m.publisher)
	m.assignmentService = NewAssignmentService(m.repo, m.logger, m.validator, m.publisher)
	m.dashboardService = NewDashboardService(m.repo, m.logger, m.statsCache)

	if err := m.seedDefaultAdmin(ctx); err != nil {
		return fmt.Errorf("failed to seed default admin: %w", err)
	}

	m.initialized = true
	return nil
}

// seedDefaultAdmin creates the configured admin account once, at first boot.
func (m *serviceManager) seedDefaultAdmin(ctx context.Context) error {
	exists, err := m.repo.User().ExistsByEmail(ctx, m.seed.AdminEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(m.seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		ID:       defaultAdminID,
		Name:     m.seed.AdminName,
		Email:    m.seed.AdminEmail,
		Password: string(hash),
		Role:     models.RoleAdmin,
	}
	if err := m.repo.User().Create(ctx, admin); err != nil {
		// Another instance may have seeded concurrently.
		if repositories.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}

	m.logger.Info("default admin created", "email", m.seed.AdminEmail)
	return nil
}

func (m *serviceManager) Auth() AuthService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authService
}

func (m *serviceManager) User() UserService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userService
}

func (m *serviceManager) Assignment() AssignmentService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.assignmentService
}

func (m *serviceManager) Dashboard() DashboardService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dashboardService
}

func (m *serviceManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil
	}
	m.initialized = false

	if err := m.publisher.Close(); err != nil {
		return fmt.Errorf("failed to close event publisher: %w", err)
	}
	return nil
}
