package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/mathconnect/tuition-service/internal/cache"
	"github.com/mathconnect/tuition-service/internal/events"
	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/repositories"
	"github.com/mathconnect/tuition-service/internal/validator"
)

// fakeRepository is an in-memory repositories.Repository for service tests.
type fakeRepository struct {
	mu          sync.Mutex
	users       map[string]*models.User
	assignments map[string]*models.Assignment
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:       make(map[string]*models.User),
		assignments: make(map[string]*models.Assignment),
	}
}

func (r *fakeRepository) User() repositories.UserRepository { return &fakeUserRepo{r} }
func (r *fakeRepository) Assignment() repositories.AssignmentRepository {
	return &fakeAssignmentRepo{r}
}

func (r *fakeRepository) WithTransaction(_ context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *fakeRepository) Ping(context.Context) error { return nil }
func (r *fakeRepository) Close() error               { return nil }

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyAssignment(a *models.Assignment) *models.Assignment {
	c := *a
	c.QuestionPapers = append(models.AttachmentList{}, a.QuestionPapers...)
	c.SubmittedFiles = append(models.AttachmentList{}, a.SubmittedFiles...)
	return &c
}

type fakeUserRepo struct{ r *fakeRepository }

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	u, ok := f.r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u.Scrubbed(), nil
}

func (f *fakeUserRepo) GetByEmailWithPassword(_ context.Context, email string) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, u := range f.r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, filters repositories.UserFilters) ([]*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	out := make([]*models.User, 0, len(f.r.users))
	for _, u := range f.r.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		if filters.Email != nil && u.Email != *filters.Email {
			continue
		}
		if filters.ID != nil && u.ID != *filters.ID {
			continue
		}
		out = append(out, u.Scrubbed())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, exists := f.r.users[user.ID]; exists {
		return repositories.ErrDuplicateKey
	}
	for _, u := range f.r.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateKey
		}
	}
	f.r.users[user.ID] = copyUser(user)
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	u, ok := f.r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for column, value := range fields {
		switch column {
		case "name":
			u.Name = value.(string)
		case "email":
			u.Email = value.(string)
		case "password":
			u.Password = value.(string)
		case "role":
			u.Role = models.UserRole(value.(string))
		case "class":
			u.Class = toStringPtr(value)
		case "phone":
			u.Phone = toStringPtr(value)
		case "address":
			u.Address = toStringPtr(value)
		case "join_date":
			u.JoinDate = toStringPtr(value)
		case "avatar_url":
			u.AvatarURL = toStringPtr(value)
		}
	}
	return u.Scrubbed(), nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.users, id)
	return nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, u := range f.r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeAssignmentRepo struct{ r *fakeRepository }

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*models.Assignment, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	a, ok := f.r.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyAssignment(a), nil
}

func (f *fakeAssignmentRepo) List(_ context.Context, filters repositories.AssignmentFilters) ([]*models.Assignment, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	out := make([]*models.Assignment, 0, len(f.r.assignments))
	for _, a := range f.r.assignments {
		if filters.AssignedTo != nil && a.AssignedTo != *filters.AssignedTo {
			continue
		}
		if filters.Status != nil && a.Status != *filters.Status {
			continue
		}
		out = append(out, copyAssignment(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, exists := f.r.assignments[assignment.ID]; exists {
		return repositories.ErrDuplicateKey
	}
	f.r.assignments[assignment.ID] = copyAssignment(assignment)
	return nil
}

func (f *fakeAssignmentRepo) Update(_ context.Context, id string, fields map[string]interface{}) (*models.Assignment, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	a, ok := f.r.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for column, value := range fields {
		switch column {
		case "title":
			a.Title = value.(string)
		case "subject":
			a.Subject = value.(string)
		case "description":
			a.Description = value.(string)
		case "due_date":
			a.DueDate = value.(string)
		case "assigned_to":
			a.AssignedTo = value.(string)
		case "status":
			switch s := value.(type) {
			case models.AssignmentStatus:
				a.Status = s
			case string:
				a.Status = models.AssignmentStatus(s)
			}
		case "question_papers":
			a.QuestionPapers = value.(models.AttachmentList)
		case "submitted_files":
			a.SubmittedFiles = value.(models.AttachmentList)
		case "submitted_at":
			a.SubmittedAt = value.(*time.Time)
		case "score":
			v := value.(float64)
			a.Score = &v
		case "max_score":
			a.MaxScore = value.(float64)
		case "remarks":
			v := value.(string)
			a.Remarks = &v
		}
	}
	return copyAssignment(a), nil
}

func (f *fakeAssignmentRepo) Delete(_ context.Context, id string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.assignments, id)
	return nil
}

func (f *fakeAssignmentRepo) DeleteByAssignedTo(_ context.Context, userID string) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for id, a := range f.r.assignments {
		if a.AssignedTo == userID {
			delete(f.r.assignments, id)
		}
	}
	return nil
}

func toStringPtr(value interface{}) *string {
	switch v := value.(type) {
	case nil:
		return nil
	case *string:
		return v
	case string:
		return &v
	default:
		return nil
	}
}

// ===== TEST ENVIRONMENT =====

type testEnv struct {
	repo       *fakeRepository
	publisher  *events.MockPublisher
	logger     *slog.Logger
	validator  *validator.Validator
	statsCache *cache.CacheHelper
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		repo:       newFakeRepository(),
		publisher:  events.NewMockPublisher(nil),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		validator:  validator.New(),
		statsCache: cache.NewCacheHelper(nil, "stats:"),
	}
}

func (env *testEnv) addStudent(t *testing.T, id, name string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Name: name, Email: id + "@example.com", Password: "x", Role: models.RoleStudent}
	if err := env.repo.User().Create(context.Background(), u); err != nil {
		t.Fatalf("seed student %s: %v", id, err)
	}
	return u
}

func (env *testEnv) addAssignment(t *testing.T, a *models.Assignment) *models.Assignment {
	t.Helper()
	if a.Status == "" {
		a.Status = models.StatusPending
	}
	if a.MaxScore == 0 {
		a.MaxScore = 100
	}
	if err := env.repo.Assignment().Create(context.Background(), a); err != nil {
		t.Fatalf("seed assignment %s: %v", a.ID, err)
	}
	return a
}
