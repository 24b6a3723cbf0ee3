package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mathconnect/tuition-service/internal/config"
	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/repositories"
	"github.com/mathconnect/tuition-service/internal/services"
	"github.com/mathconnect/tuition-service/internal/utils"
)

// ===== FAKE SERVICES =====

type fakeAuthService struct {
	users map[string]*models.User
}

func (f *fakeAuthService) Login(_ context.Context, req *services.LoginRequest) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == req.Email && req.Password == "correct" {
			return u.Scrubbed(), nil
		}
	}
	return nil, services.ErrInvalidCredentials
}

func (f *fakeAuthService) Current(_ context.Context, token string) (*models.User, error) {
	if u, ok := f.users[token]; ok {
		return u.Scrubbed(), nil
	}
	return nil, nil
}

type fakeUserService struct {
	services.UserService
	deleteErr error
	deleted   []string
}

func (f *fakeUserService) List(context.Context, string, string, string) ([]*models.User, error) {
	return []*models.User{}, nil
}

func (f *fakeUserService) GetByID(context.Context, string) (*models.User, error) {
	return nil, services.ErrNotFound
}

func (f *fakeUserService) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAssignmentService struct {
	services.AssignmentService
	listedAssignedTo string
	gradeErr         error
}

func (f *fakeAssignmentService) List(_ context.Context, assignedTo string) ([]*models.Assignment, error) {
	f.listedAssignedTo = assignedTo
	return []*models.Assignment{}, nil
}

func (f *fakeAssignmentService) Grade(_ context.Context, id string, req *services.GradeRequest) (*models.Assignment, error) {
	if f.gradeErr != nil {
		return nil, f.gradeErr
	}
	score := req.Score
	return &models.Assignment{ID: id, Status: models.StatusGraded, Score: &score}, nil
}

type fakeDashboardService struct {
	services.DashboardService
}

func (f *fakeDashboardService) StudentStats(_ context.Context, studentID string) (*services.StudentStatsResponse, error) {
	return &services.StudentStatsResponse{}, nil
}

type fakeServiceManager struct {
	auth       services.AuthService
	user       *fakeUserService
	assignment *fakeAssignmentService
	dashboard  *fakeDashboardService
}

func (f *fakeServiceManager) Auth() services.AuthService             { return f.auth }
func (f *fakeServiceManager) User() services.UserService             { return f.user }
func (f *fakeServiceManager) Assignment() services.AssignmentService { return f.assignment }
func (f *fakeServiceManager) Dashboard() services.DashboardService   { return f.dashboard }
func (f *fakeServiceManager) Initialize(context.Context) error       { return nil }
func (f *fakeServiceManager) Shutdown(context.Context) error         { return nil }

type fakePingRepo struct {
	repositories.Repository
	pingErr error
}

func (f *fakePingRepo) Ping(context.Context) error { return f.pingErr }

// ===== HARNESS =====

type webTest struct {
	router  *gin.Engine
	manager *fakeServiceManager
	repo    *fakePingRepo
}

func newWebTest(t *testing.T) *webTest {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := &fakeServiceManager{
		auth: &fakeAuthService{users: map[string]*models.User{
			"admin-1":   {ID: "admin-1", Name: "Root", Email: "root@example.com", Role: models.RoleAdmin},
			"student-1": {ID: "student-1", Name: "Ada", Email: "ada@example.com", Role: models.RoleStudent},
		}},
		user:       &fakeUserService{},
		assignment: &fakeAssignmentService{},
		dashboard:  &fakeDashboardService{},
	}
	repo := &fakePingRepo{}

	sessionConfig := config.SessionConfig{CookieName: "mc_session", TTL: 7 * 24 * time.Hour}
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	hm := NewHandlerManager(manager, sessionConfig, repo, logger)
	hm.SetupRoutes(router)

	return &webTest{router: router, manager: manager, repo: repo}
}

func (wt *webTest) do(method, path, body, sessionUserID string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionUserID != "" {
		req.AddCookie(&http.Cookie{Name: "mc_session", Value: sessionUserID})
	}
	w := httptest.NewRecorder()
	wt.router.ServeHTTP(w, req)
	return w
}

// ===== TESTS =====

func TestLoginIssuesSessionCookie(t *testing.T) {
	wt := newWebTest(t)

	w := wt.do(http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"correct"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	cookies := w.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == "mc_session" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie set")
	}
	if session.Value != "student-1" {
		t.Errorf("cookie value = %s, want student-1", session.Value)
	}
	if !session.HttpOnly {
		t.Error("cookie is not HttpOnly")
	}
	if session.Path != "/" {
		t.Errorf("cookie path = %s, want /", session.Path)
	}
	if session.SameSite != http.SameSiteStrictMode {
		t.Errorf("cookie SameSite = %v, want Strict", session.SameSite)
	}
	if got := 7 * 24 * 60 * 60; session.MaxAge != got {
		t.Errorf("cookie MaxAge = %d, want %d", session.MaxAge, got)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("login echo carries a password field: %s", w.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	wt := newWebTest(t)

	w := wt.do(http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"wrong"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "mc_session" {
			t.Error("session cookie set on failed login")
		}
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	wt := newWebTest(t)

	w := wt.do(http.MethodPost, "/api/auth/logout", "", "student-1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "mc_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie was not expired")
	}
}

func TestMeAnswersNullForAnonymous(t *testing.T) {
	wt := newWebTest(t)

	for _, session := range []string{"", "stale-token"} {
		w := wt.do(http.MethodGet, "/api/auth/me", "", session)
		if w.Code != http.StatusOK {
			t.Errorf("session %q: status = %d, want 200", session, w.Code)
		}
		if body := strings.TrimSpace(w.Body.String()); body != "null" {
			t.Errorf("session %q: body = %s, want null", session, body)
		}
	}
}

func TestMeReturnsSessionUser(t *testing.T) {
	wt := newWebTest(t)

	w := wt.do(http.MethodGet, "/api/auth/me", "", "student-1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"id":"student-1"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAdminGuards(t *testing.T) {
	wt := newWebTest(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		session string
		want    int
	}{
		{name: "anonymous list users", method: http.MethodGet, path: "/api/users", want: http.StatusUnauthorized},
		{name: "student lists users", method: http.MethodGet, path: "/api/users", session: "student-1", want: http.StatusForbidden},
		{name: "admin lists users", method: http.MethodGet, path: "/api/users", session: "admin-1", want: http.StatusOK},
		{name: "student creates assignment", method: http.MethodPost, path: "/api/assignments", body: `{}`, session: "student-1", want: http.StatusForbidden},
		{name: "student deletes user", method: http.MethodDelete, path: "/api/users/u-1", session: "student-1", want: http.StatusForbidden},
		{name: "student reads admin stats", method: http.MethodGet, path: "/api/dashboard/admin/stats", session: "student-1", want: http.StatusForbidden},
		{name: "anonymous submits files", method: http.MethodPost, path: "/api/assignments/a-1/submissions", body: `{}`, want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := wt.do(tt.method, tt.path, tt.body, tt.session)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestListAssignmentsScopesStudents(t *testing.T) {
	wt := newWebTest(t)

	// A student asking for someone else's assignments still gets their own.
	w := wt.do(http.MethodGet, "/api/assignments?assignedTo=student-2", "", "student-1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := wt.manager.assignment.listedAssignedTo; got != "student-1" {
		t.Errorf("service saw assignedTo = %q, want student-1", got)
	}

	// Admins may filter freely.
	w = wt.do(http.MethodGet, "/api/assignments?assignedTo=student-2", "", "admin-1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := wt.manager.assignment.listedAssignedTo; got != "student-2" {
		t.Errorf("service saw assignedTo = %q, want student-2", got)
	}
}

func TestGradeConflictMapsTo409(t *testing.T) {
	wt := newWebTest(t)
	wt.manager.assignment.gradeErr = services.ErrAlreadyGraded

	w := wt.do(http.MethodPost, "/api/assignments/a-1/grade", `{"score":5}`, "admin-1")
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 (body %s)", w.Code, w.Body.String())
	}
}

func TestDeleteUserReturnsSuccessEnvelope(t *testing.T) {
	wt := newWebTest(t)

	w := wt.do(http.MethodDelete, "/api/users/student-1", "", "admin-1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"success":true}` {
		t.Errorf("body = %s", body)
	}
	if len(wt.manager.user.deleted) != 1 || wt.manager.user.deleted[0] != "student-1" {
		t.Errorf("deleted = %v", wt.manager.user.deleted)
	}
}

func TestGetUnknownUserAnswersNull(t *testing.T) {
	wt := newWebTest(t)

	w := wt.do(http.MethodGet, "/api/users/ghost", "", "student-1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "null" {
		t.Errorf("body = %s, want null", body)
	}
}

func TestHealthCheck(t *testing.T) {
	wt := newWebTest(t)

	w := wt.do(http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	wt.repo.pingErr = context.DeadlineExceeded
	w = wt.do(http.MethodGet, "/health", "", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "degraded") {
		t.Errorf("body = %s", w.Body.String())
	}
}
