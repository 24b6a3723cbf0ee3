package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mathconnect/tuition-service/internal/models"
)

func gradedAssignment(id, studentID string, score, maxScore float64) *models.Assignment {
	now := time.Now()
	return &models.Assignment{
		ID: id, Title: "HW " + id, Subject: "Math", AssignedTo: studentID,
		Status: models.StatusGraded, SubmittedAt: &now,
		Score: &score, MaxScore: maxScore,
	}
}

func TestDashboardServiceAdminStats(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "student-1", "Ada")
	env.addStudent(t, "student-2", "Grace")
	admin := &models.User{ID: "admin-1", Name: "Root", Email: "root@example.com", Password: "x", Role: models.RoleAdmin}
	if err := env.repo.User().Create(context.Background(), admin); err != nil {
		t.Fatal(err)
	}

	env.addAssignment(t, &models.Assignment{ID: "a-1", Title: "P", AssignedTo: "student-1"})
	now := time.Now()
	env.addAssignment(t, &models.Assignment{
		ID: "a-2", Title: "S", AssignedTo: "student-1",
		Status: models.StatusSubmitted, SubmittedAt: &now,
	})
	env.addAssignment(t, gradedAssignment("a-3", "student-1", 8, 10))
	env.addAssignment(t, gradedAssignment("a-4", "student-2", 10, 10))

	svc := NewDashboardService(env.repo, env.logger, env.statsCache)
	stats, err := svc.AdminStats(context.Background())
	if err != nil {
		t.Fatalf("AdminStats: %v", err)
	}

	if stats.TotalStudents != 2 {
		t.Errorf("TotalStudents = %d, want 2 (admin excluded)", stats.TotalStudents)
	}
	if stats.TotalAssignments != 4 || stats.Pending != 1 || stats.Submitted != 1 || stats.Graded != 2 {
		t.Errorf("counts = %+v", stats)
	}
	// Ratio of sums: 100 * (8+10) / (10+10).
	if stats.AverageScore != 90 {
		t.Errorf("AverageScore = %g, want 90", stats.AverageScore)
	}

	if len(stats.Students) != 2 {
		t.Fatalf("len(Students) = %d, want 2", len(stats.Students))
	}
	byID := make(map[string]StudentSummaryItem)
	for _, item := range stats.Students {
		byID[item.StudentID] = item
	}
	ada := byID["student-1"]
	if ada.Total != 3 || ada.Submitted != 2 || ada.Graded != 1 {
		t.Errorf("student-1 summary = %+v", ada)
	}
	if ada.AverageScore != 80 {
		t.Errorf("student-1 average = %g, want 80", ada.AverageScore)
	}
}

func TestDashboardServiceStudentStats(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "student-1", "Ada")
	env.addStudent(t, "student-2", "Grace")

	env.addAssignment(t, &models.Assignment{ID: "a-1", Title: "Homework", Subject: "Math", DueDate: "2026-09-10", AssignedTo: "student-1"})
	env.addAssignment(t, gradedAssignment("a-2", "student-1", 9, 10))
	env.addAssignment(t, gradedAssignment("a-3", "student-2", 1, 10))

	svc := NewDashboardService(env.repo, env.logger, env.statsCache)
	stats, err := svc.StudentStats(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("StudentStats: %v", err)
	}

	if stats.Total != 2 || stats.Pending != 1 || stats.Graded != 1 {
		t.Errorf("counts = %+v", stats)
	}
	// Other students' grades must not bleed into the average.
	if stats.AverageScore != 90 {
		t.Errorf("AverageScore = %g, want 90", stats.AverageScore)
	}
	if len(stats.Upcoming) != 1 || stats.Upcoming[0].ID != "a-1" || stats.Upcoming[0].DueDate != "2026-09-10" {
		t.Errorf("Upcoming = %+v, want the pending assignment", stats.Upcoming)
	}
}

func TestDashboardServiceStudentStatsEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "student-1", "Ada")

	svc := NewDashboardService(env.repo, env.logger, env.statsCache)
	stats, err := svc.StudentStats(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("StudentStats: %v", err)
	}
	if stats.Total != 0 || stats.AverageScore != 0 {
		t.Errorf("stats = %+v, want zeros", stats)
	}
}

func TestDashboardServiceGradeReport(t *testing.T) {
	env := newTestEnv(t)
	env.addStudent(t, "student-1", "Ada")
	env.addAssignment(t, &models.Assignment{ID: "a-0", Title: "Pending", AssignedTo: "student-1"})
	env.addAssignment(t, gradedAssignment("a-1", "student-1", 8, 10))
	env.addAssignment(t, gradedAssignment("a-2", "student-1", 5, 10))

	svc := NewDashboardService(env.repo, env.logger, env.statsCache)
	report, err := svc.GradeReport(context.Background())
	if err != nil {
		t.Fatalf("GradeReport: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(report))
	if err != nil {
		t.Fatalf("report is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Grades")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	// Header plus one row per graded assignment; the pending one is absent.
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "Assignment ID" {
		t.Errorf("header = %v", rows[0])
	}
	// Newest-first ordering carries into the report.
	if rows[1][0] != "a-2" || rows[2][0] != "a-1" {
		t.Errorf("row ids = %s, %s, want a-2 then a-1", rows[1][0], rows[2][0])
	}
	if rows[1][5] != "5" || rows[1][6] != "10" {
		t.Errorf("row a-2 score cells = %v", rows[1])
	}
}
