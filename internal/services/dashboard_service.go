package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/mathconnect/tuition-service/internal/cache"
	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/repositories"
)

type dashboardService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	statsCache *cache.CacheHelper
}

// NewDashboardService builds the dashboard aggregator. The stats cache is
// shared with the repositories' invalidation, so cached aggregates are
// dropped whenever a user or assignment changes.
func NewDashboardService(repo repositories.Repository, logger *slog.Logger, statsCache *cache.CacheHelper) DashboardService {
	return &dashboardService{repo: repo, logger: logger, statsCache: statsCache}
}

func (s *dashboardService) AdminStats(ctx context.Context) (*AdminStatsResponse, error) {
	var cached AdminStatsResponse
	err := s.statsCache.CacheOrExecute(ctx, "admin", &cached, cache.StatsTTL, func() (interface{}, error) {
		return s.buildAdminStats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &cached, nil
}

func (s *dashboardService) buildAdminStats(ctx context.Context) (*AdminStatsResponse, error) {
	role := models.RoleStudent
	students, err := s.repo.User().List(ctx, repositories.UserFilters{Role: &role})
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	assignments, err := s.repo.Assignment().List(ctx, repositories.AssignmentFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	resp := &AdminStatsResponse{
		TotalStudents:    int64(len(students)),
		TotalAssignments: int64(len(assignments)),
		AverageScore:     AverageScore(assignments),
	}

	byStudent := make(map[string][]*models.Assignment)
	for _, a := range assignments {
		switch a.Status {
		case models.StatusPending:
			resp.Pending++
		case models.StatusSubmitted:
			resp.Submitted++
		case models.StatusGraded:
			resp.Graded++
		}
		byStudent[a.AssignedTo] = append(byStudent[a.AssignedTo], a)
	}

	for _, student := range students {
		own := byStudent[student.ID]
		item := StudentSummaryItem{
			StudentID:    student.ID,
			Name:         student.Name,
			Class:        student.Class,
			Total:        len(own),
			AverageScore: AverageScore(own),
		}
		for _, a := range own {
			if a.Status != models.StatusPending {
				item.Submitted++
			}
			if a.Status == models.StatusGraded {
				item.Graded++
			}
		}
		resp.Students = append(resp.Students, item)
	}

	return resp, nil
}

func (s *dashboardService) StudentStats(ctx context.Context, studentID string) (*StudentStatsResponse, error) {
	var cached StudentStatsResponse
	err := s.statsCache.CacheOrExecute(ctx, "student:"+studentID, &cached, cache.StatsTTL, func() (interface{}, error) {
		return s.buildStudentStats(ctx, studentID)
	})
	if err != nil {
		return nil, err
	}
	return &cached, nil
}

func (s *dashboardService) buildStudentStats(ctx context.Context, studentID string) (*StudentStatsResponse, error) {
	assignments, err := s.repo.Assignment().List(ctx, repositories.AssignmentFilters{AssignedTo: &studentID})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	resp := &StudentStatsResponse{
		Total:        len(assignments),
		AverageScore: AverageScore(assignments),
	}
	for _, a := range assignments {
		switch a.Status {
		case models.StatusPending:
			resp.Pending++
			resp.Upcoming = append(resp.Upcoming, UpcomingAssignment{
				ID:      a.ID,
				Title:   a.Title,
				Subject: a.Subject,
				DueDate: a.DueDate,
			})
		case models.StatusSubmitted:
			resp.Submitted++
		case models.StatusGraded:
			resp.Graded++
		}
	}

	return resp, nil
}

// GradeReport renders all graded assignments as an xlsx workbook, one row
// per assignment.
func (s *dashboardService) GradeReport(ctx context.Context) ([]byte, error) {
	status := models.StatusGraded
	assignments, err := s.repo.Assignment().List(ctx, repositories.AssignmentFilters{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to list graded assignments: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Grades"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Assignment ID", "Title", "Subject", "Student ID", "Due Date", "Score", "Max Score", "Percent", "Remarks"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, a := range assignments {
		score := 0.0
		if a.Score != nil {
			score = *a.Score
		}
		percent := 0.0
		if a.MaxScore > 0 {
			percent = 100 * score / a.MaxScore
		}
		remarks := ""
		if a.Remarks != nil {
			remarks = *a.Remarks
		}

		values := []interface{}{a.ID, a.Title, a.Subject, a.AssignedTo, a.DueDate, score, a.MaxScore, percent, remarks}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	s.logger.Info("grade report generated", "rows", len(assignments))
	return buf.Bytes(), nil
}
