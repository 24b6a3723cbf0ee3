package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mathconnect/tuition-service/internal/attachment"
	"github.com/mathconnect/tuition-service/internal/events"
	"github.com/mathconnect/tuition-service/internal/models"
	"github.com/mathconnect/tuition-service/internal/repositories"
	"github.com/mathconnect/tuition-service/internal/validator"
)

type assignmentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewAssignmentService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.Publisher) AssignmentService {
	return &assignmentService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

// Create builds a new assignment. Status and submitted files are forced to
// their initial values: callers cannot create an assignment in any state but
// PENDING.
func (s *assignmentService) Create(ctx context.Context, req *CreateAssignmentRequest) (*models.Assignment, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	if err := validateAttachments(req.QuestionPapers); err != nil {
		return nil, err
	}

	student, err := s.repo.User().GetByID(ctx, req.AssignedTo)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}
	if student.Role != models.RoleStudent {
		return nil, ErrAssignToAdmin
	}

	now := time.Now()
	maxScore := 100.0
	if req.MaxScore != nil {
		maxScore = *req.MaxScore
	}

	assignment := &models.Assignment{
		ID:             newEntityID(now),
		Title:          req.Title,
		Subject:        req.Subject,
		Description:    req.Description,
		DueDate:        req.DueDate,
		AssignedTo:     req.AssignedTo,
		Status:         models.StatusPending,
		QuestionPapers: withAttachmentIDs(req.QuestionPapers, now),
		SubmittedFiles: models.AttachmentList{},
		MaxScore:       maxScore,
	}

	if err := s.repo.Assignment().Create(ctx, assignment); err != nil {
		return nil, err
	}

	s.logger.Info("assignment created", "assignment_id", assignment.ID, "assigned_to", assignment.AssignedTo)
	s.publish(ctx, events.TypeAssignmentCreated, assignment)

	return assignment, nil
}

func (s *assignmentService) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

func (s *assignmentService) List(ctx context.Context, assignedTo string) ([]*models.Assignment, error) {
	var filters repositories.AssignmentFilters
	if assignedTo != "" {
		filters.AssignedTo = &assignedTo
	}
	return s.repo.Assignment().List(ctx, filters)
}

// Update is the raw partial merge behind PATCH: only the listed fields
// change, overlapping concurrent writes are last-write-wins.
func (s *assignmentService) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Assignment, error) {
	columns, err := assignmentColumns(fields)
	if err != nil {
		return nil, err
	}

	assignment, err := s.repo.Assignment().Update(ctx, id, columns)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) Delete(ctx context.Context, id string) error {
	assignment, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Assignment().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	s.logger.Info("assignment deleted", "assignment_id", id)
	s.publish(ctx, events.TypeAssignmentDeleted, assignment)
	return nil
}

// SubmitFiles appends answer scripts and re-derives the status. Allowed from
// PENDING and SUBMITTED; GRADED is terminal.
func (s *assignmentService) SubmitFiles(ctx context.Context, id, studentID string, req *SubmitFilesRequest) (*models.Assignment, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	if err := validateAttachments(req.Files); err != nil {
		return nil, err
	}

	assignment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.AssignedTo != studentID {
		return nil, ErrNotAssignedTo
	}
	if assignment.IsGraded() {
		return nil, ErrAlreadyGraded
	}

	now := time.Now()
	wasPending := assignment.Status == models.StatusPending
	assignment.SubmittedFiles = append(assignment.SubmittedFiles, withAttachmentIDs(req.Files, now)...)
	DeriveStatus(assignment, now)

	updated, err := s.repo.Assignment().Update(ctx, id, map[string]interface{}{
		"submitted_files": assignment.SubmittedFiles,
		"status":          assignment.Status,
		"submitted_at":    assignment.SubmittedAt,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("files submitted", "assignment_id", id, "student_id", studentID, "files", len(req.Files))
	if wasPending {
		s.publish(ctx, events.TypeAssignmentSubmitted, updated)
	}
	return updated, nil
}

// RemoveFile drops one submitted file. Removing the last file re-enters
// PENDING and clears the submission timestamp.
func (s *assignmentService) RemoveFile(ctx context.Context, id, studentID, fileID string) (*models.Assignment, error) {
	assignment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.AssignedTo != studentID {
		return nil, ErrNotAssignedTo
	}
	if assignment.IsGraded() {
		return nil, ErrAlreadyGraded
	}

	kept := make(models.AttachmentList, 0, len(assignment.SubmittedFiles))
	found := false
	for _, f := range assignment.SubmittedFiles {
		if f.ID == fileID {
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		return nil, ErrNotFound
	}

	assignment.SubmittedFiles = kept
	DeriveStatus(assignment, time.Now())

	updated, err := s.repo.Assignment().Update(ctx, id, map[string]interface{}{
		"submitted_files": assignment.SubmittedFiles,
		"status":          assignment.Status,
		"submitted_at":    assignment.SubmittedAt,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("submitted file removed", "assignment_id", id, "file_id", fileID, "status", updated.Status)
	return updated, nil
}

// Grade records score and remarks. Only legal from SUBMITTED; the resulting
// GRADED state is terminal.
func (s *assignmentService) Grade(ctx context.Context, id string, req *GradeRequest) (*models.Assignment, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	assignment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.IsGraded() {
		return nil, ErrAlreadyGraded
	}
	if assignment.Status != models.StatusSubmitted {
		return nil, ErrNotSubmitted
	}
	if req.Score < 0 || req.Score > assignment.MaxScore {
		return nil, NewValidationError("score", fmt.Sprintf("must be between 0 and %g", assignment.MaxScore), req.Score)
	}

	updated, err := s.repo.Assignment().Update(ctx, id, map[string]interface{}{
		"status":  models.StatusGraded,
		"score":   req.Score,
		"remarks": req.Remarks,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("assignment graded", "assignment_id", id, "score", req.Score, "max_score", assignment.MaxScore)
	s.publish(ctx, events.TypeAssignmentGraded, updated)
	return updated, nil
}

func (s *assignmentService) publish(ctx context.Context, eventType string, assignment *models.Assignment) {
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, assignment)); err != nil {
		s.logger.Error("failed to publish event", "type", eventType, "assignment_id", assignment.ID, "error", err)
	}
}

// validateAttachments rejects payloads that are neither a decodable data URL
// nor a plain http(s) locator, so malformed uploads never reach the store.
func validateAttachments(files []models.Attachment) error {
	for _, f := range files {
		if attachment.IsRemote(f.URL) {
			continue
		}
		if _, _, err := attachment.Decode(f.URL); err != nil {
			return NewValidationError("url", fmt.Sprintf("attachment %q is not a valid data URL", f.Name), f.URL)
		}
	}
	return nil
}

// withAttachmentIDs fills in missing attachment ids and timestamps; client
// supplied values are kept.
func withAttachmentIDs(files []models.Attachment, now time.Time) models.AttachmentList {
	out := make(models.AttachmentList, 0, len(files))
	for _, f := range files {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.CreatedAt == "" {
			f.CreatedAt = now.UTC().Format(time.RFC3339)
		}
		out = append(out, f)
	}
	return out
}
