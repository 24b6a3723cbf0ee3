package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mathconnect/tuition-service/internal/models"
)

// The PATCH endpoints accept partial JSON bodies. Only the wire fields below
// are accepted; anything else fails validation instead of silently writing
// arbitrary columns.

var userPatchColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"password":  "password",
	"role":      "role",
	"class":     "class",
	"phone":     "phone",
	"address":   "address",
	"joinDate":  "join_date",
	"avatarUrl": "avatar_url",
}

var assignmentPatchColumns = map[string]string{
	"title":          "title",
	"subject":        "subject",
	"description":    "description",
	"dueDate":        "due_date",
	"assignedTo":     "assigned_to",
	"status":         "status",
	"questionPapers": "question_papers",
	"submittedFiles": "submitted_files",
	"submittedAt":    "submitted_at",
	"score":          "score",
	"maxScore":       "max_score",
	"remarks":        "remarks",
}

func userColumns(fields map[string]interface{}) (map[string]interface{}, error) {
	columns := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		column, ok := userPatchColumns[key]
		if !ok {
			return nil, NewValidationError(key, "is not an updatable field", value)
		}
		if key == "role" {
			role, _ := value.(string)
			if !models.UserRole(role).Valid() {
				return nil, NewValidationError("role", "must be ADMIN or STUDENT", value)
			}
		}
		columns[column] = value
	}
	return columns, nil
}

func assignmentColumns(fields map[string]interface{}) (map[string]interface{}, error) {
	columns := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		column, ok := assignmentPatchColumns[key]
		if !ok {
			return nil, NewValidationError(key, "is not an updatable field", value)
		}

		switch key {
		case "status":
			status, _ := value.(string)
			if !models.AssignmentStatus(status).Valid() {
				return nil, NewValidationError("status", "must be PENDING, SUBMITTED or GRADED", value)
			}
			columns[column] = value
		case "questionPapers", "submittedFiles":
			list, err := toAttachmentList(value)
			if err != nil {
				return nil, NewValidationError(key, "must be a list of attachments", value)
			}
			columns[column] = list
		case "submittedAt":
			t, err := toTimePtr(value)
			if err != nil {
				return nil, NewValidationError(key, "must be an RFC 3339 timestamp or null", value)
			}
			columns[column] = t
		default:
			columns[column] = value
		}
	}
	return columns, nil
}

// toAttachmentList re-marshals the decoded JSON value into the typed list so
// gorm serializes it as one JSONB document.
func toAttachmentList(value interface{}) (models.AttachmentList, error) {
	if value == nil {
		return models.AttachmentList{}, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var list models.AttachmentList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func toTimePtr(value interface{}) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T", value)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
