package services

import (
	"errors"
	"fmt"
)

// Sentinel errors the handlers map onto HTTP statuses.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicateKey       = errors.New("duplicate key")

	// Lifecycle guard violations.
	ErrNotSubmitted  = errors.New("assignment has not been submitted")
	ErrAlreadyGraded = errors.New("assignment is already graded")
	ErrUserNotFound  = errors.New("user not found")
	ErrNotAssignedTo = errors.New("assignment belongs to another student")
	ErrAssignToAdmin = errors.New("assignments can only be assigned to students")
)

// ValidationError carries a single field failure, wrapping the sentinel so
// errors.Is(err, ErrValidationFailed) holds.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// PermissionError records which actor was denied which operation.
type PermissionError struct {
	UserID    string
	Resource  string
	Operation string
	Reason    string
}

func NewPermissionError(userID, resource, operation, reason string) *PermissionError {
	return &PermissionError{UserID: userID, Resource: resource, Operation: operation, Reason: reason}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s: %s", e.UserID, e.Operation, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}
