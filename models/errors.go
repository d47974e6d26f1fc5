package models

import "fmt"

// ValidationError marks malformed or out-of-range input. The caller can
// recover by correcting the request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError marks a state-machine rule violation, such as
// completing a task that has already expired.
type InvalidTransitionError struct {
	Message string
}

func (e *InvalidTransitionError) Error() string {
	return e.Message
}

func NewInvalidTransitionError(format string, args ...interface{}) error {
	return &InvalidTransitionError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError marks an overlapping schedule. ConflictingTitle carries the
// first schedule found in the way so clients can offer a reschedule flow.
type ConflictError struct {
	Message          string
	ConflictingTitle string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(conflictingTitle string) error {
	return &ConflictError{
		Message:          fmt.Sprintf("schedule conflict: the time slot is already taken by %q", conflictingTitle),
		ConflictingTitle: conflictingTitle,
	}
}

// PermissionDeniedError marks a failed group-authorization check, distinct
// from validation so clients can branch on "ask an admin".
type PermissionDeniedError struct {
	Message string
}

func (e *PermissionDeniedError) Error() string {
	return e.Message
}

func NewPermissionDeniedError(format string, args ...interface{}) error {
	return &PermissionDeniedError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError marks an id that does not resolve to a stored entity.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}
