// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"
)

// Business rule errors - these indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrUnknownAction              = errors.New("unknown action")
	ErrActorRequired              = errors.New("performedBy.userId is required")
	ErrRevertMessageRequired      = errors.New("revertMessage is required")
	ErrRevertAtFirstNode          = errors.New("cannot revert from the first workflow node")
	ErrNoPreviousNode             = errors.New("no previous node in workflow")
	ErrRevertToStart              = errors.New("cannot revert to the start node")
	ErrGroupLeadRequired          = errors.New("groupLead is required")
	ErrGroupTooSmall              = errors.New("groupMembers must contain at least 2 members")
	ErrReassignToRequired         = errors.New("reassignTo is required")
	ErrReassignToUnresolved       = errors.New("reassign targets could not be resolved")
	ErrToNodeRequired             = errors.New("toNode is required")
	ErrExplanationRequired        = errors.New("explanation is required")
	ErrBlockerDescriptionRequired = errors.New("blockerDescription is required")
	ErrNoBlockerToResolve         = errors.New("ticket has no blocker to resolve")
	ErrTargetNodeNotFound         = errors.New("Target node not found in workflow")

	// Functionality validation errors.
	ErrFunctionalityNameRequired = errors.New("functionality name is required")
	ErrGraphRequired             = errors.New("functionality must define a workflow graph")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrActorRequired) ||
		errors.Is(err, ErrRevertMessageRequired) ||
		errors.Is(err, ErrRevertAtFirstNode) ||
		errors.Is(err, ErrNoPreviousNode) ||
		errors.Is(err, ErrRevertToStart) ||
		errors.Is(err, ErrGroupLeadRequired) ||
		errors.Is(err, ErrGroupTooSmall) ||
		errors.Is(err, ErrReassignToRequired) ||
		errors.Is(err, ErrReassignToUnresolved) ||
		errors.Is(err, ErrToNodeRequired) ||
		errors.Is(err, ErrExplanationRequired) ||
		errors.Is(err, ErrBlockerDescriptionRequired) ||
		errors.Is(err, ErrNoBlockerToResolve) ||
		errors.Is(err, ErrTargetNodeNotFound) ||
		errors.Is(err, ErrFunctionalityNameRequired) ||
		errors.Is(err, ErrGraphRequired)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
