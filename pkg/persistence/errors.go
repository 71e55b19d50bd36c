// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrTicketNotFound indicates a ticket was not found by the given identifier.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrFunctionalityNotFound indicates no functionality exists for the given identifier.
	ErrFunctionalityNotFound = errors.New("functionality not found")
)

// TicketError wraps ticket-related errors with additional context.
type TicketError struct {
	Op       string // Operation being performed (e.g., "GetByID", "Save")
	TicketID string // Ticket ID if applicable
	Err      error  // Underlying error
}

func (e *TicketError) Error() string {
	return fmt.Sprintf("%s operation failed for ticket %s: %v", e.Op, e.TicketID, e.Err)
}

func (e *TicketError) Unwrap() error {
	return e.Err
}

func (e *TicketError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewTicketError creates a new ticket error with context.
func NewTicketError(op, ticketID string, err error) *TicketError {
	return &TicketError{
		Op:       op,
		TicketID: ticketID,
		Err:      err,
	}
}

// IsTicketNotFound checks if an error indicates a ticket was not found.
func IsTicketNotFound(err error) bool {
	return errors.Is(err, ErrTicketNotFound)
}

// IsFunctionalityNotFound checks if an error indicates a functionality was not found.
func IsFunctionalityNotFound(err error) bool {
	return errors.Is(err, ErrFunctionalityNotFound)
}
