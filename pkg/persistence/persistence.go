// Package persistence provides the data storage abstraction for tickets and
// functionalities.
package persistence

import (
	"context"

	"github.com/workpoint/ticketflow/pkg/models"
)

// TicketRepository stores tickets as whole documents. GetByID returns
// (nil, nil) when no ticket exists; services map that to ErrTicketNotFound.
type TicketRepository interface {
	GetByID(ctx context.Context, id string) (*models.Ticket, error)
	GetAll(ctx context.Context) ([]*models.Ticket, error)
	ListByStatus(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error)
	Save(ctx context.Context, ticket *models.Ticket) error
}

// FunctionalityRepository stores workflow definitions.
type FunctionalityRepository interface {
	GetByID(ctx context.Context, id string) (*models.Functionality, error)
	GetAll(ctx context.Context) ([]*models.Functionality, error)
	Save(ctx context.Context, functionality *models.Functionality) error
}

type Persistence interface {
	TicketRepository() TicketRepository
	FunctionalityRepository() FunctionalityRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
