package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workpoint/ticketflow/pkg/assignment"
	"github.com/workpoint/ticketflow/pkg/graph"
	"github.com/workpoint/ticketflow/pkg/models"
	"github.com/workpoint/ticketflow/pkg/notification"
	"github.com/workpoint/ticketflow/pkg/persistence"
)

// Tickets provides ticket lifecycle operations outside the action state
// machine: raising and reading.
type Tickets struct {
	persistence persistence.Persistence
	resolver    *assignment.Resolver
	dispatcher  notification.Dispatcher
	logger      *slog.Logger
}

// NewTickets creates a new ticket service.
func NewTickets(
	persistence persistence.Persistence,
	resolver *assignment.Resolver,
	dispatcher notification.Dispatcher,
	logger *slog.Logger,
) *Tickets {
	return &Tickets{
		persistence: persistence,
		resolver:    resolver,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Tickets) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// RaiseTicketRequest contains the fields needed to open a ticket.
type RaiseTicketRequest struct {
	Title           string
	Description     string
	Department      string
	FunctionalityID string
	RaisedBy        models.Actor
	FormData        map[string]any
}

// Raise creates a ticket positioned at the workflow's first employee node with
// its initial assignee resolved and a created history entry.
func (s *Tickets) Raise(ctx context.Context, req RaiseTicketRequest) (*models.Ticket, error) {
	if req.RaisedBy.UserID == "" {
		return nil, ErrActorRequired
	}

	functionality, err := s.persistence.FunctionalityRepository().GetByID(ctx, req.FunctionalityID)
	if err != nil {
		return nil, err
	}

	if functionality == nil {
		return nil, ErrFunctionalityNotFound
	}

	firstNodeID := graph.FirstNodeID(&functionality.Graph)
	if firstNodeID == "" {
		return nil, ErrGraphRequired
	}

	firstNode, err := graph.NodeByID(firstNodeID, &functionality.Graph)
	if err != nil {
		return nil, ErrGraphRequired
	}

	creator, err := s.resolver.Enrich(ctx, req.RaisedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich creator: %w", err)
	}

	now := time.Now().UTC()
	id := uuid.New().String()

	ticket := &models.Ticket{
		ID:              id,
		TicketNumber:    ticketNumber(id),
		Title:           req.Title,
		Description:     req.Description,
		Department:      req.Department,
		FunctionalityID: functionality.ID,
		WorkflowStage:   firstNode.ID,
		Status:          models.TicketStatusPending,
		RaisedBy:        models.CreditEntry{UserID: creator.UserID, Name: creator.Name},
		FormData:        req.FormData,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if firstNode.Data.IsParallel() {
		group, err := s.resolver.ResolveGroup(ctx, firstNode.Data.GroupLead, firstNode.Data.GroupMembers)
		if err != nil {
			return nil, err
		}

		ticket.CurrentAssignee = group.Lead.ID
		ticket.CurrentAssignees = group.MemberIDs()
		ticket.GroupLead = group.Lead.ID
	} else if firstNode.Data != nil {
		assignee, err := s.resolver.ResolveSingle(ctx, firstNode.Data.EmployeeID)
		if err != nil {
			return nil, err
		}

		ticket.CurrentAssignee = assignee.ID
		ticket.CurrentAssignees = []string{assignee.ID}
	}

	ticket.WorkflowHistory = append(ticket.WorkflowHistory, models.HistoryEntry{
		ActionType:  models.ActionCreated,
		PerformedBy: creator,
		PerformedAt: now,
		ToNode:      firstNode.ID,
	})

	if err := s.persistence.TicketRepository().Save(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to save ticket %s: %w", ticket.ID, err)
	}

	if err := s.dispatcher.TicketRaised(ctx, ticket, creator); err != nil {
		s.logger.WarnContext(ctx, "Ticket raised notification failed", "ticket_id", ticket.ID, "error", err)
	}

	return ticket, nil
}

// FetchByID retrieves a ticket by its ID.
func (s *Tickets) FetchByID(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := s.persistence.TicketRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	return ticket, nil
}

// List retrieves all tickets, optionally filtered by status.
func (s *Tickets) List(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error) {
	if status == "" {
		return s.persistence.TicketRepository().GetAll(ctx)
	}

	return s.persistence.TicketRepository().ListByStatus(ctx, status)
}

// ticketNumber derives the human-readable number from the ticket id.
func ticketNumber(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 8 {
		compact = compact[:8]
	}

	return "TKT-" + strings.ToUpper(compact)
}
