// Package notification defines the best-effort notification contract invoked
// after a ticket mutation has been persisted.
package notification

import (
	"context"

	"github.com/workpoint/ticketflow/pkg/models"
)

// Dispatcher receives the mutated ticket, the enriched actor, and
// action-specific parameters after a successful persist. Implementations are
// advisory: a dispatch failure must never roll back or fail the action.
type Dispatcher interface {
	TicketRaised(ctx context.Context, ticket *models.Ticket, actor models.Actor) error
	Forwarded(ctx context.Context, ticket *models.Ticket, actor models.Actor, fromNode, toNode, explanation string, assignees []string) error
	Reverted(ctx context.Context, ticket *models.Ticket, actor models.Actor, fromNode, toNode, explanation string, assignees []string) error
	Reassigned(ctx context.Context, ticket *models.Ticket, actor models.Actor, reassignedTo []string, explanation string) error
	GroupFormed(ctx context.Context, ticket *models.Ticket, actor models.Actor, groupLead string, members []models.GroupMember) error
	BlockerReported(ctx context.Context, ticket *models.Ticket, actor models.Actor, description string) error
	BlockerResolved(ctx context.Context, ticket *models.Ticket, actor models.Actor, description string) error
	Resolved(ctx context.Context, ticket *models.Ticket, actor models.Actor) error
	Closed(ctx context.Context, ticket *models.Ticket, actor models.Actor) error
	Reopened(ctx context.Context, ticket *models.Ticket, actor models.Actor, toNode, explanation string) error
}

// Recipients computes the fan-out set for a ticket: the creator, the current
// assignees, and any configured notification recipients, deduplicated with
// insertion order preserved.
func Recipients(ticket *models.Ticket, extra ...string) []string {
	seen := make(map[string]bool)
	recipients := make([]string, 0, 2+len(ticket.CurrentAssignees)+len(extra))

	add := func(id string) {
		if id == "" || seen[id] {
			return
		}

		seen[id] = true
		recipients = append(recipients, id)
	}

	add(ticket.RaisedBy.UserID)

	for _, id := range ticket.CurrentAssignees {
		add(id)
	}

	for _, id := range ticket.NotificationRecipients() {
		add(id)
	}

	for _, id := range extra {
		add(id)
	}

	return recipients
}
