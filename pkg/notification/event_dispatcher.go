package notification

import (
	"context"
	"time"

	"github.com/workpoint/ticketflow/pkg/eventbus"
	"github.com/workpoint/ticketflow/pkg/events"
	"github.com/workpoint/ticketflow/pkg/models"
)

// EventDispatcher publishes one ticket event per action family on the event
// bus. The notifier worker turns those events into outbound email.
type EventDispatcher struct {
	bus eventbus.EventBus
}

// NewEventDispatcher creates a dispatcher backed by the event bus.
func NewEventDispatcher(bus eventbus.EventBus) *EventDispatcher {
	return &EventDispatcher{bus: bus}
}

func (d *EventDispatcher) base(eventType events.EventType, ticket *models.Ticket, actor models.Actor) events.BaseEvent {
	return events.BaseEvent{
		ID:           d.bus.GenerateID(),
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		PerformedBy:  actor,
		Recipients:   Recipients(ticket),
	}
}

func (d *EventDispatcher) TicketRaised(ctx context.Context, ticket *models.Ticket, actor models.Actor) error {
	return d.bus.Publish(ctx, ticket.ID, events.TicketRaised{
		BaseEvent: d.base(events.TicketRaisedEvent, ticket, actor),
		Title:     ticket.Title,
		Assignee:  ticket.CurrentAssignee,
	})
}

func (d *EventDispatcher) Forwarded(ctx context.Context, ticket *models.Ticket, actor models.Actor, fromNode, toNode, explanation string, assignees []string) error {
	return d.bus.Publish(ctx, ticket.ID, events.TicketForwarded{
		BaseEvent:   d.base(events.TicketForwardedEvent, ticket, actor),
		FromNode:    fromNode,
		ToNode:      toNode,
		Explanation: explanation,
		Assignees:   assignees,
	})
}

func (d *EventDispatcher) Reverted(ctx context.Context, ticket *models.Ticket, actor models.Actor, fromNode, toNode, explanation string, assignees []string) error {
	return d.bus.Publish(ctx, ticket.ID, events.TicketReverted{
		BaseEvent:   d.base(events.TicketRevertedEvent, ticket, actor),
		FromNode:    fromNode,
		ToNode:      toNode,
		Explanation: explanation,
		Assignees:   assignees,
	})
}

func (d *EventDispatcher) Reassigned(ctx context.Context, ticket *models.Ticket, actor models.Actor, reassignedTo []string, explanation string) error {
	return d.bus.Publish(ctx, ticket.ID, events.TicketReassigned{
		BaseEvent:    d.base(events.TicketReassignedEvent, ticket, actor),
		ReassignedTo: reassignedTo,
		Explanation:  explanation,
	})
}

func (d *EventDispatcher) GroupFormed(ctx context.Context, ticket *models.Ticket, actor models.Actor, groupLead string, members []models.GroupMember) error {
	return d.bus.Publish(ctx, ticket.ID, events.GroupFormed{
		BaseEvent:    d.base(events.GroupFormedEvent, ticket, actor),
		GroupLead:    groupLead,
		GroupMembers: members,
	})
}

func (d *EventDispatcher) BlockerReported(ctx context.Context, ticket *models.Ticket, actor models.Actor, description string) error {
	return d.bus.Publish(ctx, ticket.ID, events.BlockerReported{
		BaseEvent:   d.base(events.BlockerReportedEvent, ticket, actor),
		Description: description,
	})
}

func (d *EventDispatcher) BlockerResolved(ctx context.Context, ticket *models.Ticket, actor models.Actor, description string) error {
	return d.bus.Publish(ctx, ticket.ID, events.BlockerResolved{
		BaseEvent:   d.base(events.BlockerResolvedEvent, ticket, actor),
		Description: description,
	})
}

func (d *EventDispatcher) Resolved(ctx context.Context, ticket *models.Ticket, actor models.Actor) error {
	return d.bus.Publish(ctx, ticket.ID, events.TicketResolved{
		BaseEvent: d.base(events.TicketResolvedEvent, ticket, actor),
	})
}

func (d *EventDispatcher) Closed(ctx context.Context, ticket *models.Ticket, actor models.Actor) error {
	return d.bus.Publish(ctx, ticket.ID, events.TicketClosed{
		BaseEvent: d.base(events.TicketClosedEvent, ticket, actor),
	})
}

func (d *EventDispatcher) Reopened(ctx context.Context, ticket *models.Ticket, actor models.Actor, toNode, explanation string) error {
	return d.bus.Publish(ctx, ticket.ID, events.TicketReopened{
		BaseEvent:   d.base(events.TicketReopenedEvent, ticket, actor),
		ToNode:      toNode,
		Explanation: explanation,
	})
}
