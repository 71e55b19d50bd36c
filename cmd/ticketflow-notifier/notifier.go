// Package main provides the notification delivery worker.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/workpoint/ticketflow/pkg/eventbus"
	"github.com/workpoint/ticketflow/pkg/events"
	"github.com/workpoint/ticketflow/pkg/models"
	"github.com/workpoint/ticketflow/pkg/notification"
	"github.com/workpoint/ticketflow/pkg/persistence"
)

const defaultReminderAge = 48 * time.Hour

// Notifier consumes ticket action events and delivers one message per
// recipient. Delivery is best-effort: a failed recipient is logged and the
// remaining recipients still get their copy.
type Notifier struct {
	id               string
	persistence      persistence.Persistence
	eventBus         eventbus.EventBus
	sender           notification.EmailSender
	reminderSchedule string
	reminderAge      time.Duration
	logger           *slog.Logger
	cron             *cron.Cron
}

func NewNotifier(
	id string,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	sender notification.EmailSender,
	reminderSchedule string,
	reminderAge time.Duration,
	logger *slog.Logger,
) *Notifier {
	if reminderAge <= 0 {
		reminderAge = defaultReminderAge
	}

	return &Notifier{
		id:               id,
		persistence:      persistence,
		eventBus:         eventBus,
		sender:           sender,
		reminderSchedule: reminderSchedule,
		reminderAge:      reminderAge,
		logger:           logger.With("module", "notifier"),
	}
}

// Start runs the notifier until the context is cancelled or a termination
// signal arrives.
func (n *Notifier) Start(ctx context.Context) {
	nCtx, cancel := context.WithCancel(ctx)

	n.logger.Info("Starting notifier")

	n.handleSignals(cancel)

	if err := n.registerHandlers(); err != nil {
		n.logger.Error("Failed to register event handlers", "error", err)
		cancel()

		return
	}

	if err := n.eventBus.Subscribe(nCtx); err != nil {
		n.logger.Error("Failed to subscribe to ticket events", "error", err)
		cancel()

		return
	}

	n.startReminderSweep(nCtx)

	n.logger.Info("Notifier subscribed to ticket events - waiting for events...")

	<-nCtx.Done()

	if n.cron != nil {
		n.cron.Stop()
	}

	n.logger.Info("Notifier context cancelled, stopping...")
}

func (n *Notifier) handleSignals(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		n.logger.Info("Received signal, shutting down gracefully", "signal", sig)
		cancel()
	}()
}

func (n *Notifier) registerHandlers() error {
	handled := []events.EventType{
		events.TicketRaisedEvent,
		events.TicketForwardedEvent,
		events.TicketRevertedEvent,
		events.TicketReassignedEvent,
		events.GroupFormedEvent,
		events.BlockerReportedEvent,
		events.BlockerResolvedEvent,
		events.TicketResolvedEvent,
		events.TicketClosedEvent,
		events.TicketReopenedEvent,
		events.TicketReminderEvent,
	}

	for _, eventType := range handled {
		if err := n.eventBus.Handle(eventType, n.handleEvent); err != nil {
			return fmt.Errorf("failed to register handler for %s: %w", eventType, err)
		}
	}

	return nil
}

func (n *Notifier) handleEvent(ctx context.Context, event any) error {
	recipients, subject, body, ok := composeMessage(event)
	if !ok {
		n.logger.WarnContext(ctx, "Received event with no message mapping", "event", fmt.Sprintf("%T", event))

		return nil
	}

	n.deliver(ctx, recipients, subject, body)

	return nil
}

// deliver fans the message out to each recipient in turn. Failures are logged
// and never abort the loop.
func (n *Notifier) deliver(ctx context.Context, recipients []string, subject, body string) {
	for _, recipient := range recipients {
		if recipient == "" {
			continue
		}

		if err := n.sender.Send(ctx, recipient, subject, body); err != nil {
			n.logger.ErrorContext(ctx, "Failed to deliver notification",
				"recipient", recipient,
				"subject", subject,
				"error", err)
		}
	}
}

// startReminderSweep schedules the pending ticket sweep. Tickets sitting in
// pending longer than the configured age produce a reminder event, which the
// notifier itself then delivers like any other event.
func (n *Notifier) startReminderSweep(ctx context.Context) {
	if n.reminderSchedule == "" {
		return
	}

	n.cron = cron.New()

	_, err := n.cron.AddFunc(n.reminderSchedule, func() {
		if err := n.sweepPendingTickets(ctx); err != nil {
			n.logger.ErrorContext(ctx, "Pending ticket sweep failed", "error", err)
		}
	})
	if err != nil {
		n.logger.ErrorContext(ctx, "Invalid reminder schedule, sweep disabled",
			"schedule", n.reminderSchedule,
			"error", err)

		n.cron = nil

		return
	}

	n.cron.Start()
	n.logger.Info("Reminder sweep scheduled", "schedule", n.reminderSchedule, "age", n.reminderAge)
}

func (n *Notifier) sweepPendingTickets(ctx context.Context) error {
	tickets, err := n.persistence.TicketRepository().ListByStatus(ctx, models.TicketStatusPending)
	if err != nil {
		return fmt.Errorf("failed to list pending tickets: %w", err)
	}

	cutoff := time.Now().UTC().Add(-n.reminderAge)
	reminded := 0

	for _, ticket := range tickets {
		if ticket.UpdatedAt.After(cutoff) {
			continue
		}

		event := events.TicketReminder{
			BaseEvent: events.BaseEvent{
				ID:           n.eventBus.GenerateID(),
				Type:         events.TicketReminderEvent,
				Timestamp:    time.Now().UTC(),
				TicketID:     ticket.ID,
				TicketNumber: ticket.TicketNumber,
				Recipients:   notification.Recipients(ticket),
			},
			PendingSince: ticket.UpdatedAt,
		}

		if err := n.eventBus.Publish(ctx, ticket.ID, event); err != nil {
			n.logger.ErrorContext(ctx, "Failed to publish reminder",
				"ticket_id", ticket.ID,
				"error", err)

			continue
		}

		reminded++
	}

	n.logger.InfoContext(ctx, "Pending ticket sweep finished",
		"pending", len(tickets),
		"reminded", reminded)

	return nil
}

// composeMessage maps a decoded event to its recipients, subject, and body.
func composeMessage(event any) ([]string, string, string, bool) {
	switch e := event.(type) {
	case *events.TicketRaised:
		return e.Recipients,
			fmt.Sprintf("[%s] New ticket raised", e.TicketNumber),
			fmt.Sprintf("%s raised %q and it is assigned to %s.", actorLabel(e.PerformedBy), e.Title, e.Assignee),
			true
	case *events.TicketForwarded:
		return e.Recipients,
			fmt.Sprintf("[%s] Ticket forwarded", e.TicketNumber),
			fmt.Sprintf("%s forwarded the ticket from %s to %s: %s", actorLabel(e.PerformedBy), e.FromNode, e.ToNode, e.Explanation),
			true
	case *events.TicketReverted:
		return e.Recipients,
			fmt.Sprintf("[%s] Ticket reverted", e.TicketNumber),
			fmt.Sprintf("%s reverted the ticket from %s to %s: %s", actorLabel(e.PerformedBy), e.FromNode, e.ToNode, e.Explanation),
			true
	case *events.TicketReassigned:
		return e.Recipients,
			fmt.Sprintf("[%s] Ticket reassigned", e.TicketNumber),
			fmt.Sprintf("%s reassigned the ticket to %s.", actorLabel(e.PerformedBy), strings.Join(e.ReassignedTo, ", ")),
			true
	case *events.GroupFormed:
		return e.Recipients,
			fmt.Sprintf("[%s] Group formed", e.TicketNumber),
			fmt.Sprintf("%s formed a group of %d led by %s.", actorLabel(e.PerformedBy), len(e.GroupMembers), e.GroupLead),
			true
	case *events.BlockerReported:
		return e.Recipients,
			fmt.Sprintf("[%s] Blocker reported", e.TicketNumber),
			fmt.Sprintf("%s reported a blocker: %s", actorLabel(e.PerformedBy), e.Description),
			true
	case *events.BlockerResolved:
		return e.Recipients,
			fmt.Sprintf("[%s] Blocker resolved", e.TicketNumber),
			fmt.Sprintf("%s resolved the blocker: %s", actorLabel(e.PerformedBy), e.Description),
			true
	case *events.TicketResolved:
		return e.Recipients,
			fmt.Sprintf("[%s] Ticket resolved", e.TicketNumber),
			fmt.Sprintf("%s resolved the ticket.", actorLabel(e.PerformedBy)),
			true
	case *events.TicketClosed:
		return e.Recipients,
			fmt.Sprintf("[%s] Ticket closed", e.TicketNumber),
			fmt.Sprintf("%s closed the ticket.", actorLabel(e.PerformedBy)),
			true
	case *events.TicketReopened:
		return e.Recipients,
			fmt.Sprintf("[%s] Ticket reopened", e.TicketNumber),
			fmt.Sprintf("%s reopened the ticket at %s.", actorLabel(e.PerformedBy), e.ToNode),
			true
	case *events.TicketReminder:
		return e.Recipients,
			fmt.Sprintf("[%s] Ticket awaiting action", e.TicketNumber),
			fmt.Sprintf("The ticket has been pending since %s.", e.PendingSince.Format(time.RFC1123)),
			true
	default:
		return nil, "", "", false
	}
}

func actorLabel(actor models.Actor) string {
	if actor.Name != "" {
		return actor.Name
	}

	if actor.UserID != "" {
		return actor.UserID
	}

	return "Someone"
}
