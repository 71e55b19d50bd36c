// Package events defines event types for ticket workflow notifications.
package events

import (
	"time"

	"github.com/workpoint/ticketflow/pkg/models"
)

type EventType string

// Topic carries every ticket action event.
const Topic = "ticketflow.tickets"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	TicketRaisedEvent     EventType = "ticket.raised"
	TicketForwardedEvent  EventType = "ticket.forwarded"
	TicketRevertedEvent   EventType = "ticket.reverted"
	TicketReassignedEvent EventType = "ticket.reassigned"
	GroupFormedEvent      EventType = "ticket.group_formed"
	BlockerReportedEvent  EventType = "ticket.blocker_reported"
	BlockerResolvedEvent  EventType = "ticket.blocker_resolved"
	TicketResolvedEvent   EventType = "ticket.resolved"
	TicketClosedEvent     EventType = "ticket.closed"
	TicketReopenedEvent   EventType = "ticket.reopened"
	TicketReminderEvent   EventType = "ticket.reminder"
)

// BaseEvent carries the fields shared by every ticket event. Recipients is the
// full fan-out set the notifier should address: creator, current assignees,
// and any configured notification recipients.
type BaseEvent struct {
	ID           string       `json:"id"`
	Type         EventType    `json:"type"`
	Timestamp    time.Time    `json:"timestamp"`
	TicketID     string       `json:"ticket_id"`
	TicketNumber string       `json:"ticket_number"`
	PerformedBy  models.Actor `json:"performed_by"`
	Recipients   []string     `json:"recipients,omitempty"`
}

type TicketRaised struct {
	BaseEvent

	Title    string `json:"title"`
	Assignee string `json:"assignee"`
}

func (e TicketRaised) GetType() EventType {
	return TicketRaisedEvent
}

type TicketForwarded struct {
	BaseEvent

	FromNode    string   `json:"from_node"`
	ToNode      string   `json:"to_node"`
	Explanation string   `json:"explanation,omitempty"`
	Assignees   []string `json:"assignees,omitempty"`
}

func (e TicketForwarded) GetType() EventType {
	return TicketForwardedEvent
}

type TicketReverted struct {
	BaseEvent

	FromNode    string   `json:"from_node"`
	ToNode      string   `json:"to_node"`
	Explanation string   `json:"explanation"`
	Assignees   []string `json:"assignees,omitempty"`
}

func (e TicketReverted) GetType() EventType {
	return TicketRevertedEvent
}

type TicketReassigned struct {
	BaseEvent

	ReassignedTo []string `json:"reassigned_to"`
	Explanation  string   `json:"explanation,omitempty"`
}

func (e TicketReassigned) GetType() EventType {
	return TicketReassignedEvent
}

type GroupFormed struct {
	BaseEvent

	GroupLead    string               `json:"group_lead"`
	GroupMembers []models.GroupMember `json:"group_members"`
}

func (e GroupFormed) GetType() EventType {
	return GroupFormedEvent
}

type BlockerReported struct {
	BaseEvent

	Description string `json:"description"`
}

func (e BlockerReported) GetType() EventType {
	return BlockerReportedEvent
}

type BlockerResolved struct {
	BaseEvent

	Description string `json:"description"`
}

func (e BlockerResolved) GetType() EventType {
	return BlockerResolvedEvent
}

type TicketResolved struct {
	BaseEvent
}

func (e TicketResolved) GetType() EventType {
	return TicketResolvedEvent
}

type TicketClosed struct {
	BaseEvent
}

func (e TicketClosed) GetType() EventType {
	return TicketClosedEvent
}

type TicketReopened struct {
	BaseEvent

	ToNode      string `json:"to_node"`
	Explanation string `json:"explanation,omitempty"`
}

func (e TicketReopened) GetType() EventType {
	return TicketReopenedEvent
}

// TicketReminder is emitted by the notifier's pending sweep for tickets that
// have sat in pending longer than the configured threshold.
type TicketReminder struct {
	BaseEvent

	PendingSince time.Time `json:"pending_since"`
}

func (e TicketReminder) GetType() EventType {
	return TicketReminderEvent
}
