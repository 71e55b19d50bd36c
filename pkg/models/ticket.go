// Package models defines the core domain models for ticket workflow processing.
package models

import "time"

// TicketStatus represents the lifecycle state of a ticket.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusBlocked    TicketStatus = "blocked"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// DepartmentSuperWorkflow selects the cross-department workflow variant.
const DepartmentSuperWorkflow = "Super Workflow"

// ActionType identifies an entry in a ticket's workflow history.
type ActionType string

const (
	ActionCreated         ActionType = "created"
	ActionReverted        ActionType = "reverted"
	ActionInProgress      ActionType = "in_progress"
	ActionGroupFormed     ActionType = "group_formed"
	ActionReassigned      ActionType = "reassigned"
	ActionForwarded       ActionType = "forwarded"
	ActionBlockerReported ActionType = "blocker_reported"
	ActionBlockerResolved ActionType = "blocker_resolved"
	ActionResolved        ActionType = "resolved"
	ActionClosed          ActionType = "closed"
	ActionReopened        ActionType = "reopened"
)

// Actor is a user performing an action. Name is only trustworthy after it has
// been re-resolved through the directory; handlers never persist the
// caller-supplied value.
type Actor struct {
	UserID string `json:"user_id" validate:"required"`
	Name   string `json:"name,omitempty"`
}

// CreditEntry records one contributor on a ticket.
type CreditEntry struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// GroupMember is a resolved member of a parallel assignment group.
type GroupMember struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	IsLead bool   `json:"is_lead,omitempty"`
}

// HistoryEntry is one append-only audit record. Entries are never mutated or
// removed once written.
type HistoryEntry struct {
	ActionType         ActionType    `json:"action_type"`
	PerformedBy        Actor         `json:"performed_by"`
	PerformedAt        time.Time     `json:"performed_at"`
	FromNode           string        `json:"from_node,omitempty"`
	ToNode             string        `json:"to_node,omitempty"`
	Explanation        string        `json:"explanation,omitempty"`
	GroupMembers       []GroupMember `json:"group_members,omitempty"`
	Attachments        []string      `json:"attachments,omitempty"`
	BlockerDescription string        `json:"blocker_description,omitempty"`
	ReassignedTo       []string      `json:"reassigned_to,omitempty"`
}

// Blocker records an impediment reported against a ticket.
type Blocker struct {
	Description           string     `json:"description"`
	ReportedBy            string     `json:"reported_by"`
	ReportedByName        string     `json:"reported_by_name"`
	ReportedAt            time.Time  `json:"reported_at"`
	IsResolved            bool       `json:"is_resolved"`
	ResolvedBy            string     `json:"resolved_by,omitempty"`
	ResolvedByName        string     `json:"resolved_by_name,omitempty"`
	ResolvedAt            *time.Time `json:"resolved_at,omitempty"`
	Attachments           []string   `json:"attachments,omitempty"`
	ResolutionAttachments []string   `json:"resolution_attachments,omitempty"`
}

// Ticket is the primary mutable entity. It is created by the raise-ticket flow
// positioned at the workflow's first node and mutated exclusively through
// action handlers; it is never hard-deleted.
type Ticket struct {
	ID              string `json:"id"`
	TicketNumber    string `json:"ticket_number"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Department      string `json:"department"`
	FunctionalityID string `json:"functionality_id"`

	WorkflowStage string       `json:"workflow_stage"`
	Status        TicketStatus `json:"status"`

	CurrentAssignee  string   `json:"current_assignee,omitempty"`
	CurrentAssignees []string `json:"current_assignees,omitempty"`
	GroupLead        string   `json:"group_lead,omitempty"`

	PrimaryCredit    *CreditEntry  `json:"primary_credit,omitempty"`
	SecondaryCredits []CreditEntry `json:"secondary_credits,omitempty"`

	WorkflowHistory []HistoryEntry `json:"workflow_history"`
	Blockers        []Blocker      `json:"blockers,omitempty"`

	RaisedBy CreditEntry    `json:"raised_by"`
	FormData map[string]any `json:"form_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotificationRecipients returns the extra recipient ids configured on the
// ticket's submitted form, if any.
func (t *Ticket) NotificationRecipients() []string {
	raw, ok := t.FormData["notification-recipients"]
	if !ok {
		return nil
	}

	switch values := raw.(type) {
	case []string:
		return values
	case []any:
		recipients := make([]string, 0, len(values))

		for _, v := range values {
			if s, ok := v.(string); ok && s != "" {
				recipients = append(recipients, s)
			}
		}

		return recipients
	default:
		return nil
	}
}

// LastUnresolvedBlocker reports whether the most recently reported blocker is
// still open. Resolution always targets the last entry of the list.
func (t *Ticket) LastUnresolvedBlocker() (*Blocker, bool) {
	if len(t.Blockers) == 0 {
		return nil, false
	}

	last := &t.Blockers[len(t.Blockers)-1]

	return last, !last.IsResolved
}
