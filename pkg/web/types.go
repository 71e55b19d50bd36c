// Package web provides HTTP request and response types for the ticket API.
package web

import (
	"github.com/workpoint/ticketflow/pkg/attachments"
	"github.com/workpoint/ticketflow/pkg/models"
	"github.com/workpoint/ticketflow/pkg/services"
)

// ActorPayload identifies the acting user. The name is accepted but never
// trusted; the service re-resolves it before any write.
type ActorPayload struct {
	UserID string `json:"userId" validate:"required"`
	Name   string `json:"name,omitempty"`
}

// GroupMemberPayload is one proposed member of an assignment group.
type GroupMemberPayload struct {
	UserID string `json:"userId" validate:"required"`
	Name   string `json:"name,omitempty"`
}

// AttachmentPayload is one uploaded file. Either data or content carries the
// base64-encoded body.
type AttachmentPayload struct {
	Name    string `json:"name"    validate:"required"`
	Data    string `json:"data,omitempty"`
	Content string `json:"content,omitempty"`
	Type    string `json:"type,omitempty"`
}

// TicketActionRequest is the body of the ticket action endpoint. Action-
// specific required fields are enforced per action before dispatch.
type TicketActionRequest struct {
	Action      string       `json:"action"      validate:"required"`
	PerformedBy ActorPayload `json:"performedBy" validate:"required"`

	ToNode             string               `json:"toNode,omitempty"`
	Explanation        string               `json:"explanation,omitempty"`
	ReassignTo         []string             `json:"reassignTo,omitempty"`
	BlockerDescription string               `json:"blockerDescription,omitempty"`
	GroupMembers       []GroupMemberPayload `json:"groupMembers,omitempty"`
	GroupLead          string               `json:"groupLead,omitempty"`
	RevertMessage      string               `json:"revertMessage,omitempty"`

	RevertAttachments     []AttachmentPayload `json:"revertAttachments,omitempty"`
	ForwardAttachments    []AttachmentPayload `json:"forwardAttachments,omitempty"`
	BlockerAttachments    []AttachmentPayload `json:"blockerAttachments,omitempty"`
	ResolutionAttachments []AttachmentPayload `json:"resolutionAttachments,omitempty"`
}

// ToServiceRequest converts the payload into the service-level action request.
func (r *TicketActionRequest) ToServiceRequest() services.ActionRequest {
	memberIDs := make([]string, 0, len(r.GroupMembers))
	for _, member := range r.GroupMembers {
		memberIDs = append(memberIDs, member.UserID)
	}

	return services.ActionRequest{
		Action:                r.Action,
		PerformedBy:           models.Actor{UserID: r.PerformedBy.UserID, Name: r.PerformedBy.Name},
		ToNode:                r.ToNode,
		Explanation:           r.Explanation,
		ReassignTo:            r.ReassignTo,
		BlockerDescription:    r.BlockerDescription,
		GroupMembers:          memberIDs,
		GroupLead:             r.GroupLead,
		RevertMessage:         r.RevertMessage,
		RevertAttachments:     toFiles(r.RevertAttachments),
		ForwardAttachments:    toFiles(r.ForwardAttachments),
		BlockerAttachments:    toFiles(r.BlockerAttachments),
		ResolutionAttachments: toFiles(r.ResolutionAttachments),
	}
}

func toFiles(payloads []AttachmentPayload) []attachments.File {
	if len(payloads) == 0 {
		return nil
	}

	files := make([]attachments.File, 0, len(payloads))
	for _, p := range payloads {
		files = append(files, attachments.File{Name: p.Name, Data: p.Data, Content: p.Content, Type: p.Type})
	}

	return files
}

// RaiseTicketRequest is the body for opening a new ticket.
type RaiseTicketRequest struct {
	Title           string         `json:"title"           validate:"required,min=3"`
	Description     string         `json:"description,omitempty"`
	Department      string         `json:"department"      validate:"required"`
	FunctionalityID string         `json:"functionalityId" validate:"required"`
	RaisedBy        ActorPayload   `json:"raisedBy"        validate:"required"`
	FormData        map[string]any `json:"formData,omitempty"`
}

// SaveFunctionalityRequest is the body for creating or updating a workflow
// definition.
type SaveFunctionalityRequest struct {
	ID          string               `json:"id,omitempty"`
	Name        string               `json:"name"       validate:"required,min=3"`
	Department  string               `json:"department" validate:"required"`
	Description string               `json:"description,omitempty"`
	Graph       models.WorkflowGraph `json:"graph"`
}

// TicketSummary is the action endpoint's success payload.
type TicketSummary struct {
	ID               string                `json:"id"`
	TicketNumber     string                `json:"ticketNumber"`
	Status           models.TicketStatus   `json:"status"`
	WorkflowStage    string                `json:"workflowStage"`
	CurrentAssignee  string                `json:"currentAssignee,omitempty"`
	CurrentAssignees []string              `json:"currentAssignees,omitempty"`
	GroupLead        string                `json:"groupLead,omitempty"`
	PrimaryCredit    *models.CreditEntry   `json:"primaryCredit,omitempty"`
	SecondaryCredits []models.CreditEntry  `json:"secondaryCredits,omitempty"`
	WorkflowHistory  []models.HistoryEntry `json:"workflowHistory"`
	Blockers         []models.Blocker      `json:"blockers,omitempty"`
}

// NewTicketSummary builds the summary from a ticket.
func NewTicketSummary(ticket *models.Ticket) TicketSummary {
	return TicketSummary{
		ID:               ticket.ID,
		TicketNumber:     ticket.TicketNumber,
		Status:           ticket.Status,
		WorkflowStage:    ticket.WorkflowStage,
		CurrentAssignee:  ticket.CurrentAssignee,
		CurrentAssignees: ticket.CurrentAssignees,
		GroupLead:        ticket.GroupLead,
		PrimaryCredit:    ticket.PrimaryCredit,
		SecondaryCredits: ticket.SecondaryCredits,
		WorkflowHistory:  ticket.WorkflowHistory,
		Blockers:         ticket.Blockers,
	}
}
