// Package services implements the ticket workflow state machine.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/workpoint/ticketflow/pkg/assignment"
	"github.com/workpoint/ticketflow/pkg/attachments"
	"github.com/workpoint/ticketflow/pkg/credit"
	"github.com/workpoint/ticketflow/pkg/graph"
	"github.com/workpoint/ticketflow/pkg/models"
	"github.com/workpoint/ticketflow/pkg/notification"
	"github.com/workpoint/ticketflow/pkg/otelhelper"
	"github.com/workpoint/ticketflow/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrTicketNotFound is returned when a ticket is not found.
	ErrTicketNotFound = persistence.ErrTicketNotFound

	// ErrFunctionalityNotFound is returned when a ticket's workflow owner is not found.
	ErrFunctionalityNotFound = persistence.ErrFunctionalityNotFound
)

// ActionRequest carries one decoded ticket action. Only the fields the named
// action requires are consulted; the web layer enforces per-action presence
// before dispatch and the handlers enforce it again.
type ActionRequest struct {
	Action      string
	PerformedBy models.Actor

	ToNode             string
	Explanation        string
	ReassignTo         []string
	BlockerDescription string
	GroupMembers       []string
	GroupLead          string
	RevertMessage      string

	RevertAttachments     []attachments.File
	ForwardAttachments    []attachments.File
	BlockerAttachments    []attachments.File
	ResolutionAttachments []attachments.File
}

// TicketActions advances tickets through their workflow graph. Every handler
// follows the same envelope: validate, snapshot the first-node flag, mutate,
// append exactly one history entry (two for forward-to-end), persist, then run
// the post-commit notification hooks.
type TicketActions struct {
	persistence persistence.Persistence
	resolver    *assignment.Resolver
	store       attachments.Store
	dispatcher  notification.Dispatcher
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewTicketActions creates the action service.
func NewTicketActions(
	persistence persistence.Persistence,
	resolver *assignment.Resolver,
	store attachments.Store,
	dispatcher notification.Dispatcher,
	logger *slog.Logger,
) *TicketActions {
	return &TicketActions{
		persistence: persistence,
		resolver:    resolver,
		store:       store,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// WithTracer enables span emission around action execution.
func (s *TicketActions) WithTracer(tracer trace.Tracer) *TicketActions {
	s.tracer = tracer

	return s
}

// Execute loads the ticket and its workflow, enriches the actor, dispatches on
// the action name, persists the mutation, and runs notifications best-effort.
// Validation and not-found failures return before any state is touched.
func (s *TicketActions) Execute(ctx context.Context, ticketID string, req ActionRequest) (*models.Ticket, error) {
	if s.tracer == nil {
		return s.execute(ctx, ticketID, req)
	}

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "ticket.action",
		attribute.String(otelhelper.TicketIDKey, ticketID),
		attribute.String(otelhelper.ActionKey, req.Action),
		attribute.String(otelhelper.ActorIDKey, req.PerformedBy.UserID),
	)
	defer span.End()

	ticket, err := s.execute(ctx, ticketID, req)
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.ActionKey, req.Action))
	}

	return ticket, err
}

func (s *TicketActions) execute(ctx context.Context, ticketID string, req ActionRequest) (*models.Ticket, error) {
	if req.PerformedBy.UserID == "" {
		return nil, ErrActorRequired
	}

	ticket, err := s.persistence.TicketRepository().GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	functionality, err := s.persistence.FunctionalityRepository().GetByID(ctx, ticket.FunctionalityID)
	if err != nil {
		return nil, err
	}

	if functionality == nil {
		return nil, ErrFunctionalityNotFound
	}

	actor, err := s.resolver.Enrich(ctx, req.PerformedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich actor: %w", err)
	}

	// The first-node flag is snapshotted before any stage movement; credit
	// rules depend on where the ticket was, not where it lands.
	workflowGraph := &functionality.Graph
	atFirstNode := graph.IsFirstEmployeeNode(ticket.WorkflowStage, workflowGraph)

	hooks := notification.NewHooks(s.logger)

	switch req.Action {
	case "revert":
		err = s.revert(ctx, ticket, workflowGraph, req, actor, hooks)
	case "in_progress", "mark_in_progress":
		err = s.markInProgress(ticket, actor, atFirstNode)
	case "form_group":
		err = s.formGroup(ctx, ticket, req, actor, atFirstNode, hooks)
	case "reassign":
		err = s.reassign(ctx, ticket, req, actor, atFirstNode, hooks)
	case "forward":
		err = s.forward(ctx, ticket, workflowGraph, req, actor, atFirstNode, hooks)
	case "blocker_reported", "report_blocker":
		err = s.reportBlocker(ctx, ticket, req, actor, atFirstNode, hooks)
	case "blocker_resolved":
		err = s.resolveBlocker(ctx, ticket, req, actor, atFirstNode, hooks)
	case "resolve":
		err = s.resolve(ticket, actor, atFirstNode, hooks)
	case "close":
		err = s.close(ticket, actor, hooks)
	case "reopen":
		err = s.reopen(ticket, workflowGraph, req, actor, hooks)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, req.Action)
	}

	if err != nil {
		return nil, err
	}

	if err := s.persistence.TicketRepository().Save(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to save ticket %s: %w", ticket.ID, err)
	}

	// Notifications are advisory. They run strictly after the save and their
	// failures never surface to the caller.
	hooks.Run(ctx)

	return ticket, nil
}

func appendHistory(ticket *models.Ticket, entry models.HistoryEntry) {
	entry.PerformedAt = time.Now().UTC()
	ticket.WorkflowHistory = append(ticket.WorkflowHistory, entry)
}

func (s *TicketActions) revert(ctx context.Context, ticket *models.Ticket, g *models.WorkflowGraph, req ActionRequest, actor models.Actor, hooks *notification.Hooks) error {
	if req.RevertMessage == "" {
		return ErrRevertMessageRequired
	}

	if graph.IsFirstEmployeeNode(ticket.WorkflowStage, g) {
		return ErrRevertAtFirstNode
	}

	preceding, err := graph.PrecedingNode(ticket.WorkflowStage, g)
	switch {
	case err == graph.ErrNoPreviousNode, err == graph.ErrNodeNotFound:
		return ErrNoPreviousNode
	case err == graph.ErrPreviousIsStart:
		return ErrRevertToStart
	case err != nil:
		return err
	}

	paths := attachments.SaveAll(ctx, s.store, ticket.TicketNumber, req.RevertAttachments, s.logger)

	fromNode := ticket.WorkflowStage
	ticket.WorkflowStage = preceding.ID
	ticket.Status = models.TicketStatusPending

	if preceding.Data.IsParallel() {
		lead := preceding.Data.GroupLead
		if lead == "" {
			lead = preceding.Data.EmployeeID
		}

		group, err := s.resolver.ResolveGroup(ctx, lead, preceding.Data.GroupMembers)
		if err != nil {
			return err
		}

		ticket.CurrentAssignee = group.Lead.ID
		ticket.CurrentAssignees = group.MemberIDs()
		ticket.GroupLead = group.Lead.ID
	} else {
		assignee, err := s.resolver.ResolveSingle(ctx, preceding.Data.EmployeeID)
		if err != nil {
			return err
		}

		ticket.CurrentAssignee = assignee.ID
		ticket.CurrentAssignees = []string{assignee.ID}
		ticket.GroupLead = ""
	}

	// Revert can never happen at the first node, so this is always secondary.
	credit.Grant(ticket, actor, false)

	appendHistory(ticket, models.HistoryEntry{
		ActionType:  models.ActionReverted,
		PerformedBy: actor,
		FromNode:    fromNode,
		ToNode:      preceding.ID,
		Explanation: req.RevertMessage,
		Attachments: paths,
	})

	assignees := ticket.CurrentAssignees

	hooks.Add(func(ctx context.Context) error {
		return s.dispatcher.Reverted(ctx, ticket, actor, fromNode, preceding.ID, req.RevertMessage, assignees)
	})

	return nil
}

func (s *TicketActions) markInProgress(ticket *models.Ticket, actor models.Actor, atFirstNode bool) error {
	credit.Grant(ticket, actor, atFirstNode)
	ticket.Status = models.TicketStatusInProgress

	appendHistory(ticket, models.HistoryEntry{
		ActionType:  models.ActionInProgress,
		PerformedBy: actor,
	})

	return nil
}

func (s *TicketActions) formGroup(ctx context.Context, ticket *models.Ticket, req ActionRequest, actor models.Actor, atFirstNode bool, hooks *notification.Hooks) error {
	if req.GroupLead == "" {
		return ErrGroupLeadRequired
	}

	if len(req.GroupMembers) < 2 {
		return ErrGroupTooSmall
	}

	group, err := s.resolver.ResolveGroup(ctx, req.GroupLead, req.GroupMembers)
	if err != nil {
		return err
	}

	ticket.CurrentAssignee = group.Lead.ID
	ticket.CurrentAssignees = group.MemberIDs()
	ticket.GroupLead = group.Lead.ID
	ticket.Status = models.TicketStatusPending

	members := make([]models.GroupMember, 0, len(group.Members))

	for _, member := range group.Members {
		isLead := member.ID == group.Lead.ID

		if isLead {
			credit.Grant(ticket, models.Actor{UserID: member.ID, Name: member.Name}, atFirstNode)
		} else {
			ticket.SecondaryCredits = credit.AddSecondary(ticket.SecondaryCredits, member.ID, member.Name)
		}

		members = append(members, models.GroupMember{UserID: member.ID, Name: member.Name, IsLead: isLead})
	}

	appendHistory(ticket, models.HistoryEntry{
		ActionType:   models.ActionGroupFormed,
		PerformedBy:  actor,
		GroupMembers: members,
	})

	hooks.Add(func(ctx context.Context) error {
		return s.dispatcher.GroupFormed(ctx, ticket, actor, group.Lead.ID, members)
	})

	return nil
}

func (s *TicketActions) reassign(ctx context.Context, ticket *models.Ticket, req ActionRequest, actor models.Actor, atFirstNode bool, hooks *notification.Hooks) error {
	if len(req.ReassignTo) == 0 {
		return ErrReassignToRequired
	}

	assignees, err := s.resolver.ResolveMany(ctx, req.ReassignTo)
	if err != nil {
		return err
	}

	if len(assignees) == 0 {
		return ErrReassignToUnresolved
	}

	assigneeIDs := make([]string, 0, len(assignees))
	for _, a := range assignees {
		assigneeIDs = append(assigneeIDs, a.ID)
	}

	ticket.CurrentAssignee = assigneeIDs[0]
	ticket.CurrentAssignees = assigneeIDs
	ticket.GroupLead = ""

	if atFirstNode {
		// Reassignment at the first node transfers original authorship to the
		// new assignee, even when primary credit was already granted.
		ticket.PrimaryCredit = &models.CreditEntry{UserID: assignees[0].ID, Name: assignees[0].Name}
	} else {
		ticket.SecondaryCredits = credit.RemoveSecondary(ticket.SecondaryCredits, actor.UserID)

		for _, a := range assignees {
			ticket.SecondaryCredits = credit.AddSecondary(ticket.SecondaryCredits, a.ID, a.Name)
		}
	}

	appendHistory(ticket, models.HistoryEntry{
		ActionType:   models.ActionReassigned,
		PerformedBy:  actor,
		ReassignedTo: assigneeIDs,
		Explanation:  req.Explanation,
	})

	hooks.Add(func(ctx context.Context) error {
		return s.dispatcher.Reassigned(ctx, ticket, actor, assigneeIDs, req.Explanation)
	})

	return nil
}

func (s *TicketActions) forward(ctx context.Context, ticket *models.Ticket, g *models.WorkflowGraph, req ActionRequest, actor models.Actor, atFirstNode bool, hooks *notification.Hooks) error {
	if req.ToNode == "" {
		return ErrToNodeRequired
	}

	if req.Explanation == "" {
		return ErrExplanationRequired
	}

	target, err := graph.NodeByID(req.ToNode, g)
	if err != nil {
		return ErrTargetNodeNotFound
	}

	paths := attachments.SaveAll(ctx, s.store, ticket.TicketNumber, req.ForwardAttachments, s.logger)

	// The actor is credited against the node being left, before the move.
	credit.Grant(ticket, actor, atFirstNode)

	fromNode := ticket.WorkflowStage
	ticket.WorkflowStage = target.ID

	var newAssignees []string

	switch {
	case target.Type == models.NodeTypeEnd:
		ticket.Status = models.TicketStatusResolved
	case target.Data.IsParallel():
		group, err := s.resolver.ResolveGroup(ctx, target.Data.GroupLead, target.Data.GroupMembers)
		if err != nil {
			return err
		}

		ticket.CurrentAssignee = group.Lead.ID
		ticket.CurrentAssignees = group.MemberIDs()
		ticket.GroupLead = group.Lead.ID
		ticket.Status = models.TicketStatusPending

		targetIsFirst := graph.IsFirstEmployeeNode(target.ID, g)
		for _, member := range group.Members {
			credit.Grant(ticket, models.Actor{UserID: member.ID, Name: member.Name}, targetIsFirst)
		}

		newAssignees = group.MemberIDs()
	default:
		assignee, err := s.resolver.ResolveSingle(ctx, target.Data.EmployeeID)
		if err != nil {
			return err
		}

		ticket.CurrentAssignee = assignee.ID
		ticket.CurrentAssignees = []string{assignee.ID}
		ticket.GroupLead = ""
		ticket.Status = models.TicketStatusPending

		targetIsFirst := graph.IsFirstEmployeeNode(target.ID, g)
		credit.Grant(ticket, models.Actor{UserID: assignee.ID, Name: assignee.Name}, targetIsFirst)

		newAssignees = []string{assignee.ID}
	}

	appendHistory(ticket, models.HistoryEntry{
		ActionType:  models.ActionForwarded,
		PerformedBy: actor,
		FromNode:    fromNode,
		ToNode:      target.ID,
		Explanation: req.Explanation,
		Attachments: paths,
	})

	if target.Type == models.NodeTypeEnd {
		appendHistory(ticket, models.HistoryEntry{
			ActionType:  models.ActionResolved,
			PerformedBy: actor,
		})
	}

	hooks.Add(func(ctx context.Context) error {
		return s.dispatcher.Forwarded(ctx, ticket, actor, fromNode, target.ID, req.Explanation, newAssignees)
	})

	if target.Type == models.NodeTypeEnd {
		hooks.Add(func(ctx context.Context) error {
			return s.dispatcher.Resolved(ctx, ticket, actor)
		})
	}

	return nil
}

func (s *TicketActions) reportBlocker(ctx context.Context, ticket *models.Ticket, req ActionRequest, actor models.Actor, atFirstNode bool, hooks *notification.Hooks) error {
	if req.BlockerDescription == "" {
		return ErrBlockerDescriptionRequired
	}

	paths := attachments.SaveAll(ctx, s.store, ticket.TicketNumber, req.BlockerAttachments, s.logger)

	credit.Grant(ticket, actor, atFirstNode)

	ticket.Status = models.TicketStatusBlocked
	ticket.Blockers = append(ticket.Blockers, models.Blocker{
		Description:    req.BlockerDescription,
		ReportedBy:     actor.UserID,
		ReportedByName: actor.Name,
		ReportedAt:     time.Now().UTC(),
		IsResolved:     false,
		Attachments:    paths,
	})

	appendHistory(ticket, models.HistoryEntry{
		ActionType:         models.ActionBlockerReported,
		PerformedBy:        actor,
		BlockerDescription: req.BlockerDescription,
		Attachments:        paths,
	})

	hooks.Add(func(ctx context.Context) error {
		return s.dispatcher.BlockerReported(ctx, ticket, actor, req.BlockerDescription)
	})

	return nil
}

func (s *TicketActions) resolveBlocker(ctx context.Context, ticket *models.Ticket, req ActionRequest, actor models.Actor, atFirstNode bool, hooks *notification.Hooks) error {
	if len(ticket.Blockers) == 0 {
		return ErrNoBlockerToResolve
	}

	paths := attachments.SaveAll(ctx, s.store, ticket.TicketNumber, req.ResolutionAttachments, s.logger)

	credit.Grant(ticket, actor, atFirstNode)

	// Resolution targets the most recently reported blocker regardless of
	// which blockers are still outstanding.
	now := time.Now().UTC()
	blocker := &ticket.Blockers[len(ticket.Blockers)-1]
	blocker.IsResolved = true
	blocker.ResolvedBy = actor.UserID
	blocker.ResolvedByName = actor.Name
	blocker.ResolvedAt = &now
	blocker.ResolutionAttachments = paths

	ticket.Status = models.TicketStatusInProgress

	appendHistory(ticket, models.HistoryEntry{
		ActionType:         models.ActionBlockerResolved,
		PerformedBy:        actor,
		BlockerDescription: blocker.Description,
		Attachments:        paths,
	})

	description := blocker.Description

	hooks.Add(func(ctx context.Context) error {
		return s.dispatcher.BlockerResolved(ctx, ticket, actor, description)
	})

	return nil
}

func (s *TicketActions) resolve(ticket *models.Ticket, actor models.Actor, atFirstNode bool, hooks *notification.Hooks) error {
	credit.Grant(ticket, actor, atFirstNode)
	ticket.Status = models.TicketStatusResolved

	appendHistory(ticket, models.HistoryEntry{
		ActionType:  models.ActionResolved,
		PerformedBy: actor,
	})

	hooks.Add(func(ctx context.Context) error {
		return s.dispatcher.Resolved(ctx, ticket, actor)
	})

	return nil
}

func (s *TicketActions) close(ticket *models.Ticket, actor models.Actor, hooks *notification.Hooks) error {
	ticket.Status = models.TicketStatusClosed

	appendHistory(ticket, models.HistoryEntry{
		ActionType:  models.ActionClosed,
		PerformedBy: actor,
	})

	hooks.Add(func(ctx context.Context) error {
		return s.dispatcher.Closed(ctx, ticket, actor)
	})

	return nil
}

func (s *TicketActions) reopen(ticket *models.Ticket, g *models.WorkflowGraph, req ActionRequest, actor models.Actor, hooks *notification.Hooks) error {
	if req.ToNode == "" {
		return ErrToNodeRequired
	}

	target, err := graph.NodeByID(req.ToNode, g)
	if err != nil {
		return ErrTargetNodeNotFound
	}

	ticket.WorkflowStage = target.ID
	ticket.Status = models.TicketStatusPending

	appendHistory(ticket, models.HistoryEntry{
		ActionType:  models.ActionReopened,
		PerformedBy: actor,
		ToNode:      target.ID,
		Explanation: req.Explanation,
	})

	hooks.Add(func(ctx context.Context) error {
		return s.dispatcher.Reopened(ctx, ticket, actor, target.ID, req.Explanation)
	})

	return nil
}
