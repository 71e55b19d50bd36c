package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpoint/ticketflow/pkg/assignment"
	"github.com/workpoint/ticketflow/pkg/attachments"
	"github.com/workpoint/ticketflow/pkg/directory"
	"github.com/workpoint/ticketflow/pkg/models"
	"github.com/workpoint/ticketflow/pkg/persistence"
	"github.com/workpoint/ticketflow/pkg/persistence/file"
)

// recordingDispatcher captures dispatch calls so tests can assert hooks ran
// after the save.
type recordingDispatcher struct {
	calls []string
}

func (d *recordingDispatcher) record(name string) error {
	d.calls = append(d.calls, name)

	return nil
}

func (d *recordingDispatcher) TicketRaised(_ context.Context, _ *models.Ticket, _ models.Actor) error {
	return d.record("raised")
}

func (d *recordingDispatcher) Forwarded(_ context.Context, _ *models.Ticket, _ models.Actor, _, _, _ string, _ []string) error {
	return d.record("forwarded")
}

func (d *recordingDispatcher) Reverted(_ context.Context, _ *models.Ticket, _ models.Actor, _, _, _ string, _ []string) error {
	return d.record("reverted")
}

func (d *recordingDispatcher) Reassigned(_ context.Context, _ *models.Ticket, _ models.Actor, _ []string, _ string) error {
	return d.record("reassigned")
}

func (d *recordingDispatcher) GroupFormed(_ context.Context, _ *models.Ticket, _ models.Actor, _ string, _ []models.GroupMember) error {
	return d.record("group_formed")
}

func (d *recordingDispatcher) BlockerReported(_ context.Context, _ *models.Ticket, _ models.Actor, _ string) error {
	return d.record("blocker_reported")
}

func (d *recordingDispatcher) BlockerResolved(_ context.Context, _ *models.Ticket, _ models.Actor, _ string) error {
	return d.record("blocker_resolved")
}

func (d *recordingDispatcher) Resolved(_ context.Context, _ *models.Ticket, _ models.Actor) error {
	return d.record("resolved")
}

func (d *recordingDispatcher) Closed(_ context.Context, _ *models.Ticket, _ models.Actor) error {
	return d.record("closed")
}

func (d *recordingDispatcher) Reopened(_ context.Context, _ *models.Ticket, _ models.Actor, _, _ string) error {
	return d.record("reopened")
}

func testDirectory() directory.Directory {
	return directory.NewStatic(map[string]string{
		"alice": "Alice Almeida",
		"bob":   "Bob Baker",
		"carol": "Carol Costa",
		"dave":  "Dave Dias",
	})
}

// onboardingGraph: start -> hr-1 (alice) -> hr-2 (bob) -> review (carol+dave) -> end.
func onboardingGraph() models.WorkflowGraph {
	return models.WorkflowGraph{
		Nodes: []*models.Node{
			{ID: "start", Type: models.NodeTypeStart},
			{ID: "hr-1", Type: models.NodeTypeEmployee, Data: &models.NodeData{Kind: models.NodeDataSingle, EmployeeID: "alice"}},
			{ID: "hr-2", Type: models.NodeTypeEmployee, Data: &models.NodeData{Kind: models.NodeDataSingle, EmployeeID: "bob"}},
			{ID: "review", Type: models.NodeTypeEmployee, Data: &models.NodeData{Kind: models.NodeDataParallel, GroupLead: "carol", GroupMembers: []string{"carol", "dave"}}},
			{ID: "end", Type: models.NodeTypeEnd},
		},
		Edges: []*models.Edge{
			{Source: "start", Target: "hr-1"},
			{Source: "hr-1", Target: "hr-2"},
			{Source: "hr-2", Target: "review"},
			{Source: "review", Target: "end"},
		},
	}
}

type actionFixture struct {
	service     *TicketActions
	persistence persistence.Persistence
	dispatcher  *recordingDispatcher
}

func setupActionService(t *testing.T) *actionFixture {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	dispatcher := &recordingDispatcher{}

	service := NewTicketActions(
		p,
		assignment.NewResolver(testDirectory()),
		attachments.NewDiskStore(t.TempDir(), slog.Default()),
		dispatcher,
		slog.Default(),
	)

	return &actionFixture{service: service, persistence: p, dispatcher: dispatcher}
}

func (f *actionFixture) seed(t *testing.T, stage string) *models.Ticket {
	t.Helper()

	functionality := &models.Functionality{
		ID:         "fn-1",
		Name:       "Onboarding",
		Department: "HR",
		Graph:      onboardingGraph(),
	}
	require.NoError(t, f.persistence.FunctionalityRepository().Save(t.Context(), functionality))

	ticket := &models.Ticket{
		ID:              "ticket-1",
		TicketNumber:    "TKT-TEST0001",
		Title:           "Onboard new hire",
		FunctionalityID: "fn-1",
		WorkflowStage:   stage,
		Status:          models.TicketStatusPending,
		RaisedBy:        models.CreditEntry{UserID: "creator", Name: "Creator"},
	}
	require.NoError(t, f.persistence.TicketRepository().Save(t.Context(), ticket))

	return ticket
}

func (f *actionFixture) reload(t *testing.T) *models.Ticket {
	t.Helper()

	ticket, err := f.persistence.TicketRepository().GetByID(t.Context(), "ticket-1")
	require.NoError(t, err)
	require.NotNil(t, ticket)

	return ticket
}

func TestExecute_UnknownAction(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "teleport",
		PerformedBy: models.Actor{UserID: "alice"},
	})

	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.True(t, IsValidationError(err))
}

func TestExecute_ActorRequired(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{Action: "resolve"})

	assert.ErrorIs(t, err, ErrActorRequired)
}

func TestExecute_TicketNotFound(t *testing.T) {
	f := setupActionService(t)

	_, err := f.service.Execute(t.Context(), "missing", ActionRequest{
		Action:      "resolve",
		PerformedBy: models.Actor{UserID: "alice"},
	})

	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestExecute_FunctionalityNotFound(t *testing.T) {
	f := setupActionService(t)

	ticket := &models.Ticket{ID: "ticket-1", FunctionalityID: "missing", WorkflowStage: "hr-1"}
	require.NoError(t, f.persistence.TicketRepository().Save(t.Context(), ticket))

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "resolve",
		PerformedBy: models.Actor{UserID: "alice"},
	})

	assert.ErrorIs(t, err, ErrFunctionalityNotFound)
}

func TestMarkInProgress_FirstNodeGrantsPrimary(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "in_progress",
		PerformedBy: models.Actor{UserID: "alice", Name: "Spoofed"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusInProgress, ticket.Status)
	require.NotNil(t, ticket.PrimaryCredit)
	assert.Equal(t, "alice", ticket.PrimaryCredit.UserID)
	// Directory name wins over the caller-supplied one.
	assert.Equal(t, "Alice Almeida", ticket.PrimaryCredit.Name)
	assert.Empty(t, ticket.SecondaryCredits)

	require.Len(t, ticket.WorkflowHistory, 1)
	assert.Equal(t, models.ActionInProgress, ticket.WorkflowHistory[0].ActionType)
	assert.False(t, ticket.WorkflowHistory[0].PerformedAt.IsZero())

	reloaded := f.reload(t)
	assert.Equal(t, models.TicketStatusInProgress, reloaded.Status)
}

func TestMarkInProgress_PrimaryIsNeverDisplaced(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "in_progress",
		PerformedBy: models.Actor{UserID: "alice"},
	})
	require.NoError(t, err)

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "mark_in_progress",
		PerformedBy: models.Actor{UserID: "bob"},
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", ticket.PrimaryCredit.UserID)
	require.Len(t, ticket.SecondaryCredits, 1)
	assert.Equal(t, "bob", ticket.SecondaryCredits[0].UserID)
}

func TestMarkInProgress_DownstreamNodeGrantsSecondary(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-2")

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "in_progress",
		PerformedBy: models.Actor{UserID: "bob"},
	})
	require.NoError(t, err)

	assert.Nil(t, ticket.PrimaryCredit)
	require.Len(t, ticket.SecondaryCredits, 1)
	assert.Equal(t, "bob", ticket.SecondaryCredits[0].UserID)
}

func TestRevert_MessageRequired(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-2")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "revert",
		PerformedBy: models.Actor{UserID: "bob"},
	})

	assert.ErrorIs(t, err, ErrRevertMessageRequired)
}

func TestRevert_FirstNodeRejected(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:        "revert",
		PerformedBy:   models.Actor{UserID: "alice"},
		RevertMessage: "go back",
	})

	assert.ErrorIs(t, err, ErrRevertAtFirstNode)
}

func TestRevert_MovesToPrecedingNode(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-2")

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:        "revert",
		PerformedBy:   models.Actor{UserID: "bob"},
		RevertMessage: "missing documents",
	})
	require.NoError(t, err)

	assert.Equal(t, "hr-1", ticket.WorkflowStage)
	assert.Equal(t, models.TicketStatusPending, ticket.Status)
	assert.Equal(t, "alice", ticket.CurrentAssignee)
	assert.Equal(t, []string{"alice"}, ticket.CurrentAssignees)

	// The reverting actor never gains primary credit.
	assert.Nil(t, ticket.PrimaryCredit)
	require.Len(t, ticket.SecondaryCredits, 1)
	assert.Equal(t, "bob", ticket.SecondaryCredits[0].UserID)

	require.Len(t, ticket.WorkflowHistory, 1)
	entry := ticket.WorkflowHistory[0]
	assert.Equal(t, models.ActionReverted, entry.ActionType)
	assert.Equal(t, "hr-2", entry.FromNode)
	assert.Equal(t, "hr-1", entry.ToNode)
	assert.Equal(t, "missing documents", entry.Explanation)

	assert.Equal(t, []string{"reverted"}, f.dispatcher.calls)
}

func TestRevert_ToParallelNodeRestoresGroup(t *testing.T) {
	f := setupActionService(t)

	functionality := &models.Functionality{
		ID:   "fn-1",
		Name: "Onboarding",
		Graph: models.WorkflowGraph{
			Nodes: []*models.Node{
				{ID: "start", Type: models.NodeTypeStart},
				{ID: "hr-1", Type: models.NodeTypeEmployee, Data: &models.NodeData{Kind: models.NodeDataSingle, EmployeeID: "alice"}},
				{ID: "review", Type: models.NodeTypeEmployee, Data: &models.NodeData{Kind: models.NodeDataParallel, GroupLead: "carol", GroupMembers: []string{"carol", "dave"}}},
				{ID: "final", Type: models.NodeTypeEmployee, Data: &models.NodeData{Kind: models.NodeDataSingle, EmployeeID: "bob"}},
			},
			Edges: []*models.Edge{
				{Source: "start", Target: "hr-1"},
				{Source: "hr-1", Target: "review"},
				{Source: "review", Target: "final"},
			},
		},
	}
	require.NoError(t, f.persistence.FunctionalityRepository().Save(t.Context(), functionality))

	ticket := &models.Ticket{ID: "ticket-1", FunctionalityID: "fn-1", WorkflowStage: "final"}
	require.NoError(t, f.persistence.TicketRepository().Save(t.Context(), ticket))

	result, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:        "revert",
		PerformedBy:   models.Actor{UserID: "bob"},
		RevertMessage: "needs group review again",
	})
	require.NoError(t, err)

	assert.Equal(t, "review", result.WorkflowStage)
	assert.Equal(t, "carol", result.GroupLead)
	assert.Equal(t, []string{"carol", "dave"}, result.CurrentAssignees)
}

func TestFormGroup_LeadRequired(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "review")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:       "form_group",
		PerformedBy:  models.Actor{UserID: "carol"},
		GroupMembers: []string{"carol", "dave"},
	})

	assert.ErrorIs(t, err, ErrGroupLeadRequired)
}

func TestFormGroup_RequiresTwoMembers(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "review")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:       "form_group",
		PerformedBy:  models.Actor{UserID: "carol"},
		GroupLead:    "carol",
		GroupMembers: []string{"carol"},
	})

	assert.ErrorIs(t, err, ErrGroupTooSmall)
}

func TestFormGroup_AssignsGroupAndCredits(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:       "form_group",
		PerformedBy:  models.Actor{UserID: "alice"},
		GroupLead:    "carol",
		GroupMembers: []string{"carol", "dave"},
	})
	require.NoError(t, err)

	assert.Equal(t, "carol", ticket.CurrentAssignee)
	assert.Equal(t, "carol", ticket.GroupLead)
	assert.Equal(t, []string{"carol", "dave"}, ticket.CurrentAssignees)
	assert.Equal(t, models.TicketStatusPending, ticket.Status)

	// At the first node the lead becomes the primary credit holder.
	require.NotNil(t, ticket.PrimaryCredit)
	assert.Equal(t, "carol", ticket.PrimaryCredit.UserID)
	require.Len(t, ticket.SecondaryCredits, 1)
	assert.Equal(t, "dave", ticket.SecondaryCredits[0].UserID)

	require.Len(t, ticket.WorkflowHistory, 1)
	entry := ticket.WorkflowHistory[0]
	assert.Equal(t, models.ActionGroupFormed, entry.ActionType)
	require.Len(t, entry.GroupMembers, 2)
	assert.True(t, entry.GroupMembers[0].IsLead)
	assert.False(t, entry.GroupMembers[1].IsLead)

	assert.Equal(t, []string{"group_formed"}, f.dispatcher.calls)
}

func TestReassign_TargetsRequired(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "reassign",
		PerformedBy: models.Actor{UserID: "alice"},
	})

	assert.ErrorIs(t, err, ErrReassignToRequired)
}

func TestReassign_FirstNodeOverwritesPrimary(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	// Alice claims primary credit first.
	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "in_progress",
		PerformedBy: models.Actor{UserID: "alice"},
	})
	require.NoError(t, err)

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "reassign",
		PerformedBy: models.Actor{UserID: "alice"},
		ReassignTo:  []string{"bob"},
	})
	require.NoError(t, err)

	// First-node reassignment transfers original authorship.
	require.NotNil(t, ticket.PrimaryCredit)
	assert.Equal(t, "bob", ticket.PrimaryCredit.UserID)
	assert.Equal(t, "bob", ticket.CurrentAssignee)
	assert.Equal(t, []string{"bob"}, ticket.CurrentAssignees)

	assert.Equal(t, []string{"reassigned"}, f.dispatcher.calls)
}

func TestReassign_DownstreamSwapsSecondaryCredit(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-2")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "in_progress",
		PerformedBy: models.Actor{UserID: "bob"},
	})
	require.NoError(t, err)

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "reassign",
		PerformedBy: models.Actor{UserID: "bob"},
		ReassignTo:  []string{"carol", "dave"},
	})
	require.NoError(t, err)

	assert.Nil(t, ticket.PrimaryCredit)

	ids := make([]string, 0, len(ticket.SecondaryCredits))
	for _, entry := range ticket.SecondaryCredits {
		ids = append(ids, entry.UserID)
	}

	// The delegating actor drops out; the new assignees take his place.
	assert.Equal(t, []string{"carol", "dave"}, ids)
	assert.Equal(t, []string{"carol", "dave"}, ticket.CurrentAssignees)

	require.Len(t, ticket.WorkflowHistory, 2)
	assert.Equal(t, models.ActionReassigned, ticket.WorkflowHistory[1].ActionType)
	assert.Equal(t, []string{"carol", "dave"}, ticket.WorkflowHistory[1].ReassignedTo)
}

func TestForward_ToNodeAndExplanationRequired(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "forward",
		PerformedBy: models.Actor{UserID: "alice"},
		Explanation: "done",
	})
	assert.ErrorIs(t, err, ErrToNodeRequired)

	_, err = f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "forward",
		PerformedBy: models.Actor{UserID: "alice"},
		ToNode:      "hr-2",
	})
	assert.ErrorIs(t, err, ErrExplanationRequired)
}

func TestForward_UnknownTarget(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "forward",
		PerformedBy: models.Actor{UserID: "alice"},
		ToNode:      "nowhere",
		Explanation: "done",
	})

	require.ErrorIs(t, err, ErrTargetNodeNotFound)
	assert.Equal(t, "Target node not found in workflow", err.Error())
}

func TestForward_ToSingleNode(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "forward",
		PerformedBy: models.Actor{UserID: "alice"},
		ToNode:      "hr-2",
		Explanation: "screening complete",
	})
	require.NoError(t, err)

	assert.Equal(t, "hr-2", ticket.WorkflowStage)
	assert.Equal(t, models.TicketStatusPending, ticket.Status)
	assert.Equal(t, "bob", ticket.CurrentAssignee)

	// Alice acted at the first node: primary. Bob receives hr-2: secondary.
	require.NotNil(t, ticket.PrimaryCredit)
	assert.Equal(t, "alice", ticket.PrimaryCredit.UserID)
	require.Len(t, ticket.SecondaryCredits, 1)
	assert.Equal(t, "bob", ticket.SecondaryCredits[0].UserID)

	require.Len(t, ticket.WorkflowHistory, 1)
	entry := ticket.WorkflowHistory[0]
	assert.Equal(t, models.ActionForwarded, entry.ActionType)
	assert.Equal(t, "hr-1", entry.FromNode)
	assert.Equal(t, "hr-2", entry.ToNode)

	assert.Equal(t, []string{"forwarded"}, f.dispatcher.calls)
}

func TestForward_ToParallelNode(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-2")

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "forward",
		PerformedBy: models.Actor{UserID: "bob"},
		ToNode:      "review",
		Explanation: "ready for review",
	})
	require.NoError(t, err)

	assert.Equal(t, "review", ticket.WorkflowStage)
	assert.Equal(t, "carol", ticket.CurrentAssignee)
	assert.Equal(t, "carol", ticket.GroupLead)
	assert.Equal(t, []string{"carol", "dave"}, ticket.CurrentAssignees)

	ids := make([]string, 0, len(ticket.SecondaryCredits))
	for _, entry := range ticket.SecondaryCredits {
		ids = append(ids, entry.UserID)
	}

	assert.Equal(t, []string{"bob", "carol", "dave"}, ids)
}

func TestForward_ToEndResolvesWithTwoHistoryEntries(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "review")

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "forward",
		PerformedBy: models.Actor{UserID: "carol"},
		ToNode:      "end",
		Explanation: "all checks passed",
	})
	require.NoError(t, err)

	assert.Equal(t, "end", ticket.WorkflowStage)
	assert.Equal(t, models.TicketStatusResolved, ticket.Status)

	require.Len(t, ticket.WorkflowHistory, 2)
	assert.Equal(t, models.ActionForwarded, ticket.WorkflowHistory[0].ActionType)
	assert.Equal(t, models.ActionResolved, ticket.WorkflowHistory[1].ActionType)

	assert.Equal(t, []string{"forwarded", "resolved"}, f.dispatcher.calls)
}

func TestReportBlocker_DescriptionRequired(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-2")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "blocker_reported",
		PerformedBy: models.Actor{UserID: "bob"},
	})

	require.ErrorIs(t, err, ErrBlockerDescriptionRequired)
	assert.Equal(t, "blockerDescription is required", err.Error())
}

func TestReportBlocker(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-2")

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:             "report_blocker",
		PerformedBy:        models.Actor{UserID: "bob"},
		BlockerDescription: "waiting on vendor",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusBlocked, ticket.Status)
	require.Len(t, ticket.Blockers, 1)
	assert.Equal(t, "waiting on vendor", ticket.Blockers[0].Description)
	assert.Equal(t, "bob", ticket.Blockers[0].ReportedBy)
	assert.False(t, ticket.Blockers[0].IsResolved)

	require.Len(t, ticket.WorkflowHistory, 1)
	assert.Equal(t, models.ActionBlockerReported, ticket.WorkflowHistory[0].ActionType)
	assert.Equal(t, "waiting on vendor", ticket.WorkflowHistory[0].BlockerDescription)
}

func TestResolveBlocker_NoneToResolve(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-2")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "blocker_resolved",
		PerformedBy: models.Actor{UserID: "bob"},
	})

	assert.ErrorIs(t, err, ErrNoBlockerToResolve)
}

func TestResolveBlocker_TargetsLastBlocker(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-2")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:             "blocker_reported",
		PerformedBy:        models.Actor{UserID: "bob"},
		BlockerDescription: "first impediment",
	})
	require.NoError(t, err)

	_, err = f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:             "blocker_reported",
		PerformedBy:        models.Actor{UserID: "bob"},
		BlockerDescription: "second impediment",
	})
	require.NoError(t, err)

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "blocker_resolved",
		PerformedBy: models.Actor{UserID: "carol"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusInProgress, ticket.Status)

	require.Len(t, ticket.Blockers, 2)
	assert.False(t, ticket.Blockers[0].IsResolved)
	assert.True(t, ticket.Blockers[1].IsResolved)
	assert.Equal(t, "carol", ticket.Blockers[1].ResolvedBy)
	require.NotNil(t, ticket.Blockers[1].ResolvedAt)

	last := ticket.WorkflowHistory[len(ticket.WorkflowHistory)-1]
	assert.Equal(t, models.ActionBlockerResolved, last.ActionType)
	assert.Equal(t, "second impediment", last.BlockerDescription)
}

func TestResolve(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-2")

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "resolve",
		PerformedBy: models.Actor{UserID: "bob"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusResolved, ticket.Status)
	require.Len(t, ticket.SecondaryCredits, 1)
	assert.Equal(t, []string{"resolved"}, f.dispatcher.calls)
}

func TestClose_GrantsNoCredit(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	ticket, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "close",
		PerformedBy: models.Actor{UserID: "creator"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusClosed, ticket.Status)
	assert.Nil(t, ticket.PrimaryCredit)
	assert.Empty(t, ticket.SecondaryCredits)
	assert.Equal(t, []string{"closed"}, f.dispatcher.calls)
}

func TestReopen(t *testing.T) {
	f := setupActionService(t)

	ticket := f.seed(t, "hr-2")
	ticket.Status = models.TicketStatusClosed
	require.NoError(t, f.persistence.TicketRepository().Save(t.Context(), ticket))

	result, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "reopen",
		PerformedBy: models.Actor{UserID: "creator"},
		ToNode:      "hr-1",
		Explanation: "issue came back",
	})
	require.NoError(t, err)

	assert.Equal(t, "hr-1", result.WorkflowStage)
	assert.Equal(t, models.TicketStatusPending, result.Status)
	assert.Nil(t, result.PrimaryCredit)
	assert.Empty(t, result.SecondaryCredits)

	last := result.WorkflowHistory[len(result.WorkflowHistory)-1]
	assert.Equal(t, models.ActionReopened, last.ActionType)
	assert.Equal(t, "hr-1", last.ToNode)
}

func TestReopen_RequiresKnownTarget(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-2")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "reopen",
		PerformedBy: models.Actor{UserID: "creator"},
	})
	assert.ErrorIs(t, err, ErrToNodeRequired)

	_, err = f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "reopen",
		PerformedBy: models.Actor{UserID: "creator"},
		ToNode:      "nowhere",
	})
	assert.ErrorIs(t, err, ErrTargetNodeNotFound)
}

func TestExecute_HistoryIsAppendOnly(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	actions := []ActionRequest{
		{Action: "in_progress", PerformedBy: models.Actor{UserID: "alice"}},
		{Action: "forward", PerformedBy: models.Actor{UserID: "alice"}, ToNode: "hr-2", Explanation: "next"},
		{Action: "report_blocker", PerformedBy: models.Actor{UserID: "bob"}, BlockerDescription: "stuck"},
		{Action: "blocker_resolved", PerformedBy: models.Actor{UserID: "bob"}},
	}

	var previous []models.HistoryEntry

	for _, req := range actions {
		ticket, err := f.service.Execute(t.Context(), "ticket-1", req)
		require.NoError(t, err)

		require.Len(t, ticket.WorkflowHistory, len(previous)+1)

		for i, entry := range previous {
			assert.Equal(t, entry.ActionType, ticket.WorkflowHistory[i].ActionType)
		}

		previous = ticket.WorkflowHistory
	}
}

func TestExecute_ValidationFailureLeavesTicketUntouched(t *testing.T) {
	f := setupActionService(t)
	f.seed(t, "hr-1")

	_, err := f.service.Execute(t.Context(), "ticket-1", ActionRequest{
		Action:      "forward",
		PerformedBy: models.Actor{UserID: "alice"},
		ToNode:      "nowhere",
		Explanation: "done",
	})
	require.Error(t, err)

	reloaded := f.reload(t)
	assert.Equal(t, "hr-1", reloaded.WorkflowStage)
	assert.Empty(t, reloaded.WorkflowHistory)
	assert.Empty(t, f.dispatcher.calls)
}
