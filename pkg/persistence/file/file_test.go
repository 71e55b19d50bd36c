package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpoint/ticketflow/pkg/models"
)

func TestNewPersistence_StripsFileScheme(t *testing.T) {
	dir := t.TempDir()
	persistence := NewPersistence("file://" + dir)

	assert.NoError(t, persistence.HealthCheck(t.Context()))
}

func TestHealthCheck_MissingRoot(t *testing.T) {
	persistence := NewPersistence(t.TempDir() + "/does-not-exist")

	assert.Error(t, persistence.HealthCheck(t.Context()))
}

func TestTicketRepository_SaveAndGetByID(t *testing.T) {
	persistence := NewPersistence(t.TempDir())
	repo := persistence.TicketRepository()

	ticket := &models.Ticket{
		ID:            "ticket-1",
		TicketNumber:  "TKT-ABCD1234",
		Title:         "Laptop request",
		Status:        models.TicketStatusPending,
		WorkflowStage: "hr-1",
		RaisedBy:      models.CreditEntry{UserID: "creator", Name: "Creator"},
	}

	require.NoError(t, repo.Save(t.Context(), ticket))
	assert.False(t, ticket.CreatedAt.IsZero())
	assert.False(t, ticket.UpdatedAt.IsZero())

	loaded, err := repo.GetByID(t.Context(), "ticket-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Laptop request", loaded.Title)
	assert.Equal(t, models.TicketStatusPending, loaded.Status)
}

func TestTicketRepository_GetByID_Missing(t *testing.T) {
	persistence := NewPersistence(t.TempDir())

	ticket, err := persistence.TicketRepository().GetByID(t.Context(), "missing")
	require.NoError(t, err)
	assert.Nil(t, ticket)
}

func TestTicketRepository_GetAll_NewestFirst(t *testing.T) {
	persistence := NewPersistence(t.TempDir())
	repo := persistence.TicketRepository()

	older := &models.Ticket{ID: "ticket-old", Status: models.TicketStatusPending}
	require.NoError(t, repo.Save(t.Context(), older))

	newer := &models.Ticket{ID: "ticket-new", Status: models.TicketStatusResolved}
	newer.CreatedAt = older.CreatedAt.Add(1)
	require.NoError(t, repo.Save(t.Context(), newer))

	all, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ticket-new", all[0].ID)
	assert.Equal(t, "ticket-old", all[1].ID)
}

func TestTicketRepository_ListByStatus(t *testing.T) {
	persistence := NewPersistence(t.TempDir())
	repo := persistence.TicketRepository()

	require.NoError(t, repo.Save(t.Context(), &models.Ticket{ID: "t1", Status: models.TicketStatusPending}))
	require.NoError(t, repo.Save(t.Context(), &models.Ticket{ID: "t2", Status: models.TicketStatusBlocked}))

	pending, err := repo.ListByStatus(t.Context(), models.TicketStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "t1", pending[0].ID)
}

func TestFunctionalityRepository_SaveAndGet(t *testing.T) {
	persistence := NewPersistence(t.TempDir())
	repo := persistence.FunctionalityRepository()

	functionality := &models.Functionality{
		ID:         "fn-1",
		Name:       "Onboarding",
		Department: "HR",
		Graph: models.WorkflowGraph{
			Nodes: []*models.Node{
				{ID: "start", Type: models.NodeTypeStart},
				{ID: "hr-1", Type: models.NodeTypeEmployee, Data: &models.NodeData{Kind: models.NodeDataSingle, EmployeeID: "alice"}},
			},
			Edges: []*models.Edge{
				{Source: "start", Target: "hr-1"},
			},
		},
	}

	require.NoError(t, repo.Save(t.Context(), functionality))

	loaded, err := repo.GetByID(t.Context(), "fn-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Onboarding", loaded.Name)
	require.Len(t, loaded.Graph.Nodes, 2)
	assert.Equal(t, "alice", loaded.Graph.Nodes[1].Data.EmployeeID)

	all, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFunctionalityRepository_GetByID_Missing(t *testing.T) {
	persistence := NewPersistence(t.TempDir())

	functionality, err := persistence.FunctionalityRepository().GetByID(t.Context(), "missing")
	require.NoError(t, err)
	assert.Nil(t, functionality)
}
