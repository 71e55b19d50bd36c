package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpoint/ticketflow/pkg/models"
	"github.com/workpoint/ticketflow/pkg/persistence/file"
)

func setupFunctionalityService(t *testing.T) *Functionalities {
	t.Helper()

	return NewFunctionalities(file.NewPersistence(t.TempDir()))
}

func validFunctionality() *models.Functionality {
	return &models.Functionality{
		Name:       "Onboarding",
		Department: "HR",
		Graph:      onboardingGraph(),
	}
}

func TestFunctionalities_Save(t *testing.T) {
	service := setupFunctionalityService(t)

	saved, err := service.Save(t.Context(), validFunctionality())
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.Super)

	fetched, err := service.FetchByID(t.Context(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Onboarding", fetched.Name)
}

func TestFunctionalities_Save_NameRequired(t *testing.T) {
	service := setupFunctionalityService(t)

	functionality := validFunctionality()
	functionality.Name = ""

	_, err := service.Save(t.Context(), functionality)
	assert.ErrorIs(t, err, ErrFunctionalityNameRequired)
}

func TestFunctionalities_Save_GraphRequired(t *testing.T) {
	service := setupFunctionalityService(t)

	functionality := validFunctionality()
	functionality.Graph = models.WorkflowGraph{}

	_, err := service.Save(t.Context(), functionality)
	assert.ErrorIs(t, err, ErrGraphRequired)
}

func TestFunctionalities_Save_RejectsInvalidNodeData(t *testing.T) {
	service := setupFunctionalityService(t)

	functionality := validFunctionality()
	functionality.Graph.Nodes[1].Data = &models.NodeData{Kind: models.NodeDataSingle}

	_, err := service.Save(t.Context(), functionality)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestFunctionalities_Save_SuperWorkflowFlag(t *testing.T) {
	service := setupFunctionalityService(t)

	functionality := validFunctionality()
	functionality.Department = models.DepartmentSuperWorkflow

	saved, err := service.Save(t.Context(), functionality)
	require.NoError(t, err)
	assert.True(t, saved.Super)
}

func TestFunctionalities_FetchByID_NotFound(t *testing.T) {
	service := setupFunctionalityService(t)

	_, err := service.FetchByID(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrFunctionalityNotFound)
}

func TestFunctionalities_List(t *testing.T) {
	service := setupFunctionalityService(t)

	_, err := service.Save(t.Context(), validFunctionality())
	require.NoError(t, err)

	all, err := service.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
