package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workpoint/ticketflow/pkg/models"
	"github.com/workpoint/ticketflow/pkg/persistence"
)

// Functionalities manages workflow definitions. Graph documents are validated
// at save time so traversal code can rely on their shape.
type Functionalities struct {
	persistence persistence.Persistence
}

// NewFunctionalities creates a new functionality service.
func NewFunctionalities(persistence persistence.Persistence) *Functionalities {
	return &Functionalities{persistence: persistence}
}

// FetchByID retrieves a functionality by its ID.
func (s *Functionalities) FetchByID(ctx context.Context, id string) (*models.Functionality, error) {
	functionality, err := s.persistence.FunctionalityRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if functionality == nil {
		return nil, ErrFunctionalityNotFound
	}

	return functionality, nil
}

// List retrieves all functionalities.
func (s *Functionalities) List(ctx context.Context) ([]*models.Functionality, error) {
	return s.persistence.FunctionalityRepository().GetAll(ctx)
}

// Save validates and stores a functionality. New definitions get a generated
// id.
func (s *Functionalities) Save(ctx context.Context, functionality *models.Functionality) (*models.Functionality, error) {
	if functionality.Name == "" {
		return nil, ErrFunctionalityNameRequired
	}

	if len(functionality.Graph.Nodes) == 0 {
		return nil, ErrGraphRequired
	}

	if err := validateGraphDocument(&functionality.Graph); err != nil {
		return nil, NewValidationError("Save", "INVALID_GRAPH", err.Error(), ErrGraphRequired)
	}

	if err := models.ValidateGraph(&functionality.Graph); err != nil {
		return nil, NewValidationError("Save", "INVALID_GRAPH", err.Error(), ErrGraphRequired)
	}

	if functionality.ID == "" {
		functionality.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if functionality.CreatedAt.IsZero() {
		functionality.CreatedAt = now
	}

	functionality.UpdatedAt = now

	if functionality.Department == models.DepartmentSuperWorkflow {
		functionality.Super = true
	}

	if err := s.persistence.FunctionalityRepository().Save(ctx, functionality); err != nil {
		return nil, fmt.Errorf("failed to save functionality: %w", err)
	}

	return functionality, nil
}

// validateGraphDocument round-trips the graph through JSON and applies the
// schema check used for raw definitions.
func validateGraphDocument(graph *models.WorkflowGraph) error {
	raw, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	var document map[string]any
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("failed to decode graph: %w", err)
	}

	return models.ValidateGraphDefinition(document)
}
