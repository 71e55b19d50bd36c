package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/workpoint/ticketflow/pkg/models"
)

// FunctionalityRepository handles workflow definition file operations.
type FunctionalityRepository struct {
	root string
}

// NewFunctionalityRepository creates a new functionality repository.
func NewFunctionalityRepository(root string) *FunctionalityRepository {
	return &FunctionalityRepository{root: root}
}

func (fr *FunctionalityRepository) dir() string {
	return fr.root + "/functionalities"
}

// GetByID returns a functionality by id, or (nil, nil) when no document exists.
func (fr *FunctionalityRepository) GetByID(_ context.Context, id string) (*models.Functionality, error) {
	data, err := os.ReadFile(path.Join(fr.dir(), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read functionality %s: %w", id, err)
	}

	var functionality models.Functionality
	if err := json.Unmarshal(data, &functionality); err != nil {
		return nil, fmt.Errorf("failed to unmarshal functionality %s: %w", id, err)
	}

	return &functionality, nil
}

// GetAll returns every stored functionality.
func (fr *FunctionalityRepository) GetAll(ctx context.Context) ([]*models.Functionality, error) {
	root := os.DirFS(fr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list functionality files: %w", err)
	}

	functionalities := make([]*models.Functionality, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-5]

		functionality, err := fr.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load functionality %s: %w", id, err)
		}

		if functionality != nil {
			functionalities = append(functionalities, functionality)
		}
	}

	return functionalities, nil
}

// Save writes the whole functionality document.
func (fr *FunctionalityRepository) Save(_ context.Context, functionality *models.Functionality) error {
	err := os.MkdirAll(fr.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create functionalities directory: %w", err)
	}

	now := time.Now().UTC()
	if functionality.CreatedAt.IsZero() {
		functionality.CreatedAt = now
	}

	functionality.UpdatedAt = now

	data, err := json.MarshalIndent(functionality, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal functionality %s: %w", functionality.ID, err)
	}

	filePath := path.Join(fr.dir(), functionality.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}
