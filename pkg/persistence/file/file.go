// Package file provides file-based persistence for tickets and functionalities.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/workpoint/ticketflow/pkg/persistence"
)

// Persistence implements persistence.Persistence using the file system. One
// JSON document per entity, mirroring the document-store data model.
type Persistence struct {
	root              string
	ticketRepo        *TicketRepository
	functionalityRepo *FunctionalityRepository
}

// NewPersistence creates a new instance rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:              cleanRoot,
		ticketRepo:        NewTicketRepository(cleanRoot),
		functionalityRepo: NewFunctionalityRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) TicketRepository() persistence.TicketRepository {
	return fp.ticketRepo
}

func (fp *Persistence) FunctionalityRepository() persistence.FunctionalityRepository {
	return fp.functionalityRepo
}
