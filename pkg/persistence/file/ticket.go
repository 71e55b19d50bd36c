package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"time"

	"github.com/workpoint/ticketflow/pkg/models"
)

// TicketRepository handles ticket document file operations.
type TicketRepository struct {
	root string
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(root string) *TicketRepository {
	return &TicketRepository{root: root}
}

func (tr *TicketRepository) dir() string {
	return tr.root + "/tickets"
}

// GetByID returns a ticket by id, or (nil, nil) when no document exists.
func (tr *TicketRepository) GetByID(_ context.Context, id string) (*models.Ticket, error) {
	data, err := os.ReadFile(path.Join(tr.dir(), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read ticket %s: %w", id, err)
	}

	var ticket models.Ticket
	if err := json.Unmarshal(data, &ticket); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket %s: %w", id, err)
	}

	return &ticket, nil
}

// GetAll returns every stored ticket ordered by creation time, newest first.
func (tr *TicketRepository) GetAll(ctx context.Context) ([]*models.Ticket, error) {
	root := os.DirFS(tr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket files: %w", err)
	}

	tickets := make([]*models.Ticket, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		ticketID := file[:len(file)-5]

		ticket, err := tr.GetByID(ctx, ticketID)
		if err != nil {
			return nil, fmt.Errorf("failed to load ticket %s: %w", ticketID, err)
		}

		if ticket != nil {
			tickets = append(tickets, ticket)
		}
	}

	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})

	return tickets, nil
}

// ListByStatus returns tickets currently in the given status.
func (tr *TicketRepository) ListByStatus(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error) {
	all, err := tr.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Ticket, 0)

	for _, ticket := range all {
		if ticket.Status == status {
			filtered = append(filtered, ticket)
		}
	}

	return filtered, nil
}

// Save writes the whole ticket document.
func (tr *TicketRepository) Save(_ context.Context, ticket *models.Ticket) error {
	err := os.MkdirAll(tr.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create tickets directory: %w", err)
	}

	now := time.Now().UTC()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}

	ticket.UpdatedAt = now

	data, err := json.MarshalIndent(ticket, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ticket %s: %w", ticket.ID, err)
	}

	filePath := path.Join(tr.dir(), ticket.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}
