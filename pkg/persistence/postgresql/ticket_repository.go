package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/workpoint/ticketflow/pkg/models"
)

// TicketRepository handles ticket document database operations.
type TicketRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(db *sql.DB, logger *slog.Logger) *TicketRepository {
	return &TicketRepository{db: db, logger: logger}
}

// GetByID returns a ticket by id, or (nil, nil) when no row exists.
func (r *TicketRepository) GetByID(ctx context.Context, id string) (*models.Ticket, error) {
	query := `SELECT document FROM tickets WHERE id = $1`

	var document []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to query ticket %s: %w", id, err)
	}

	var ticket models.Ticket
	if err := json.Unmarshal(document, &ticket); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket %s: %w", id, err)
	}

	return &ticket, nil
}

// GetAll returns every ticket, newest first.
func (r *TicketRepository) GetAll(ctx context.Context) ([]*models.Ticket, error) {
	query := `SELECT document FROM tickets ORDER BY created_at DESC`

	return r.queryTickets(ctx, query)
}

// ListByStatus returns tickets currently in the given status, newest first.
func (r *TicketRepository) ListByStatus(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error) {
	query := `SELECT document FROM tickets WHERE status = $1 ORDER BY created_at DESC`

	return r.queryTickets(ctx, query, string(status))
}

func (r *TicketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]*models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	tickets := make([]*models.Ticket, 0)

	for rows.Next() {
		var document []byte

		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}

		var ticket models.Ticket
		if err := json.Unmarshal(document, &ticket); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ticket: %w", err)
		}

		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// Save upserts the whole ticket document along with its indexed columns.
func (r *TicketRepository) Save(ctx context.Context, ticket *models.Ticket) error {
	now := time.Now().UTC()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}

	ticket.UpdatedAt = now

	document, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket %s: %w", ticket.ID, err)
	}

	query := `
		INSERT INTO tickets (id, ticket_number, department, functionality_id, workflow_stage, status, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			department = EXCLUDED.department,
			functionality_id = EXCLUDED.functionality_id,
			workflow_stage = EXCLUDED.workflow_stage,
			status = EXCLUDED.status,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		ticket.ID,
		ticket.TicketNumber,
		ticket.Department,
		ticket.FunctionalityID,
		ticket.WorkflowStage,
		string(ticket.Status),
		document,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save ticket %s: %w", ticket.ID, err)
	}

	return nil
}
