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

// FunctionalityRepository handles workflow definition database operations.
type FunctionalityRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewFunctionalityRepository creates a new functionality repository.
func NewFunctionalityRepository(db *sql.DB, logger *slog.Logger) *FunctionalityRepository {
	return &FunctionalityRepository{db: db, logger: logger}
}

// GetByID returns a functionality by id, or (nil, nil) when no row exists.
func (r *FunctionalityRepository) GetByID(ctx context.Context, id string) (*models.Functionality, error) {
	query := `SELECT document FROM functionalities WHERE id = $1`

	var document []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to query functionality %s: %w", id, err)
	}

	var functionality models.Functionality
	if err := json.Unmarshal(document, &functionality); err != nil {
		return nil, fmt.Errorf("failed to unmarshal functionality %s: %w", id, err)
	}

	return &functionality, nil
}

// GetAll returns every stored functionality.
func (r *FunctionalityRepository) GetAll(ctx context.Context) ([]*models.Functionality, error) {
	query := `SELECT document FROM functionalities ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query functionalities: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	functionalities := make([]*models.Functionality, 0)

	for rows.Next() {
		var document []byte

		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan functionality: %w", err)
		}

		var functionality models.Functionality
		if err := json.Unmarshal(document, &functionality); err != nil {
			return nil, fmt.Errorf("failed to unmarshal functionality: %w", err)
		}

		functionalities = append(functionalities, &functionality)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating functionalities: %w", err)
	}

	return functionalities, nil
}

// Save upserts the whole functionality document.
func (r *FunctionalityRepository) Save(ctx context.Context, functionality *models.Functionality) error {
	now := time.Now().UTC()
	if functionality.CreatedAt.IsZero() {
		functionality.CreatedAt = now
	}

	functionality.UpdatedAt = now

	document, err := json.Marshal(functionality)
	if err != nil {
		return fmt.Errorf("failed to marshal functionality %s: %w", functionality.ID, err)
	}

	query := `
		INSERT INTO functionalities (id, name, department, super, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			department = EXCLUDED.department,
			super = EXCLUDED.super,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		functionality.ID,
		functionality.Name,
		functionality.Department,
		functionality.Super,
		document,
		functionality.CreatedAt,
		functionality.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save functionality %s: %w", functionality.ID, err)
	}

	return nil
}
