// Package postgresql provides PostgreSQL persistence for tickets and
// functionalities. Entities are stored as JSONB documents with a few indexed
// columns for filtering.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver
	"github.com/workpoint/ticketflow/pkg/persistence"
	"github.com/workpoint/ticketflow/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db                *sql.DB
	logger            *slog.Logger
	ticketRepo        *TicketRepository
	functionalityRepo *FunctionalityRepository
}

// NewPersistence connects, runs migrations, and returns a ready persistence
// layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:                database,
		logger:            logger,
		ticketRepo:        NewTicketRepository(database, logger),
		functionalityRepo: NewFunctionalityRepository(database, logger),
	}

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) TicketRepository() persistence.TicketRepository {
	return p.ticketRepo
}

func (p *Persistence) FunctionalityRepository() persistence.FunctionalityRepository {
	return p.functionalityRepo
}
