// Package postgresql provides the PostgreSQL-backed persistence layer.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/persistence/sqlbase"
)

// Persistence implements persistence.Persistence backed by PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger

	workflows     *WorkflowRepository
	executions    *ExecutionRepository
	webhooks      *WebhookRepository
	deliveries    *DeliveryRepository
	records       *RecordRepository
	notifications *NotificationRepository
	templates     *TemplateRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs pending
// schema migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Persistence{
		db:     db,
		logger: logger.With("module", "persistence", "driver", "postgresql"),
	}

	p.workflows = &WorkflowRepository{db: db}
	p.executions = &ExecutionRepository{db: db}
	p.webhooks = &WebhookRepository{db: db}
	p.deliveries = &DeliveryRepository{db: db}
	p.records = &RecordRepository{db: db}
	p.notifications = &NotificationRepository{db: db}
	p.templates = &TemplateRepository{db: db}

	manager := sqlbase.NewMigrationManager(p.logger, db, migrations())

	err = manager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return p, nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflows
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executions
}

func (p *Persistence) WebhookRepository() persistence.WebhookRepository {
	return p.webhooks
}

func (p *Persistence) DeliveryRepository() persistence.DeliveryRepository {
	return p.deliveries
}

func (p *Persistence) RecordRepository() persistence.RecordRepository {
	return p.records
}

func (p *Persistence) NotificationRepository() persistence.NotificationRepository {
	return p.notifications
}

func (p *Persistence) TemplateRepository() persistence.TemplateRepository {
	return p.templates
}

// HealthCheck verifies the database connection is alive.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	err := p.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
