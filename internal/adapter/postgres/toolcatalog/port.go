package toolcatalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/domain"
	querybuilder "gitlab.com/appserver.net/internal/utils"
)

var _ secondary.ToolCatalogRepository = (*ToolCatalogRepository)(nil)

// ToolCatalogRepository implements the ToolCatalogRepository interface with PostgreSQL
type ToolCatalogRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// NewToolCatalogRepository creates a new PostgreSQL tool catalog
func NewToolCatalogRepository(db *sqlx.DB, logger primary.Logger, schema string) *ToolCatalogRepository {
	return &ToolCatalogRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

func (r *ToolCatalogRepository) columns() []string {
	tbl := domain.GetToolTable()
	return []string{tbl.ID, tbl.Kind, tbl.Version, tbl.Config, tbl.Signature, tbl.UpdatedAt}
}

// FetchTool retrieves the descriptor published under toolID
func (r *ToolCatalogRepository) FetchTool(ctx context.Context, toolID string) (*domain.ToolDescriptor, error) {
	tbl := domain.GetToolTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(r.columns()...).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.ID), toolID).
		Build()

	var descriptor domain.ToolDescriptor
	err := r.db.GetContext(ctx, &descriptor, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrToolNotFound, toolID)
		}
		r.logger.Error("Failed to get tool", "toolId", toolID, "error", err)
		return nil, fmt.Errorf("failed to get tool: %w", err)
	}

	return &descriptor, nil
}

// ListTools retrieves every published descriptor ordered by identifier
func (r *ToolCatalogRepository) ListTools(ctx context.Context) ([]*domain.ToolDescriptor, error) {
	tbl := domain.GetToolTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(r.columns()...).
		From(tbl.TableName()).
		OrderBy(tbl.ID, true).
		Build()

	descriptors := make([]*domain.ToolDescriptor, 0)
	if err := r.db.SelectContext(ctx, &descriptors, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to list tools", "error", err)
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	return descriptors, nil
}

// SaveTool inserts or replaces a descriptor
func (r *ToolCatalogRepository) SaveTool(ctx context.Context, descriptor *domain.ToolDescriptor) error {
	// Validation
	if descriptor.ID == "" {
		return fmt.Errorf("tool id cannot be empty")
	}
	if descriptor.Kind == "" {
		return fmt.Errorf("tool kind cannot be empty")
	}

	descriptor.UpdatedAt = time.Now().UTC()
	config := descriptor.Config
	if len(config) == 0 {
		config = []byte("null")
	}

	tbl := domain.GetToolTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(r.columns()...).
		Into(tbl.TableName()).
		Values(descriptor.ID, descriptor.Kind, descriptor.Version, string(config), descriptor.Signature, descriptor.UpdatedAt).
		OnConflict(tbl.ID).
		SetExclude(tbl.Kind, tbl.Version, tbl.Config, tbl.Signature, tbl.UpdatedAt).
		Build()

	if _, err := r.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to save tool", "toolId", descriptor.ID, "error", err)
		return fmt.Errorf("failed to save tool: %w", err)
	}

	r.logger.Info("Saved tool", "toolId", descriptor.ID, "kind", descriptor.Kind, "version", descriptor.Version)
	return nil
}

// DeleteTool permanently deletes a descriptor
func (r *ToolCatalogRepository) DeleteTool(ctx context.Context, toolID string) error {
	tbl := domain.GetToolTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Delete(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.ID), toolID).
		Build()

	result, err := r.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	if err != nil {
		r.logger.Error("Failed to delete tool", "toolId", toolID, "error", err)
		return fmt.Errorf("failed to delete tool: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Error checking rows affected", "error", err)
		return fmt.Errorf("error checking rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrToolNotFound, toolID)
	}

	r.logger.Info("Deleted tool", "toolId", toolID)
	return nil
}

// EnsureTableExists creates the tools table when missing
func (r *ToolCatalogRepository) EnsureTableExists(ctx context.Context) error {
	table := domain.GetToolTable().TableName()
	if r.schema != "" {
		table = r.schema + "." + table
	}

	query := `
		CREATE TABLE IF NOT EXISTS ` + table + ` (
			id VARCHAR(255) PRIMARY KEY,
			kind VARCHAR(100) NOT NULL,
			version VARCHAR(50) NOT NULL DEFAULT '',
			config JSONB,
			signature TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL
		)
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		r.logger.Error("Failed to create tools table", "error", err)
		return fmt.Errorf("failed to create tools table: %w", err)
	}

	return nil
}
