package secondary

import (
	"context"

	"gitlab.com/appserver.net/internal/domain"
)

// ToolCatalogRepository stores the tool descriptors a code server publishes
type ToolCatalogRepository interface {
	ToolSource

	// SaveTool inserts or replaces a descriptor
	SaveTool(ctx context.Context, descriptor *domain.ToolDescriptor) error

	// ListTools returns every descriptor ordered by identifier
	ListTools(ctx context.Context) ([]*domain.ToolDescriptor, error)

	// DeleteTool removes a descriptor
	DeleteTool(ctx context.Context, toolID string) error
}
