package secondary

import (
	"context"
	"encoding/json"

	"gitlab.com/appserver.net/internal/domain"
)

// Tool is a loaded, ready-to-invoke unit of executable logic.
// One instance serves every invocation of its identifier, so implementations must be safe
// for concurrent use.
type Tool interface {
	Execute(ctx context.Context, parameters json.RawMessage) (domain.Result, error)
}

// ToolSource resolves a tool identifier to its descriptor.
// Implementations return domain.ErrToolNotFound when the identifier is unknown.
type ToolSource interface {
	FetchTool(ctx context.Context, toolID string) (*domain.ToolDescriptor, error)
}
