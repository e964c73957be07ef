package primary

import (
	"context"

	"gitlab.com/appserver.net/internal/domain"
)

// ToolSigner signs and verifies tool descriptors handed out by a code server
type ToolSigner interface {
	// Sign returns a copy of descriptor with Signature populated
	Sign(ctx context.Context, descriptor *domain.ToolDescriptor) (*domain.ToolDescriptor, error)

	// Verify checks that Signature covers the descriptor's identity, kind, version and config
	Verify(ctx context.Context, descriptor *domain.ToolDescriptor) error
}
