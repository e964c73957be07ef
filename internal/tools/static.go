package tools

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/domain"
)

var _ secondary.ToolSource = (*StaticSource)(nil)

// Identifiers used by the original Java clients, mapped onto the built-in kinds
var legacyAliases = map[string]string{
	"appserver.job.impl.Fibonacci": KindFibonacci,
	"appserver.job.impl.PlusOne":   KindAdder,
	"plusone":                      KindAdder,
}

// StaticSource serves descriptors from an in-process table
type StaticSource struct {
	mu          sync.RWMutex
	descriptors map[string]*domain.ToolDescriptor
}

// NewStaticSource creates a source exposing every kind of catalog under its own name,
// plus the legacy aliases for kinds it holds
func NewStaticSource(catalog *Catalog) *StaticSource {
	s := &StaticSource{descriptors: make(map[string]*domain.ToolDescriptor)}
	kinds := make(map[string]bool)
	for _, kind := range catalog.Kinds() {
		kinds[kind] = true
		s.Add(&domain.ToolDescriptor{ID: kind, Kind: kind})
	}
	for alias, kind := range legacyAliases {
		if kinds[kind] {
			s.Add(&domain.ToolDescriptor{ID: alias, Kind: kind})
		}
	}
	return s
}

// Add publishes descriptor under its ID
func (s *StaticSource) Add(descriptor *domain.ToolDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.descriptors[descriptor.ID] = descriptor
}

func (s *StaticSource) FetchTool(ctx context.Context, toolID string) (*domain.ToolDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	descriptor, exists := s.descriptors[toolID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrToolNotFound, toolID)
	}
	copied := *descriptor
	return &copied, nil
}
