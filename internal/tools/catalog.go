// Package tools is the statically linked plugin table of the satellite.
// A tool kind maps to a factory; descriptors from any tool source select a kind and carry its
// configuration.
package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/domain"
)

// Factory builds a tool instance from its descriptor configuration
type Factory func(config json.RawMessage) (secondary.Tool, error)

// Catalog maps tool kinds to factories
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
	logger    primary.Logger
}

// NewCatalog creates an empty catalog
func NewCatalog(logger primary.Logger) *Catalog {
	return &Catalog{
		factories: make(map[string]Factory),
		logger:    logger,
	}
}

// NewBuiltinCatalog creates a catalog holding every tool shipped with the binary
func NewBuiltinCatalog(logger primary.Logger) *Catalog {
	c := NewCatalog(logger)
	c.Register(KindFibonacci, NewFibonacci)
	c.Register(KindAdder, NewAdder)
	c.Register(KindEcho, NewEcho)
	return c
}

// Register adds or replaces the factory for kind
func (c *Catalog) Register(kind string, factory Factory) {
	c.mu.Lock()
	c.factories[kind] = factory
	c.mu.Unlock()

	c.logger.Debug("Tool kind registered", "kind", kind)
}

// Kinds lists registered kinds in sorted order
func (c *Catalog) Kinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kinds := make([]string, 0, len(c.factories))
	for kind := range c.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Build instantiates the tool a descriptor points at.
// An unregistered kind yields domain.ErrUnknownTool.
func (c *Catalog) Build(descriptor *domain.ToolDescriptor) (secondary.Tool, error) {
	c.mu.RLock()
	factory, exists := c.factories[descriptor.Kind]
	c.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s has unsupported kind %q", domain.ErrUnknownTool, descriptor.ID, descriptor.Kind)
	}

	tool, err := factory(descriptor.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool %s: %w", descriptor.ID, err)
	}
	return tool, nil
}
