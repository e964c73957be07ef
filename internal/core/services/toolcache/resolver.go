// Package toolcache resolves tool identifiers to loaded tool instances on a satellite.
package toolcache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/domain"
)

// Builder turns a descriptor into a tool instance
type Builder interface {
	Build(descriptor *domain.ToolDescriptor) (secondary.Tool, error)
}

// Verifier checks a descriptor's integrity before it is instantiated
type Verifier interface {
	Verify(ctx context.Context, descriptor *domain.ToolDescriptor) error
}

// Resolver caches one tool instance per identifier for the lifetime of the process.
// Concurrent misses for the same identifier share a single load; misses for different
// identifiers load in parallel.
type Resolver struct {
	mu       sync.RWMutex
	cache    map[string]secondary.Tool
	loads    singleflight.Group
	source   secondary.ToolSource
	builder  Builder
	verifier Verifier
	logger   primary.Logger
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithVerifier rejects descriptors that fail verification
func WithVerifier(verifier Verifier) ResolverOption {
	return func(r *Resolver) {
		r.verifier = verifier
	}
}

// NewResolver creates a resolver loading descriptors from source
func NewResolver(source secondary.ToolSource, builder Builder, logger primary.Logger, options ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:   make(map[string]secondary.Tool),
		source:  source,
		builder: builder,
		logger:  logger,
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// Resolve returns the tool for toolID, loading and caching it on first use.
// Unresolvable identifiers fail with domain.ErrUnknownTool.
func (r *Resolver) Resolve(ctx context.Context, toolID string) (secondary.Tool, error) {
	if tool, ok := r.cached(toolID); ok {
		r.logger.Debug("Tool served from cache", "toolId", toolID)
		return tool, nil
	}

	if toolID == "" {
		return nil, fmt.Errorf("%w: empty tool identifier", domain.ErrUnknownTool)
	}

	// the load outlives any single caller since other callers may be waiting on it
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := r.loads.Do(toolID, func() (interface{}, error) {
		if tool, ok := r.cached(toolID); ok {
			return tool, nil
		}

		tool, err := r.load(loadCtx, toolID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[toolID] = tool
		r.mu.Unlock()

		r.logger.Info("Tool loaded", "toolId", toolID)
		return tool, nil
	})
	if err != nil {
		r.logger.Error("Failed to resolve tool", "toolId", toolID, "error", err)
		return nil, err
	}
	if shared {
		r.logger.Debug("Tool load shared with concurrent request", "toolId", toolID)
	}

	return v.(secondary.Tool), nil
}

func (r *Resolver) load(ctx context.Context, toolID string) (secondary.Tool, error) {
	descriptor, err := r.source.FetchTool(ctx, toolID)
	if err != nil {
		if errors.Is(err, domain.ErrToolNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnknownTool, err)
		}
		return nil, fmt.Errorf("failed to fetch tool %s: %w", toolID, err)
	}

	if descriptor.ID != toolID {
		return nil, fmt.Errorf("%w: source returned %q for %q", domain.ErrUnknownTool, descriptor.ID, toolID)
	}

	if r.verifier != nil {
		if err := r.verifier.Verify(ctx, descriptor); err != nil {
			return nil, fmt.Errorf("%w: tool %s rejected: %w", domain.ErrUnknownTool, toolID, err)
		}
	}

	return r.builder.Build(descriptor)
}

func (r *Resolver) cached(toolID string) (secondary.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.cache[toolID]
	return tool, ok
}

// Cached lists identifiers currently held in the cache
func (r *Resolver) Cached() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.cache))
	for id := range r.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
