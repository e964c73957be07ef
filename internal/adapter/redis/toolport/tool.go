package toolport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/domain"
)

const (
	toolKeyPrefix = "tool:"
	toolIndexKey  = "tools"
)

var _ secondary.ToolCatalogRepository = (*ToolRepository)(nil)

// Commands is the subset of the redis client the repository uses
type Commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

var _ Commands = (*redis.Client)(nil)

// ToolRepository implements the ToolCatalogRepository interface with Redis
type ToolRepository struct {
	redisClient Commands
	logger      primary.Logger
}

// NewToolRepository creates a new Redis tool repository
func NewToolRepository(redisClient Commands, logger primary.Logger) *ToolRepository {
	return &ToolRepository{
		redisClient: redisClient,
		logger:      logger,
	}
}

// SaveTool saves a descriptor to Redis and adds it to the index
func (r *ToolRepository) SaveTool(ctx context.Context, descriptor *domain.ToolDescriptor) error {
	if descriptor.ID == "" {
		return fmt.Errorf("tool id cannot be empty")
	}
	descriptor.UpdatedAt = time.Now().UTC()

	// Serialize descriptor
	toolJSON, err := json.Marshal(descriptor)
	if err != nil {
		r.logger.Error("Failed to marshal tool descriptor", "error", err)
		return fmt.Errorf("failed to marshal tool descriptor: %w", err)
	}

	if err := r.redisClient.Set(ctx, toolKeyPrefix+descriptor.ID, toolJSON, 0).Err(); err != nil {
		r.logger.Error("Failed to save tool descriptor", "toolId", descriptor.ID, "error", err)
		return fmt.Errorf("failed to save tool descriptor: %w", err)
	}

	if err := r.redisClient.SAdd(ctx, toolIndexKey, descriptor.ID).Err(); err != nil {
		r.logger.Error("Failed to add tool to index", "toolId", descriptor.ID, "error", err)
		return fmt.Errorf("failed to add tool to index: %w", err)
	}

	return nil
}

// FetchTool retrieves a descriptor from Redis by ID
func (r *ToolRepository) FetchTool(ctx context.Context, toolID string) (*domain.ToolDescriptor, error) {
	toolJSON, err := r.redisClient.Get(ctx, toolKeyPrefix+toolID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrToolNotFound, toolID)
		}
		r.logger.Error("Failed to get tool descriptor", "toolId", toolID, "error", err)
		return nil, fmt.Errorf("failed to get tool descriptor: %w", err)
	}

	var descriptor domain.ToolDescriptor
	if err := json.Unmarshal(toolJSON, &descriptor); err != nil {
		r.logger.Error("Failed to unmarshal tool descriptor", "toolId", toolID, "error", err)
		return nil, fmt.Errorf("failed to unmarshal tool descriptor: %w", err)
	}

	return &descriptor, nil
}

// ListTools retrieves every indexed descriptor ordered by identifier
func (r *ToolRepository) ListTools(ctx context.Context) ([]*domain.ToolDescriptor, error) {
	toolIDs, err := r.redisClient.SMembers(ctx, toolIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read tool index: %w", err)
	}

	descriptors := make([]*domain.ToolDescriptor, 0, len(toolIDs))
	if len(toolIDs) == 0 {
		return descriptors, nil
	}
	sort.Strings(toolIDs)

	keys := make([]string, len(toolIDs))
	for i, id := range toolIDs {
		keys[i] = toolKeyPrefix + id
	}

	// Use MGET to retrieve all descriptors at once
	toolData, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tool descriptors: %w", err)
	}

	for i, data := range toolData {
		raw, ok := data.(string)
		if !ok {
			// indexed but the key is gone
			r.logger.Warn("Tool missing from store", "toolId", toolIDs[i])
			continue
		}
		var descriptor domain.ToolDescriptor
		if err := json.Unmarshal([]byte(raw), &descriptor); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tool descriptor %s: %w", toolIDs[i], err)
		}
		descriptors = append(descriptors, &descriptor)
	}

	return descriptors, nil
}

// DeleteTool removes a descriptor and its index entry
func (r *ToolRepository) DeleteTool(ctx context.Context, toolID string) error {
	removed, err := r.redisClient.Del(ctx, toolKeyPrefix+toolID).Result()
	if err != nil {
		r.logger.Error("Failed to delete tool descriptor", "toolId", toolID, "error", err)
		return fmt.Errorf("failed to delete tool descriptor: %w", err)
	}

	if err := r.redisClient.SRem(ctx, toolIndexKey, toolID).Err(); err != nil {
		r.logger.Error("Failed to remove tool from index", "toolId", toolID, "error", err)
		return fmt.Errorf("failed to remove tool from index: %w", err)
	}

	if removed == 0 {
		return fmt.Errorf("%w: %s", domain.ErrToolNotFound, toolID)
	}
	return nil
}
