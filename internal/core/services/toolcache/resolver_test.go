package toolcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/appserver.net/internal/adapter/logging"
	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/domain"
)

type countingTool struct {
	serial int32
}

func (t *countingTool) Execute(ctx context.Context, parameters json.RawMessage) (domain.Result, error) {
	return domain.IntResult(int64(t.serial)), nil
}

// fakeSource serves descriptors for a fixed set of ids
type fakeSource struct {
	ids     map[string]bool
	fetches atomic.Int32
	delay   time.Duration
	err     error
}

func (s *fakeSource) FetchTool(ctx context.Context, toolID string) (*domain.ToolDescriptor, error) {
	s.fetches.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	if !s.ids[toolID] {
		return nil, fmt.Errorf("%w: %s", domain.ErrToolNotFound, toolID)
	}
	return &domain.ToolDescriptor{ID: toolID, Kind: "counting"}, nil
}

// countingBuilder counts instantiations
type countingBuilder struct {
	builds atomic.Int32
}

func (b *countingBuilder) Build(descriptor *domain.ToolDescriptor) (secondary.Tool, error) {
	if descriptor.Kind != "counting" {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTool, descriptor.Kind)
	}
	return &countingTool{serial: b.builds.Add(1)}, nil
}

type rejectAll struct{}

func (rejectAll) Verify(ctx context.Context, descriptor *domain.ToolDescriptor) error {
	return domain.ErrInvalidSignature
}

func TestResolve_CacheHitIdentity(t *testing.T) {
	source := &fakeSource{ids: map[string]bool{"fib": true}}
	builder := &countingBuilder{}
	r := NewResolver(source, builder, logging.NewNopLogger())

	first, err := r.Resolve(context.Background(), "fib")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "fib")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), builder.builds.Load())
	assert.Equal(t, int32(1), source.fetches.Load())
	assert.Equal(t, []string{"fib"}, r.Cached())
}

func TestResolve_EmptyID(t *testing.T) {
	source := &fakeSource{ids: map[string]bool{}}
	r := NewResolver(source, &countingBuilder{}, logging.NewNopLogger())

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnknownTool)
	assert.Equal(t, int32(0), source.fetches.Load())
}

func TestResolve_UnknownID(t *testing.T) {
	source := &fakeSource{ids: map[string]bool{}}
	builder := &countingBuilder{}
	r := NewResolver(source, builder, logging.NewNopLogger())

	_, err := r.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownTool)
	assert.Empty(t, r.Cached())

	// failures are not cached
	_, err = r.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownTool)
	assert.Equal(t, int32(2), source.fetches.Load())
	assert.Equal(t, int32(0), builder.builds.Load())
}

func TestResolve_SourceFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("code server down")}
	r := NewResolver(source, &countingBuilder{}, logging.NewNopLogger())

	_, err := r.Resolve(context.Background(), "fib")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnknownTool)
}

func TestResolve_VerifierRejects(t *testing.T) {
	source := &fakeSource{ids: map[string]bool{"fib": true}}
	builder := &countingBuilder{}
	r := NewResolver(source, builder, logging.NewNopLogger(), WithVerifier(rejectAll{}))

	_, err := r.Resolve(context.Background(), "fib")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.ErrorIs(t, err, domain.ErrUnknownTool)
	assert.Equal(t, int32(0), builder.builds.Load())
}

func TestResolve_ConcurrentFirstRequestsShareOneLoad(t *testing.T) {
	source := &fakeSource{ids: map[string]bool{"fib": true, "add": true}, delay: 20 * time.Millisecond}
	builder := &countingBuilder{}
	r := NewResolver(source, builder, logging.NewNopLogger())

	const callers = 32
	tools := make([]secondary.Tool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "fib"
			if i%2 == 1 {
				id = "add"
			}
			tool, err := r.Resolve(context.Background(), id)
			assert.NoError(t, err)
			tools[i] = tool
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(2), builder.builds.Load())
	for i := 2; i < callers; i++ {
		assert.Same(t, tools[i%2], tools[i])
	}
	assert.NotSame(t, tools[0], tools[1])
}

func TestResolve_CancelledCallerDoesNotPoisonLoad(t *testing.T) {
	source := &fakeSource{ids: map[string]bool{"fib": true}}
	r := NewResolver(source, &countingBuilder{}, logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, "fib")
	require.NoError(t, err)
	assert.Equal(t, []string{"fib"}, r.Cached())
}
