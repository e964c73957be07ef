// Package toolsource fetches tool descriptors from a code server over HTTP.
package toolsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/domain"
)

var _ secondary.ToolSource = (*HTTPToolSource)(nil)

const maxDescriptorSize = 1 << 20

// HTTPToolSource implements ToolSource against GET /api/tools/{toolId}
type HTTPToolSource struct {
	baseURL    string
	httpClient *http.Client
	logger     primary.Logger
}

// NewHTTPToolSource creates a source for the code server at baseURL
func NewHTTPToolSource(baseURL string, timeout time.Duration, logger primary.Logger) *HTTPToolSource {
	return &HTTPToolSource{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (s *HTTPToolSource) FetchTool(ctx context.Context, toolID string) (*domain.ToolDescriptor, error) {
	endpoint := fmt.Sprintf("%s/api/tools/%s", s.baseURL, url.PathEscape(toolID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("Code server unreachable", "url", endpoint, "error", err)
		return nil, fmt.Errorf("failed to fetch tool %s: %w", toolID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrToolNotFound, toolID)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("code server answered %d for %s: %s", resp.StatusCode, toolID, strings.TrimSpace(string(body)))
	}

	var descriptor domain.ToolDescriptor
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDescriptorSize)).Decode(&descriptor); err != nil {
		return nil, fmt.Errorf("failed to decode tool %s: %w", toolID, err)
	}

	s.logger.Debug("Fetched tool descriptor", "toolId", toolID, "kind", descriptor.Kind, "etag", resp.Header.Get("ETag"))
	return &descriptor, nil
}
