package tools

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/blake2b"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/handlers/response"
)

// ToolHandler serves tool descriptors to satellites
type ToolHandler struct {
	catalog secondary.ToolCatalogRepository
	logger  primary.Logger
}

// NewToolHandler creates a new tool handler
func NewToolHandler(catalog secondary.ToolCatalogRepository, logger primary.Logger) *ToolHandler {
	return &ToolHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers the API routes for ToolHandler
func (h *ToolHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/tools", h.GetTools).Methods(http.MethodGet)
	router.HandleFunc("/api/tools/{toolId}", h.GetTool).Methods(http.MethodGet)
}

// GetTools lists every published descriptor
func (h *ToolHandler) GetTools(w http.ResponseWriter, r *http.Request) {
	descriptors, err := h.catalog.ListTools(r.Context())
	if err != nil {
		h.logger.Error("Failed to list tools", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to list tools", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, map[string][]*domain.ToolDescriptor{"tools": descriptors})
}

// GetTool returns one descriptor, honouring If-None-Match
func (h *ToolHandler) GetTool(w http.ResponseWriter, r *http.Request) {
	toolID := mux.Vars(r)["toolId"]

	descriptor, err := h.catalog.FetchTool(r.Context(), toolID)
	if err != nil {
		if errors.Is(err, domain.ErrToolNotFound) {
			response.WriteError(w, response.ErrorMessage{Message: "Tool not found", StatusCode: http.StatusNotFound})
			return
		}
		h.logger.Error("Failed to get tool", "toolId", toolID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get tool", StatusCode: http.StatusInternalServerError})
		return
	}

	body, err := json.Marshal(descriptor)
	if err != nil {
		h.logger.Error("Failed to marshal tool", "toolId", toolID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get tool", StatusCode: http.StatusInternalServerError})
		return
	}

	etag := ETag(body)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.logger.Debug("Serving tool", "toolId", toolID, "etag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ETag is a strong validator over a response body
func ETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
