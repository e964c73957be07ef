package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/handlers/response"
)

// JobSubmitter runs one job on some satellite
type JobSubmitter interface {
	SubmitJob(ctx context.Context, job *domain.Job) (domain.Result, *domain.ConnectivityDescriptor, error)
}

// CreateJobRequest represents a request to run a job
type CreateJobRequest struct {
	ToolID     string          `json:"tool_id"`
	Parameters json.RawMessage `json:"parameters"`
}

// CreateJobResponse carries the job's result and the satellite that produced it
type CreateJobResponse struct {
	JobID     string        `json:"job_id"`
	Satellite string        `json:"satellite"`
	Result    domain.Result `json:"result"`
	Value     interface{}   `json:"value"`
}

// JobHandler handles job API requests
type JobHandler struct {
	submitter JobSubmitter
	logger    primary.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(submitter JobSubmitter, logger primary.Logger) *JobHandler {
	return &JobHandler{
		submitter: submitter,
		logger:    logger,
	}
}

// RegisterRoutes registers the API routes for JobHandler
func (h *JobHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/jobs", h.CreateJob).Methods(http.MethodPost)
}

// CreateJob dispatches a job through the coordinator and waits for its result
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	if req.ToolID == "" {
		response.WriteError(w, response.ErrorMessage{Message: "tool_id is required", StatusCode: http.StatusBadRequest})
		return
	}

	job, err := domain.NewJob(req.ToolID, req.Parameters)
	if err != nil {
		response.WriteError(w, response.ErrorMessage{Message: err.Error(), StatusCode: http.StatusBadRequest})
		return
	}

	result, target, err := h.submitter.SubmitJob(r.Context(), job)
	if err != nil {
		h.logger.Error("Failed to run job", "jobId", job.ID, "toolId", job.ToolID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: err.Error(), StatusCode: statusForError(err)})
		return
	}

	response.WriteSuccess(w, CreateJobResponse{
		JobID:     job.ID.String(),
		Satellite: target.Name,
		Result:    result,
		Value:     result.Value(),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoSatellitesAvailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnknownTool):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrToolFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSatelliteUnreachable), errors.Is(err, domain.ErrProtocol):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
