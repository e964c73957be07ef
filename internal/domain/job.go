package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Job represents a unit of work routed from a client through the coordinator to a satellite.
// Parameters are opaque to the coordinator and only interpreted by the resolved tool.
type Job struct {
	ID         uuid.UUID       `json:"id"`
	ToolID     string          `json:"tool_id"`
	Parameters json.RawMessage `json:"parameters"`
}

// NewJob creates a new job, encoding params as the opaque parameter value
func NewJob(toolID string, params interface{}) (*Job, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job parameters: %w", err)
	}

	return &Job{
		ID:         uuid.New(),
		ToolID:     toolID,
		Parameters: raw,
	}, nil
}

// DecodeParameters unmarshals the opaque parameters into out
func (j *Job) DecodeParameters(out interface{}) error {
	if len(j.Parameters) == 0 {
		return fmt.Errorf("job %s has no parameters", j.ID)
	}
	if err := json.Unmarshal(j.Parameters, out); err != nil {
		return fmt.Errorf("invalid parameters for tool %s: %w", j.ToolID, err)
	}
	return nil
}
