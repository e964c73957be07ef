package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/core/ports/secondary"
	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/tcp/codec"
	"gitlab.com/appserver.net/internal/tcp/defs"
)

var _ primary.MessageHandler = (*JobExecutionHandler)(nil)

// ToolResolver hands out ready-to-run tools
type ToolResolver interface {
	Resolve(ctx context.Context, toolID string) (secondary.Tool, error)
}

// JobExecutionHandler runs a job request on the satellite and writes back its result
type JobExecutionHandler struct {
	Resolver ToolResolver
	Logger   primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *JobExecutionHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte) error {
	env, err := codec.DecodeEnvelope(codec.Frame{Type: defs.MsgJobRequest, Payload: payload})
	if err != nil {
		h.Logger.Error("Failed to parse job request", "error", err)
		codec.SendErrorMessage(conn, err)
		return err
	}

	job := env.Job
	h.Logger.Info("Received new job request", "jobId", job.ID, "toolId", job.ToolID)

	result, err := h.execute(ctx, job)
	if err != nil {
		h.Logger.Error("Job failed", "jobId", job.ID, "toolId", job.ToolID, "error", err)
		codec.SendErrorMessage(conn, err)
		return err
	}

	if err := codec.WriteResult(conn, result); err != nil {
		h.Logger.Error("Failed to write job result", "jobId", job.ID, "error", err)
		return err
	}

	h.Logger.Info("Completed job request", "jobId", job.ID, "toolId", job.ToolID, "result", result.Display())
	return nil
}

// execute resolves and runs the job's tool. A panicking tool fails only its own job.
func (h *JobExecutionHandler) execute(ctx context.Context, job *domain.Job) (result domain.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.Logger.Error("Tool panicked", "jobId", job.ID, "toolId", job.ToolID, "panic", r, "stack", string(debug.Stack()))
			result, err = domain.Result{}, fmt.Errorf("%w: %s: panic: %v", domain.ErrToolFailed, job.ToolID, r)
		}
	}()

	tool, err := h.Resolver.Resolve(ctx, job.ToolID)
	if err != nil {
		return domain.Result{}, err
	}

	result, err = tool.Execute(ctx, job.Parameters)
	if err != nil {
		if errors.Is(err, domain.ErrToolFailed) {
			return domain.Result{}, err
		}
		return domain.Result{}, fmt.Errorf("%w: %s: %w", domain.ErrToolFailed, job.ToolID, err)
	}
	return result, nil
}
