package handlers

import (
	"context"
	"net"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/tcp/codec"
	"gitlab.com/appserver.net/internal/tcp/defs"
	"gitlab.com/appserver.net/internal/tcp/dispatch"
)

var _ primary.MessageHandler = (*JobRequestHandler)(nil)

// JobRequestHandler relays a client's job request to a satellite and the satellite's reply back
// to the client
type JobRequestHandler struct {
	Dispatcher *dispatch.Dispatcher
	Logger     primary.Logger
}

func NewTCPJobRequestHandler(dispatcher *dispatch.Dispatcher, logger primary.Logger) *JobRequestHandler {
	return &JobRequestHandler{
		Dispatcher: dispatcher,
		Logger:     logger,
	}
}

// HandleMessage implements the MessageHandler interface
func (h *JobRequestHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte) error {
	frame := codec.Frame{Type: defs.MsgJobRequest, Payload: payload}

	// Only validated here; the original payload bytes are what get forwarded
	env, err := codec.DecodeEnvelope(frame)
	if err != nil {
		h.Logger.Error("Failed to parse job request", "error", err)
		codec.SendErrorMessage(conn, err)
		return err
	}

	h.Logger.Info("Job request received", "jobId", env.Job.ID, "toolId", env.Job.ToolID)

	reply, target, err := h.Dispatcher.Forward(ctx, frame)
	if err != nil {
		h.Logger.Error("Failed to dispatch job", "jobId", env.Job.ID, "error", err)
		codec.SendErrorMessage(conn, err)
		return err
	}

	// Relay the satellite's reply unchanged
	if err := codec.WriteFrame(conn, reply.Type, reply.Payload); err != nil {
		h.Logger.Error("Failed to relay result to client", "jobId", env.Job.ID, "error", err)
		return err
	}

	h.Logger.Info("Job completed", "jobId", env.Job.ID, "satellite", target.Name, "reply", defs.MessageTypeName(reply.Type))
	return nil
}
