// Package dispatch relays job requests from the coordinator to the satellite chosen by the
// load balancer.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/core/services/satellite"
	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/tcp/client"
	"gitlab.com/appserver.net/internal/tcp/codec"
	"gitlab.com/appserver.net/internal/tcp/defs"
)

// Dispatcher forwards job frames to satellites
type Dispatcher struct {
	satelliteService satellite.ISatelliteService
	hopTimeout       time.Duration
	logger           primary.Logger
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithHopTimeout bounds the coordinator to satellite exchange
func WithHopTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.hopTimeout = timeout
	}
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(satelliteService satellite.ISatelliteService, logger primary.Logger, options ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		satelliteService: satelliteService,
		hopTimeout:       defs.DefaultHopTimeout,
		logger:           logger,
	}

	for _, option := range options {
		option(d)
	}

	return d
}

// Forward sends a JOB_REQUEST frame, unmodified, to the next satellite and returns the raw reply
// frame (a JOB_RESULT or an ERROR produced by the satellite) together with the satellite used.
func (d *Dispatcher) Forward(ctx context.Context, frame codec.Frame) (codec.Frame, *domain.ConnectivityDescriptor, error) {
	if frame.Type != defs.MsgJobRequest {
		return codec.Frame{}, nil, domain.NewProtocolError("only JOB_REQUEST frames can be dispatched", nil)
	}

	target, err := d.satelliteService.NextSatellite(ctx)
	if err != nil {
		d.logger.Error("Failed to select satellite", "error", err)
		return codec.Frame{}, nil, err
	}

	d.logger.Info("Forwarding job request", "satellite", target.Name, "address", target.Address())

	reply, err := client.NewClient(target.Address(), client.WithTimeout(d.hopTimeout)).Exchange(ctx, frame)
	if err != nil {
		d.logger.Error("Satellite exchange failed", "satellite", target.Name, "error", err)
		return codec.Frame{}, target, fmt.Errorf("%w: %s: %w", domain.ErrSatelliteUnreachable, target.Name, err)
	}

	if reply.Type != defs.MsgJobResult && reply.Type != defs.MsgError {
		return codec.Frame{}, target, domain.NewProtocolError(
			fmt.Sprintf("satellite %s replied with %s", target.Name, defs.MessageTypeName(reply.Type)), nil)
	}

	return reply, target, nil
}

// SubmitJob dispatches a job built in-process and decodes the reply
func (d *Dispatcher) SubmitJob(ctx context.Context, job *domain.Job) (domain.Result, *domain.ConnectivityDescriptor, error) {
	frame, err := codec.EncodeEnvelope(defs.NewJobEnvelope(job))
	if err != nil {
		return domain.Result{}, nil, err
	}

	reply, target, err := d.Forward(ctx, frame)
	if err != nil {
		return domain.Result{}, target, err
	}

	result, err := codec.DecodeReply(reply)
	return result, target, err
}
