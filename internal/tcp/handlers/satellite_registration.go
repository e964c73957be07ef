package handlers

import (
	"context"
	"encoding/json"
	"net"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/core/services/satellite"
	"gitlab.com/appserver.net/internal/tcp/codec"
	"gitlab.com/appserver.net/internal/tcp/defs"
)

// Implementation of message handlers
// Each handler deals with one specific message type

var _ primary.MessageHandler = (*SatelliteRegistrationHandler)(nil)

// SatelliteRegistrationHandler handles satellite registration messages
type SatelliteRegistrationHandler struct {
	SatelliteService satellite.ISatelliteService
	Logger           primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *SatelliteRegistrationHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte) error {
	env, err := codec.DecodeEnvelope(codec.Frame{Type: defs.MsgRegisterSatellite, Payload: payload})
	if err != nil {
		h.Logger.Error("Failed to parse satellite registration", "error", err)
		codec.SendErrorMessage(conn, err)
		return err
	}

	descriptor := *env.Descriptor
	h.Logger.Info("Satellite registration received", "name", descriptor.Name, "address", descriptor.Address())

	added, err := h.SatelliteService.RegisterSatellite(ctx, descriptor)
	if err != nil {
		h.Logger.Error("Failed to register satellite", "name", descriptor.Name, "error", err)
		codec.SendErrorMessage(conn, err)
		return err
	}

	// The ack is optional for satellites; a fire-and-forget sender has usually hung up already
	ack, err := json.Marshal(defs.RegisterAckData{Name: descriptor.Name, Added: added})
	if err != nil {
		return nil
	}
	if err := codec.WriteFrame(conn, defs.MsgRegisterAck, ack); err != nil {
		h.Logger.Debug("Registration ack not delivered", "name", descriptor.Name, "error", err)
	}

	return nil
}
