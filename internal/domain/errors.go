package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProtocol              = errors.New("protocol error")
	ErrNoSatellitesAvailable = errors.New("no satellites available")
	ErrUnknownTool           = errors.New("unknown tool")
	ErrToolFailed            = errors.New("tool execution failed")
	ErrSatelliteUnreachable  = errors.New("satellite unreachable")
	ErrUnimplementedMessage  = errors.New("unimplemented message type")
	ErrInvalidSignature      = errors.New("invalid tool signature")
	ErrToolNotFound          = errors.New("tool not found")
	ErrSatelliteNotFound     = errors.New("satellite not found")
)

// ProtocolError describes a malformed or type-mismatched message.
// It matches ErrProtocol under errors.Is.
type ProtocolError struct {
	Reason string
	Err    error
}

func NewProtocolError(reason string, err error) *ProtocolError {
	return &ProtocolError{Reason: reason, Err: err}
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return "protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}
