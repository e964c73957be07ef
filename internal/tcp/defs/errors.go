package defs

import (
	"errors"
	"fmt"

	"gitlab.com/appserver.net/internal/domain"
)

// Error codes carried by MsgError frames
const (
	ErrCodeProtocol             = 1001
	ErrCodeNoSatellites         = 1002
	ErrCodeUnknownTool          = 1003
	ErrCodeToolFailed           = 1004
	ErrCodeSatelliteUnreachable = 1005
	ErrCodeUnimplemented        = 1006
)

// ErrorData represents data sent with error responses
type ErrorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var codeErrors = map[int]error{
	ErrCodeProtocol:             domain.ErrProtocol,
	ErrCodeNoSatellites:         domain.ErrNoSatellitesAvailable,
	ErrCodeUnknownTool:          domain.ErrUnknownTool,
	ErrCodeToolFailed:           domain.ErrToolFailed,
	ErrCodeSatelliteUnreachable: domain.ErrSatelliteUnreachable,
	ErrCodeUnimplemented:        domain.ErrUnimplementedMessage,
}

// CodeForError picks the wire code for err, defaulting to ErrCodeToolFailed
func CodeForError(err error) int {
	for _, code := range []int{
		ErrCodeProtocol,
		ErrCodeNoSatellites,
		ErrCodeUnknownTool,
		ErrCodeSatelliteUnreachable,
		ErrCodeUnimplemented,
	} {
		if errors.Is(err, codeErrors[code]) {
			return code
		}
	}
	return ErrCodeToolFailed
}

// Err turns received error data back into an error matching the sentinel for its code
func (e ErrorData) Err() error {
	sentinel, ok := codeErrors[e.Code]
	if !ok {
		return fmt.Errorf("remote error %d: %s", e.Code, e.Message)
	}
	return fmt.Errorf("%w: %s", sentinel, e.Message)
}
