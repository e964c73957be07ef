package defs

import (
	"fmt"
	"time"
)

// Protocol constants
const (
	MagicNumber uint16 = 0xCAFE

	// HeaderSize is magic (2) + type (1) + reserved (1) + payload length (4)
	HeaderSize     = 8
	MaxPayloadSize = 16 << 20

	// Message types
	MsgRegisterSatellite byte = 0x01
	MsgRegisterAck       byte = 0x02
	MsgJobRequest        byte = 0x03
	MsgJobResult         byte = 0x05
	MsgError             byte = 0x07

	// Configuration constants
	DefaultHopTimeout    = 30 * time.Second
	ConnectionRetryDelay = 1 * time.Second
)

// MessageTypeName returns a readable name for logging
func MessageTypeName(msgType byte) string {
	switch msgType {
	case MsgRegisterSatellite:
		return "REGISTER_SATELLITE"
	case MsgRegisterAck:
		return "REGISTER_ACK"
	case MsgJobRequest:
		return "JOB_REQUEST"
	case MsgJobResult:
		return "JOB_RESULT"
	case MsgError:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02x)", msgType)
	}
}
