// Package codec frames and parses the messages exchanged by clients, the coordinator and
// satellites. Every participant uses these routines, so a frame means the same thing everywhere.
package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/tcp/defs"
)

// Frame is one header plus payload as it travels on the wire
type Frame struct {
	Type    byte
	Payload []byte
}

// ReadFrame reads a message from a connection
func ReadFrame(r io.Reader) (Frame, error) {
	// Read message header
	header := make([]byte, defs.HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return Frame{}, err
	}

	// Parse header
	magic := binary.BigEndian.Uint16(header[0:2])
	msgType := header[2]
	payloadLen := binary.BigEndian.Uint32(header[4:8])

	// Validate magic number
	if magic != defs.MagicNumber {
		return Frame{}, domain.NewProtocolError(fmt.Sprintf("invalid magic number: %x", magic), nil)
	}
	if payloadLen > defs.MaxPayloadSize {
		return Frame{}, domain.NewProtocolError(fmt.Sprintf("payload of %d bytes exceeds limit", payloadLen), nil)
	}

	// Read payload
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, fmt.Errorf("failed to read message payload: %w", err)
	}

	return Frame{Type: msgType, Payload: payload}, nil
}

// WriteFrame sends header and payload in a single write
func WriteFrame(w io.Writer, msgType byte, payload []byte) error {
	if len(payload) > defs.MaxPayloadSize {
		return fmt.Errorf("payload of %d bytes exceeds limit", len(payload))
	}

	buf := make([]byte, defs.HeaderSize+len(payload))
	binary.BigEndian.PutUint16(buf[0:2], defs.MagicNumber)
	buf[2] = msgType
	buf[3] = 0 // Reserved
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(payload)))
	copy(buf[defs.HeaderSize:], payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// EncodeEnvelope serializes an envelope, refusing payloads that do not match its type
func EncodeEnvelope(env defs.Envelope) (Frame, error) {
	var body interface{}
	switch env.Type {
	case defs.MsgRegisterSatellite:
		if env.Descriptor == nil || env.Job != nil {
			return Frame{}, domain.NewProtocolError("REGISTER_SATELLITE requires exactly a descriptor", nil)
		}
		body = env.Descriptor
	case defs.MsgJobRequest:
		if env.Job == nil || env.Descriptor != nil {
			return Frame{}, domain.NewProtocolError("JOB_REQUEST requires exactly a job", nil)
		}
		body = env.Job
	default:
		return Frame{}, domain.NewProtocolError(fmt.Sprintf("cannot encode message type %s", defs.MessageTypeName(env.Type)), nil)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to marshal %s payload: %w", defs.MessageTypeName(env.Type), err)
	}
	return Frame{Type: env.Type, Payload: payload}, nil
}

// DecodeEnvelope parses a request frame. A payload that does not have exactly the shape its
// type requires fails with a *domain.ProtocolError.
func DecodeEnvelope(frame Frame) (*defs.Envelope, error) {
	env := &defs.Envelope{Type: frame.Type}

	switch frame.Type {
	case defs.MsgRegisterSatellite:
		var descriptor domain.ConnectivityDescriptor
		if err := decodeStrict(frame.Payload, &descriptor); err != nil {
			return nil, domain.NewProtocolError("malformed REGISTER_SATELLITE payload", err)
		}
		env.Descriptor = &descriptor
	case defs.MsgJobRequest:
		var job domain.Job
		if err := decodeStrict(frame.Payload, &job); err != nil {
			return nil, domain.NewProtocolError("malformed JOB_REQUEST payload", err)
		}
		if job.ID == uuid.Nil {
			return nil, domain.NewProtocolError("JOB_REQUEST without job id", nil)
		}
		env.Job = &job
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnimplementedMessage, defs.MessageTypeName(frame.Type))
	}

	return env, nil
}

// WriteEnvelope encodes and sends an envelope
func WriteEnvelope(w io.Writer, env defs.Envelope) error {
	frame, err := EncodeEnvelope(env)
	if err != nil {
		return err
	}
	return WriteFrame(w, frame.Type, frame.Payload)
}

// ReadEnvelope reads and decodes one request frame
func ReadEnvelope(r io.Reader) (*defs.Envelope, error) {
	frame, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return DecodeEnvelope(frame)
}

// WriteResult sends a tool result
func WriteResult(w io.Writer, result domain.Result) error {
	if err := result.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return WriteFrame(w, defs.MsgJobResult, payload)
}

// WriteError sends an error frame
func WriteError(w io.Writer, code int, message string) error {
	payload, err := json.Marshal(defs.ErrorData{Code: code, Message: message})
	if err != nil {
		return fmt.Errorf("failed to marshal error: %w", err)
	}
	return WriteFrame(w, defs.MsgError, payload)
}

// SendErrorMessage sends an error frame derived from err, ignoring write failures since the
// connection is being abandoned anyway
func SendErrorMessage(w io.Writer, err error) {
	_ = WriteError(w, defs.CodeForError(err), err.Error())
}

// DecodeReply interprets the frame answering a job request: a result, or a remote error that
// matches the corresponding domain sentinel under errors.Is
func DecodeReply(frame Frame) (domain.Result, error) {
	switch frame.Type {
	case defs.MsgJobResult:
		var result domain.Result
		if err := decodeStrict(frame.Payload, &result); err != nil {
			return domain.Result{}, domain.NewProtocolError("malformed JOB_RESULT payload", err)
		}
		if err := result.Validate(); err != nil {
			return domain.Result{}, domain.NewProtocolError("malformed JOB_RESULT payload", err)
		}
		return result, nil
	case defs.MsgError:
		var data defs.ErrorData
		if err := json.Unmarshal(frame.Payload, &data); err != nil {
			return domain.Result{}, domain.NewProtocolError("malformed ERROR payload", err)
		}
		return domain.Result{}, data.Err()
	default:
		return domain.Result{}, domain.NewProtocolError(fmt.Sprintf("unexpected reply type %s", defs.MessageTypeName(frame.Type)), nil)
	}
}

// ReadReply reads and interprets one reply frame
func ReadReply(r io.Reader) (domain.Result, error) {
	frame, err := ReadFrame(r)
	if err != nil {
		return domain.Result{}, err
	}
	return DecodeReply(frame)
}

func decodeStrict(payload []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errors.New("empty payload")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after payload")
	}
	return nil
}
