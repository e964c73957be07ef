package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/tcp/defs"
)

func TestJobEnvelopeRoundTrip(t *testing.T) {
	job, err := domain.NewJob("echo", 42)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteEnvelope(&buf, defs.NewJobEnvelope(job)))

	header := buf.Bytes()[:defs.HeaderSize]
	assert.Equal(t, defs.MagicNumber, binary.BigEndian.Uint16(header[0:2]))
	assert.Equal(t, defs.MsgJobRequest, header[2])
	assert.Equal(t, byte(0), header[3])
	assert.Equal(t, uint32(buf.Len()-defs.HeaderSize), binary.BigEndian.Uint32(header[4:8]))

	env, err := ReadEnvelope(&buf)
	require.NoError(t, err)
	require.NotNil(t, env.Job)
	assert.Nil(t, env.Descriptor)
	assert.Equal(t, job.ID, env.Job.ID)
	assert.Equal(t, "echo", env.Job.ToolID)
	assert.JSONEq(t, "42", string(env.Job.Parameters))
}

func TestRegisterEnvelopeRoundTrip(t *testing.T) {
	descriptor := domain.NewConnectivityDescriptor("A", "127.0.0.1", 8001)

	var buf bytes.Buffer
	require.NoError(t, WriteEnvelope(&buf, defs.NewRegisterEnvelope(descriptor)))

	env, err := ReadEnvelope(&buf)
	require.NoError(t, err)
	require.NotNil(t, env.Descriptor)
	assert.Nil(t, env.Job)
	assert.Equal(t, descriptor, *env.Descriptor)
}

func TestEncodeEnvelope_TypeMismatch(t *testing.T) {
	job, err := domain.NewJob("echo", 1)
	require.NoError(t, err)
	descriptor := domain.NewConnectivityDescriptor("A", "127.0.0.1", 8001)

	tests := []struct {
		name string
		env  defs.Envelope
	}{
		{name: "register carrying job", env: defs.Envelope{Type: defs.MsgRegisterSatellite, Job: job}},
		{name: "register carrying both", env: defs.Envelope{Type: defs.MsgRegisterSatellite, Job: job, Descriptor: &descriptor}},
		{name: "job carrying descriptor", env: defs.Envelope{Type: defs.MsgJobRequest, Descriptor: &descriptor}},
		{name: "job empty", env: defs.Envelope{Type: defs.MsgJobRequest}},
		{name: "result type", env: defs.Envelope{Type: defs.MsgJobResult, Job: job}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeEnvelope(tt.env)
			var protoErr *domain.ProtocolError
			assert.ErrorAs(t, err, &protoErr)
			assert.ErrorIs(t, err, domain.ErrProtocol)
		})
	}
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		msgType byte
		payload string
	}{
		{name: "empty job", msgType: defs.MsgJobRequest, payload: ""},
		{name: "null job", msgType: defs.MsgJobRequest, payload: "null"},
		{name: "descriptor as job", msgType: defs.MsgJobRequest, payload: `{"name":"A","host":"h","port":1}`},
		{name: "job without id", msgType: defs.MsgJobRequest, payload: `{"tool_id":"echo","parameters":1}`},
		{name: "truncated job", msgType: defs.MsgJobRequest, payload: `{"id":`},
		{name: "trailing data", msgType: defs.MsgJobRequest, payload: `{"id":"` + uuid.NewString() + `","tool_id":"echo"} {}`},
		{name: "job as descriptor", msgType: defs.MsgRegisterSatellite, payload: `{"id":"` + uuid.NewString() + `","tool_id":"echo"}`},
		{name: "array descriptor", msgType: defs.MsgRegisterSatellite, payload: `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEnvelope(Frame{Type: tt.msgType, Payload: []byte(tt.payload)})
			assert.ErrorIs(t, err, domain.ErrProtocol)
		})
	}
}

func TestDecodeEnvelope_UnknownType(t *testing.T) {
	_, err := DecodeEnvelope(Frame{Type: 0x42, Payload: []byte("{}")})
	assert.ErrorIs(t, err, domain.ErrUnimplementedMessage)
	assert.NotErrorIs(t, err, domain.ErrProtocol)
}

func TestReadFrame_BadHeader(t *testing.T) {
	t.Run("bad magic", func(t *testing.T) {
		frame := make([]byte, defs.HeaderSize)
		binary.BigEndian.PutUint16(frame[0:2], 0xBEEF)
		frame[2] = defs.MsgJobRequest
		_, err := ReadFrame(bytes.NewReader(frame))
		assert.ErrorIs(t, err, domain.ErrProtocol)
	})

	t.Run("oversize payload", func(t *testing.T) {
		frame := make([]byte, defs.HeaderSize)
		binary.BigEndian.PutUint16(frame[0:2], defs.MagicNumber)
		frame[2] = defs.MsgJobRequest
		binary.BigEndian.PutUint32(frame[4:8], defs.MaxPayloadSize+1)
		_, err := ReadFrame(bytes.NewReader(frame))
		assert.ErrorIs(t, err, domain.ErrProtocol)
	})

	t.Run("short payload", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteFrame(&buf, defs.MsgJobRequest, []byte(`{"id":"x"}`)))
		truncated := buf.Bytes()[:buf.Len()-3]
		_, err := ReadFrame(bytes.NewReader(truncated))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("closed before header", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader(nil))
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestResultRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		result domain.Result
	}{
		{name: "int", result: domain.IntResult(6)},
		{name: "large int", result: domain.IntResult(7540113804746346429)},
		{name: "negative int", result: domain.IntResult(-9007199254740993)},
		{name: "float", result: domain.FloatResult(2.5)},
		{name: "string", result: domain.StringResult("hello")},
		{name: "bytes", result: domain.BytesResult([]byte{0, 1, 0xff})},
		{name: "json", result: domain.JSONResult(json.RawMessage(`{"answer":42}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteResult(&buf, tt.result))

			got, err := ReadReply(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.result.Kind, got.Kind)
			assert.Equal(t, tt.result.Display(), got.Display())
		})
	}
}

func TestWriteResult_RejectsUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteResult(&buf, domain.Result{Kind: "complex"}))
	assert.Zero(t, buf.Len())
}

func TestDecodeReply_ErrorCodes(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{code: defs.ErrCodeProtocol, want: domain.ErrProtocol},
		{code: defs.ErrCodeNoSatellites, want: domain.ErrNoSatellitesAvailable},
		{code: defs.ErrCodeUnknownTool, want: domain.ErrUnknownTool},
		{code: defs.ErrCodeToolFailed, want: domain.ErrToolFailed},
		{code: defs.ErrCodeSatelliteUnreachable, want: domain.ErrSatelliteUnreachable},
		{code: defs.ErrCodeUnimplemented, want: domain.ErrUnimplementedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.want.Error(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteError(&buf, tt.code, "boom"))

			_, err := ReadReply(&buf)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "boom")
		})
	}

	t.Run("unknown code", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteError(&buf, 9999, "odd"))
		_, err := ReadReply(&buf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "9999")
	})
}

func TestSendErrorMessage_PicksCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{err: domain.NewProtocolError("bad", nil), code: defs.ErrCodeProtocol},
		{err: domain.ErrNoSatellitesAvailable, code: defs.ErrCodeNoSatellites},
		{err: errors.Join(domain.ErrUnknownTool, domain.ErrInvalidSignature), code: defs.ErrCodeUnknownTool},
		{err: errors.New("division by zero"), code: defs.ErrCodeToolFailed},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			var buf bytes.Buffer
			SendErrorMessage(&buf, tt.err)

			frame, err := ReadFrame(&buf)
			require.NoError(t, err)
			assert.Equal(t, defs.MsgError, frame.Type)

			var data defs.ErrorData
			require.NoError(t, json.Unmarshal(frame.Payload, &data))
			assert.Equal(t, tt.code, data.Code)
		})
	}
}

func TestDecodeReply_UnexpectedType(t *testing.T) {
	_, err := DecodeReply(Frame{Type: defs.MsgRegisterAck, Payload: []byte(`{}`)})
	assert.ErrorIs(t, err, domain.ErrProtocol)

	_, err = DecodeReply(Frame{Type: defs.MsgJobResult, Payload: []byte(`{"kind":"nope"}`)})
	assert.ErrorIs(t, err, domain.ErrProtocol)
}
