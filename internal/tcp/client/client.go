// Package client opens one-shot connections to a coordinator or satellite: one request frame
// out, at most one reply frame back, then close.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/tcp/codec"
	"gitlab.com/appserver.net/internal/tcp/defs"
)

// Client talks to the participant listening on address
type Client struct {
	address string
	timeout time.Duration
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTimeout bounds dialing plus the whole exchange. Zero disables the bound.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// NewClient creates a client for address (host:port)
func NewClient(address string, options ...ClientOption) *Client {
	c := &Client{
		address: address,
		timeout: defs.DefaultHopTimeout,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

func (c *Client) Address() string {
	return c.address
}

// Submit sends a job request and waits for its result. Remote failures reported through an
// ERROR frame match the corresponding domain sentinel under errors.Is.
func (c *Client) Submit(ctx context.Context, job *domain.Job) (domain.Result, error) {
	frame, err := codec.EncodeEnvelope(defs.NewJobEnvelope(job))
	if err != nil {
		return domain.Result{}, err
	}

	reply, err := c.Exchange(ctx, frame)
	if err != nil {
		return domain.Result{}, err
	}
	return codec.DecodeReply(reply)
}

// Register announces a satellite. With waitAck false the message is fire-and-forget.
func (c *Client) Register(ctx context.Context, descriptor domain.ConnectivityDescriptor, waitAck bool) (*defs.RegisterAckData, error) {
	conn, cleanup, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := codec.WriteEnvelope(conn, defs.NewRegisterEnvelope(descriptor)); err != nil {
		return nil, err
	}
	if !waitAck {
		return nil, nil
	}

	frame, err := codec.ReadFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read registration ack: %w", err)
	}
	switch frame.Type {
	case defs.MsgRegisterAck:
		var ack defs.RegisterAckData
		if err := json.Unmarshal(frame.Payload, &ack); err != nil {
			return nil, domain.NewProtocolError("malformed REGISTER_ACK payload", err)
		}
		return &ack, nil
	case defs.MsgError:
		_, err := codec.DecodeReply(frame)
		return nil, err
	default:
		return nil, domain.NewProtocolError("unexpected reply to registration: "+defs.MessageTypeName(frame.Type), nil)
	}
}

// Exchange writes frame unchanged and returns the raw reply frame
func (c *Client) Exchange(ctx context.Context, frame codec.Frame) (codec.Frame, error) {
	conn, cleanup, err := c.dial(ctx)
	if err != nil {
		return codec.Frame{}, err
	}
	defer cleanup()

	if err := codec.WriteFrame(conn, frame.Type, frame.Payload); err != nil {
		return codec.Frame{}, err
	}

	reply, err := codec.ReadFrame(conn)
	if err != nil {
		return codec.Frame{}, fmt.Errorf("failed to read reply from %s: %w", c.address, err)
	}
	return reply, nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, func(), error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", c.address, err)
	}

	deadline := time.Time{}
	if c.timeout > 0 {
		deadline = time.Now().Add(c.timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if !deadline.IsZero() {
		_ = conn.SetDeadline(deadline)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})

	return conn, func() {
		stop()
		_ = conn.Close()
	}, nil
}
