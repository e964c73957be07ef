package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/core/services/satellite"
	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/tcp/codec"
	"gitlab.com/appserver.net/internal/tcp/connectionmanager"
	"gitlab.com/appserver.net/internal/tcp/defs"
	"gitlab.com/appserver.net/internal/tcp/dispatch"
	"gitlab.com/appserver.net/internal/tcp/handlers"
)

// TCPServer accepts connections and serves exactly one request message per connection.
// The coordinator and satellites differ only in the handlers they install.
type TCPServer struct {
	address       string
	readTimeout   time.Duration
	logger        primary.Logger
	listener      net.Listener
	connectionMgr *connectionmanager.ConnectionManager
	stopCh        chan struct{}
	baseCtx       context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	stopOnce      sync.Once
	acceptMu      sync.Mutex // orders admitting a connection against Stop
	handlers      map[byte]primary.MessageHandler
}

// TCPServerOption configures a TCPServer
type TCPServerOption func(*TCPServer)

// WithAddress sets the server address
func WithAddress(address string) TCPServerOption {
	return func(s *TCPServer) {
		s.address = address
	}
}

// WithReadTimeout bounds how long a new connection may take to deliver its request
func WithReadTimeout(timeout time.Duration) TCPServerOption {
	return func(s *TCPServer) {
		s.readTimeout = timeout
	}
}

// NewTCPServer creates a new TCP server dispatching frames to handlers by message type
func NewTCPServer(
	handlers map[byte]primary.MessageHandler,
	logger primary.Logger,
	options ...TCPServerOption,
) *TCPServer {
	ctx, cancel := context.WithCancel(context.Background())
	server := &TCPServer{
		address:       ":9000", // Default address
		readTimeout:   defs.DefaultHopTimeout,
		logger:        logger,
		connectionMgr: connectionmanager.NewConnectionManager(logger),
		stopCh:        make(chan struct{}),
		baseCtx:       ctx,
		cancel:        cancel,
		handlers:      handlers,
	}

	// Apply options
	for _, option := range options {
		option(server)
	}

	return server
}

// NewCoordinatorServer creates the coordinator's server: it registers satellites and relays
// job requests to them
func NewCoordinatorServer(
	satelliteService satellite.ISatelliteService,
	dispatcher *dispatch.Dispatcher,
	logger primary.Logger,
	options ...TCPServerOption,
) *TCPServer {
	return NewTCPServer(map[byte]primary.MessageHandler{
		defs.MsgRegisterSatellite: &handlers.SatelliteRegistrationHandler{SatelliteService: satelliteService, Logger: logger},
		defs.MsgJobRequest:        handlers.NewTCPJobRequestHandler(dispatcher, logger),
	}, logger, options...)
}

// Start starts the TCP server
func (s *TCPServer) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}

	s.logger.Info("TCP server listening", "address", s.listener.Addr().String())

	// Accept connections in a goroutine
	go s.acceptConnections()

	return nil
}

// Addr returns the bound address; only valid after Start
func (s *TCPServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Stop stops accepting, closes in-flight connections and waits for their handlers until ctx ends
func (s *TCPServer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.acceptMu.Lock()
		close(s.stopCh)
		s.acceptMu.Unlock()
		s.cancel()

		// Close listener
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				s.logger.Error("Failed to close listener", "error", err)
			}
		}
	})

	// Close all connections
	if n := s.connectionMgr.Count(); n > 0 {
		s.logger.Info("Closing in-flight connections", "count", n)
	}
	s.connectionMgr.CloseAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// acceptConnections accepts incoming connections
func (s *TCPServer) acceptConnections() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				s.logger.Error("Failed to accept connection", "error", err)
				time.Sleep(defs.ConnectionRetryDelay) // Avoid tight loop on error
				continue
			}
		}

		connID, ok := s.admit(conn)
		if !ok {
			_ = conn.Close()
			return
		}

		// Handle connection in a goroutine
		go s.handleConnection(conn, connID)
	}
}

// admit counts and tracks conn unless Stop has begun, so Stop either sees the connection
// or the connection sees Stop
func (s *TCPServer) admit(conn net.Conn) (string, bool) {
	s.acceptMu.Lock()
	defer s.acceptMu.Unlock()

	select {
	case <-s.stopCh:
		return "", false
	default:
	}

	s.wg.Add(1)
	return s.connectionMgr.Track(conn), true
}

// handleConnection reads one message and hands it to the matching handler
func (s *TCPServer) handleConnection(conn net.Conn, connID string) {
	defer s.wg.Done()
	defer conn.Close()
	defer s.connectionMgr.Release(connID)

	if s.readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}

	frame, err := codec.ReadFrame(conn)
	if err != nil {
		if errors.Is(err, domain.ErrProtocol) {
			s.logger.Error("Rejected malformed message", "remote", conn.RemoteAddr().String(), "error", err)
			codec.SendErrorMessage(conn, err)
		} else if !errors.Is(err, io.EOF) {
			s.logger.Error("Failed to read message", "remote", conn.RemoteAddr().String(), "error", err)
		}
		return
	}

	// Find handler for message type
	handler, exists := s.handlers[frame.Type]
	if !exists {
		s.logger.Warn("Message type not implemented", "type", defs.MessageTypeName(frame.Type))
		codec.SendErrorMessage(conn, fmt.Errorf("%w: %s", domain.ErrUnimplementedMessage, defs.MessageTypeName(frame.Type)))
		return
	}

	// Handlers bound their own outbound hops
	_ = conn.SetReadDeadline(time.Time{})

	if err := handler.HandleMessage(s.baseCtx, conn, frame.Payload); err != nil {
		s.logger.Error("Error handling message", "type", defs.MessageTypeName(frame.Type), "connID", connID, "error", err)
	}
}
