// Package satellite runs a worker node: it listens for job requests relayed by the coordinator,
// resolves the requested tool and answers with its result.
package satellite

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/tcp"
	"gitlab.com/appserver.net/internal/tcp/client"
	"gitlab.com/appserver.net/internal/tcp/defs"
	"gitlab.com/appserver.net/internal/tcp/handlers"
)

// Satellite is one worker node
type Satellite struct {
	self        domain.ConnectivityDescriptor
	coordinator string
	hopTimeout  time.Duration
	waitAck     bool
	resolver    handlers.ToolResolver
	server      *tcp.TCPServer
	logger      primary.Logger
}

// Option configures a Satellite
type Option func(*Satellite)

// WithHopTimeout bounds reading a request and registering with the coordinator
func WithHopTimeout(timeout time.Duration) Option {
	return func(s *Satellite) {
		s.hopTimeout = timeout
	}
}

// WithRegistrationAck makes Start wait for the coordinator's REGISTER_ACK
func WithRegistrationAck() Option {
	return func(s *Satellite) {
		s.waitAck = true
	}
}

// New creates a satellite that will announce self to the coordinator at coordinatorAddress
func New(
	self domain.ConnectivityDescriptor,
	coordinatorAddress string,
	resolver handlers.ToolResolver,
	logger primary.Logger,
	options ...Option,
) *Satellite {
	s := &Satellite{
		self:        self,
		coordinator: coordinatorAddress,
		hopTimeout:  defs.DefaultHopTimeout,
		resolver:    resolver,
		logger:      logger,
	}

	for _, option := range options {
		option(s)
	}

	s.server = tcp.NewTCPServer(map[byte]primary.MessageHandler{
		defs.MsgJobRequest: &handlers.JobExecutionHandler{Resolver: resolver, Logger: logger},
	}, logger,
		tcp.WithAddress(net.JoinHostPort(self.Host, strconv.Itoa(self.Port))),
		tcp.WithReadTimeout(s.hopTimeout),
	)

	return s
}

// Start binds the listening socket and then registers with the coordinator, so the
// coordinator never learns of a satellite it cannot dial. A zero port is replaced by the
// port actually bound. A failed fire-and-forget registration is logged, not retried.
func (s *Satellite) Start(ctx context.Context) error {
	if err := s.server.Start(); err != nil {
		return err
	}

	if tcpAddr, ok := s.server.Addr().(*net.TCPAddr); ok && s.self.Port == 0 {
		s.self.Port = tcpAddr.Port
	}

	if err := s.self.ValidateSatellite(); err != nil {
		_ = s.server.Stop(ctx)
		return err
	}

	s.logger.Info("Registering with coordinator", "satellite", s.self.Name, "address", s.self.Address(), "coordinator", s.coordinator)

	ack, err := client.NewClient(s.coordinator, client.WithTimeout(s.hopTimeout)).Register(ctx, s.self, s.waitAck)
	if err != nil {
		if s.waitAck {
			_ = s.server.Stop(ctx)
			return fmt.Errorf("failed to register satellite %s: %w", s.self.Name, err)
		}
		s.logger.Error("Failed to register with coordinator", "satellite", s.self.Name, "error", err)
		return nil
	}

	if ack != nil {
		s.logger.Info("Registration acknowledged", "satellite", ack.Name, "added", ack.Added)
	}
	return nil
}

// Descriptor is the descriptor the satellite registered, with its bound port
func (s *Satellite) Descriptor() domain.ConnectivityDescriptor {
	return s.self
}

// Stop stops serving job requests
func (s *Satellite) Stop(ctx context.Context) error {
	s.logger.Info("Stopping satellite", "satellite", s.self.Name)
	return s.server.Stop(ctx)
}
