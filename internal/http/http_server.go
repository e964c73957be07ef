package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/handlers"
)

// RouteRegistrar is implemented by every handler group
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

type Server struct {
	router      *mux.Router
	Port        int
	ServiceName string
	registrars  []RouteRegistrar
	logger      primary.Logger
	srv         *http.Server
	listener    net.Listener
}

func NewServer(port int, serviceName string, logger primary.Logger, registrars ...RouteRegistrar) *Server {
	return &Server{
		Port:        port,
		ServiceName: serviceName,
		registrars:  registrars,
		logger:      logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	r.Use(handlers.New(s.logger).RequestLogger)
	for _, registrar := range s.registrars {
		registrar.RegisterRoutes(r)
	}
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	s.router = r
	return nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the port and serves in the background
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		if err := s.Init(); err != nil {
			return err
		}
	}

	// Set up server
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	listener, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to start %s http server: %w", s.ServiceName, err)
	}
	s.listener = listener

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "service", s.ServiceName, "addr", listener.Addr().String())
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "service", s.ServiceName, "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address; only valid after Start
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down http server...", "service", s.ServiceName)
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
