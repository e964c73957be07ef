package satellite

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/domain"
)

var _ ISatelliteService = &SatelliteService{}

// Registry is the descriptor table backing the service
type Registry interface {
	Register(descriptor domain.ConnectivityDescriptor) bool
	Lookup(name string) (domain.ConnectivityDescriptor, bool)
	List() []domain.ConnectivityDescriptor
}

// Balancer is the selection policy backing the service
type Balancer interface {
	SatelliteAdded(name string) bool
	NextSatellite() (string, error)
}

// SatelliteService keeps the registry and the balancer in agreement.
// Registration and selection run under one mutex so a selected name always resolves.
type SatelliteService struct {
	mu       sync.Mutex
	registry Registry
	balancer Balancer
	logger   primary.Logger
}

// NewSatelliteService creates a new satellite service
func NewSatelliteService(registry Registry, balancer Balancer, logger primary.Logger) *SatelliteService {
	return &SatelliteService{
		registry: registry,
		balancer: balancer,
		logger:   logger,
	}
}

// RegisterSatellite adds the satellite to the balancer and then to the registry
func (s *SatelliteService) RegisterSatellite(ctx context.Context, descriptor domain.ConnectivityDescriptor) (bool, error) {
	if err := descriptor.ValidateSatellite(); err != nil {
		s.logger.Error("Rejected satellite registration", "name", descriptor.Name, "error", err)
		return false, domain.NewProtocolError("invalid satellite descriptor", err)
	}

	s.mu.Lock()
	balanced := s.balancer.SatelliteAdded(descriptor.Name)
	registered := s.registry.Register(descriptor)
	s.mu.Unlock()

	if !registered {
		s.logger.Info("Satellite already registered", "name", descriptor.Name)
		return false, nil
	}
	if !balanced {
		// registry and balancer disagree only if something bypassed this service
		s.logger.Warn("Satellite was already in rotation", "name", descriptor.Name)
	}

	s.logger.Info("Satellite registered", "name", descriptor.Name, "address", descriptor.Address())
	return true, nil
}

// NextSatellite selects a satellite round robin and resolves its descriptor
func (s *SatelliteService) NextSatellite(ctx context.Context) (*domain.ConnectivityDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.balancer.NextSatellite()
	if err != nil {
		return nil, err
	}

	descriptor, exists := s.registry.Lookup(name)
	if !exists {
		return nil, domain.NewProtocolError(fmt.Sprintf("selected satellite %q is not registered", name), nil)
	}

	return &descriptor, nil
}

func (s *SatelliteService) GetSatellite(ctx context.Context, name string) (*domain.ConnectivityDescriptor, error) {
	descriptor, exists := s.registry.Lookup(name)
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrSatelliteNotFound, name)
	}
	return &descriptor, nil
}

func (s *SatelliteService) GetAllSatellites(ctx context.Context) ([]domain.ConnectivityDescriptor, error) {
	return s.registry.List(), nil
}
