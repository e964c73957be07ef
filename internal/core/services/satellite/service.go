package satellite

import (
	"context"

	"gitlab.com/appserver.net/internal/domain"
)

// ISatelliteService is the coordinator's view of its satellite fleet
type ISatelliteService interface {
	// RegisterSatellite makes a satellite selectable. Re-registering a known name is a no-op
	// reported as added == false.
	RegisterSatellite(ctx context.Context, descriptor domain.ConnectivityDescriptor) (added bool, err error)

	// NextSatellite picks the satellite that receives the next job
	NextSatellite(ctx context.Context) (*domain.ConnectivityDescriptor, error)

	// GetSatellite looks up a registered satellite by name
	GetSatellite(ctx context.Context, name string) (*domain.ConnectivityDescriptor, error)

	// GetAllSatellites lists registered satellites in registration order
	GetAllSatellites(ctx context.Context) ([]domain.ConnectivityDescriptor, error)
}
