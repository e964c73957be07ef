package satellite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/appserver.net/internal/adapter/logging"
	"gitlab.com/appserver.net/internal/core/services/loadbalance"
	"gitlab.com/appserver.net/internal/core/services/registry"
	"gitlab.com/appserver.net/internal/domain"
)

func newTestService() *SatelliteService {
	return NewSatelliteService(registry.NewSatelliteRegistry(), loadbalance.NewRoundRobin(), logging.NewNopLogger())
}

func TestRegisterSatellite(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	added, err := svc.RegisterSatellite(ctx, domain.NewConnectivityDescriptor("Earth", "localhost", 5001))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.RegisterSatellite(ctx, domain.NewConnectivityDescriptor("Earth", "otherhost", 5002))
	require.NoError(t, err)
	assert.False(t, added)

	got, err := svc.GetSatellite(ctx, "Earth")
	require.NoError(t, err)
	assert.Equal(t, "localhost", got.Host)

	all, err := svc.GetAllSatellites(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRegisterSatellite_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		descriptor domain.ConnectivityDescriptor
	}{
		{name: "no name", descriptor: domain.NewConnectivityDescriptor("", "localhost", 5001)},
		{name: "no host", descriptor: domain.NewConnectivityDescriptor("Earth", "", 5001)},
		{name: "zero port", descriptor: domain.NewConnectivityDescriptor("Earth", "localhost", 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()

			added, err := svc.RegisterSatellite(context.Background(), tt.descriptor)
			assert.False(t, added)
			assert.ErrorIs(t, err, domain.ErrProtocol)

			_, err = svc.NextSatellite(context.Background())
			assert.ErrorIs(t, err, domain.ErrNoSatellitesAvailable)
		})
	}
}

func TestNextSatellite_RoundRobin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.NextSatellite(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSatellitesAvailable)

	for i, name := range []string{"A", "B", "C"} {
		_, err := svc.RegisterSatellite(ctx, domain.NewConnectivityDescriptor(name, "localhost", 5000+i+1))
		require.NoError(t, err)
	}

	var got []string
	for i := 0; i < 4; i++ {
		d, err := svc.NextSatellite(ctx)
		require.NoError(t, err)
		got = append(got, d.Name)
	}
	assert.Equal(t, []string{"A", "B", "C", "A"}, got)
}

// balancerOnly knows a name the registry never saw
type balancerOnly struct{}

func (balancerOnly) SatelliteAdded(string) bool { return true }
func (balancerOnly) NextSatellite() (string, error) { return "ghost", nil }

func TestNextSatellite_LookupMiss(t *testing.T) {
	svc := NewSatelliteService(registry.NewSatelliteRegistry(), balancerOnly{}, logging.NewNopLogger())

	_, err := svc.NextSatellite(context.Background())
	assert.ErrorIs(t, err, domain.ErrProtocol)
}

func TestGetSatellite_NotFound(t *testing.T) {
	_, err := newTestService().GetSatellite(context.Background(), "Pluto")
	assert.ErrorIs(t, err, domain.ErrSatelliteNotFound)
}
