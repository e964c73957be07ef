package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/appserver.net/internal/domain"
)

func TestRegister_InsertOnce(t *testing.T) {
	r := NewSatelliteRegistry()

	first := domain.NewConnectivityDescriptor("Earth", "10.0.0.1", 5001)
	assert.True(t, r.Register(first))

	// a second registration under the same name keeps the first entry
	assert.False(t, r.Register(domain.NewConnectivityDescriptor("Earth", "10.0.0.2", 6001)))

	got, ok := r.Lookup("Earth")
	require.True(t, ok)
	assert.Equal(t, first, got)
	assert.Len(t, r.List(), 1)
}

func TestLookup_NotFound(t *testing.T) {
	r := NewSatelliteRegistry()

	_, ok := r.Lookup("Mars")
	assert.False(t, ok)
}

func TestList_RegistrationOrder(t *testing.T) {
	r := NewSatelliteRegistry()
	for _, name := range []string{"Venus", "Earth", "Mercury"} {
		r.Register(domain.NewConnectivityDescriptor(name, "localhost", 5000))
	}

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "Venus", list[0].Name)
	assert.Equal(t, "Earth", list[1].Name)
	assert.Equal(t, "Mercury", list[2].Name)
}

func TestRegister_Concurrent(t *testing.T) {
	r := NewSatelliteRegistry()

	var wg sync.WaitGroup
	var mu sync.Mutex
	added := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("sat-%d", i%10)
			if r.Register(domain.NewConnectivityDescriptor(name, "localhost", 5000+i)) {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, added)
	assert.Len(t, r.List(), 10)
}
