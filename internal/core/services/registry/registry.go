// Package registry holds the coordinator's table of registered satellites.
package registry

import (
	"sync"

	"gitlab.com/appserver.net/internal/domain"
)

// SatelliteRegistry maps satellite names to their connectivity descriptors.
// Entries are inserted once and never updated or removed.
type SatelliteRegistry struct {
	mu         sync.RWMutex
	satellites map[string]domain.ConnectivityDescriptor
	order      []string // registration order, for listing only
}

// NewSatelliteRegistry creates an empty registry
func NewSatelliteRegistry() *SatelliteRegistry {
	return &SatelliteRegistry{
		satellites: make(map[string]domain.ConnectivityDescriptor),
	}
}

// Register inserts descriptor under its name if absent.
// It returns false when the name was already registered; the stored entry is left untouched.
func (r *SatelliteRegistry) Register(descriptor domain.ConnectivityDescriptor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.satellites[descriptor.Name]; exists {
		return false
	}

	r.satellites[descriptor.Name] = descriptor
	r.order = append(r.order, descriptor.Name)
	return true
}

// Lookup returns the descriptor registered under name
func (r *SatelliteRegistry) Lookup(name string) (domain.ConnectivityDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptor, exists := r.satellites[name]
	return descriptor, exists
}

// List returns a snapshot of all descriptors in registration order
func (r *SatelliteRegistry) List() []domain.ConnectivityDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]domain.ConnectivityDescriptor, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.satellites[name])
	}
	return list
}
