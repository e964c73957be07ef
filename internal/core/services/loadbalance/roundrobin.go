// Package loadbalance picks the satellite that receives the next job.
package loadbalance

import (
	"sync"

	"gitlab.com/appserver.net/internal/domain"
)

// RoundRobin cycles through satellites in registration order.
//
// The cursor always points at the next satellite to hand out. Satellites added while a cycle is
// in progress go to the end of the rotation and the cursor is left where it is.
type RoundRobin struct {
	mu     sync.Mutex
	order  []string
	cursor int // valid only when len(order) > 0
}

// NewRoundRobin creates a balancer with no satellites
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// SatelliteAdded appends name to the rotation if it is not already part of it.
// It returns false for a duplicate.
func (lb *RoundRobin) SatelliteAdded(name string) bool {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	for _, existing := range lb.order {
		if existing == name {
			return false
		}
	}

	lb.order = append(lb.order, name)
	if len(lb.order) == 1 {
		lb.cursor = 0
	}
	return true
}

// NextSatellite returns the satellite whose turn it is and advances the cursor.
// It fails with domain.ErrNoSatellitesAvailable when nothing has been added.
func (lb *RoundRobin) NextSatellite() (string, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.order) == 0 {
		return "", domain.ErrNoSatellitesAvailable
	}

	name := lb.order[lb.cursor]
	lb.cursor = (lb.cursor + 1) % len(lb.order)
	return name, nil
}
