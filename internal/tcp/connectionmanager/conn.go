package connectionmanager

import (
	"net"
	"sync"

	"github.com/google/uuid"

	"gitlab.com/appserver.net/internal/core/ports/primary"
)

// ConnectionManager tracks the connections a server is currently handling so they can be
// closed on shutdown
type ConnectionManager struct {
	Connections map[string]net.Conn
	ConnMutex   sync.RWMutex
	Logger      primary.Logger
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(logger primary.Logger) *ConnectionManager {
	return &ConnectionManager{
		Connections: make(map[string]net.Conn),
		Logger:      logger,
	}
}

// Track records an accepted connection and returns its id
func (cm *ConnectionManager) Track(conn net.Conn) string {
	connID := uuid.NewString()

	cm.ConnMutex.Lock()
	cm.Connections[connID] = conn
	cm.ConnMutex.Unlock()

	return connID
}

// Release forgets a connection once its handler is done
func (cm *ConnectionManager) Release(connID string) {
	cm.ConnMutex.Lock()
	delete(cm.Connections, connID)
	cm.ConnMutex.Unlock()
}

// Count returns the number of connections in flight
func (cm *ConnectionManager) Count() int {
	cm.ConnMutex.RLock()
	defer cm.ConnMutex.RUnlock()

	return len(cm.Connections)
}

// CloseAll closes every tracked connection
func (cm *ConnectionManager) CloseAll() {
	cm.ConnMutex.Lock()
	defer cm.ConnMutex.Unlock()

	for connID, conn := range cm.Connections {
		if err := conn.Close(); err != nil {
			cm.Logger.Error("Failed to close connection", "connID", connID, "error", err)
		}
		delete(cm.Connections, connID)
	}
}
