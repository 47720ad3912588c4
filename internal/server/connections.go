package server

import (
	"sync"

	"github.com/coder/websocket"
)

// ConnectionManager maps connection ids to live sockets so room-level
// operations can notify members they didn't hear from directly. There is no
// session token layer: a connection id lives exactly as long as its socket,
// and a disconnect forfeits whatever room slot it held.
type ConnectionManager struct {
	connections map[string]*websocket.Conn // connectionID -> socket
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
	}
}

func (cm *ConnectionManager) AddConnection(id string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[id] = conn
}

func (cm *ConnectionManager) RemoveConnection(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.connections, id)
}

// GetConnection returns the socket for a connection id, or nil if it has
// already gone away.
func (cm *ConnectionManager) GetConnection(id string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connections[id]
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// CloseAll tells every live client the server is going away. Used during
// shutdown; the per-connection read loops handle their own table cleanup.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(cm.connections))
	for _, conn := range cm.connections {
		conns = append(conns, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range conns {
		conn.Close(websocket.StatusGoingAway, "Server shutting down")
	}
}
