package connections

import (
	"sync"
	"time"

	"github.com/forgeapp/forge/pkg/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// TimeoutConfig holds the various timeout settings for WebSocket connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   60 * time.Second,
	PingPeriod: 54 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

// Connection is a tracked WebSocket. gorilla/websocket allows one
// concurrent writer, so every write goes through WriteJSON or Ping.
type Connection struct {
	ID          string
	SessionID   string
	ConnectedAt time.Time

	conn      *websocket.Conn
	writeWait time.Duration
	writeMu   sync.Mutex
}

func (c *Connection) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *Connection) Ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait))
}

// Manager handles WebSocket connection lifecycle
type Manager struct {
	connections sync.Map
	mu          sync.RWMutex
	timeouts    TimeoutConfig
}

// NewManager creates a new connection manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		timeouts: timeouts,
	}
}

// AddConnection registers conn for sessionID and returns its handle.
func (m *Manager) AddConnection(conn *websocket.Conn, sessionID string) *Connection {
	c := &Connection{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		ConnectedAt: time.Now(),
		conn:        conn,
		writeWait:   m.GetTimeouts().WriteWait,
	}
	if _, loaded := m.connections.LoadOrStore(conn, c); !loaded {
		metrics.WebSocketConnections.Inc()
	}
	return c
}

// RemoveConnection removes a WebSocket connection
func (m *Manager) RemoveConnection(conn *websocket.Conn) {
	if _, loaded := m.connections.LoadAndDelete(conn); loaded {
		metrics.WebSocketConnections.Dec()
	}
}

// GetConnectionCount returns the current number of active connections
func (m *Manager) GetConnectionCount() int {
	count := 0
	m.connections.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}

// HasConnection checks if a specific connection exists
func (m *Manager) HasConnection(conn *websocket.Conn) bool {
	_, exists := m.connections.Load(conn)
	return exists
}

// SessionConnections counts the open connections of one session.
func (m *Manager) SessionConnections(sessionID string) int {
	count := 0
	m.connections.Range(func(key, value interface{}) bool {
		if value.(*Connection).SessionID == sessionID {
			count++
		}
		return true
	})
	return count
}

// GetTimeouts returns the current timeout configuration
func (m *Manager) GetTimeouts() TimeoutConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timeouts
}

// SetTimeouts updates the timeout configuration for new connections
func (m *Manager) SetTimeouts(timeouts TimeoutConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts = timeouts
}
