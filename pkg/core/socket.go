package core

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aderemi/folionav/pkg/protocol"
)

// Common socket errors.
var (
	ErrSocketClosed = errors.New("socket is closed")
	ErrSendFailed   = errors.New("failed to send message")
)

// Transport is the connection a socket writes to.
type Transport interface {
	Send(msg *protocol.Message) error
	Close() error
	IsConnected() bool
}

// Socket is the server side of one live connection.
type Socket struct {
	id string

	connected bool

	// Unix nanoseconds
	lastActivity atomic.Int64

	transport Transport

	mu sync.RWMutex
}

// NewSocket creates a new socket with the given ID and transport.
func NewSocket(id string, transport Transport) *Socket {
	now := time.Now()
	s := &Socket{
		id:        id,
		connected: true,
		transport: transport,
	}
	s.lastActivity.Store(now.UnixNano())
	return s
}

// ID returns the socket's unique identifier.
func (s *Socket) ID() string {
	return s.id
}

// Topic returns the channel topic for this socket.
func (s *Socket) Topic() string {
	return "lv:" + s.id
}

// IsConnected returns true if the socket is connected.
func (s *Socket) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected && s.transport != nil && s.transport.IsConnected()
}

// LastActivity returns the time of last activity.
func (s *Socket) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// UpdateActivity updates the last activity timestamp.
func (s *Socket) UpdateActivity() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// Send sends a message to the client.
func (s *Socket) Send(msg *protocol.Message) error {
	s.mu.RLock()
	connected := s.connected
	transport := s.transport
	s.mu.RUnlock()

	if !connected || transport == nil || !transport.IsConnected() {
		return ErrSocketClosed
	}

	s.lastActivity.Store(time.Now().UnixNano())

	if err := transport.Send(msg); err != nil {
		s.mu.RLock()
		stillConnected := s.connected
		s.mu.RUnlock()
		if !stillConnected {
			return ErrSocketClosed
		}
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	return nil
}

// Push sends an event to the client on the socket's topic.
func (s *Socket) Push(event string, payload map[string]any) error {
	return s.Send(protocol.NewMessage(s.Topic(), event).WithPayload(payload))
}

// PushCommands sends an ordered list of client operations.
func (s *Socket) PushCommands(ops any) error {
	return s.Send(protocol.CommandsMessage(s.Topic(), ops))
}

// DiffPayload is the slot diff sent to clients.
type DiffPayload struct {
	Version   uint64            `json:"v"`           // ordering on the client
	Slots     map[string]string `json:"s,omitempty"` // text-only slots
	HTMLSlots map[string]string `json:"h,omitempty"` // innerHTML slots
	Full      string            `json:"f,omitempty"` // full render fallback

	// Snapshot rides along with a diff but never makes one non-empty.
	Snapshot string `json:"snap,omitempty"`
}

// IsEmpty returns true if the payload has no changes.
func (d *DiffPayload) IsEmpty() bool {
	return len(d.Slots) == 0 && len(d.HTMLSlots) == 0 && d.Full == ""
}

// SendDiff sends a diff payload to the client. Empty payloads are dropped.
func (s *Socket) SendDiff(payload *DiffPayload) error {
	if payload == nil || payload.IsEmpty() {
		return nil
	}

	body := map[string]any{"v": payload.Version}
	if len(payload.Slots) > 0 {
		body["s"] = payload.Slots
	}
	if len(payload.HTMLSlots) > 0 {
		body["h"] = payload.HTMLSlots
	}
	if payload.Full != "" {
		body["f"] = payload.Full
	}
	if payload.Snapshot != "" {
		body["snap"] = payload.Snapshot
	}
	return s.Push(protocol.EventDiff, body)
}

// Close closes the socket connection.
func (s *Socket) Close() error {
	s.mu.Lock()
	s.connected = false
	transport := s.transport
	s.mu.Unlock()

	if transport != nil {
		return transport.Close()
	}
	return nil
}

// SocketManager tracks all active sockets.
type SocketManager struct {
	sockets map[string]*Socket
	mu      sync.RWMutex
}

// NewSocketManager creates a new socket manager.
func NewSocketManager() *SocketManager {
	return &SocketManager{
		sockets: make(map[string]*Socket),
	}
}

// Add registers a socket.
func (sm *SocketManager) Add(socket *Socket) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sockets[socket.ID()] = socket
}

// Remove unregisters a socket.
func (sm *SocketManager) Remove(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sockets, id)
}

// Get retrieves a socket by ID.
func (sm *SocketManager) Get(id string) (*Socket, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sockets[id]
	return s, ok
}

// Count returns the number of active sockets.
func (sm *SocketManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sockets)
}

// All returns all sockets.
func (sm *SocketManager) All() []*Socket {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	result := make([]*Socket, 0, len(sm.sockets))
	for _, s := range sm.sockets {
		result = append(result, s)
	}
	return result
}

// Inactive returns sockets idle for longer than maxInactive.
func (sm *SocketManager) Inactive(maxInactive time.Duration) []*Socket {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	now := time.Now()
	var idle []*Socket
	for _, s := range sm.sockets {
		if now.Sub(s.LastActivity()) > maxInactive {
			idle = append(idle, s)
		}
	}
	return idle
}

