package router

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/aderemi/folionav/pkg/core"
	"github.com/aderemi/folionav/pkg/protocol"
)

// Session errors.
var (
	ErrTooManySessions = errors.New("too many live sessions")
	ErrNotJoined       = errors.New("event before join")
)

// Conn is the connection a session reads from and writes to.
type Conn interface {
	core.Transport
	Receive() <-chan *protocol.Message
	Done() <-chan struct{}
}

// Session binds one component instance to one connection. All of its
// component calls happen on the session's own goroutine.
type Session struct {
	ID        string
	Component core.Component
	Socket    *core.Socket
	Params    core.Params
	Data      core.Session
	CreatedAt time.Time

	conn Conn
	info chan any

	joined  bool
	version uint64

	// Per-session slot state for diffing
	slotHashes map[string]uint64

	closing bool
	reason  core.TerminateReason

	mu sync.Mutex
}

func newSession(id string, comp core.Component, conn Conn, params core.Params, data core.Session) *Session {
	return &Session{
		ID:        id,
		Component: comp,
		Socket:    core.NewSocket(id, conn),
		Params:    params,
		Data:      data,
		CreatedAt: time.Now(),
		conn:      conn,
		info:      make(chan any, 8),
		reason:    core.TerminateDisconnect,
	}
}

// Joined reports whether the component has been mounted over the socket.
func (s *Session) Joined() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined
}

func (s *Session) setJoined() {
	s.mu.Lock()
	s.joined = true
	s.mu.Unlock()
}

// Send queues info for the component's HandleInfo. It never blocks; a full
// queue drops the message and returns false.
func (s *Session) Send(info any) bool {
	select {
	case s.info <- info:
		return true
	default:
		return false
	}
}

// close records why the session ends and closes its connection. The first
// reason wins.
func (s *Session) close(reason core.TerminateReason) {
	s.mu.Lock()
	if !s.closing {
		s.closing = true
		s.reason = reason
	}
	s.mu.Unlock()

	s.conn.Close()
}

func (s *Session) terminateReason() core.TerminateReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// diff compares html's slots with the previous render and returns the
// changed ones. Without any slots the whole render is sent.
func (s *Session) diff(html string) *core.DiffPayload {
	textSlots, htmlSlots := extractSlotsOptimized(html)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	payload := &core.DiffPayload{
		Version:   s.version,
		Slots:     make(map[string]string),
		HTMLSlots: make(map[string]string),
	}

	prev := s.slotHashes
	next := make(map[string]uint64, len(textSlots)+len(htmlSlots))

	for id, content := range textSlots {
		hash := hashSlotContent(content)
		next[id] = hash
		if prev == nil || prev[id] != hash {
			payload.Slots[id] = content
		}
	}
	for id, content := range htmlSlots {
		hash := hashSlotContent(content)
		next[id] = hash
		if prev == nil || prev[id] != hash {
			payload.HTMLSlots[id] = content
		}
	}
	s.slotHashes = next

	if len(textSlots) == 0 && len(htmlSlots) == 0 {
		payload.Full = html
	}
	return payload
}

// hashSlotContent computes the FNV-64a hash of content.
func hashSlotContent(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(content))
	return h.Sum64()
}

type sessionKey struct{}

func withSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the live session handling the current message.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// SessionManager tracks the live sessions of a router.
type SessionManager struct {
	sessions    map[string]*Session
	maxSessions int // 0 = unlimited
	mu          sync.RWMutex
}

// NewSessionManager creates a manager holding at most maxSessions.
func NewSessionManager(maxSessions int) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
	}
}

// Add registers a session.
func (m *SessionManager) Add(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return ErrTooManySessions
	}
	m.sessions[s.ID] = s
	return nil
}

// Get returns a session by ID.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove unregisters a session.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// All returns every live session.
func (m *SessionManager) All() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	return result
}
