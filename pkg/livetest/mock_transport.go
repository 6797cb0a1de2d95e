package livetest

import (
	"sync"

	"github.com/aderemi/folionav/pkg/core"
	"github.com/aderemi/folionav/pkg/protocol"
)

// MockTransport implements core.Transport and records what a component
// pushes through its socket.
type MockTransport struct {
	sent   []*protocol.Message
	closed bool

	mu sync.Mutex
}

// NewMockTransport creates a connected mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Send records a sent message.
func (mt *MockTransport) Send(msg *protocol.Message) error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.closed {
		return core.ErrSocketClosed
	}
	mt.sent = append(mt.sent, msg)
	return nil
}

// Close marks the transport as closed.
func (mt *MockTransport) Close() error {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.closed = true
	return nil
}

// IsConnected returns the connection status.
func (mt *MockTransport) IsConnected() bool {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return !mt.closed
}

// Sent returns a copy of all sent messages.
func (mt *MockTransport) Sent() []*protocol.Message {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	result := make([]*protocol.Message, len(mt.sent))
	copy(result, mt.sent)
	return result
}

// LastSent returns the last sent message, or nil.
func (mt *MockTransport) LastSent() *protocol.Message {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if len(mt.sent) == 0 {
		return nil
	}
	return mt.sent[len(mt.sent)-1]
}

// Commands returns the ops of every commands message, in order.
func (mt *MockTransport) Commands() []map[string]any {
	var ops []map[string]any
	for _, msg := range mt.Sent() {
		if msg.Event != protocol.EventCommands {
			continue
		}
		ops = append(ops, CommandOps(msg)...)
	}
	return ops
}

// Reset forgets sent messages and reopens the transport.
func (mt *MockTransport) Reset() {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.sent = nil
	mt.closed = false
}

// CommandOps extracts the op maps of a commands message. It accepts both
// in-process payloads and payloads decoded from the wire.
func CommandOps(msg *protocol.Message) []map[string]any {
	switch ops := msg.Payload["ops"].(type) {
	case []map[string]any:
		return ops
	case []any:
		out := make([]map[string]any, 0, len(ops))
		for _, op := range ops {
			if m, ok := op.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
