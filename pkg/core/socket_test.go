package core

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aderemi/folionav/pkg/protocol"
)

// MockTransport implements Transport for testing.
type MockTransport struct {
	connected bool
	messages  []*protocol.Message
	mu        sync.Mutex
}

func NewMockTransport() *MockTransport {
	return &MockTransport{connected: true}
}

func (m *MockTransport) Send(msg *protocol.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrSocketClosed
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockTransport) Messages() []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*protocol.Message, len(m.messages))
	copy(result, m.messages)
	return result
}

// failingTransport reports connected but rejects every send.
type failingTransport struct{ MockTransport }

func (f *failingTransport) Send(*protocol.Message) error { return errors.New("buffer full") }

func TestNewSocket(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())

	if socket.ID() != "test-id" {
		t.Errorf("expected ID 'test-id', got '%s'", socket.ID())
	}
	if socket.Topic() != "lv:test-id" {
		t.Errorf("expected topic 'lv:test-id', got '%s'", socket.Topic())
	}
	if !socket.IsConnected() {
		t.Error("expected socket to be connected")
	}
}

func TestSocket_Push(t *testing.T) {
	transport := NewMockTransport()
	socket := NewSocket("test-id", transport)

	if err := socket.Push("custom", map[string]any{"key": "value"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	messages := transport.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Event != "custom" || messages[0].Topic != "lv:test-id" {
		t.Errorf("unexpected message: %+v", messages[0])
	}
}

func TestSocket_PushCommands(t *testing.T) {
	transport := NewMockTransport()
	socket := NewSocket("s", transport)

	ops := []string{"a", "b"}
	if err := socket.PushCommands(ops); err != nil {
		t.Fatal(err)
	}

	msg := transport.Messages()[0]
	if msg.Event != protocol.EventCommands {
		t.Errorf("expected commands event, got %s", msg.Event)
	}
	if got, ok := msg.Payload["ops"].([]string); !ok || len(got) != 2 {
		t.Errorf("expected ops in payload, got %#v", msg.Payload["ops"])
	}
}

func TestSocket_Send_Closed(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())

	socket.Close()

	if err := socket.Send(&protocol.Message{Event: "test"}); !errors.Is(err, ErrSocketClosed) {
		t.Errorf("expected ErrSocketClosed, got %v", err)
	}
	if socket.IsConnected() {
		t.Error("closed socket reports connected")
	}
}

func TestSocket_Send_Failure(t *testing.T) {
	socket := NewSocket("test-id", &failingTransport{MockTransport{connected: true}})

	if err := socket.Send(&protocol.Message{Event: "test"}); !errors.Is(err, ErrSendFailed) {
		t.Errorf("expected ErrSendFailed, got %v", err)
	}
}

func TestSocket_Send_Concurrent(t *testing.T) {
	transport := NewMockTransport()
	socket := NewSocket("test-id", transport)

	const goroutines = 50
	const messagesPerGoroutine = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < messagesPerGoroutine; j++ {
				socket.Send(&protocol.Message{
					Event:   "test",
					Payload: map[string]any{"id": id, "msg": j},
				})
			}
		}(i)
	}

	wg.Wait()

	if got := len(transport.Messages()); got != goroutines*messagesPerGoroutine {
		t.Errorf("expected %d messages, got %d", goroutines*messagesPerGoroutine, got)
	}
}

func TestSocket_LastActivity(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())

	initial := socket.LastActivity()
	time.Sleep(10 * time.Millisecond)
	socket.Send(&protocol.Message{Event: "test"})

	if !socket.LastActivity().After(initial) {
		t.Error("expected LastActivity to be updated after Send")
	}
}

func TestSocket_SendDiff(t *testing.T) {
	tests := []struct {
		name    string
		payload *DiffPayload
		keys    []string
	}{
		{"full render", &DiffPayload{Version: 1, Full: "<nav>x</nav>"}, []string{"v", "f"}},
		{"text slots", &DiffPayload{Version: 2, Slots: map[string]string{"brand": "Azeez"}}, []string{"v", "s"}},
		{"html slots", &DiffPayload{Version: 3, HTMLSlots: map[string]string{"nav-links": "<a>About</a>"}}, []string{"v", "h"}},
		{"with snapshot", &DiffPayload{Version: 4, Slots: map[string]string{"brand": "Azeez"}, Snapshot: "AJM"}, []string{"v", "s", "snap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := NewMockTransport()
			socket := NewSocket("test-id", transport)

			if err := socket.SendDiff(tt.payload); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			messages := transport.Messages()
			if len(messages) != 1 {
				t.Fatalf("expected 1 message, got %d", len(messages))
			}
			if messages[0].Event != protocol.EventDiff {
				t.Errorf("expected event 'diff', got '%s'", messages[0].Event)
			}
			if len(messages[0].Payload) != len(tt.keys) {
				t.Errorf("expected keys %v, got %v", tt.keys, messages[0].Payload)
			}
			for _, k := range tt.keys {
				if _, ok := messages[0].Payload[k]; !ok {
					t.Errorf("missing key %q", k)
				}
			}
		})
	}
}

func TestSocket_SendDiff_Empty(t *testing.T) {
	transport := NewMockTransport()
	socket := NewSocket("test-id", transport)

	if err := socket.SendDiff(nil); err != nil {
		t.Errorf("expected no error for nil diff, got %v", err)
	}
	if err := socket.SendDiff(&DiffPayload{Version: 1}); err != nil {
		t.Errorf("expected no error for empty diff, got %v", err)
	}
	if len(transport.Messages()) != 0 {
		t.Error("expected no messages for empty diffs")
	}
}

func TestDiffPayload_IsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		payload  *DiffPayload
		expected bool
	}{
		{"nil slots", &DiffPayload{}, true},
		{"with text slots", &DiffPayload{Slots: map[string]string{"a": "1"}}, false},
		{"with html slots", &DiffPayload{HTMLSlots: map[string]string{"a": "1"}}, false},
		{"with full", &DiffPayload{Full: "<div>"}, false},
		{"snapshot only", &DiffPayload{Snapshot: "AJM"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.payload.IsEmpty(); got != tt.expected {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSocketManager_Add_Remove(t *testing.T) {
	sm := NewSocketManager()

	sm.Add(NewSocket("socket-1", NewMockTransport()))
	sm.Add(NewSocket("socket-2", NewMockTransport()))

	if sm.Count() != 2 {
		t.Errorf("expected count 2, got %d", sm.Count())
	}

	s, ok := sm.Get("socket-1")
	if !ok || s.ID() != "socket-1" {
		t.Error("expected to find socket-1")
	}

	sm.Remove("socket-1")

	if sm.Count() != 1 {
		t.Errorf("expected count 1, got %d", sm.Count())
	}
	if _, ok := sm.Get("socket-1"); ok {
		t.Error("expected socket-1 to be removed")
	}
	if len(sm.All()) != 1 {
		t.Error("expected All to return the remaining socket")
	}
}

func TestSocketManager_Inactive(t *testing.T) {
	sm := NewSocketManager()

	for i := 0; i < 3; i++ {
		sm.Add(NewSocket(fmt.Sprintf("old-%d", i), NewMockTransport()))
	}

	time.Sleep(60 * time.Millisecond)

	for i := 0; i < 2; i++ {
		sm.Add(NewSocket(fmt.Sprintf("fresh-%d", i), NewMockTransport()))
	}

	if idle := sm.Inactive(30 * time.Millisecond); len(idle) != 3 {
		t.Errorf("expected 3 idle sockets, got %d", len(idle))
	}
}

// Race detection test - run with -race flag
func TestSocket_RaceCondition(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())

	var ops atomic.Int64
	const iterations = 500

	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				socket.Send(&protocol.Message{Event: "test"})
				ops.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				socket.UpdateActivity()
				ops.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				_ = socket.LastActivity()
				_ = socket.IsConnected()
				ops.Add(1)
			}
		}()
	}

	wg.Wait()

	if ops.Load() != int64(15*iterations) {
		t.Errorf("expected %d operations, got %d", 15*iterations, ops.Load())
	}
}

func BenchmarkSocket_Send(b *testing.B) {
	socket := NewSocket("bench-id", NewMockTransport())
	msg := &protocol.Message{Event: "test", Payload: map[string]any{"key": "value"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		socket.Send(msg)
	}
}
