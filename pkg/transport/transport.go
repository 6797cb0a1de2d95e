// Package transport provides the connection layer between the live router
// and a browser (or test) client. Messages are *protocol.Message values
// framed by a protocol.Codec.
package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aderemi/folionav/pkg/protocol"
)

// Common transport errors.
var (
	ErrNotConnected     = errors.New("transport not connected")
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendTimeout      = errors.New("send timeout")
	ErrTransportFull    = errors.New("transport buffer full")
)

// Transport is a bidirectional message stream.
type Transport interface {
	// Connect establishes the connection (client side).
	Connect(ctx context.Context) error

	// Send queues a message for the peer.
	Send(msg *protocol.Message) error

	// Receive returns the channel of incoming messages.
	Receive() <-chan *protocol.Message

	// Done is closed once the transport has shut down.
	Done() <-chan struct{}

	// Close terminates the connection.
	Close() error

	// IsConnected returns true if connected.
	IsConnected() bool
}

// TransportConfig holds common transport configuration.
type TransportConfig struct {
	// ReadTimeout bounds a single read. Clients heartbeat well inside it.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single write and a blocked Send.
	WriteTimeout time.Duration

	// PingInterval is how often WebSocket pings are sent.
	PingInterval time.Duration

	// MaxMessageSize is the maximum frame size in bytes.
	MaxMessageSize int64

	SendBufferSize    int
	ReceiveBufferSize int

	// Codec frames messages on the wire. Nil means JSON.
	Codec protocol.Codec
}

// DefaultTransportConfig returns sensible defaults.
func DefaultTransportConfig() *TransportConfig {
	return &TransportConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		MaxMessageSize:    64 * 1024,
		SendBufferSize:    64,
		ReceiveBufferSize: 64,
		Codec:             protocol.NewJSONCodec(),
	}
}

// BaseTransport provides the channels and connection flag shared by
// transports.
type BaseTransport struct {
	config    *TransportConfig
	connected bool
	sendCh    chan *protocol.Message
	recvCh    chan *protocol.Message
	closeCh   chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
}

// NewBaseTransport creates a new base transport.
func NewBaseTransport(config *TransportConfig) *BaseTransport {
	if config == nil {
		config = DefaultTransportConfig()
	}
	if config.Codec == nil {
		config.Codec = protocol.NewJSONCodec()
	}
	return &BaseTransport{
		config:  config,
		sendCh:  make(chan *protocol.Message, config.SendBufferSize),
		recvCh:  make(chan *protocol.Message, config.ReceiveBufferSize),
		closeCh: make(chan struct{}),
	}
}

// Config returns the transport configuration.
func (t *BaseTransport) Config() *TransportConfig {
	return t.config
}

// IsConnected returns the connection status.
func (t *BaseTransport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

// SetConnected updates the connection status.
func (t *BaseTransport) SetConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = connected
}

// Receive returns the receive channel.
func (t *BaseTransport) Receive() <-chan *protocol.Message {
	return t.recvCh
}

// Outgoing returns the queue of messages waiting to be written.
func (t *BaseTransport) Outgoing() <-chan *protocol.Message {
	return t.sendCh
}

// Done returns the close channel.
func (t *BaseTransport) Done() <-chan struct{} {
	return t.closeCh
}

// Close closes the base transport channels.
func (t *BaseTransport) Close() error {
	t.closeOnce.Do(func() {
		t.SetConnected(false)
		close(t.closeCh)
	})
	return nil
}

// Enqueue puts a message on the send queue, waiting at most WriteTimeout.
func (t *BaseTransport) Enqueue(msg *protocol.Message) error {
	if !t.IsConnected() {
		return ErrNotConnected
	}

	timer := time.NewTimer(t.config.WriteTimeout)
	defer timer.Stop()

	select {
	case t.sendCh <- msg:
		return nil
	case <-t.closeCh:
		return ErrConnectionClosed
	case <-timer.C:
		return ErrSendTimeout
	}
}

// PushMessage delivers an incoming message without blocking.
func (t *BaseTransport) PushMessage(msg *protocol.Message) error {
	select {
	case t.recvCh <- msg:
		return nil
	case <-t.closeCh:
		return ErrConnectionClosed
	default:
		return ErrTransportFull
	}
}

// deliver delivers an incoming message, waiting for room in the receive
// queue. It returns false once the transport is closed.
func (t *BaseTransport) deliver(msg *protocol.Message) bool {
	select {
	case t.recvCh <- msg:
		return true
	case <-t.closeCh:
		return false
	}
}
