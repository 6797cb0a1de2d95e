package transport

import (
	"context"

	"github.com/aderemi/folionav/pkg/protocol"
)

// MemoryTransport is an in-process Transport with no framing. The server
// side uses it like any connection; the other side feeds it with Inject
// and reads what the server sent from Outgoing.
type MemoryTransport struct {
	*BaseTransport
}

// NewMemoryTransport creates a connected in-memory transport.
func NewMemoryTransport(config *TransportConfig) *MemoryTransport {
	t := &MemoryTransport{BaseTransport: NewBaseTransport(config)}
	t.SetConnected(true)
	return t
}

// Connect marks the transport connected. It fails once closed.
func (t *MemoryTransport) Connect(ctx context.Context) error {
	select {
	case <-t.Done():
		return ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	t.SetConnected(true)
	return nil
}

// Send queues a message for the peer.
func (t *MemoryTransport) Send(msg *protocol.Message) error {
	return t.Enqueue(msg)
}

// Inject delivers msg as if the peer had sent it.
func (t *MemoryTransport) Inject(msg *protocol.Message) error {
	return t.PushMessage(msg)
}
