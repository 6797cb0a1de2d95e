package livetest

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/aderemi/folionav/pkg/core"
	"github.com/aderemi/folionav/pkg/protocol"
	"github.com/aderemi/folionav/pkg/router"
	"github.com/aderemi/folionav/pkg/transport"
)

// DefaultTimeout bounds every wait for a server message.
var DefaultTimeout = 2 * time.Second

// Client plays the browser side of one live session.
type Client struct {
	t      *testing.T
	router *router.Router
	conn   *transport.MemoryTransport
	topic  string
	ref    int
}

// Connect registers factory on a fresh router and opens a session to it.
// The router shuts down when the test ends.
func Connect(t *testing.T, factory func() core.Component, opts ...router.Option) *Client {
	t.Helper()

	r, err := router.New(opts...)
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	r.Live("/", factory)

	conn := transport.NewMemoryTransport(nil)
	id, err := r.Connect(router.DefaultSocketPath, conn, nil, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	c := &Client{t: t, router: r, conn: conn, topic: "lv:" + id}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		r.Shutdown(ctx)
	})
	return c
}

// Router returns the router serving the session.
func (c *Client) Router() *router.Router {
	return c.router
}

// Join joins the session and returns the reply, failing the test on error.
func (c *Client) Join(payload map[string]any) *protocol.Message {
	c.t.Helper()

	reply, _ := c.Call(protocol.EventJoin, payload)
	if reply.Status() != protocol.StatusOK {
		c.t.Fatalf("join failed: %v", reply.Response())
	}
	return reply
}

// Push sends a ref-less event. The server does not reply to it.
func (c *Client) Push(event string, payload map[string]any) {
	c.t.Helper()
	if err := c.conn.Inject(protocol.NewMessage(c.topic, event).WithPayload(payload)); err != nil {
		c.t.Fatalf("push %s: %v", event, err)
	}
}

// Call sends an event with a ref and waits for its reply. Everything the
// server pushed before the reply is returned in order.
func (c *Client) Call(event string, payload map[string]any) (reply *protocol.Message, pushed []*protocol.Message) {
	c.t.Helper()

	c.ref++
	ref := strconv.Itoa(c.ref)
	if err := c.conn.Inject(protocol.NewMessage(c.topic, event).WithRef(ref).WithPayload(payload)); err != nil {
		c.t.Fatalf("call %s: %v", event, err)
	}

	for {
		msg := c.Next()
		if msg.Event == protocol.EventReply && msg.Ref == ref {
			return msg, pushed
		}
		pushed = append(pushed, msg)
	}
}

// Next returns the next message the server sent.
func (c *Client) Next() *protocol.Message {
	c.t.Helper()

	select {
	case msg := <-c.conn.Outgoing():
		return msg
	case <-time.After(DefaultTimeout):
		c.t.Fatal("timed out waiting for server message")
		return nil
	}
}

// Expect returns the next message and fails unless it carries event.
func (c *Client) Expect(event string) *protocol.Message {
	c.t.Helper()

	msg := c.Next()
	if msg.Event != event {
		c.t.Fatalf("expected %s, got %s %v", event, msg.Event, msg.Payload)
	}
	return msg
}

// Leave leaves the session and waits for the component to terminate.
func (c *Client) Leave() {
	c.t.Helper()

	reply, _ := c.Call(protocol.EventLeave, nil)
	if reply.Status() != protocol.StatusOK {
		c.t.Errorf("leave failed: %v", reply.Response())
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	if err := c.router.Shutdown(ctx); err != nil {
		c.t.Errorf("session did not end: %v", err)
	}
}

// Disconnect drops the connection without a leave.
func (c *Client) Disconnect() {
	c.conn.Close()
}
