// Package livetest provides testing utilities for live components.
// Mount drives a component directly without a router; Connect drives it
// through a real router session over an in-memory transport.
package livetest

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/aderemi/folionav/pkg/core"
)

// LiveTest is a testing harness for a mounted component.
type LiveTest struct {
	component core.Component
	transport *MockTransport
	socket    *core.Socket
	rendered  string
	params    core.Params
	session   core.Session
	t         *testing.T
}

// MountOption configures the test mount.
type MountOption func(*LiveTest)

// WithParams sets mount parameters.
func WithParams(params core.Params) MountOption {
	return func(lt *LiveTest) {
		lt.params = params
	}
}

// WithSession sets session data.
func WithSession(session core.Session) MountOption {
	return func(lt *LiveTest) {
		lt.session = session
	}
}

// Mount mounts comp on a mock socket and renders it once.
func Mount(t *testing.T, comp core.Component, opts ...MountOption) *LiveTest {
	t.Helper()

	lt := &LiveTest{
		component: comp,
		transport: NewMockTransport(),
		params:    core.Params{},
		session:   core.Session{},
		t:         t,
	}
	for _, opt := range opts {
		opt(lt)
	}

	lt.socket = core.NewSocket("test-"+uuid.NewString()[:8], lt.transport)
	if sa, ok := comp.(core.SocketAware); ok {
		sa.SetSocket(lt.socket)
	}

	if err := comp.Mount(lt.context(), lt.params, lt.session); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	lt.render()
	return lt
}

func (lt *LiveTest) context() context.Context {
	return core.BuildContext(context.Background(), lt.socket, lt.component, lt.session, lt.params)
}

// Event sends a client event to the component and re-renders.
func (lt *LiveTest) Event(event string, payload map[string]any) *LiveTest {
	lt.t.Helper()

	if payload == nil {
		payload = map[string]any{}
	}
	if err := lt.component.HandleEvent(lt.context(), event, payload); err != nil {
		lt.t.Errorf("HandleEvent(%s) failed: %v", event, err)
		return lt
	}
	lt.render()
	return lt
}

// EventErr sends an event and returns the component's error instead of
// failing the test.
func (lt *LiveTest) EventErr(event string, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	if err := lt.component.HandleEvent(lt.context(), event, payload); err != nil {
		return err
	}
	lt.render()
	return nil
}

// SendInfo sends a server-side message to the component and re-renders.
func (lt *LiveTest) SendInfo(msg any) *LiveTest {
	lt.t.Helper()

	if err := lt.component.HandleInfo(lt.context(), msg); err != nil {
		lt.t.Errorf("HandleInfo failed: %v", err)
		return lt
	}
	lt.render()
	return lt
}

// Terminate terminates the component.
func (lt *LiveTest) Terminate(reason core.TerminateReason) {
	lt.t.Helper()
	if err := lt.component.Terminate(lt.context(), reason); err != nil {
		lt.t.Errorf("Terminate failed: %v", err)
	}
}

func (lt *LiveTest) render() {
	lt.t.Helper()

	ctx := lt.context()
	renderer := lt.component.Render(ctx)
	if renderer == nil {
		lt.t.Fatal("Render returned nil")
	}

	var buf bytes.Buffer
	if err := renderer.Render(ctx, &buf); err != nil {
		lt.t.Fatalf("Render failed: %v", err)
	}
	lt.rendered = buf.String()
}

// HTML returns assertions over the current render.
func (lt *LiveTest) HTML() *HTMLAssert {
	return NewHTMLAssert(lt.t, lt.rendered)
}

// AssertText verifies the rendered output contains text.
func (lt *LiveTest) AssertText(text string) *LiveTest {
	lt.t.Helper()
	if !strings.Contains(lt.rendered, text) {
		lt.t.Errorf("Text not found: %q\nRendered HTML:\n%s", text, lt.rendered)
	}
	return lt
}

// AssertNoText verifies the rendered output does not contain text.
func (lt *LiveTest) AssertNoText(text string) *LiveTest {
	lt.t.Helper()
	if strings.Contains(lt.rendered, text) {
		lt.t.Errorf("Text should not exist: %q", text)
	}
	return lt
}

// AssertAssign verifies an assign value.
func (lt *LiveTest) AssertAssign(key string, expected any) *LiveTest {
	lt.t.Helper()

	ap, ok := lt.component.(core.AssignsProvider)
	if !ok {
		lt.t.Errorf("%T has no assigns", lt.component)
		return lt
	}
	if actual := ap.Assigns().Get(key); !reflect.DeepEqual(actual, expected) {
		lt.t.Errorf("Assign %s mismatch:\n  Expected: %v (%T)\n  Actual:   %v (%T)",
			key, expected, expected, actual, actual)
	}
	return lt
}

// Transport returns the mock transport behind the component's socket.
func (lt *LiveTest) Transport() *MockTransport {
	return lt.transport
}

// Component returns the component under test.
func (lt *LiveTest) Component() core.Component {
	return lt.component
}
