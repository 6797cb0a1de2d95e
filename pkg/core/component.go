// Package core provides the live component model: components own state on
// the server, handle client events and render HTML that the router diffs
// into slot updates.
package core

import (
	"context"
	"io"
)

// Component is the interface that all live components must implement.
type Component interface {
	// Name returns the unique identifier for this component type.
	Name() string

	// Mount is called when the component is first connected.
	// It receives the connection parameters and session data.
	Mount(ctx context.Context, params Params, session Session) error

	// Render returns the current HTML representation of the component.
	// This is called after Mount and after each event that modifies state.
	Render(ctx context.Context) Renderer

	// HandleEvent processes client events (scroll reports, clicks, ...).
	HandleEvent(ctx context.Context, event string, payload map[string]any) error

	// HandleInfo processes server-side messages delivered to the session,
	// such as a content reload.
	HandleInfo(ctx context.Context, msg any) error

	// Terminate is called when the component is being destroyed.
	Terminate(ctx context.Context, reason TerminateReason) error
}

// Renderer is the interface for rendering HTML content.
type Renderer interface {
	Render(ctx context.Context, w io.Writer) error
}

// RendererFunc is an adapter to allow ordinary functions to be used as Renderers.
type RendererFunc func(ctx context.Context, w io.Writer) error

func (f RendererFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

// Params contains URL parameters and query strings from the connection.
type Params map[string]string

// Get returns a parameter value or empty string if not found.
func (p Params) Get(key string) string {
	return p[key]
}

// GetDefault returns a parameter value or the default if not found.
func (p Params) GetDefault(key, defaultValue string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return defaultValue
}

// Session contains per-connection data passed from the HTTP handler.
type Session map[string]any

// Get returns a session value.
func (s Session) Get(key string) any {
	return s[key]
}

// GetString returns a session value as string.
func (s Session) GetString(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// TerminateReason indicates why a component is being terminated.
type TerminateReason int

const (
	// TerminateNormal indicates the client left.
	TerminateNormal TerminateReason = iota
	// TerminateShutdown indicates server shutdown.
	TerminateShutdown
	// TerminateError indicates termination due to an error.
	TerminateError
	// TerminateTimeout indicates termination due to inactivity.
	TerminateTimeout
	// TerminateDisconnect indicates the connection dropped without a leave.
	TerminateDisconnect
)

func (r TerminateReason) String() string {
	switch r {
	case TerminateNormal:
		return "normal"
	case TerminateShutdown:
		return "shutdown"
	case TerminateError:
		return "error"
	case TerminateTimeout:
		return "timeout"
	case TerminateDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// SocketAware is implemented by components that want their socket.
type SocketAware interface {
	SetSocket(*Socket)
}

// AssignsProvider is implemented by components that keep their view state
// in an Assigns store. The router skips renders when nothing was assigned.
type AssignsProvider interface {
	Assigns() *Assigns
}

// SnapshotProvider is implemented by components whose state can be
// restored after a reconnect. The token goes out with the join reply and
// with every diff.
type SnapshotProvider interface {
	Snapshot() (string, error)
}

// BaseComponent provides default implementations for Component methods.
// Embed this in your components to avoid implementing unused methods.
type BaseComponent struct {
	socket  *Socket
	assigns *Assigns
}

// SetSocket sets the socket for the component (called by the router).
func (bc *BaseComponent) SetSocket(s *Socket) {
	bc.socket = s
}

// Socket returns the component's socket connection.
func (bc *BaseComponent) Socket() *Socket {
	return bc.socket
}

// Assigns returns the component's assigns store.
func (bc *BaseComponent) Assigns() *Assigns {
	if bc.assigns == nil {
		bc.assigns = NewAssigns()
	}
	return bc.assigns
}

// Name returns an empty string (override in your component).
func (bc *BaseComponent) Name() string {
	return ""
}

// Mount does nothing by default.
func (bc *BaseComponent) Mount(ctx context.Context, params Params, session Session) error {
	return nil
}

// HandleEvent does nothing by default.
func (bc *BaseComponent) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	return nil
}

// HandleInfo does nothing by default.
func (bc *BaseComponent) HandleInfo(ctx context.Context, msg any) error {
	return nil
}

// Terminate does nothing by default.
func (bc *BaseComponent) Terminate(ctx context.Context, reason TerminateReason) error {
	return nil
}
