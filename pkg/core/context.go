package core

import (
	"context"
)

// Context keys for storing values in context.
type contextKey string

const (
	socketKey    contextKey = "folionav:socket"
	componentKey contextKey = "folionav:component"
	sessionKey   contextKey = "folionav:session"
	paramsKey    contextKey = "folionav:params"
)

// WithSocket adds a socket to the context.
func WithSocket(ctx context.Context, socket *Socket) context.Context {
	return context.WithValue(ctx, socketKey, socket)
}

// SocketFromContext retrieves the socket from context.
func SocketFromContext(ctx context.Context) *Socket {
	s, _ := ctx.Value(socketKey).(*Socket)
	return s
}

// WithComponent adds a component to the context.
func WithComponent(ctx context.Context, comp Component) context.Context {
	return context.WithValue(ctx, componentKey, comp)
}

// ComponentFromContext retrieves the component from context.
func ComponentFromContext(ctx context.Context) Component {
	c, _ := ctx.Value(componentKey).(Component)
	return c
}

// WithSession adds session data to the context.
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext retrieves session from context.
func SessionFromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey).(Session)
	return s
}

// WithParams adds params to the context.
func WithParams(ctx context.Context, params Params) context.Context {
	return context.WithValue(ctx, paramsKey, params)
}

// ParamsFromContext retrieves params from context.
func ParamsFromContext(ctx context.Context) Params {
	p, _ := ctx.Value(paramsKey).(Params)
	return p
}

// BuildContext creates the context a live session runs under.
func BuildContext(ctx context.Context, socket *Socket, comp Component, session Session, params Params) context.Context {
	ctx = WithSocket(ctx, socket)
	ctx = WithComponent(ctx, comp)
	ctx = WithSession(ctx, session)
	ctx = WithParams(ctx, params)
	return ctx
}
