// Package router serves live components over HTTP: the first render as a
// regular page, then a WebSocket session that turns client events into
// slot diffs.
package router

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/aderemi/folionav/pkg/core"
	"github.com/aderemi/folionav/pkg/logging"
	"github.com/aderemi/folionav/pkg/pool"
	"github.com/aderemi/folionav/pkg/protocol"
	"github.com/aderemi/folionav/pkg/transport"
)

// Common router errors.
var (
	ErrNilRenderer    = errors.New("component returned nil renderer")
	ErrRouteNotFound  = errors.New("no live route for path")
	errSessionLeaving = errors.New("session leaving")
)

// DefaultSocketPath is where live routes accept WebSocket connections
// unless WithSocketPath says otherwise.
const DefaultSocketPath = "/live"

// Router handles HTTP routing for live components.
type Router struct {
	mux    chi.Router
	config core.Config
	logger logging.Logger
	codec  protocol.Codec

	routes map[string]*LiveRoute // by socket path

	sessions   *SessionManager
	sockets    *core.SocketManager
	dispatcher *protocol.Dispatcher

	maxSessions int

	loops sync.WaitGroup
	mu    sync.RWMutex
}

// Option configures a Router.
type Option func(*Router)

// WithConfig sets the runtime configuration.
func WithConfig(cfg core.Config) Option {
	return func(r *Router) {
		r.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithMaxSessions caps concurrent live sessions. Zero means no limit.
func WithMaxSessions(n int) Option {
	return func(r *Router) {
		r.maxSessions = n
	}
}

// New creates a router with the standard middleware stack.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		config:      core.DefaultConfig(),
		logger:      logging.NopLogger{},
		routes:      make(map[string]*LiveRoute),
		sockets:     core.NewSocketManager(),
		maxSessions: 10000,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.config.Validate(); err != nil {
		return nil, fmt.Errorf("router config: %w", err)
	}
	codec, err := protocol.LookupCodec(r.config.Codec)
	if err != nil {
		return nil, fmt.Errorf("router config: %w", err)
	}
	r.codec = codec
	r.sessions = NewSessionManager(r.maxSessions)

	r.dispatcher = protocol.NewDispatcher()
	r.dispatcher.SetTimeout(0) // per-handler deadlines below
	r.dispatcher.Use(protocol.LoggingMiddleware(r.logger))
	r.dispatcher.OnFunc(protocol.EventJoin, r.handleJoin)
	r.dispatcher.OnFunc(protocol.EventHeartbeat, r.handleHeartbeat)
	r.dispatcher.OnFunc(protocol.EventLeave, r.handleLeave)
	r.dispatcher.Fallback(protocol.MessageHandlerFunc(r.handleEvent))

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(logging.RequestLogger(r.logger))
	mux.Use(middleware.Recoverer)
	if len(r.config.AllowedOrigins) > 0 {
		mux.Use(CORS(r.config.AllowedOrigins))
	}
	mux.Use(SecureHeaders())
	mux.Get("/healthz", r.handleHealth)
	r.mux = mux

	return r, nil
}

// Handle registers a standard HTTP handler.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// Get registers a GET handler.
func (r *Router) Get(pattern string, handler http.HandlerFunc) {
	r.mux.Get(pattern, handler)
}

// Mount attaches a sub-handler under pattern.
func (r *Router) Mount(pattern string, handler http.Handler) {
	r.mux.Mount(pattern, handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Sessions returns the session manager.
func (r *Router) Sessions() *SessionManager {
	return r.sessions
}

// Codec returns the wire codec.
func (r *Router) Codec() protocol.Codec {
	return r.codec
}

// LiveRoute defines a page rendered by a live component.
type LiveRoute struct {
	// Path is the URL path of the page.
	Path string

	// SocketPath accepts the page's WebSocket connections.
	SocketPath string

	// Component creates one component instance per page view and per
	// live session.
	Component func() core.Component

	// Layout wraps the first render in a document.
	Layout Layout
}

// RouteOption configures a LiveRoute.
type RouteOption func(*LiveRoute)

// WithLayout sets the page layout.
func WithLayout(layout Layout) RouteOption {
	return func(r *LiveRoute) {
		r.Layout = layout
	}
}

// WithSocketPath overrides DefaultSocketPath.
func WithSocketPath(path string) RouteOption {
	return func(r *LiveRoute) {
		r.SocketPath = path
	}
}

// Live registers a page and its WebSocket endpoint.
func (r *Router) Live(path string, component func() core.Component, opts ...RouteOption) {
	route := &LiveRoute{
		Path:       path,
		SocketPath: DefaultSocketPath,
		Component:  component,
		Layout:     DefaultLayout,
	}
	for _, opt := range opts {
		opt(route)
	}

	r.mu.Lock()
	r.routes[route.SocketPath] = route
	r.mu.Unlock()

	ws := transport.NewWebSocketHandler(r.transportConfig(), &transport.WebSocketConfig{
		AllowedOrigins: r.config.AllowedOrigins,
	}, r.logger, func(t *transport.WebSocketTransport, req *http.Request) {
		if _, err := r.Connect(route.SocketPath, t, extractParams(req), extractSession(req)); err != nil {
			r.logger.Warn("live session rejected", logging.Err(err))
			t.Close()
		}
	})

	r.mux.With(middleware.Compress(5)).Get(route.Path, r.renderPage(route))
	r.mux.Get(route.SocketPath, ws.ServeHTTP)
}

func (r *Router) transportConfig() *transport.TransportConfig {
	cfg := transport.DefaultTransportConfig()
	cfg.ReadTimeout = r.config.Timeouts.WebSocketRead
	cfg.WriteTimeout = r.config.Timeouts.WebSocketWrite
	cfg.MaxMessageSize = r.config.MaxMessageSize
	cfg.Codec = r.codec
	return cfg
}

// Page is what a Layout receives.
type Page struct {
	// Title is the component name.
	Title string

	// Content is the component's first render.
	Content string

	SocketPath string
	Codec      string

	// Nonce is the CSP nonce for inline scripts and styles.
	Nonce string
}

// Layout writes a complete document around a first render.
type Layout func(w io.Writer, p Page) error

// DefaultLayout is a bare document with a live root element.
func DefaultLayout(w io.Writer, p Page) error {
	_, err := fmt.Fprintf(w,
		"<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head>"+
			"<body><div data-live-root data-socket=\"%s\" data-codec=\"%s\">%s</div></body></html>",
		html.EscapeString(p.Title), html.EscapeString(p.SocketPath), html.EscapeString(p.Codec), p.Content)
	return err
}

// renderPage serves the first render of a live route.
func (r *Router) renderPage(route *LiveRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		component := route.Component()
		defer component.Terminate(ctx, core.TerminateNormal)

		if err := component.Mount(ctx, extractParams(req), extractSession(req)); err != nil {
			r.pageError(w, req, fmt.Errorf("mount %s: %w", component.Name(), err))
			return
		}

		content, err := renderComponent(ctx, component)
		if err != nil {
			r.pageError(w, req, err)
			return
		}

		buf := pool.GetBuffer()
		defer pool.PutBuffer(buf)

		err = route.Layout(buf, Page{
			Title:      component.Name(),
			Content:    content,
			SocketPath: route.SocketPath,
			Codec:      r.codec.Name(),
			Nonce:      GetCSPNonce(ctx),
		})
		if err != nil {
			r.pageError(w, req, fmt.Errorf("layout: %w", err))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}

func (r *Router) pageError(w http.ResponseWriter, req *http.Request, err error) {
	r.logger.WithContext(req.Context()).Error("page render failed",
		logging.String("path", req.URL.Path),
		logging.Err(err),
	)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// handleHealth reports liveness with the session count and the message
// counters of the dispatcher.
func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	m := r.dispatcher.Metrics()
	var avgMS float64
	if done := m.MessagesProcessed + m.MessagesErrored; done > 0 {
		avgMS = float64(m.TotalLatency.Microseconds()) / 1000 / float64(done)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": r.sessions.Count(),
		"messages": map[string]any{
			"received":       m.MessagesReceived,
			"processed":      m.MessagesProcessed,
			"errored":        m.MessagesErrored,
			"avg_latency_ms": avgMS,
		},
	})
}

// Connect starts a live session for the route at socketPath over conn and
// returns its ID. The WebSocket endpoint calls it for every upgrade.
func (r *Router) Connect(socketPath string, conn Conn, params core.Params, data core.Session) (string, error) {
	r.mu.RLock()
	route, ok := r.routes[socketPath]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, socketPath)
	}

	if params == nil {
		params = make(core.Params)
	}
	if data == nil {
		data = make(core.Session)
	}

	id := uuid.NewString()
	component := route.Component()
	s := newSession(id, component, conn, params, data)
	if err := r.sessions.Add(s); err != nil {
		return "", err
	}
	r.sockets.Add(s.Socket)

	if sa, ok := component.(core.SocketAware); ok {
		sa.SetSocket(s.Socket)
	}

	// The session outlives the upgrade request.
	ctx := core.BuildContext(context.Background(), s.Socket, component, data, params)
	ctx = withSession(ctx, s)

	r.logger.Info("live session opened",
		logging.String("session", id),
		logging.String("component", component.Name()),
	)

	r.loops.Add(1)
	go r.messageLoop(ctx, s)
	return id, nil
}

// messageLoop runs every component call of one session.
func (r *Router) messageLoop(ctx context.Context, s *Session) {
	defer r.loops.Done()
	defer r.teardown(ctx, s)

	recv := s.conn.Receive()
	for {
		select {
		case msg := <-recv:
			s.Socket.UpdateActivity()

			reply, err := r.dispatcher.Dispatch(ctx, msg)
			if errors.Is(err, errSessionLeaving) {
				if reply != nil {
					s.Socket.Send(reply)
				}
				s.close(core.TerminateNormal)
				return
			}
			if err != nil {
				r.logger.Debug("event failed",
					logging.String("session", s.ID),
					logging.String("event", msg.Event),
					logging.Err(err),
				)
				s.Socket.Send(protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()))
				continue
			}
			if reply != nil {
				s.Socket.Send(reply)
			}

		case info := <-s.info:
			if !s.Joined() {
				continue
			}
			if err := s.Component.HandleInfo(ctx, info); err != nil {
				r.logger.Warn("info handler failed",
					logging.String("session", s.ID),
					logging.Err(err),
				)
				continue
			}
			r.renderAndSendDiff(ctx, s)

		case <-s.conn.Done():
			return
		}
	}
}

// handleJoin mounts the component and replies with its full render.
func (r *Router) handleJoin(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	s := SessionFromContext(ctx)

	if !s.Joined() {
		params := joinParams(s.Params, msg)

		mountCtx, cancel := context.WithTimeout(ctx, r.config.Timeouts.ComponentMount)
		err := s.Component.Mount(mountCtx, params, s.Data)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("mount %s: %w", s.Component.Name(), err)
		}
		s.setJoined()
	}

	rendered, err := renderComponent(ctx, s.Component)
	if err != nil {
		return nil, err
	}

	// Record the slot hashes so the first diff only carries changes.
	s.diff(rendered)
	if ap, ok := s.Component.(core.AssignsProvider); ok {
		ap.Assigns().Tracker().Reset()
	}

	response := map[string]any{"rendered": rendered}
	if token := r.snapshot(s); token != "" {
		response["snapshot"] = token
	}
	return protocol.OkReply(msg.Ref, msg.Topic, response), nil
}

// joinParams merges the join payload into the URL params. The client sends
// its page query under "params" and a reconnect token under "snapshot".
func joinParams(base core.Params, msg *protocol.Message) core.Params {
	params := make(core.Params, len(base)+1)
	for k, v := range base {
		params[k] = v
	}
	for k, v := range msg.GetPayloadMap("params") {
		params[k] = fmt.Sprint(v)
	}
	if token := msg.GetPayloadString("snapshot"); token != "" {
		params["snapshot"] = token
	}
	return params
}

func (r *Router) handleHeartbeat(_ context.Context, msg *protocol.Message) (*protocol.Message, error) {
	return protocol.OkReply(msg.Ref, msg.Topic, nil), nil
}

func (r *Router) handleLeave(_ context.Context, msg *protocol.Message) (*protocol.Message, error) {
	return protocol.OkReply(msg.Ref, msg.Topic, nil), errSessionLeaving
}

// handleEvent hands a client event to the component and pushes the
// resulting diff. Ref-less events get no reply.
func (r *Router) handleEvent(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	s := SessionFromContext(ctx)
	if !s.Joined() {
		return nil, ErrNotJoined
	}

	payload := msg.Payload
	if payload == nil {
		payload = make(map[string]any)
	}

	eventCtx, cancel := context.WithTimeout(ctx, r.config.Timeouts.ComponentEvent)
	err := s.Component.HandleEvent(eventCtx, msg.Event, payload)
	cancel()
	if err != nil {
		return nil, err
	}

	r.renderAndSendDiff(ctx, s)

	if msg.Ref == "" {
		return nil, nil
	}
	return protocol.OkReply(msg.Ref, msg.Topic, nil), nil
}

// renderAndSendDiff re-renders the component and sends the changed slots.
// Components with an Assigns store are only rendered when something was
// assigned.
func (r *Router) renderAndSendDiff(ctx context.Context, s *Session) {
	if ap, ok := s.Component.(core.AssignsProvider); ok {
		tracker := ap.Assigns().Tracker()
		if !tracker.HasChanges() {
			return
		}
		r.logger.Debug("assigns changed",
			logging.String("session", s.ID),
			logging.Any("keys", tracker.GetChanged()),
		)
	}

	rendered, err := renderComponent(ctx, s.Component)
	if err != nil {
		r.logger.Warn("render failed", logging.String("session", s.ID), logging.Err(err))
		return
	}

	payload := s.diff(rendered)
	payload.Snapshot = r.snapshot(s)
	if err := s.Socket.SendDiff(payload); err != nil {
		r.logger.Debug("diff not sent", logging.String("session", s.ID), logging.Err(err))
	}
}

func (r *Router) snapshot(s *Session) string {
	sp, ok := s.Component.(core.SnapshotProvider)
	if !ok {
		return ""
	}
	token, err := sp.Snapshot()
	if err != nil {
		r.logger.Warn("snapshot failed", logging.String("session", s.ID), logging.Err(err))
		return ""
	}
	return token
}

func renderComponent(ctx context.Context, component core.Component) (string, error) {
	renderer := component.Render(ctx)
	if renderer == nil {
		return "", ErrNilRenderer
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := renderer.Render(ctx, buf); err != nil {
		return "", fmt.Errorf("render %s: %w", component.Name(), err)
	}
	return buf.String(), nil
}

// teardown terminates the component and forgets the session.
func (r *Router) teardown(ctx context.Context, s *Session) {
	reason := s.terminateReason()

	if err := s.Component.Terminate(ctx, reason); err != nil {
		r.logger.Warn("terminate failed", logging.String("session", s.ID), logging.Err(err))
	}

	r.sessions.Remove(s.ID)
	r.sockets.Remove(s.ID)
	s.Socket.Close()

	r.logger.Info("live session closed",
		logging.String("session", s.ID),
		logging.String("reason", reason.String()),
		logging.Duration("duration", time.Since(s.CreatedAt)),
	)
}

// Broadcast queues info for every joined session's HandleInfo and returns
// how many sessions accepted it.
func (r *Router) Broadcast(info any) int {
	delivered := 0
	for _, s := range r.sessions.All() {
		if s.Send(info) {
			delivered++
		} else {
			r.logger.Warn("session info queue full", logging.String("session", s.ID))
		}
	}
	return delivered
}

// Run closes idle sessions until ctx ends, then shuts every session down.
func (r *Router) Run(ctx context.Context) error {
	idle := r.config.Timeouts.SessionIdle
	interval := idle / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.expireIdle(idle)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.Timeouts.GracefulShutdown)
			defer cancel()
			return r.Shutdown(shutdownCtx)
		}
	}
}

func (r *Router) expireIdle(idle time.Duration) {
	for _, socket := range r.sockets.Inactive(idle) {
		if s, ok := r.sessions.Get(socket.ID()); ok {
			r.logger.Debug("closing idle session", logging.String("session", s.ID))
			s.close(core.TerminateTimeout)
		}
	}
}

// Shutdown closes every session and waits for their components to
// terminate, or for ctx to end.
func (r *Router) Shutdown(ctx context.Context) error {
	for _, s := range r.sessions.All() {
		s.close(core.TerminateShutdown)
	}

	done := make(chan struct{})
	go func() {
		r.loops.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("live sessions still running: %w", ctx.Err())
	}
}

// extractSession collects per-request data for Mount.
func extractSession(req *http.Request) core.Session {
	session := make(core.Session)
	if id := middleware.GetReqID(req.Context()); id != "" {
		session["request_id"] = id
	}
	session["remote_addr"] = req.RemoteAddr
	for _, cookie := range req.Cookies() {
		session["cookie:"+cookie.Name] = cookie.Value
	}
	return session
}

// extractParams extracts query string parameters.
func extractParams(req *http.Request) core.Params {
	params := make(core.Params)
	for key, values := range req.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}
