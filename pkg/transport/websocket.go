package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/aderemi/folionav/pkg/logging"
	"github.com/aderemi/folionav/pkg/protocol"
)

// WebSocket security errors
var (
	ErrOriginNotAllowed = errors.New("origin not allowed")
	ErrURLNotSet        = errors.New("websocket URL not set")
)

// WebSocketConfig configures WebSocket security settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of allowed origins for WebSocket connections.
	// If empty and InsecureDevMode is false, only same-origin connections are allowed.
	AllowedOrigins []string

	// InsecureDevMode disables origin validation. Development only.
	InsecureDevMode bool
}

// DefaultWebSocketConfig returns secure default configuration.
func DefaultWebSocketConfig() *WebSocketConfig {
	return &WebSocketConfig{}
}

// WebSocketTransport implements Transport using WebSocket.
type WebSocketTransport struct {
	*BaseTransport
	conn     *websocket.Conn
	url      string
	wsConfig *WebSocketConfig
	logger   logging.Logger
	mu       sync.Mutex
}

// NewWebSocketTransport creates a new WebSocket transport.
func NewWebSocketTransport(config *TransportConfig) *WebSocketTransport {
	return NewWebSocketTransportWithConfig(config, nil)
}

// NewWebSocketTransportWithConfig creates a WebSocket transport with security config.
func NewWebSocketTransportWithConfig(config *TransportConfig, wsConfig *WebSocketConfig) *WebSocketTransport {
	if wsConfig == nil {
		wsConfig = DefaultWebSocketConfig()
	}
	return &WebSocketTransport{
		BaseTransport: NewBaseTransport(config),
		wsConfig:      wsConfig,
		logger:        logging.NopLogger{},
	}
}

// SetLogger sets the logger used for frame-level debug output.
func (t *WebSocketTransport) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	t.logger = logger
}

// isOriginAllowed checks if the origin is allowed for WebSocket connections.
func (t *WebSocketTransport) isOriginAllowed(origin string, requestHost string) bool {
	if t.wsConfig.InsecureDevMode {
		return true
	}

	// Non-browser clients send no Origin.
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	if originURL.Host == requestHost {
		return true
	}

	for _, allowed := range t.wsConfig.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if allowedURL, err := url.Parse(allowed); err == nil && allowedURL.Host != "" {
			if allowedURL.Host == originURL.Host {
				return true
			}
		}
	}

	return false
}

// originPatterns converts the allow-list into host patterns for Accept.
func (t *WebSocketTransport) originPatterns() []string {
	patterns := make([]string, 0, len(t.wsConfig.AllowedOrigins))
	for _, allowed := range t.wsConfig.AllowedOrigins {
		if allowed == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(allowed); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}

// SetURL sets the WebSocket URL for client-side connections.
func (t *WebSocketTransport) SetURL(url string) {
	t.url = url
}

// Connect establishes a WebSocket connection (client-side).
func (t *WebSocketTransport) Connect(ctx context.Context) error {
	if t.url == "" {
		return ErrURLNotSet
	}

	conn, _, err := websocket.Dial(ctx, t.url, nil)
	if err != nil {
		return fmt.Errorf("dial websocket: %w", err)
	}

	t.start(conn)
	return nil
}

// Dial connects a client transport to url.
func Dial(ctx context.Context, url string, config *TransportConfig) (*WebSocketTransport, error) {
	t := NewWebSocketTransport(config)
	t.SetURL(url)
	if err := t.Connect(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Upgrade upgrades an HTTP connection to WebSocket (server-side).
// The origin is checked before the handshake is accepted.
func (t *WebSocketTransport) Upgrade(w http.ResponseWriter, r *http.Request) error {
	origin := r.Header.Get("Origin")
	if !t.isOriginAllowed(origin, r.Host) {
		http.Error(w, "Forbidden: Origin not allowed", http.StatusForbidden)
		return ErrOriginNotAllowed
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: t.wsConfig.InsecureDevMode,
		OriginPatterns:     t.originPatterns(),
	})
	if err != nil {
		return fmt.Errorf("accept websocket: %w", err)
	}

	t.start(conn)
	return nil
}

func (t *WebSocketTransport) start(conn *websocket.Conn) {
	conn.SetReadLimit(t.config.MaxMessageSize)

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	t.SetConnected(true)

	go t.readLoop()
	go t.writeLoop()
	go t.pingLoop()
}

// Send sends a message over the WebSocket.
func (t *WebSocketTransport) Send(msg *protocol.Message) error {
	return t.Enqueue(msg)
}

// Close closes the WebSocket connection.
func (t *WebSocketTransport) Close() error {
	t.BaseTransport.Close()

	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

// Conn returns the underlying WebSocket connection.
func (t *WebSocketTransport) Conn() *websocket.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

// readLoop reads frames from the WebSocket and decodes them.
func (t *WebSocketTransport) readLoop() {
	defer t.Close()

	codec := t.config.Codec
	for {
		conn := t.Conn()
		if conn == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), t.config.ReadTimeout)
		_, data, err := conn.Read(ctx)
		cancel()

		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				t.logger.Debug("websocket read ended", logging.Err(err))
			}
			return
		}

		msg, err := codec.Decode(data)
		if err != nil {
			t.logger.Debug("dropping undecodable frame",
				logging.Err(err),
				logging.Int("size", len(data)),
			)
			continue
		}

		t.logger.Debug("frame received",
			logging.String("event", msg.Event),
			logging.String("topic", msg.Topic),
			logging.String("ref", msg.Ref),
		)

		if !t.deliver(msg) {
			return
		}
	}
}

// writeLoop encodes queued messages and writes them to the WebSocket.
func (t *WebSocketTransport) writeLoop() {
	codec := t.config.Codec
	msgType := websocket.MessageText
	if codec.Binary() {
		msgType = websocket.MessageBinary
	}

	for {
		select {
		case msg := <-t.sendCh:
			conn := t.Conn()
			if conn == nil {
				return
			}

			data, err := codec.Encode(msg)
			if err != nil {
				t.logger.Warn("dropping unencodable message",
					logging.String("event", msg.Event),
					logging.Err(err),
				)
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), t.config.WriteTimeout)
			err = conn.Write(ctx, msgType, data)
			cancel()

			if err != nil {
				t.logger.Debug("websocket write failed", logging.Err(err))
				t.Close()
				return
			}

		case <-t.closeCh:
			return
		}
	}
}

// pingLoop sends periodic pings to keep the connection alive.
func (t *WebSocketTransport) pingLoop() {
	if t.config.PingInterval <= 0 {
		return
	}

	ticker := time.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn := t.Conn()
			if conn == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), t.config.WriteTimeout)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				t.logger.Debug("websocket ping failed", logging.Err(err))
			}
		case <-t.closeCh:
			return
		}
	}
}

// AcceptFunc receives each upgraded transport with the request that opened
// it. The request context ends when ServeHTTP returns, the connection does
// not.
type AcceptFunc func(t *WebSocketTransport, r *http.Request)

// WebSocketHandler upgrades HTTP requests and hands each accepted
// transport to onAccept.
type WebSocketHandler struct {
	config   *TransportConfig
	wsConfig *WebSocketConfig
	logger   logging.Logger
	onAccept AcceptFunc
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(config *TransportConfig, wsConfig *WebSocketConfig, logger logging.Logger, onAccept AcceptFunc) *WebSocketHandler {
	if config == nil {
		config = DefaultTransportConfig()
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &WebSocketHandler{
		config:   config,
		wsConfig: wsConfig,
		logger:   logger,
		onAccept: onAccept,
	}
}

// ServeHTTP handles HTTP requests and upgrades to WebSocket.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := *h.config
	t := NewWebSocketTransportWithConfig(&cfg, h.wsConfig)
	t.SetLogger(h.logger)

	if err := t.Upgrade(w, r); err != nil {
		h.logger.Warn("websocket upgrade failed",
			logging.String("origin", r.Header.Get("Origin")),
			logging.Err(err),
		)
		return
	}

	if h.onAccept != nil {
		h.onAccept(t, r)
	}
}
