package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aderemi/folionav/pkg/protocol"
)

func TestWebSocket_OriginValidation(t *testing.T) {
	config := DefaultTransportConfig()

	tests := []struct {
		name          string
		wsConfig      *WebSocketConfig
		origin        string
		host          string
		expectAllowed bool
	}{
		{
			name:          "same-origin allowed",
			wsConfig:      &WebSocketConfig{},
			origin:        "https://example.com",
			host:          "example.com",
			expectAllowed: true,
		},
		{
			name:          "no origin allowed",
			wsConfig:      &WebSocketConfig{},
			origin:        "",
			host:          "example.com",
			expectAllowed: true,
		},
		{
			name:          "explicit origin allowed",
			wsConfig:      &WebSocketConfig{AllowedOrigins: []string{"https://allowed.com"}},
			origin:        "https://allowed.com",
			host:          "example.com",
			expectAllowed: true,
		},
		{
			name:          "origin not in list blocked",
			wsConfig:      &WebSocketConfig{AllowedOrigins: []string{"https://allowed.com"}},
			origin:        "https://attacker.com",
			host:          "example.com",
			expectAllowed: false,
		},
		{
			name:          "wildcard allows all",
			wsConfig:      &WebSocketConfig{AllowedOrigins: []string{"*"}},
			origin:        "https://any-site.com",
			host:          "example.com",
			expectAllowed: true,
		},
		{
			name:          "insecure dev mode allows all",
			wsConfig:      &WebSocketConfig{InsecureDevMode: true},
			origin:        "https://attacker.com",
			host:          "example.com",
			expectAllowed: true,
		},
		{
			name:          "cross-origin blocked by default",
			wsConfig:      &WebSocketConfig{},
			origin:        "https://other-site.com",
			host:          "example.com",
			expectAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := NewWebSocketTransportWithConfig(config, tt.wsConfig)

			allowed := transport.isOriginAllowed(tt.origin, tt.host)

			if allowed != tt.expectAllowed {
				t.Errorf("isOriginAllowed(%q, %q) = %v, want %v",
					tt.origin, tt.host, allowed, tt.expectAllowed)
			}
		})
	}
}

func TestWebSocket_OriginPatterns(t *testing.T) {
	tr := NewWebSocketTransportWithConfig(nil, &WebSocketConfig{
		AllowedOrigins: []string{"https://a.dev", "not a url", "http://b.dev:8080"},
	})
	got := tr.originPatterns()
	if len(got) != 2 || got[0] != "a.dev" || got[1] != "b.dev:8080" {
		t.Errorf("unexpected patterns: %v", got)
	}

	tr = NewWebSocketTransportWithConfig(nil, &WebSocketConfig{AllowedOrigins: []string{"https://a.dev", "*"}})
	if got := tr.originPatterns(); len(got) != 1 || got[0] != "*" {
		t.Errorf("wildcard should collapse patterns, got %v", got)
	}
}

func TestWebSocket_RejectsInvalidOrigin(t *testing.T) {
	transport := NewWebSocketTransportWithConfig(DefaultTransportConfig(), &WebSocketConfig{
		AllowedOrigins: []string{"https://allowed.com"},
	})

	req := httptest.NewRequest("GET", "/live", nil)
	req.Header.Set("Origin", "https://attacker.com")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Host = "example.com"

	w := httptest.NewRecorder()

	err := transport.Upgrade(w, req)

	if !errors.Is(err, ErrOriginNotAllowed) {
		t.Errorf("Expected ErrOriginNotAllowed, got %v", err)
	}

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestDefaultWebSocketConfig(t *testing.T) {
	config := DefaultWebSocketConfig()

	if config.InsecureDevMode {
		t.Error("InsecureDevMode should be false by default")
	}

	if config.AllowedOrigins != nil {
		t.Error("AllowedOrigins should be nil by default (same-origin only)")
	}
}

func TestWebSocket_SendBeforeConnect(t *testing.T) {
	tr := NewWebSocketTransport(nil)

	if err := tr.Send(protocol.NewMessage("lv:x", protocol.EventHeartbeat)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if err := tr.Connect(context.Background()); !errors.Is(err, ErrURLNotSet) {
		t.Errorf("expected ErrURLNotSet, got %v", err)
	}
}

func TestBaseTransport_CloseIsIdempotent(t *testing.T) {
	bt := NewBaseTransport(nil)
	bt.SetConnected(true)

	bt.Close()
	bt.Close()

	select {
	case <-bt.Done():
	default:
		t.Fatal("Done should be closed")
	}
	if bt.IsConnected() {
		t.Error("closed transport reports connected")
	}
	if err := bt.Enqueue(&protocol.Message{Event: "x"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestBaseTransport_PushFull(t *testing.T) {
	cfg := DefaultTransportConfig()
	cfg.ReceiveBufferSize = 1
	bt := NewBaseTransport(cfg)

	if err := bt.PushMessage(&protocol.Message{Event: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := bt.PushMessage(&protocol.Message{Event: "b"}); !errors.Is(err, ErrTransportFull) {
		t.Errorf("expected ErrTransportFull, got %v", err)
	}
}

// echoServer starts a server that replies to every message with an ok reply
// carrying the original event.
func echoServer(t *testing.T, codec protocol.Codec) *httptest.Server {
	t.Helper()

	cfg := DefaultTransportConfig()
	cfg.Codec = codec

	handler := NewWebSocketHandler(cfg, nil, nil, func(tr *WebSocketTransport, _ *http.Request) {
		go func() {
			for {
				select {
				case msg := <-tr.Receive():
					reply := protocol.OkReply(msg.Ref, msg.Topic, map[string]any{"echo": msg.Event})
					if err := tr.Send(reply); err != nil {
						return
					}
				case <-tr.Done():
					return
				}
			}
		}()
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSocket_RoundTrip(t *testing.T) {
	for _, codec := range []protocol.Codec{protocol.NewJSONCodec(), protocol.NewMsgPackCodec()} {
		t.Run(codec.Name(), func(t *testing.T) {
			srv := echoServer(t, codec)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			cfg := DefaultTransportConfig()
			cfg.Codec = codec
			client, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), cfg)
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			defer client.Close()

			if !client.IsConnected() {
				t.Fatal("expected client to be connected")
			}

			if err := client.Send(protocol.NewMessage("lv:abc", protocol.EventNavigate).WithRef("3")); err != nil {
				t.Fatalf("send: %v", err)
			}

			select {
			case reply := <-client.Receive():
				if reply.Ref != "3" || reply.Status() != protocol.StatusOK {
					t.Errorf("unexpected reply: %+v", reply)
				}
				if reply.Response()["echo"] != protocol.EventNavigate {
					t.Errorf("expected echo of navigate, got %v", reply.Response()["echo"])
				}
			case <-ctx.Done():
				t.Fatal("timed out waiting for reply")
			}
		})
	}
}

func TestWebSocket_CloseNotifiesPeer(t *testing.T) {
	accepted := make(chan *WebSocketTransport, 1)
	srv := httptest.NewServer(NewWebSocketHandler(nil, nil, nil, func(tr *WebSocketTransport, _ *http.Request) {
		accepted <- tr
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	var server *WebSocketTransport
	select {
	case server = <-accepted:
	case <-ctx.Done():
		t.Fatal("server never accepted")
	}

	client.Close()

	select {
	case <-server.Done():
	case <-ctx.Done():
		t.Fatal("server transport not closed after client close")
	}
}
