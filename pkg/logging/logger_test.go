package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.err {
			if !errors.Is(err, ErrUnknownLevel) {
				t.Errorf("ParseLevel(%q): expected ErrUnknownLevel, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("info", "json", &buf)
	if err != nil {
		t.Fatal(err)
	}

	l.Debug("hidden")
	l.With(String("section", "about")).Info("active", Int("n", 2))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug should be filtered at info level")
	}
	if !strings.Contains(out, `"section":"about"`) || !strings.Contains(out, `"n":2`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New("info", "xml", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestL_FallsBackToDefault(t *testing.T) {
	if L(context.Background()) != DefaultLogger {
		t.Error("expected default logger")
	}

	nop := NopLogger{}
	ctx := ContextWithLogger(context.Background(), nop)
	if L(ctx) != Logger(nop) {
		t.Error("expected logger from context")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(WithOutput(&buf))

	var inner Logger
	h := middleware.RequestID(RequestLogger(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = LoggerFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sections", nil))

	if inner == nil {
		t.Fatal("expected request logger in context")
	}
	out := buf.String()
	if !strings.Contains(out, "status=418") || !strings.Contains(out, "path=/sections") {
		t.Errorf("unexpected output: %s", out)
	}
	if !strings.Contains(out, "request_id=") {
		t.Errorf("expected request id: %s", out)
	}
}
