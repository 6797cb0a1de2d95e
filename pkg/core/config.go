package core

import (
	"errors"
	"time"
)

// Configuration errors.
var (
	ErrInvalidTimeout        = errors.New("timeouts must be positive")
	ErrInvalidMaxMessageSize = errors.New("MaxMessageSize must be positive")
)

// TimeoutConfig configures timeouts for live sessions.
type TimeoutConfig struct {
	// ComponentMount is the timeout for component Mount() calls.
	ComponentMount time.Duration

	// ComponentEvent is the timeout for HandleEvent() calls.
	ComponentEvent time.Duration

	// WebSocketRead is the read timeout for WebSocket connections.
	WebSocketRead time.Duration

	// WebSocketWrite is the write timeout for WebSocket connections.
	WebSocketWrite time.Duration

	// SessionIdle closes sessions that sent nothing for this long.
	SessionIdle time.Duration

	// GracefulShutdown is the timeout for graceful shutdown.
	GracefulShutdown time.Duration
}

// DefaultTimeoutConfig returns default timeout configuration.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		ComponentMount:   5 * time.Second,
		ComponentEvent:   3 * time.Second,
		WebSocketRead:    60 * time.Second,
		WebSocketWrite:   10 * time.Second,
		SessionIdle:      5 * time.Minute,
		GracefulShutdown: 15 * time.Second,
	}
}

// Config combines the live runtime settings.
type Config struct {
	Timeouts TimeoutConfig

	// AllowedOrigins for WebSocket upgrades. Empty means same-origin only.
	AllowedOrigins []string

	// Codec names the wire codec ("json" or "msgpack").
	Codec string

	MaxMessageSize int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeouts:       DefaultTimeoutConfig(),
		Codec:          "json",
		MaxMessageSize: 64 * 1024,
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	t := c.Timeouts
	if t.ComponentMount <= 0 || t.ComponentEvent <= 0 || t.WebSocketRead <= 0 ||
		t.WebSocketWrite <= 0 || t.SessionIdle <= 0 || t.GracefulShutdown <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxMessageSize <= 0 {
		return ErrInvalidMaxMessageSize
	}
	return nil
}
