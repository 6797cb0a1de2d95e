package config

import (
	"time"

	"github.com/aderemi/folionav/pkg/core"
	"github.com/aderemi/folionav/pkg/nav"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	runtime := core.DefaultConfig()
	browser := nav.DefaultThresholds()

	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			Codec:           runtime.Codec,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			SessionIdle:     runtime.Timeouts.SessionIdle,
			ShutdownTimeout: runtime.Timeouts.GracefulShutdown,
			MaxSessions:     10000,
		},
		Nav: NavConfig{
			CompactThreshold: browser.CompactThreshold,
			ProbeOffset:      browser.ProbeOffset,
			BarOffset:        browser.BarOffset,
			Breakpoint:       768,
		},
		Content: ContentConfig{
			Path: "site.yaml",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Preview: PreviewConfig{
			CompactThreshold: 1,
			ProbeOffset:      2,
			BarOffset:        0,
		},
	}
}
