package config

import "time"

// Config is the top-level folionav configuration, corresponding to folionav.yml.
type Config struct {
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Nav     NavConfig     `yaml:"nav" koanf:"nav"`
	Content ContentConfig `yaml:"content" koanf:"content"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
	Preview PreviewConfig `yaml:"preview" koanf:"preview"`
}

// ServerConfig holds HTTP and live session settings.
type ServerConfig struct {
	Address         string        `yaml:"address" koanf:"address"`
	AllowedOrigins  []string      `yaml:"allowed_origins" koanf:"allowed_origins"`
	Codec           string        `yaml:"codec" koanf:"codec"`
	ReadTimeout     time.Duration `yaml:"read_timeout" koanf:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" koanf:"write_timeout"`
	SessionIdle     time.Duration `yaml:"session_idle" koanf:"session_idle"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" koanf:"shutdown_timeout"`
	MaxSessions     int           `yaml:"max_sessions" koanf:"max_sessions"`
}

// NavConfig holds the browser navigation constants, in CSS pixels.
type NavConfig struct {
	CompactThreshold         float64 `yaml:"compact_threshold" koanf:"compact_threshold"`
	ProbeOffset              float64 `yaml:"probe_offset" koanf:"probe_offset"`
	BarOffset                float64 `yaml:"bar_offset" koanf:"bar_offset"`
	Breakpoint               int     `yaml:"breakpoint" koanf:"breakpoint"`
	CloseMenuOnSectionChange bool    `yaml:"close_menu_on_section_change" koanf:"close_menu_on_section_change"`
}

// ContentConfig locates the site file.
type ContentConfig struct {
	Path  string `yaml:"path" koanf:"path"`
	Watch bool   `yaml:"watch" koanf:"watch"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// PreviewConfig holds the terminal navigation constants, in lines.
type PreviewConfig struct {
	CompactThreshold float64 `yaml:"compact_threshold" koanf:"compact_threshold"`
	ProbeOffset      float64 `yaml:"probe_offset" koanf:"probe_offset"`
	BarOffset        float64 `yaml:"bar_offset" koanf:"bar_offset"`
}
