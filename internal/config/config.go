// Package config loads folionav settings: defaults, then an optional YAML
// file, then FOLIONAV_* environment variables (a .env file is read first).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/aderemi/folionav/pkg/core"
	"github.com/aderemi/folionav/pkg/logging"
	"github.com/aderemi/folionav/pkg/nav"
	"github.com/aderemi/folionav/pkg/protocol"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nesting levels: FOLIONAV_SERVER__ADDRESS sets server.address.
const EnvPrefix = "FOLIONAV_"

type loadOptions struct {
	envFile string
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithEnvFile reads dotenv variables from path instead of ./.env.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. An empty path or a missing file leaves
// the defaults in place.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{envFile: ".env"}
	for _, opt := range opts {
		opt(&o)
	}

	// Variables already in the environment win over the dotenv file.
	if o.envFile != "" {
		if _, err := os.Stat(o.envFile); err == nil {
			if err := godotenv.Load(o.envFile); err != nil {
				return nil, fmt.Errorf("reading env file %s: %w", o.envFile, err)
			}
		}
	}

	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if _, err := protocol.LookupCodec(c.Server.Codec); err != nil {
		return fmt.Errorf("server.codec: %w", err)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}
	if c.Server.SessionIdle <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.session_idle and server.shutdown_timeout must be positive")
	}
	if c.Server.MaxSessions <= 0 {
		return fmt.Errorf("server.max_sessions must be positive")
	}

	if c.Nav.CompactThreshold <= 0 || c.Nav.ProbeOffset <= 0 || c.Nav.BarOffset <= 0 {
		return fmt.Errorf("nav thresholds must be positive")
	}
	if c.Nav.Breakpoint <= 0 {
		return fmt.Errorf("nav.breakpoint must be positive")
	}

	if c.Preview.CompactThreshold < 0 || c.Preview.ProbeOffset < 0 || c.Preview.BarOffset < 0 {
		return fmt.Errorf("preview thresholds must be non-negative")
	}

	if c.Content.Path == "" {
		return fmt.Errorf("content.path is required")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}

	return nil
}

// Runtime returns the live session settings.
func (c *Config) Runtime() core.Config {
	rc := core.DefaultConfig()
	rc.Codec = c.Server.Codec
	rc.AllowedOrigins = c.Server.AllowedOrigins
	rc.Timeouts.SessionIdle = c.Server.SessionIdle
	rc.Timeouts.GracefulShutdown = c.Server.ShutdownTimeout
	return rc
}

// Thresholds returns the browser navigation constants.
func (c *Config) Thresholds() nav.Thresholds {
	return nav.Thresholds{
		CompactThreshold: c.Nav.CompactThreshold,
		ProbeOffset:      c.Nav.ProbeOffset,
		BarOffset:        c.Nav.BarOffset,
	}
}

// PreviewThresholds returns the terminal navigation constants.
func (c *Config) PreviewThresholds() nav.Thresholds {
	return nav.Thresholds{
		CompactThreshold: c.Preview.CompactThreshold,
		ProbeOffset:      c.Preview.ProbeOffset,
		BarOffset:        c.Preview.BarOffset,
	}
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Marshal returns the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return data, nil
}
