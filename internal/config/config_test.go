package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Address != ":8080" {
		t.Errorf("expected default address %q, got %q", ":8080", cfg.Server.Address)
	}
	if cfg.Nav.CompactThreshold != 50 || cfg.Nav.ProbeOffset != 100 || cfg.Nav.BarOffset != 80 {
		t.Errorf("unexpected nav defaults: %+v", cfg.Nav)
	}
	if cfg.Nav.Breakpoint != 768 {
		t.Errorf("expected default breakpoint 768, got %d", cfg.Nav.Breakpoint)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folionav.yml")

	original := DefaultConfig()
	original.Server.Address = "127.0.0.1:9000"
	original.Server.Codec = "msgpack"
	original.Server.AllowedOrigins = []string{"https://example.com"}
	original.Server.SessionIdle = 90 * time.Second
	original.Nav.Breakpoint = 1024
	original.Nav.CloseMenuOnSectionChange = true
	original.Content.Watch = true

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path, WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Server.Address != original.Server.Address {
		t.Errorf("address: got %q, want %q", loaded.Server.Address, original.Server.Address)
	}
	if loaded.Server.Codec != "msgpack" {
		t.Errorf("codec: got %q", loaded.Server.Codec)
	}
	if len(loaded.Server.AllowedOrigins) != 1 || loaded.Server.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("allowed_origins: got %v", loaded.Server.AllowedOrigins)
	}
	if loaded.Server.SessionIdle != 90*time.Second {
		t.Errorf("session_idle: got %v", loaded.Server.SessionIdle)
	}
	if loaded.Nav.Breakpoint != 1024 || !loaded.Nav.CloseMenuOnSectionChange {
		t.Errorf("nav: got %+v", loaded.Nav)
	}
	if !loaded.Content.Watch {
		t.Error("content.watch not loaded")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("expected default address, got %q", cfg.Server.Address)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folionav.yml")
	if err := os.WriteFile(path, []byte("nav:\n  bar_offset: 64\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Nav.BarOffset != 64 {
		t.Errorf("bar_offset: got %v", cfg.Nav.BarOffset)
	}
	if cfg.Nav.ProbeOffset != 100 {
		t.Errorf("probe_offset: got %v, want default", cfg.Nav.ProbeOffset)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FOLIONAV_SERVER__ADDRESS", ":7070")
	t.Setenv("FOLIONAV_NAV__COMPACT_THRESHOLD", "30")
	t.Setenv("FOLIONAV_LOG__FORMAT", "json")

	cfg, err := Load("", WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":7070" {
		t.Errorf("address: got %q", cfg.Server.Address)
	}
	if cfg.Nav.CompactThreshold != 30 {
		t.Errorf("compact_threshold: got %v", cfg.Nav.CompactThreshold)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log.format: got %q", cfg.Log.Format)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("FOLIONAV_CONTENT__PATH=portfolio.yaml\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv sets process variables; register them for cleanup.
	t.Setenv("FOLIONAV_CONTENT__PATH", "")
	os.Unsetenv("FOLIONAV_CONTENT__PATH")

	cfg, err := Load("", WithEnvFile(envFile))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Content.Path != "portfolio.yaml" {
		t.Errorf("content.path: got %q", cfg.Content.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty address", func(c *Config) { c.Server.Address = "" }, true},
		{"unknown codec", func(c *Config) { c.Server.Codec = "protobuf" }, true},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, true},
		{"zero session idle", func(c *Config) { c.Server.SessionIdle = 0 }, true},
		{"zero max sessions", func(c *Config) { c.Server.MaxSessions = 0 }, true},
		{"zero compact threshold", func(c *Config) { c.Nav.CompactThreshold = 0 }, true},
		{"negative probe offset", func(c *Config) { c.Nav.ProbeOffset = -1 }, true},
		{"zero breakpoint", func(c *Config) { c.Nav.Breakpoint = 0 }, true},
		{"zero preview bar offset", func(c *Config) { c.Preview.BarOffset = 0 }, false},
		{"negative preview probe", func(c *Config) { c.Preview.ProbeOffset = -2 }, true},
		{"empty content path", func(c *Config) { c.Content.Path = "" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"json log format", func(c *Config) { c.Log.Format = "JSON" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRuntimeAndThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Codec = "msgpack"
	cfg.Server.AllowedOrigins = []string{"https://a.example"}
	cfg.Server.SessionIdle = time.Minute
	cfg.Nav.BarOffset = 72
	cfg.Preview.ProbeOffset = 3

	rc := cfg.Runtime()
	if rc.Codec != "msgpack" || rc.Timeouts.SessionIdle != time.Minute || len(rc.AllowedOrigins) != 1 {
		t.Errorf("Runtime() = %+v", rc)
	}
	if err := rc.Validate(); err != nil {
		t.Errorf("runtime config invalid: %v", err)
	}

	if th := cfg.Thresholds(); th.BarOffset != 72 || th.CompactThreshold != 50 {
		t.Errorf("Thresholds() = %+v", th)
	}
	if th := cfg.PreviewThresholds(); th.ProbeOffset != 3 {
		t.Errorf("PreviewThresholds() = %+v", th)
	}
}
