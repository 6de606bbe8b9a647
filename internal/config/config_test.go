package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerBaseURL() != "http://localhost:8080" {
		t.Fatalf("unexpected base url: %q", cfg.ServerBaseURL())
	}
	if cfg.LogLevel() != "info" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
	if cfg.ReconnectBase() != time.Second {
		t.Fatalf("unexpected reconnect base: %v", cfg.ReconnectBase())
	}
	if cfg.MaxReconnectAttempts() != 5 {
		t.Fatalf("unexpected max attempts: %d", cfg.MaxReconnectAttempts())
	}
}

func TestLoadFromTOML(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, ".occtl")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := []byte(`
[server]
base_url = "http://10.0.0.2:9999/"
directory = "/work"

[logging]
level = "debug"

[stream]
reconnect_base_ms = 250
max_reconnect_attempts = 3
`)
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerBaseURL() != "http://10.0.0.2:9999" {
		t.Fatalf("unexpected base url: %q", cfg.ServerBaseURL())
	}
	if cfg.Server.Directory != "/work" {
		t.Fatalf("unexpected directory: %q", cfg.Server.Directory)
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
	if cfg.ReconnectBase() != 250*time.Millisecond {
		t.Fatalf("unexpected reconnect base: %v", cfg.ReconnectBase())
	}
	if cfg.MaxReconnectAttempts() != 3 {
		t.Fatalf("unexpected max attempts: %d", cfg.MaxReconnectAttempts())
	}
}

func TestLoadEmptyFileYieldsDefaults(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, ".occtl")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), nil, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerBaseURL() != "http://localhost:8080" {
		t.Fatalf("unexpected base url: %q", cfg.ServerBaseURL())
	}
}
