package config

import (
	"errors"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultServerURL           = "http://localhost:8080"
	defaultReconnectBaseMs     = 1000
	defaultMaxReconnectAttempt = 5
)

type Config struct {
	Server  ServerSection  `toml:"server"`
	Logging LoggingSection `toml:"logging"`
	Stream  StreamSection  `toml:"stream"`
}

type ServerSection struct {
	BaseURL   string `toml:"base_url"`
	Directory string `toml:"directory"`
	IsLocal   bool   `toml:"is_local"`
}

type LoggingSection struct {
	Level string `toml:"level"`
}

type StreamSection struct {
	ReconnectBaseMs      int `toml:"reconnect_base_ms"`
	MaxReconnectAttempts int `toml:"max_reconnect_attempts"`
}

func Default() Config {
	return Config{
		Server: ServerSection{
			BaseURL: defaultServerURL,
			IsLocal: true,
		},
		Logging: LoggingSection{
			Level: "info",
		},
		Stream: StreamSection{
			ReconnectBaseMs:      defaultReconnectBaseMs,
			MaxReconnectAttempts: defaultMaxReconnectAttempt,
		},
	}
}

// Load reads the config file under the data dir. A missing or empty file
// yields the defaults.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFromPath(path)
}

func loadFromPath(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) ServerBaseURL() string {
	base := strings.TrimSpace(c.Server.BaseURL)
	if base == "" {
		return defaultServerURL
	}
	return strings.TrimRight(base, "/")
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) ReconnectBase() time.Duration {
	ms := c.Stream.ReconnectBaseMs
	if ms <= 0 {
		ms = defaultReconnectBaseMs
	}
	return time.Duration(ms) * time.Millisecond
}

func (c Config) MaxReconnectAttempts() int {
	if c.Stream.MaxReconnectAttempts <= 0 {
		return defaultMaxReconnectAttempt
	}
	return c.Stream.MaxReconnectAttempts
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
