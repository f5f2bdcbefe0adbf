// Package config loads the chat client's settings from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/elalgpt/internal/client/transport"
	"github.com/yourusername/elalgpt/internal/conversation"
)

// Transport kinds
const (
	TransportHTTP      = "http"
	TransportWebSocket = "ws"
	TransportEcho      = "echo"
)

// Themes
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config holds every client setting
type Config struct {
	Endpoint   string `yaml:"endpoint"`    // POST target for the http transport
	WSEndpoint string `yaml:"ws_endpoint"` // ws:// URL for the websocket transport
	Transport  string `yaml:"transport"`   // http, ws or echo

	// RequestTimeout bounds one request; empty means no client-side limit
	RequestTimeout string `yaml:"request_timeout"`
	// ReplyDelay is the pause between a reply arriving and it being shown
	ReplyDelay string `yaml:"reply_delay"`

	Greeting string `yaml:"greeting"`
	Theme    string `yaml:"theme"`
	Haptics  bool   `yaml:"haptics"` // ring the terminal bell on send, reply and copy

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		Endpoint:   transport.DefaultEndpoint,
		WSEndpoint: "ws://localhost:8080/ws",
		Transport:  TransportHTTP,
		ReplyDelay: "800ms",
		Greeting:   conversation.DefaultGreeting,
		Theme:      ThemeDark,
		LogLevel:   "info",
	}
}

// DefaultPath returns the per-user config location, or "" if it cannot be determined
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "elalgpt", "config.yaml")
}

// Load reads configuration from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to a YAML file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ELALGPT_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("ELALGPT_WS_ENDPOINT"); v != "" {
		c.WSEndpoint = v
	}
	if v := os.Getenv("ELALGPT_TRANSPORT"); v != "" {
		c.Transport = strings.ToLower(v)
	}
	if v := os.Getenv("ELALGPT_LOG_FILE"); v != "" {
		c.LogFile = v
	}
}

// Validate checks enumerations and durations
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportWebSocket, TransportEcho:
	default:
		return fmt.Errorf("unknown transport %q (want http, ws or echo)", c.Transport)
	}

	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("unknown theme %q (want dark or light)", c.Theme)
	}

	if _, err := c.RequestTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.ReplyDelayDuration(); err != nil {
		return err
	}
	return nil
}

// RequestTimeoutDuration parses RequestTimeout; zero means no limit
func (c *Config) RequestTimeoutDuration() (time.Duration, error) {
	return parseDuration("request_timeout", c.RequestTimeout)
}

// ReplyDelayDuration parses ReplyDelay
func (c *Config) ReplyDelayDuration() (time.Duration, error) {
	return parseDuration("reply_delay", c.ReplyDelay)
}

// IsDark reports whether the dark theme is selected
func (c *Config) IsDark() bool {
	return c.Theme != ThemeLight
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", field, value)
	}
	return d, nil
}
