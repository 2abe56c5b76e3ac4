package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvServerHost            = "CUSTODIAN_SERVER_HOST"
	EnvServerPort            = "CUSTODIAN_SERVER_PORT"
	EnvServerReadTimeout     = "CUSTODIAN_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "CUSTODIAN_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "CUSTODIAN_SERVER_SHUTDOWN_TIMEOUT"
	EnvServerLogLevel        = "CUSTODIAN_SERVER_LOG_LEVEL"
)

// ServerConfig holds the HTTP listener parameters. Timeouts are
// duration strings; the write timeout defaults high because archive
// generation streams for minutes on large productions.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	LogLevel        string `toml:"log_level"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReadTimeoutDuration returns ReadTimeout as a time.Duration.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return duration(c.ReadTimeout)
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return duration(c.WriteTimeout)
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// SlogLevel maps the configured level name onto slog's scale.
// Unrecognized names fall back to info.
func (c *ServerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Finalize applies defaults, environment overrides, and validation.
func (c *ServerConfig) Finalize() error {
	defaults := []struct {
		field *string
		value string
	}{
		{&c.Host, "0.0.0.0"},
		{&c.ReadTimeout, "1m"},
		{&c.WriteTimeout, "15m"},
		{&c.ShutdownTimeout, "30s"},
		{&c.LogLevel, "info"},
	}
	for _, d := range defaults {
		if *d.field == "" {
			*d.field = d.value
		}
	}
	if c.Port == 0 {
		c.Port = 8080
	}

	c.loadEnv()
	return c.validate()
}

// Merge copies non-zero fields from overlay over c.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.ReadTimeout != "" {
		c.ReadTimeout = overlay.ReadTimeout
	}
	if overlay.WriteTimeout != "" {
		c.WriteTimeout = overlay.WriteTimeout
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
}

func (c *ServerConfig) loadEnv() {
	overrides := []struct {
		field *string
		name  string
	}{
		{&c.Host, EnvServerHost},
		{&c.ReadTimeout, EnvServerReadTimeout},
		{&c.WriteTimeout, EnvServerWriteTimeout},
		{&c.ShutdownTimeout, EnvServerShutdownTimeout},
		{&c.LogLevel, EnvServerLogLevel},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.name); v != "" {
			*o.field = v
		}
	}

	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	for name, value := range map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

// duration parses a validated duration string. Finalize guarantees the
// value parses, so the zero value on error is unreachable in practice.
func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
