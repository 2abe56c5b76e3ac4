// Package config loads layered service configuration: config.toml as
// the base, an optional per-environment overlay, then environment
// variable overrides on top.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/legalhold/custodian/pkg/database"
	"github.com/legalhold/custodian/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCustodianEnv             = "CUSTODIAN_ENV"
	EnvCustodianShutdownTimeout = "CUSTODIAN_SHUTDOWN_TIMEOUT"
	EnvCustodianVersion         = "CUSTODIAN_VERSION"
)

// Config is the root configuration for the service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Export          ExportConfig    `toml:"export"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Load assembles the effective configuration. A missing config.toml is
// fine; defaults plus environment variables carry a container deploy.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		base, err := read(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = base
	}

	if path := overlayPath(); path != "" {
		overlay, err := read(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Env reports the CUSTODIAN_ENV deployment environment, defaulting to
// "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCustodianEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Merge copies non-zero fields from overlay across every sub-config.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Export.Merge(&overlay.Export)
}

func (c *Config) finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if v := os.Getenv(EnvCustodianShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCustodianVersion); v != "" {
		c.Version = v
	}

	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"export", c.Export.Finalize},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

var databaseEnv = &database.Env{
	Host:            "CUSTODIAN_DB_HOST",
	Port:            "CUSTODIAN_DB_PORT",
	Name:            "CUSTODIAN_DB_NAME",
	User:            "CUSTODIAN_DB_USER",
	Password:        "CUSTODIAN_DB_PASSWORD",
	SSLMode:         "CUSTODIAN_DB_SSL_MODE",
	MaxOpenConns:    "CUSTODIAN_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CUSTODIAN_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CUSTODIAN_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CUSTODIAN_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "CUSTODIAN_STORAGE_CONTAINER_NAME",
	ConnectionString: "CUSTODIAN_STORAGE_CONNECTION_STRING",
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func overlayPath() string {
	env := os.Getenv(EnvCustodianEnv)
	if env == "" {
		return ""
	}

	path := fmt.Sprintf(OverlayConfigPattern, env)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
