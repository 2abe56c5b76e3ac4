package openapi

import "os"

// Config holds the document metadata exposed through the spec endpoint.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// ConfigEnv names the environment variables that may override each field.
type ConfigEnv struct {
	Title       string
	Description string
}

// Finalize applies defaults and environment overrides. Metadata has no
// invalid states, so there is nothing to validate.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "Custodian API"
	}
	if c.Description == "" {
		c.Description = "Legal discovery export service for case document productions."
	}

	if env != nil {
		override(&c.Title, env.Title)
		override(&c.Description, env.Description)
	}
	return nil
}

// Merge copies non-empty fields from overlay over c.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
}

func override(field *string, name string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*field = v
	}
}
