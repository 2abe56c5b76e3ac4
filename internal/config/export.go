package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/legalhold/custodian/pkg/formatting"
)

const (
	EnvExportMaxWorkers     = "CUSTODIAN_EXPORT_MAX_WORKERS"
	EnvExportMaxArchiveSize = "CUSTODIAN_EXPORT_MAX_ARCHIVE_SIZE"
	EnvExportReserveSkipped = "CUSTODIAN_EXPORT_RESERVE_SKIPPED"
)

// ExportConfig holds export pipeline settings.
//
// ReserveSkipped controls whether documents that cannot be stamped still
// consume a single Bates number, keeping the document-to-range mapping 1:1
// at the cost of gaps in the stamped sequence. Off by default: skipped
// documents consume nothing and later ranges close the gap.
type ExportConfig struct {
	MaxWorkers     int    `toml:"max_workers"`
	MaxArchiveSize string `toml:"max_archive_size"`
	ReserveSkipped bool   `toml:"reserve_skipped"`
}

// MaxArchiveSizeBytes returns MaxArchiveSize as a byte count.
func (c *ExportConfig) MaxArchiveSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxArchiveSize)
	if err != nil {
		return 1 << 30 // 1GB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ExportConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. ReserveSkipped always applies.
func (c *ExportConfig) Merge(overlay *ExportConfig) {
	if overlay.MaxWorkers != 0 {
		c.MaxWorkers = overlay.MaxWorkers
	}
	if overlay.MaxArchiveSize != "" {
		c.MaxArchiveSize = overlay.MaxArchiveSize
	}
	c.ReserveSkipped = overlay.ReserveSkipped
}

func (c *ExportConfig) loadDefaults() {
	if c.MaxArchiveSize == "" {
		c.MaxArchiveSize = "1GB"
	}
}

func (c *ExportConfig) loadEnv() {
	if v := os.Getenv(EnvExportMaxWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxWorkers = n
		}
	}
	if v := os.Getenv(EnvExportMaxArchiveSize); v != "" {
		c.MaxArchiveSize = v
	}
	if v := os.Getenv(EnvExportReserveSkipped); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ReserveSkipped = b
		}
	}
}

func (c *ExportConfig) validate() error {
	if c.MaxWorkers < 0 {
		return fmt.Errorf("max_workers cannot be negative")
	}
	if _, err := formatting.ParseBytes(c.MaxArchiveSize); err != nil {
		return fmt.Errorf("invalid max_archive_size: %w", err)
	}
	return nil
}
