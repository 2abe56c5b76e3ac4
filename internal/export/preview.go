package export

import (
	"math"

	"github.com/google/uuid"
)

// PreviewResult summarizes an export selection without producing output.
// MissingFiles lists the selected ids whose record or stored blob does
// not resolve; their sizes are excluded from the totals.
type PreviewResult struct {
	DocumentCount  int         `json:"document_count"`
	TotalSizeBytes int64       `json:"total_size_bytes"`
	TotalSizeMB    float64     `json:"total_size_mb"`
	MissingFiles   []uuid.UUID `json:"missing_files"`
}

// megabytes converts a byte total to decimal megabytes rounded to two
// places.
func megabytes(bytes int64) float64 {
	return math.Round(float64(bytes)/1_000_000*100) / 100
}
