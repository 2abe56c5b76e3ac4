// Package audit records chain-of-custody events for export operations.
// Events are append-only records of who requested what against which
// case, with a details payload describing the outcome.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action values recorded by the export pipeline.
const (
	ActionExportPreview   = "export_preview"
	ActionExportDocuments = "export_documents"
	ActionExportBates     = "export_bates"
)

// Status values for recorded events.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Event is a single chain-of-custody record.
type Event struct {
	ID           uuid.UUID      `json:"id"`
	Actor        string         `json:"actor"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Details      map[string]any `json:"details"`
	Status       string         `json:"status"`
	RecordedAt   time.Time      `json:"recorded_at"`
}

// Stats summarizes trail activity over a trailing window: an overall
// count, per-dimension breakdowns, and the most recent events.
type Stats struct {
	TotalEvents    int            `json:"total_events"`
	EventsByAction map[string]int `json:"events_by_action"`
	EventsByActor  map[string]int `json:"events_by_actor"`
	EventsByStatus map[string]int `json:"events_by_status"`
	RecentActivity []Event        `json:"recent_activity"`
	TimeRange      string         `json:"time_range"`
}

// RecordCommand carries the fields for a new event. ID and RecordedAt
// are assigned by the repository.
type RecordCommand struct {
	Actor        string         `json:"actor"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Details      map[string]any `json:"details"`
	Status       string         `json:"status"`
}
