// Package documents implements the document catalog for Custodian.
// Document records and their stored blobs are owned by the upstream
// collection service; this package provides read-only lookup and listing
// for export selection, carrying the legal metadata the export pipeline
// and manifest need.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document represents a collected document with its legal metadata and
// blob storage reference. CaseName and CaseNumber are joined from the
// owning case record.
type Document struct {
	ID           uuid.UUID `json:"id"`
	CaseID       uuid.UUID `json:"case_id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	StorageKey   string    `json:"storage_key"`
	Custodian    string    `json:"custodian"`
	Category     string    `json:"category"`
	EvidenceType string    `json:"evidence_type"`
	Tags         []string  `json:"tags"`
	ContentHash  *string   `json:"content_hash"`
	UploadedBy   string    `json:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	CaseName     string    `json:"case_name"`
	CaseNumber   string    `json:"case_number"`
}
