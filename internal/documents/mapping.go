package documents

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/legalhold/custodian/pkg/query"
	"github.com/legalhold/custodian/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("case_id", "CaseID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("storage_key", "StorageKey").
	Project("custodian", "Custodian").
	Project("category", "Category").
	Project("evidence_type", "EvidenceType").
	Project("tags", "Tags").
	Project("content_hash", "ContentHash").
	Project("uploaded_by", "UploadedBy").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "cases", "c", "LEFT JOIN", "d.case_id = c.id").
	Project("name", "CaseName").
	Project("case_number", "CaseNumber")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. CaseID, ContentType, Custodian, Category, and
// EvidenceType use exact matching. Filename uses case-insensitive contains
// matching.
type Filters struct {
	CaseID       *uuid.UUID `json:"case_id,omitempty"`
	Filename     *string    `json:"filename,omitempty"`
	ContentType  *string    `json:"content_type,omitempty"`
	Custodian    *string    `json:"custodian,omitempty"`
	Category     *string    `json:"category,omitempty"`
	EvidenceType *string    `json:"evidence_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CaseID", f.CaseID).
		WhereContains("Filename", f.Filename).
		WhereEquals("ContentType", f.ContentType).
		WhereEquals("Custodian", f.Custodian).
		WhereEquals("Category", f.Category).
		WhereEquals("EvidenceType", f.EvidenceType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if cid := values.Get("case_id"); cid != "" {
		if v, err := uuid.Parse(cid); err == nil {
			f.CaseID = &v
		}
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	if cu := values.Get("custodian"); cu != "" {
		f.Custodian = &cu
	}

	if ca := values.Get("category"); ca != "" {
		f.Category = &ca
	}

	if et := values.Get("evidence_type"); et != "" {
		f.EvidenceType = &et
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	var tags []byte

	err := s.Scan(
		&d.ID,
		&d.CaseID,
		&d.Filename,
		&d.ContentType,
		&d.SizeBytes,
		&d.StorageKey,
		&d.Custodian,
		&d.Category,
		&d.EvidenceType,
		&tags,
		&d.ContentHash,
		&d.UploadedBy,
		&d.UploadedAt,
		&d.UpdatedAt,
		&d.CaseName,
		&d.CaseNumber,
	)
	if err != nil {
		return d, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &d.Tags); err != nil {
			return d, fmt.Errorf("decode tags: %w", err)
		}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}

	return d, nil
}
