package export

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalhold/custodian/internal/cases"
	"github.com/legalhold/custodian/internal/documents"
)

// Outcome values for manifest entries.
const (
	OutcomeIncluded       = "included"
	OutcomeSkippedMissing = "skipped-missing"
	OutcomeSkippedError   = "skipped-error"
)

// ManifestEntry records the disposition of one selected document. The
// manifest always carries one entry per selected id, in selection
// order, regardless of outcome. SHA256 digests the exported bytes and
// is set only for included documents.
type ManifestEntry struct {
	DocumentID   uuid.UUID   `json:"document_id"`
	OriginalName string      `json:"original_name"`
	Outcome      string      `json:"outcome"`
	Bates        *BatesRange `json:"bates_range,omitempty"`
	SizeBytes    int64       `json:"size_bytes"`
	SHA256       string      `json:"sha256,omitempty"`
	Reason       string      `json:"reason,omitempty"`
	ExportedAt   time.Time   `json:"exported_at"`
	ExportedBy   string      `json:"exported_by"`
}

// Skipped reports whether the document was left out of the archive.
func (e ManifestEntry) Skipped() bool {
	return e.Outcome != OutcomeIncluded
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type metadataRecord struct {
	ManifestEntry
	ContentType  string     `json:"content_type,omitempty"`
	Custodian    string     `json:"custodian,omitempty"`
	Category     string     `json:"category,omitempty"`
	EvidenceType string     `json:"evidence_type,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	UploadedBy   string     `json:"uploaded_by,omitempty"`
	UploadedAt   *time.Time `json:"uploaded_at,omitempty"`
}

type metadataFile struct {
	ExportDate   time.Time        `json:"export_date"`
	CaseID       uuid.UUID        `json:"case_id"`
	CaseName     string           `json:"case_name"`
	CaseNumber   string           `json:"case_number"`
	ExportedBy   string           `json:"exported_by"`
	TotalRecords int              `json:"total_records"`
	Documents    []metadataRecord `json:"documents"`
}

// buildMetadataJSON serializes the manifest together with the catalog's
// legal metadata for every selected document.
func buildMetadataJSON(
	c *cases.Case,
	actor string,
	at time.Time,
	entries []ManifestEntry,
	docs map[uuid.UUID]documents.Document,
) ([]byte, error) {
	records := make([]metadataRecord, 0, len(entries))
	for _, entry := range entries {
		rec := metadataRecord{ManifestEntry: entry}
		if doc, ok := docs[entry.DocumentID]; ok {
			rec.ContentType = doc.ContentType
			rec.Custodian = doc.Custodian
			rec.Category = doc.Category
			rec.EvidenceType = doc.EvidenceType
			rec.Tags = doc.Tags
			rec.UploadedBy = doc.UploadedBy
			uploaded := doc.UploadedAt
			rec.UploadedAt = &uploaded
		}
		records = append(records, rec)
	}

	payload := metadataFile{
		ExportDate:   at,
		CaseID:       c.ID,
		CaseName:     c.Name,
		CaseNumber:   c.CaseNumber,
		ExportedBy:   actor,
		TotalRecords: len(records),
		Documents:    records,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return data, nil
}

var manifestColumns = []string{
	"ID",
	"Filename",
	"Case Number",
	"Custodian",
	"Category",
	"Evidence Type",
	"Tags",
	"File Type",
	"File Size (bytes)",
	"Uploaded By",
	"Upload Date",
	"Outcome",
	"Reason",
	"Bates Start",
	"Bates End",
	"Page Count",
	"SHA-256",
	"Exported At",
	"Exported By",
}

// buildManifestCSV renders the manifest as a load file suitable for
// review platform ingestion. prefix is the normalized Bates prefix,
// empty when numbering was disabled.
func buildManifestCSV(
	entries []ManifestEntry,
	docs map[uuid.UUID]documents.Document,
	prefix string,
) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(manifestColumns); err != nil {
		return nil, fmt.Errorf("write manifest header: %w", err)
	}

	for _, entry := range entries {
		var caseNumber, custodian, category, evidence, tags, fileType, uploadedBy, uploadDate string
		if doc, ok := docs[entry.DocumentID]; ok {
			caseNumber = doc.CaseNumber
			custodian = doc.Custodian
			category = doc.Category
			evidence = doc.EvidenceType
			tags = strings.Join(doc.Tags, "; ")
			fileType = doc.ContentType
			uploadedBy = doc.UploadedBy
			uploadDate = doc.UploadedAt.Format(time.RFC3339)
		}

		var batesStart, batesEnd, pages string
		if entry.Bates != nil {
			batesStart = batesLabel(prefix, entry.Bates.StartNumber)
			batesEnd = batesLabel(prefix, entry.Bates.EndNumber)
			pages = strconv.Itoa(entry.Bates.PageCount)
		}

		row := []string{
			entry.DocumentID.String(),
			entry.OriginalName,
			caseNumber,
			custodian,
			category,
			evidence,
			tags,
			fileType,
			strconv.FormatInt(entry.SizeBytes, 10),
			uploadedBy,
			uploadDate,
			entry.Outcome,
			entry.Reason,
			batesStart,
			batesEnd,
			pages,
			entry.SHA256,
			entry.ExportedAt.Format(time.RFC3339),
			entry.ExportedBy,
		}

		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write manifest row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush manifest: %w", err)
	}
	return buf.Bytes(), nil
}
