package export

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/legalhold/custodian/internal/cases"
)

// buildCoverPDF generates the archive's index page: case caption,
// export provenance, Bates span, and the per-document disposition
// table. A failure here is fatal for the whole export since an archive
// without its index is not a valid production.
func buildCoverPDF(
	c *cases.Case,
	actor string,
	at time.Time,
	entries []ManifestEntry,
	prefix string,
	span string,
) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Document Production Index", false)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Document Production Index")
	pdf.Ln(14)

	included := 0
	for _, e := range entries {
		if !e.Skipped() {
			included++
		}
	}

	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	field("Case", c.Name)
	field("Case Number", c.CaseNumber)
	field("Exported At", at.Format("2006-01-02 15:04:05 MST"))
	field("Exported By", actor)
	field("Documents", fmt.Sprintf("%d selected, %d included, %d skipped",
		len(entries), included, len(entries)-included))
	field("Bates Span", span)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(12, 7, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(86, 7, "Document", "1", 0, "L", false, 0, "")
	pdf.CellFormat(32, 7, "Outcome", "1", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Bates Range", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, e := range entries {
		var rangeText string
		if e.Bates != nil {
			rangeText = fmt.Sprintf("%s - %s",
				batesLabel(prefix, e.Bates.StartNumber),
				batesLabel(prefix, e.Bates.EndNumber))
		}

		name := e.OriginalName
		if name == "" {
			name = e.DocumentID.String()
		}

		pdf.CellFormat(12, 6, strconv.Itoa(i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(86, 6, truncate(name, 52), "1", 0, "L", false, 0, "")
		pdf.CellFormat(32, 6, e.Outcome, "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, rangeText, "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render cover page: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate shortens s to limit runes. Cutting on rune boundaries keeps
// multi-byte filenames valid UTF-8.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
