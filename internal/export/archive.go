package export

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/legalhold/custodian/internal/cases"
)

// Fixed archive layout. The index always comes first, documents keep
// their selection order, and the manifest files close the archive.
const (
	archiveIndexName    = "index.pdf"
	archiveMetadataName = "metadata.json"
	archiveManifestName = "manifest.csv"
)

// archiveEntry is one file placed into the output zip.
type archiveEntry struct {
	Name string
	Data []byte
}

// documentEntryName places a document under documents/ with a 4-digit
// selection ordinal so name-sorted listings preserve selection order.
func documentEntryName(ordinal int, originalName string) string {
	return fmt.Sprintf("documents/%04d_%s", ordinal, sanitizeEntryName(originalName))
}

func sanitizeEntryName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "document"
	}
	return name
}

// writeArchive streams entries into w in the given order. Any failure
// here is fatal for the whole export.
func writeArchive(w io.Writer, entries []archiveEntry) error {
	zw := zip.NewWriter(w)

	for _, entry := range entries {
		f, err := zw.Create(entry.Name)
		if err != nil {
			return fmt.Errorf("create archive entry %s: %w", entry.Name, err)
		}
		if _, err := f.Write(entry.Data); err != nil {
			return fmt.Errorf("write archive entry %s: %w", entry.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

// exportFilename names the deliverable. The numbering-focused variant
// carries the case number and date; the general form carries a full
// timestamp.
func exportFilename(c *cases.Case, at time.Time, batesNamed bool) string {
	if batesNamed {
		return fmt.Sprintf("BATES_%s_%s.zip", filenameToken(c.CaseNumber), at.Format("20060102"))
	}
	return fmt.Sprintf("case_export_%s.zip", at.Format("20060102_150405"))
}

// filenameToken reduces a case number to filename-safe characters.
func filenameToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	if b.Len() == 0 {
		return "case"
	}
	return b.String()
}
