// Package export implements the document production pipeline: request
// validation, preview statistics, Bates numbering, stamp rendering,
// manifest accounting, and archive assembly.
//
// One request is one pipeline invocation. Range allocation runs single
// threaded over the selection order, stamping fans out across a bounded
// worker pool, and the assembler emits entries in selection order
// regardless of completion order. Nothing persists beyond the response
// except the audit event recorded on completion.
package export

// ExportResult is the finished deliverable for one request.
type ExportResult struct {
	Filename string          `json:"filename"`
	Archive  []byte          `json:"-"`
	Manifest []ManifestEntry `json:"manifest"`
	Ranges   []BatesRange    `json:"bates_ranges"`
	Success  bool            `json:"success"`
}

// Included counts the manifest entries that made it into the archive.
func (r *ExportResult) Included() int {
	included := 0
	for _, e := range r.Manifest {
		if !e.Skipped() {
			included++
		}
	}
	return included
}
