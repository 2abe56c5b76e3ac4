package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// BatesRange is the contiguous numbering block assigned to one
// document. EndNumber is inclusive.
type BatesRange struct {
	DocumentID  uuid.UUID `json:"document_id"`
	StartNumber int       `json:"start_number"`
	EndNumber   int       `json:"end_number"`
	PageCount   int       `json:"page_count"`
}

// sequencer hands out contiguous Bates ranges in selection order. Each
// request constructs its own sequencer; numbering state is never shared
// across requests.
type sequencer struct {
	next    int
	reserve bool
}

func newSequencer(start int, reserveSkipped bool) *sequencer {
	return &sequencer{next: start, reserve: reserveSkipped}
}

// assign consumes pageCount numbers for the document, starting
// immediately after the previous assignment.
func (s *sequencer) assign(id uuid.UUID, pageCount int) BatesRange {
	r := BatesRange{
		DocumentID:  id,
		StartNumber: s.next,
		EndNumber:   s.next + pageCount - 1,
		PageCount:   pageCount,
	}
	s.next = r.EndNumber + 1
	return r
}

// skip records a document that receives no range. When reserve is set,
// one number is still consumed so every selected document maps to a
// unique position in the sequence; the produced set then carries gaps.
func (s *sequencer) skip() {
	if s.reserve {
		s.next++
	}
}

// pageCount inspects the PDF structure without rendering any pages.
func pageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	if n < 1 {
		return 0, fmt.Errorf("page count: document has no pages")
	}
	return n, nil
}

// batesLabel renders the bare identifier for one number, zero padded to
// a minimum width of four digits.
func batesLabel(prefix string, number int) string {
	return fmt.Sprintf("%s-%04d", prefix, number)
}

// stampText renders the full stamp for one page, with the optional
// timestamp and caller identity suffixes.
func stampText(opts BatesOptions, number int, at time.Time, actor string) string {
	text := batesLabel(opts.Prefix, number)
	if opts.IncludeDateTime {
		text += " | " + at.Format("2006-01-02 15:04:05")
	}
	if opts.IncludeUserID {
		text += " | " + actor
	}
	return text
}

// batesSpan renders the overall range covered by an export, for the
// cover page and audit trail.
func batesSpan(opts BatesOptions, ranges []BatesRange) string {
	if !opts.Enabled || len(ranges) == 0 {
		return "none"
	}

	first := ranges[0].StartNumber
	last := ranges[len(ranges)-1].EndNumber
	return fmt.Sprintf("%s - %s", batesLabel(opts.Prefix, first), batesLabel(opts.Prefix, last))
}
