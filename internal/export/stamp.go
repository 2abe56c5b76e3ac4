package export

import (
	"bytes"
	"fmt"
	"runtime"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// supportsStamping reports whether page-level stamping applies to a
// document. Only PDF content receives Bates numbers and watermarks;
// every other type passes through unmodified.
func supportsStamping(contentType string) bool {
	return contentType == "application/pdf"
}

// Stamp descriptors. The Bates stamp sits in a fixed box at the bottom
// right margin so it never collides with the page-spanning watermark.
const (
	batesDescriptor       = "font:Helvetica, points:10, scale:1 abs, pos:br, off:-12 10, rot:0, fillc:#000000, op:1"
	diagonalDescriptorFmt = "font:Helvetica, scale:0.8 rel, d:1, fillc:#ff0000, op:%.2f"
	bottomDescriptorFmt   = "font:Helvetica, points:24, scale:1 abs, pos:bc, off:0 15, rot:0, fillc:#ff0000, op:%.2f"
)

func watermarkDescriptor(opts WatermarkOptions) string {
	if opts.Position == PositionBottomCenter {
		return fmt.Sprintf(bottomDescriptorFmt, opts.Opacity)
	}
	return fmt.Sprintf(diagonalDescriptorFmt, opts.Opacity)
}

func textWatermark(text, desc string) (*model.Watermark, error) {
	return api.TextWatermark(text, desc, true, false, types.POINTS)
}

// renderStamps overlays Bates text and/or the watermark onto every page
// of a PDF, returning the transformed bytes. rng is nil when numbering
// is disabled or the document received no range; data is returned
// untouched when there is nothing to apply.
func renderStamps(
	data []byte,
	rng *BatesRange,
	bates BatesOptions,
	wm WatermarkOptions,
	at time.Time,
	actor string,
) ([]byte, error) {
	if rng == nil && !wm.enabled() {
		return data, nil
	}

	// Watermark-only runs apply a single mark across all pages.
	if rng == nil {
		mark, err := textWatermark(wm.Text, watermarkDescriptor(wm))
		if err != nil {
			return nil, fmt.Errorf("build watermark: %w", err)
		}

		var buf bytes.Buffer
		if err := api.AddWatermarks(bytes.NewReader(data), &buf, nil, mark, nil); err != nil {
			return nil, fmt.Errorf("apply watermark: %w", err)
		}
		return buf.Bytes(), nil
	}

	// Bates text differs per page, so each page gets its own mark set.
	marks := make(map[int][]*model.Watermark, rng.PageCount)
	for page := 1; page <= rng.PageCount; page++ {
		stamp, err := textWatermark(stampText(bates, rng.StartNumber+page-1, at, actor), batesDescriptor)
		if err != nil {
			return nil, fmt.Errorf("build bates stamp: %w", err)
		}

		pageMarks := []*model.Watermark{stamp}
		if wm.enabled() {
			mark, err := textWatermark(wm.Text, watermarkDescriptor(wm))
			if err != nil {
				return nil, fmt.Errorf("build watermark: %w", err)
			}
			pageMarks = append(pageMarks, mark)
		}
		marks[page] = pageMarks
	}

	var buf bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(data), &buf, marks, nil); err != nil {
		return nil, fmt.Errorf("apply stamps: %w", err)
	}
	return buf.Bytes(), nil
}

// renderWorkerCount bounds the stamping pool to the smallest of the
// host core count, the configured limit, and the number of documents.
func renderWorkerCount(limit, n int) int {
	workers := min(runtime.NumCPU(), n)
	if limit > 0 {
		workers = min(workers, limit)
	}
	return max(workers, 1)
}
