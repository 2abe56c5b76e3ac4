package export

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// FormatZip is the only archive format the assembler produces.
const FormatZip = "zip"

// Watermark positions.
const (
	PositionDiagonal     = "diagonal"
	PositionBottomCenter = "bottom-center"
)

// DefaultOpacity is applied when a watermark omits opacity.
const DefaultOpacity = 0.3

// BatesOptions configures sequential page numbering for an export.
type BatesOptions struct {
	Enabled         bool   `json:"enabled"`
	Prefix          string `json:"prefix"`
	StartNumber     int    `json:"startNumber"`
	IncludeDateTime bool   `json:"includeDateTime"`
	IncludeUserID   bool   `json:"includeUserId"`
}

// WatermarkOptions configures the protective overlay applied to every
// page of stampable documents.
type WatermarkOptions struct {
	Text     string  `json:"text"`
	Position string  `json:"position"`
	Opacity  float64 `json:"opacity"`
}

func (w WatermarkOptions) enabled() bool {
	return strings.TrimSpace(w.Text) != ""
}

// ExportRequest describes one export invocation. DocumentIDs is the
// canonical selection order for numbering and archive placement.
type ExportRequest struct {
	DocumentIDs     []uuid.UUID      `json:"documentIds"`
	Format          string           `json:"format"`
	IncludeMetadata bool             `json:"includeMetadata"`
	Bates           BatesOptions     `json:"batesNumbering"`
	Watermark       WatermarkOptions `json:"watermark"`
}

// Validate normalizes the request and checks its fields. fallbackPrefix
// replaces the Bates prefix when normalization strips it empty. The
// returned copy is the validated form; the receiver is unchanged.
func (r ExportRequest) Validate(fallbackPrefix string) (ExportRequest, error) {
	if len(r.DocumentIDs) == 0 {
		return r, invalidField("documentIds", ErrEmptySelection)
	}

	seen := make(map[uuid.UUID]struct{}, len(r.DocumentIDs))
	for _, id := range r.DocumentIDs {
		if _, ok := seen[id]; ok {
			return r, invalidField("documentIds", ErrDuplicateSelection)
		}
		seen[id] = struct{}{}
	}

	switch r.Format {
	case "":
		r.Format = FormatZip
	case FormatZip:
	default:
		return r, invalidField("format", ErrUnsupportedFormat)
	}

	if r.Bates.Enabled {
		if r.Bates.StartNumber < 1 {
			return r, invalidField("batesNumbering.startNumber", ErrInvalidStartNumber)
		}
		r.Bates.Prefix = normalizePrefix(r.Bates.Prefix, fallbackPrefix)
	}

	if r.Watermark.enabled() {
		r.Watermark.Text = strings.TrimSpace(r.Watermark.Text)

		switch r.Watermark.Position {
		case "":
			r.Watermark.Position = PositionDiagonal
		case PositionDiagonal, PositionBottomCenter:
		default:
			return r, invalidField("watermark.position", ErrInvalidPosition)
		}

		if r.Watermark.Opacity == 0 {
			r.Watermark.Opacity = DefaultOpacity
		}
		if r.Watermark.Opacity < 0 || r.Watermark.Opacity > 1 {
			return r, invalidField("watermark.opacity", ErrInvalidOpacity)
		}
	}

	return r, nil
}

// normalizePrefix strips non-alphanumeric runes and upper-cases the
// remainder. An empty result falls back to the caller-supplied default,
// which is used verbatim.
func normalizePrefix(prefix, fallback string) string {
	var b strings.Builder
	for _, r := range prefix {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}

	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// BatesRequest is the body of the numbering-focused export variant. It
// expands into a full ExportRequest with Bates stamping enabled.
type BatesRequest struct {
	DocumentIDs     []uuid.UUID `json:"documentIds"`
	Prefix          string      `json:"prefix"`
	StartingNumber  int         `json:"startingNumber"`
	IncludeDateTime bool        `json:"includeDateTime"`
	IncludeUserID   bool        `json:"includeUserId"`
}

// ExportRequest expands the variant into a full request. An omitted
// starting number defaults to 1.
func (b BatesRequest) ExportRequest() ExportRequest {
	start := b.StartingNumber
	if start == 0 {
		start = 1
	}

	return ExportRequest{
		DocumentIDs: b.DocumentIDs,
		Format:      FormatZip,
		Bates: BatesOptions{
			Enabled:         true,
			Prefix:          b.Prefix,
			StartNumber:     start,
			IncludeDateTime: b.IncludeDateTime,
			IncludeUserID:   b.IncludeUserID,
		},
	}
}
