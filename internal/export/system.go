package export

import (
	"context"

	"github.com/google/uuid"
)

// System defines the export pipeline operations.
type System interface {
	// Handler creates an HTTP handler bound to this system.
	Handler() *Handler

	// Preview computes selection statistics without producing output.
	Preview(ctx context.Context, caseID uuid.UUID, documentIDs []uuid.UUID, actor string) (*PreviewResult, error)

	// Export produces the archive for a full export request.
	Export(ctx context.Context, caseID uuid.UUID, req ExportRequest, actor string) (*ExportResult, error)

	// ExportBates produces the archive for the numbering-focused
	// variant.
	ExportBates(ctx context.Context, caseID uuid.UUID, req BatesRequest, actor string) (*ExportResult, error)
}
