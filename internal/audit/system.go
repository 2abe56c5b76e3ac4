package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/legalhold/custodian/pkg/pagination"
)

// System defines audit trail operations.
type System interface {
	// Handler creates an HTTP handler bound to this system.
	Handler() *Handler

	// Record persists a new event and returns it with its assigned
	// identity and timestamp.
	Record(ctx context.Context, cmd RecordCommand) (*Event, error)

	// List returns a page of events matching the given filters,
	// most recent first by default.
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Event], error)

	// Find returns a single event by ID.
	Find(ctx context.Context, id uuid.UUID) (*Event, error)

	// Stats summarizes events recorded within the trailing window.
	Stats(ctx context.Context, window time.Duration) (*Stats, error)

	// Actions returns the distinct action values present in the trail.
	Actions(ctx context.Context) ([]string, error)

	// ResourceTypes returns the distinct resource types present in the
	// trail.
	ResourceTypes(ctx context.Context) ([]string, error)
}
