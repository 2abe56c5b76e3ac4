package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/legalhold/custodian/pkg/pagination"
)

// System defines the public contract for document catalog operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindMany resolves a batch of document ids in a single query.
	// The result maps each found id to its record; ids with no record
	// are simply absent from the map.
	FindMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Document, error)
}
