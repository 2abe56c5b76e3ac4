package cases

import (
	"context"

	"github.com/google/uuid"

	"github.com/legalhold/custodian/pkg/pagination"
)

// System defines the public contract for case catalog operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Case], error)

	Find(ctx context.Context, id uuid.UUID) (*Case, error)
}
