package api

import (
	"github.com/legalhold/custodian/internal/audit"
	"github.com/legalhold/custodian/internal/cases"
	"github.com/legalhold/custodian/internal/documents"
	"github.com/legalhold/custodian/internal/export"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Cases     cases.System
	Documents documents.System
	Audit     audit.System
	Export    export.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	caseSystem := cases.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	docSystem := documents.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	auditSystem := audit.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	exportSystem := export.NewService(
		caseSystem,
		docSystem,
		runtime.Storage,
		auditSystem,
		runtime.Logger,
		runtime.Export,
	)

	return &Domain{
		Cases:     caseSystem,
		Documents: docSystem,
		Audit:     auditSystem,
		Export:    exportSystem,
	}
}
