package api

import (
	"github.com/legalhold/custodian/internal/config"
	"github.com/legalhold/custodian/internal/export"
	"github.com/legalhold/custodian/internal/infrastructure"
	"github.com/legalhold/custodian/pkg/pagination"
)

// Runtime is the infrastructure view handed to domain systems, plus
// the API-scoped settings they draw from configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Export     export.Options
}

// NewRuntime scopes the shared logger to this module and snapshots the
// export pipeline options.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Export: export.Options{
			MaxWorkers:      cfg.Export.MaxWorkers,
			MaxArchiveBytes: cfg.Export.MaxArchiveSizeBytes(),
			ReserveSkipped:  cfg.Export.ReserveSkipped,
		},
	}
}
