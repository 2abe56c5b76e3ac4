package api

import (
	"fmt"
	"net/http"

	"github.com/legalhold/custodian/internal/config"
	"github.com/legalhold/custodian/pkg/openapi"
	"github.com/legalhold/custodian/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	docs := domain.Documents.Handler()

	routes.Register(
		mux,
		domain.Cases.Handler().Routes(),
		docs.Routes(),
		docs.CaseRoutes(),
		domain.Audit.Handler().Routes(),
		domain.Export.Handler().Routes(),
	)

	spec, err := openapi.MarshalJSON(buildSpec(cfg))
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}
