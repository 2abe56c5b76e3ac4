// Package api mounts the HTTP surface: domain handlers, shared
// middleware, and the generated OpenAPI document.
package api

import (
	"net/http"

	"github.com/legalhold/custodian/internal/config"
	"github.com/legalhold/custodian/internal/infrastructure"
	"github.com/legalhold/custodian/pkg/middleware"
	"github.com/legalhold/custodian/pkg/module"
)

// NewModule wires the domain systems into a prefix-mounted module.
// CORS runs outermost so preflight requests short-circuit before the
// request logger.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, NewDomain(runtime), cfg); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	return m, nil
}
