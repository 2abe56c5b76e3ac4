// Package module mounts feature routers under path prefixes, each with
// its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/legalhold/custodian/pkg/middleware"
)

// Module serves a router under a single-level path prefix. The prefix
// is stripped before dispatch so inner routes stay mount-agnostic.
type Module struct {
	prefix string
	router http.Handler
	stack  middleware.System
}

// New creates a Module. It panics on an invalid prefix: the prefix must
// be non-empty, start with "/", and name exactly one level ("/api",
// not "/api/v1").
func New(prefix string, router http.Handler) *Module {
	switch {
	case prefix == "":
		panic(fmt.Errorf("module prefix cannot be empty"))
	case !strings.HasPrefix(prefix, "/"):
		panic(fmt.Errorf("module prefix must start with /: %s", prefix))
	case strings.Count(prefix, "/") != 1:
		panic(fmt.Errorf("module prefix must be a single-level sub-path: %s", prefix))
	}

	return &Module{
		prefix: prefix,
		router: router,
		stack:  middleware.New(),
	}
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module's stack.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.stack.Use(mw)
}

// Handler returns the inner router wrapped by the middleware stack.
func (m *Module) Handler() http.Handler {
	return m.stack.Apply(m.router)
}

// Serve dispatches req to the inner router with the mount prefix
// removed from the request path.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	inner := req.Clone(req.Context())
	inner.URL.Path = strings.TrimPrefix(req.URL.Path, m.prefix)
	if inner.URL.Path == "" {
		inner.URL.Path = "/"
	}
	inner.URL.RawPath = ""

	m.Handler().ServeHTTP(w, inner)
}
