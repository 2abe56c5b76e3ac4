package module

import (
	"net/http"
	"strings"
)

// Router dispatches by first path segment to mounted modules, with a
// plain ServeMux fallback for unmounted paths such as health probes.
type Router struct {
	mounted  map[string]*Module
	fallback *http.ServeMux
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		mounted:  make(map[string]*Module),
		fallback: http.NewServeMux(),
	}
}

// Mount registers a module under its prefix.
func (r *Router) Mount(m *Module) {
	r.mounted[m.prefix] = m
}

// HandleNative registers a pattern on the fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.fallback.HandleFunc(pattern, handler)
}

// ServeHTTP routes to the module owning the first path segment, or to
// the fallback mux when no module matches.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Trailing slashes are dropped so "/api/cases/" and "/api/cases"
	// resolve the same route.
	if p := req.URL.Path; len(p) > 1 && p[len(p)-1] == '/' {
		req.URL.Path = p[:len(p)-1]
	}

	if m, ok := r.mounted[firstSegment(req.URL.Path)]; ok {
		m.Serve(w, req)
		return
	}

	r.fallback.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	rest := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return "/" + rest
}
