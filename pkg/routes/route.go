// Package routes declares HTTP endpoints as data so modules can mount
// them under arbitrary prefixes.
package routes

import "net/http"

// Route is one endpoint: method, mux pattern suffix, handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

func (r Route) register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
}
