package routes

import "net/http"

// Group nests routes under a shared prefix. Child groups inherit the
// parent prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register mounts every route in the given groups onto mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "")
	}
}

func (g Group) register(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		r.register(mux, prefix)
	}
	for _, child := range g.Children {
		child.register(mux, prefix)
	}
}
