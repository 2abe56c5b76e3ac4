// Package openapi generates an OpenAPI 3.1 document from typed Go
// values and serves the serialized result.
package openapi

import "net/http"

// Spec is the root OpenAPI 3.1 document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// NewSpec starts a 3.1.0 document with the shared component set and an
// empty path table.
func NewSpec(title, version string) *Spec {
	spec := &Spec{
		OpenAPI: "3.1.0",
		Info:    &Info{Title: title, Version: version},
	}
	spec.Components = NewComponents()
	spec.Paths = map[string]*PathItem{}
	return spec
}

// AddServer records a base URL the API is served from.
func (s *Spec) AddServer(url string) {
	s.Servers = append(s.Servers, &Server{URL: url})
}

// SetDescription fills the info description.
func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

// ServeSpec serves spec bytes that were serialized once at startup.
func ServeSpec(specBytes []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(specBytes)
	}
}
