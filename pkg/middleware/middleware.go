// Package middleware provides the HTTP middleware stack shared by
// mounted modules: request logging and CORS.
package middleware

import "net/http"

// System is an ordered middleware stack. Apply wraps outermost-first,
// so the first Use call sees the request first.
type System interface {
	Use(mw func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	wraps []func(http.Handler) http.Handler
}

// New creates an empty stack.
func New() System {
	return &stack{}
}

func (s *stack) Use(fn func(http.Handler) http.Handler) {
	s.wraps = append(s.wraps, fn)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.wraps) - 1; i >= 0; i-- {
		handler = s.wraps[i](handler)
	}
	return handler
}
