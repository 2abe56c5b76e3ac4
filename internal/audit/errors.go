package audit

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("audit event not found")
	ErrDuplicate     = errors.New("audit event already exists")
	ErrInvalidID     = errors.New("invalid audit event id")
	ErrInvalidWindow = errors.New("hours must be a whole number between 1 and 8760")
)

// MapHTTPStatus translates audit errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
