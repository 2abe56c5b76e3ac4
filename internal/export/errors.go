package export

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptySelection     = errors.New("document selection is empty")
	ErrDuplicateSelection = errors.New("document selection contains duplicate ids")
	ErrMissingCaseID      = errors.New("case id is required")
	ErrInvalidCaseID      = errors.New("invalid case id")
	ErrInvalidStartNumber = errors.New("start number must be at least 1")
	ErrInvalidOpacity     = errors.New("opacity must be greater than 0 and at most 1")
	ErrInvalidPosition    = errors.New("position must be diagonal or bottom-center")
	ErrUnsupportedFormat  = errors.New("unsupported archive format")
	ErrCaseNotFound       = errors.New("case not found")
	ErrNothingExported    = errors.New("no documents could be exported")
	ErrArchiveTooLarge    = errors.New("archive exceeds the configured size limit")
	ErrArchiveWriter      = errors.New("archive assembly failed")
)

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalidField(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// MapHTTPStatus maps export errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, ErrInvalidCaseID):
		return http.StatusBadRequest
	case errors.Is(err, ErrCaseNotFound), errors.Is(err, ErrNothingExported):
		return http.StatusNotFound
	case errors.Is(err, ErrArchiveTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
