package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLoading  = errors.New("session is still loading")
	ErrInvalidCriteria = errors.New("invalid filter criteria")
)

// FetchError reports a failed read of the attendance source.
// Status is the upstream HTTP status when one was received.
type FetchError struct {
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExportError reports a failure while encoding or delivering a spreadsheet.
type ExportError struct {
	Stage string
	Err   error
}

func (e *ExportError) Error() string { return fmt.Sprintf("export %s: %v", e.Stage, e.Err) }

func (e *ExportError) Unwrap() error { return e.Err }

// InvalidCriteria wraps ErrInvalidCriteria with the offending field.
func InvalidCriteria(field, value string) error {
	return fmt.Errorf("%w: %s %q must be YYYY-MM-DD", ErrInvalidCriteria, field, value)
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	var fetchErr *FetchError
	var exportErr *ExportError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionLoading):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCriteria):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &exportErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
