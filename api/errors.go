package api

import (
	"errors"
	"fmt"

	apperrors "github.com/jrsteele09/go-qa-web/internal/errors"
)

// StatusError is returned when the backend answers with a non 2xx status.
// It matches apperrors.ErrRequestFailed.
type StatusError struct {
	Code   int
	Method string
	Path   string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Unwrap() error {
	return apperrors.ErrRequestFailed
}

// StatusCode lets callers classify the failure without importing this package
func (e *StatusError) StatusCode() int {
	return e.Code
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
