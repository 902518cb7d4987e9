package errors

import (
	"errors"
	"fmt"
)

// Common error types for the web frontend
var (
	// Session errors
	ErrMissingCredentials  = errors.New("identifier and password are required")
	ErrMissingRefreshToken = errors.New("missing refresh token")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")

	// Storage errors
	ErrNotFound = errors.New("not found")

	// Backend errors
	ErrRequestFailed = errors.New("request failed")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
