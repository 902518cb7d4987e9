package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-qa-web/internal/errors"
)

// Claims are the fields of a backend access token the UI cares about
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// AccessTokenClaims decodes an access token without verifying its signature.
// The backend verifies tokens, the frontend only displays what they say.
func AccessTokenClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("[AccessTokenClaims] %w: %w", apperrors.ErrInvalidToken, err)
	}
	return claims, nil
}

// DisplayName prefers the username claim, then the subject
func (c *Claims) DisplayName() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Subject
}
