package session

import (
	"context"

	apperrors "github.com/jrsteele09/go-qa-web/internal/errors"
)

// Credentials are submitted by the login form and never persisted
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Validate rejects credentials with an empty field before they reach the backend
func (c Credentials) Validate() error {
	if c.Identifier == "" || c.Password == "" {
		return apperrors.ErrMissingCredentials
	}
	return nil
}

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type LoginResponse struct {
	Tokens Tokens `json:"tokens"`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

// AuthAPI is the backend the session manager authenticates against
type AuthAPI interface {
	LoginUser(ctx context.Context, creds Credentials) (LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (RefreshResponse, error)
}

// Operation and Outcome label what an Observer is told about
type (
	Operation string
	Outcome   string
)

const (
	OperationLogin   Operation = "login"
	OperationRefresh Operation = "refresh"

	OutcomeSuccess      Outcome = "success"
	OutcomeUnauthorized Outcome = "unauthorized"
	OutcomeFailure      Outcome = "failure"
)

// Observer receives call lifecycle events, used for metrics
type Observer interface {
	Started(op Operation)
	Finished(op Operation, outcome Outcome)
}

type noopObserver struct{}

func (noopObserver) Started(Operation) {}
func (noopObserver) Finished(Operation, Outcome) {}
