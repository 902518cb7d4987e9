// Package session turns submitted credentials into persisted session tokens and
// reports the outcome through the shared application state.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-qa-web/appstate"
	"github.com/jrsteele09/go-qa-web/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// User facing messages written to the state's error cell
const (
	MsgInvalidCredentials = "Identifier or password is incorrect"
	MsgLoginFailed        = "Error logging in user"
	MsgRefreshFailed      = "Error refreshing token"
)

// Manager handles login, token refresh and logout for one browser session
type Manager struct {
	api      AuthAPI
	store    storage.KeyValue
	state    *appstate.State
	logger   zerolog.Logger
	observer Observer

	login   *Mutation[Credentials, LoginResponse]
	refresh *Mutation[string, RefreshResponse]
}

type Option func(*Manager)

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithObserver(o Observer) Option {
	return func(m *Manager) {
		if o != nil {
			m.observer = o
		}
	}
}

func NewManager(api AuthAPI, store storage.KeyValue, state *appstate.State, opts ...Option) *Manager {
	m := &Manager{
		api:      api,
		store:    store,
		state:    state,
		logger:   log.Logger,
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(m)
	}

	m.login = NewMutation(m.requestLogin, m.loginSucceeded, m.loginFailed)
	m.refresh = NewMutation(m.requestRefresh, m.refreshSucceeded, m.refreshFailed)
	return m
}

// Login authenticates creds in the background. onSuccess runs once the tokens
// are stored and the state is marked authenticated. Failures are reported
// through the state's error message and the returned Call, never by panicking.
func (m *Manager) Login(ctx context.Context, creds Credentials, onSuccess func()) *Call[LoginResponse] {
	m.observer.Started(OperationLogin)
	var continuation func(LoginResponse)
	if onSuccess != nil {
		continuation = func(LoginResponse) { onSuccess() }
	}
	return m.login.Mutate(ctx, creds, continuation)
}

// Refresh exchanges refreshToken for a new access token. Only the access token
// entry is rewritten.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) *Call[RefreshResponse] {
	m.observer.Started(OperationRefresh)
	return m.refresh.Mutate(ctx, refreshToken, nil)
}

// IsLoading is true while a login or a refresh call is unresolved
func (m *Manager) IsLoading() bool {
	return m.login.IsLoading() || m.refresh.IsLoading()
}

// Logout forgets both tokens and marks the state unauthenticated
func (m *Manager) Logout(ctx context.Context) error {
	var errs []error
	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken} {
		if err := m.store.RemoveItem(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("[Manager Logout] remove %s: %w", key, err))
		}
	}
	m.state.SetAuthenticated(false)
	m.state.ClearError()
	return errors.Join(errs...)
}

func (m *Manager) requestLogin(ctx context.Context, creds Credentials) (LoginResponse, error) {
	return m.api.LoginUser(ctx, creds)
}

func (m *Manager) loginSucceeded(ctx context.Context, resp LoginResponse) error {
	m.state.ClearError()
	if err := m.store.SetItem(ctx, storage.KeyAccessToken, resp.Tokens.Access); err != nil {
		return fmt.Errorf("[Manager Login] store access token: %w", err)
	}
	if err := m.store.SetItem(ctx, storage.KeyRefreshToken, resp.Tokens.Refresh); err != nil {
		// Don't leave a lone access token behind
		if rmErr := m.store.RemoveItem(ctx, storage.KeyAccessToken); rmErr != nil {
			m.logger.Warn().Err(rmErr).Msg("Failed to roll back access token")
		}
		return fmt.Errorf("[Manager Login] store refresh token: %w", err)
	}
	m.state.SetAuthenticated(true)
	m.observer.Finished(OperationLogin, OutcomeSuccess)
	return nil
}

func (m *Manager) loginFailed(err error) {
	if IsUnauthorized(err) {
		m.state.SetError(MsgInvalidCredentials)
		m.observer.Finished(OperationLogin, OutcomeUnauthorized)
	} else {
		m.state.SetError(MsgLoginFailed)
		m.observer.Finished(OperationLogin, OutcomeFailure)
	}
	m.logger.Error().Err(err).Msg("Error logging in user")
}

func (m *Manager) requestRefresh(ctx context.Context, refreshToken string) (RefreshResponse, error) {
	return m.api.RefreshToken(ctx, refreshToken)
}

func (m *Manager) refreshSucceeded(ctx context.Context, resp RefreshResponse) error {
	m.state.ClearError()
	if err := m.store.SetItem(ctx, storage.KeyAccessToken, resp.Access); err != nil {
		return fmt.Errorf("[Manager Refresh] store access token: %w", err)
	}
	m.observer.Finished(OperationRefresh, OutcomeSuccess)
	return nil
}

func (m *Manager) refreshFailed(err error) {
	m.state.SetError(MsgRefreshFailed)
	m.observer.Finished(OperationRefresh, OutcomeFailure)
	m.logger.Error().Err(err).Msg("Error refreshing token")
}

type statusCoder interface {
	StatusCode() int
}

// IsUnauthorized reports whether err carries an HTTP 401 status
func IsUnauthorized(err error) bool {
	var sc statusCoder
	return errors.As(err, &sc) && sc.StatusCode() == http.StatusUnauthorized
}
