package apifake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-qa-web/session"
)

// FakeAuthAPI answers with canned responses. When Gate is set every call
// blocks until a value is sent on it (or the context ends).
type FakeAuthAPI struct {
	mu sync.Mutex

	LoginResp   session.LoginResponse
	LoginErr    error
	RefreshResp session.RefreshResponse
	RefreshErr  error
	Gate        chan struct{}

	LoginCalls   []session.Credentials
	RefreshCalls []string
}

var _ session.AuthAPI = (*FakeAuthAPI)(nil)

func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{}
}

func (f *FakeAuthAPI) LoginUser(ctx context.Context, creds session.Credentials) (session.LoginResponse, error) {
	f.mu.Lock()
	f.LoginCalls = append(f.LoginCalls, creds)
	resp, err, gate := f.LoginResp, f.LoginErr, f.Gate
	f.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return session.LoginResponse{}, err
	}
	return resp, err
}

func (f *FakeAuthAPI) RefreshToken(ctx context.Context, refreshToken string) (session.RefreshResponse, error) {
	f.mu.Lock()
	f.RefreshCalls = append(f.RefreshCalls, refreshToken)
	resp, err, gate := f.RefreshResp, f.RefreshErr, f.Gate
	f.mu.Unlock()

	if err := wait(ctx, gate); err != nil {
		return session.RefreshResponse{}, err
	}
	return resp, err
}

// LoginCount returns the number of LoginUser calls so far
func (f *FakeAuthAPI) LoginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.LoginCalls)
}

// RefreshCount returns the number of RefreshToken calls so far
func (f *FakeAuthAPI) RefreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.RefreshCalls)
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatusError is an error carrying an HTTP status, like the real client returns
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return "unexpected status" }
func (e *StatusError) StatusCode() int { return e.Code }
