package session_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-qa-web/appstate"
	"github.com/jrsteele09/go-qa-web/session"
	"github.com/jrsteele09/go-qa-web/session/apifake"
	"github.com/jrsteele09/go-qa-web/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testNamespace = "browser-1"

// testFixture holds all test dependencies
type testFixture struct {
	api      *apifake.FakeAuthAPI
	repo     *storage.InMemoryRepo
	store    storage.KeyValue
	state    *appstate.State
	logs     *bytes.Buffer
	observer *recordingObserver
	manager  *session.Manager
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		api:      apifake.NewFakeAuthAPI(),
		repo:     storage.NewInMemoryRepo(),
		state:    appstate.New(),
		logs:     &bytes.Buffer{},
		observer: &recordingObserver{},
	}
	f.store = storage.Scoped(f.repo, testNamespace)
	f.manager = session.NewManager(f.api, f.store, f.state,
		session.WithLogger(zerolog.New(f.logs)),
		session.WithObserver(f.observer),
	)
	return f
}

func (f *testFixture) item(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, err := f.store.GetItem(context.Background(), key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false
	}
	require.NoError(t, err)
	return v, true
}

type recordingObserver struct {
	mu       sync.Mutex
	started  []session.Operation
	finished []string
}

func (o *recordingObserver) Started(op session.Operation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, op)
}

func (o *recordingObserver) Finished(op session.Operation, outcome session.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, fmt.Sprintf("%s:%s", op, outcome))
}

func validCredentials() session.Credentials {
	return session.Credentials{Identifier: "jane", Password: "secret"}
}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores both tokens and authenticates", func(t *testing.T) {
		f := setupTestFixture(t)
		f.state.SetError("stale error")
		f.api.LoginResp = session.LoginResponse{Tokens: session.Tokens{Access: "access-1", Refresh: "refresh-1"}}

		calls := 0
		resp, err := f.manager.Login(ctx, validCredentials(), func() { calls++ }).Wait(ctx)
		require.NoError(t, err)
		require.Equal(t, "access-1", resp.Tokens.Access)

		_, hasErr := f.state.Error()
		require.False(t, hasErr)
		require.True(t, f.state.IsAuthenticated())
		require.Equal(t, 1, calls)

		access, ok := f.item(t, storage.KeyAccessToken)
		require.True(t, ok)
		require.Equal(t, "access-1", access)
		refresh, ok := f.item(t, storage.KeyRefreshToken)
		require.True(t, ok)
		require.Equal(t, "refresh-1", refresh)

		require.Equal(t, []session.Credentials{validCredentials()}, f.api.LoginCalls)
		require.Equal(t, []string{"login:success"}, f.observer.finished)
	})

	t.Run("continuation sees the authenticated state", func(t *testing.T) {
		f := setupTestFixture(t)
		f.api.LoginResp = session.LoginResponse{Tokens: session.Tokens{Access: "a", Refresh: "r"}}

		var authenticated bool
		_, err := f.manager.Login(ctx, validCredentials(), func() {
			authenticated = f.state.IsAuthenticated()
		}).Wait(ctx)
		require.NoError(t, err)
		require.True(t, authenticated)
	})

	t.Run("nil continuation", func(t *testing.T) {
		f := setupTestFixture(t)
		f.api.LoginResp = session.LoginResponse{Tokens: session.Tokens{Access: "a", Refresh: "r"}}
		_, err := f.manager.Login(ctx, validCredentials(), nil).Wait(ctx)
		require.NoError(t, err)
	})

	t.Run("unauthorized", func(t *testing.T) {
		f := setupTestFixture(t)
		f.api.LoginErr = &apifake.StatusError{Code: http.StatusUnauthorized}

		called := false
		_, err := f.manager.Login(ctx, validCredentials(), func() { called = true }).Wait(ctx)
		require.Error(t, err)
		require.False(t, called)

		msg, ok := f.state.Error()
		require.True(t, ok)
		require.Equal(t, "Identifier or password is incorrect", msg)
		require.False(t, f.state.IsAuthenticated())

		_, ok = f.item(t, storage.KeyAccessToken)
		require.False(t, ok)
		require.Contains(t, f.logs.String(), "Error logging in user")
		require.Equal(t, []string{"login:unauthorized"}, f.observer.finished)
	})

	t.Run("unauthorized leaves an authenticated flag alone", func(t *testing.T) {
		f := setupTestFixture(t)
		f.state.SetAuthenticated(true)
		f.api.LoginErr = &apifake.StatusError{Code: http.StatusUnauthorized}

		_, err := f.manager.Login(ctx, validCredentials(), nil).Wait(ctx)
		require.Error(t, err)
		require.True(t, f.state.IsAuthenticated())
	})

	t.Run("other failures get the generic message", func(t *testing.T) {
		for name, apiErr := range map[string]error{
			"server error": &apifake.StatusError{Code: http.StatusInternalServerError},
			"forbidden":    &apifake.StatusError{Code: http.StatusForbidden},
			"network":      errors.New("connection refused"),
			"wrapped 400":  fmt.Errorf("login: %w", &apifake.StatusError{Code: http.StatusBadRequest}),
		} {
			t.Run(name, func(t *testing.T) {
				f := setupTestFixture(t)
				f.api.LoginErr = apiErr

				_, err := f.manager.Login(ctx, validCredentials(), nil).Wait(ctx)
				require.Error(t, err)

				msg, ok := f.state.Error()
				require.True(t, ok)
				require.Equal(t, "Error logging in user", msg)
				require.Contains(t, f.logs.String(), "Error logging in user")
			})
		}
	})

	t.Run("wrapped 401 is still unauthorized", func(t *testing.T) {
		f := setupTestFixture(t)
		f.api.LoginErr = fmt.Errorf("login: %w", &apifake.StatusError{Code: http.StatusUnauthorized})

		_, err := f.manager.Login(ctx, validCredentials(), nil).Wait(ctx)
		require.Error(t, err)
		msg, _ := f.state.Error()
		require.Equal(t, session.MsgInvalidCredentials, msg)
	})

	t.Run("storage failure does not leave a partial session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.api.LoginResp = session.LoginResponse{Tokens: session.Tokens{Access: "a", Refresh: "r"}}
		failing := &failingStore{KeyValue: f.store, failKey: storage.KeyRefreshToken}
		m := session.NewManager(f.api, failing, f.state, session.WithLogger(zerolog.Nop()))

		_, err := m.Login(ctx, validCredentials(), nil).Wait(ctx)
		require.Error(t, err)
		require.False(t, f.state.IsAuthenticated())
		msg, _ := f.state.Error()
		require.Equal(t, session.MsgLoginFailed, msg)

		_, ok := f.item(t, storage.KeyAccessToken)
		require.False(t, ok)
	})

	t.Run("last response wins", func(t *testing.T) {
		f := setupTestFixture(t)
		f.api.Gate = make(chan struct{})
		f.api.LoginErr = &apifake.StatusError{Code: http.StatusUnauthorized}

		first := f.manager.Login(ctx, validCredentials(), nil)
		require.Eventually(t, func() bool { return f.api.LoginCount() == 1 }, time.Second, time.Millisecond)
		f.api.Gate <- struct{}{}
		_, err := first.Wait(ctx)
		require.Error(t, err)

		f.api.LoginErr = errors.New("boom")
		second := f.manager.Login(ctx, validCredentials(), nil)
		f.api.Gate <- struct{}{}
		_, err = second.Wait(ctx)
		require.Error(t, err)

		msg, _ := f.state.Error()
		require.Equal(t, session.MsgLoginFailed, msg)
	})

	t.Run("cancelled context aborts the request", func(t *testing.T) {
		f := setupTestFixture(t)
		f.api.Gate = make(chan struct{})

		cctx, cancel := context.WithCancel(ctx)
		call := f.manager.Login(cctx, validCredentials(), nil)
		cancel()

		_, err := call.Wait(context.Background())
		require.ErrorIs(t, err, context.Canceled)
		msg, _ := f.state.Error()
		require.Equal(t, session.MsgLoginFailed, msg)
		require.False(t, f.manager.IsLoading())
	})
}

func TestManager_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("success rewrites only the access token", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.SetItem(ctx, storage.KeyAccessToken, "old-access"))
		require.NoError(t, f.store.SetItem(ctx, storage.KeyRefreshToken, "stored-refresh"))
		f.state.SetError("stale")
		f.api.RefreshResp = session.RefreshResponse{Access: "new-access"}

		resp, err := f.manager.Refresh(ctx, "given-refresh").Wait(ctx)
		require.NoError(t, err)
		require.Equal(t, "new-access", resp.Access)

		access, _ := f.item(t, storage.KeyAccessToken)
		require.Equal(t, "new-access", access)
		refresh, _ := f.item(t, storage.KeyRefreshToken)
		require.Equal(t, "stored-refresh", refresh)

		_, hasErr := f.state.Error()
		require.False(t, hasErr)
		require.Equal(t, []string{"given-refresh"}, f.api.RefreshCalls)
	})

	t.Run("refresh token is never read from storage", func(t *testing.T) {
		f := setupTestFixture(t)
		f.api.RefreshResp = session.RefreshResponse{Access: "new-access"}
		spy := &spyStore{KeyValue: f.store}
		m := session.NewManager(f.api, spy, f.state, session.WithLogger(zerolog.Nop()))

		_, err := m.Refresh(ctx, "given-refresh").Wait(ctx)
		require.NoError(t, err)
		require.Empty(t, spy.reads)
		require.Equal(t, []string{storage.KeyAccessToken}, spy.writes)
	})

	t.Run("failure keeps stored tokens", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.SetItem(ctx, storage.KeyAccessToken, "old-access"))
		require.NoError(t, f.store.SetItem(ctx, storage.KeyRefreshToken, "stored-refresh"))
		f.api.RefreshErr = &apifake.StatusError{Code: http.StatusUnauthorized}

		_, err := f.manager.Refresh(ctx, "stored-refresh").Wait(ctx)
		require.Error(t, err)

		msg, ok := f.state.Error()
		require.True(t, ok)
		require.Equal(t, "Error refreshing token", msg)

		access, _ := f.item(t, storage.KeyAccessToken)
		require.Equal(t, "old-access", access)
		refresh, _ := f.item(t, storage.KeyRefreshToken)
		require.Equal(t, "stored-refresh", refresh)
		require.Contains(t, f.logs.String(), "Error refreshing token")
		require.Equal(t, []string{"refresh:failure"}, f.observer.finished)
	})
}

func TestManager_IsLoading(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.api.Gate = make(chan struct{})
	f.api.LoginResp = session.LoginResponse{Tokens: session.Tokens{Access: "a", Refresh: "r"}}
	f.api.RefreshResp = session.RefreshResponse{Access: "a2"}

	require.False(t, f.manager.IsLoading())

	login := f.manager.Login(ctx, validCredentials(), nil)
	refresh := f.manager.Refresh(ctx, "r")
	require.True(t, f.manager.IsLoading())

	// Both requests are parked on the gate
	require.Eventually(t, func() bool {
		return f.api.LoginCount() == 1 && f.api.RefreshCount() == 1
	}, time.Second, time.Millisecond)
	require.True(t, f.manager.IsLoading())

	f.api.Gate <- struct{}{}
	// One of the two resolved, the other is still outstanding
	require.Eventually(t, func() bool {
		_, _, loginDone := login.Result()
		_, _, refreshDone := refresh.Result()
		return loginDone != refreshDone
	}, time.Second, time.Millisecond)
	require.True(t, f.manager.IsLoading())

	f.api.Gate <- struct{}{}
	_, err := login.Wait(ctx)
	require.NoError(t, err)
	_, err = refresh.Wait(ctx)
	require.NoError(t, err)
	require.False(t, f.manager.IsLoading())
}

func TestManager_Logout(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.api.LoginResp = session.LoginResponse{Tokens: session.Tokens{Access: "a", Refresh: "r"}}
	_, err := f.manager.Login(ctx, validCredentials(), nil).Wait(ctx)
	require.NoError(t, err)

	require.NoError(t, f.manager.Logout(ctx))
	require.False(t, f.state.IsAuthenticated())
	_, ok := f.item(t, storage.KeyAccessToken)
	require.False(t, ok)
	_, ok = f.item(t, storage.KeyRefreshToken)
	require.False(t, ok)
}

func TestCall_WaitHonoursContext(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Gate = make(chan struct{})
	call := f.manager.Refresh(context.Background(), "r")

	wctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := call.Wait(wctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, _, done := call.Result()
	require.False(t, done)
	require.True(t, f.manager.IsLoading())

	close(f.api.Gate)
	<-call.Done()
	require.False(t, f.manager.IsLoading())
}

type failingStore struct {
	storage.KeyValue
	failKey string
}

func (s *failingStore) SetItem(ctx context.Context, key, value string) error {
	if key == s.failKey {
		return errors.New("disk full")
	}
	return s.KeyValue.SetItem(ctx, key, value)
}

type spyStore struct {
	storage.KeyValue
	reads  []string
	writes []string
}

func (s *spyStore) GetItem(ctx context.Context, key string) (string, error) {
	s.reads = append(s.reads, key)
	return s.KeyValue.GetItem(ctx, key)
}

func (s *spyStore) SetItem(ctx context.Context, key, value string) error {
	s.writes = append(s.writes, key)
	return s.KeyValue.SetItem(ctx, key, value)
}
