package server

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/jrsteele09/go-qa-web/internal/errors"
	"github.com/jrsteele09/go-qa-web/session"
	"github.com/jrsteele09/go-qa-web/storage"
	"github.com/rs/zerolog/log"
)

// PageData is shared by every server rendered page
type PageData struct {
	AppName       string
	Authenticated bool
	User          string
	TokenExpiry   string
	Error         string
	Loading       bool
}

// pageData reports the browser's session without registering it. A browser
// whose tokens have expired from storage is shown as signed out.
func (s *Server) pageData(ctx context.Context, browserID string) PageData {
	snap, loading := s.sessionView(browserID)
	data := PageData{
		AppName: s.config.GetAppName(),
		Error:   snap.Error,
		Loading: loading,
	}
	if !snap.Authenticated {
		return data
	}

	access := s.storedToken(ctx, browserID, storage.KeyAccessToken)
	if access == "" {
		return data
	}
	data.Authenticated = true

	claims, err := session.AccessTokenClaims(access)
	if err != nil {
		log.Debug().Err(err).Msg("Access token is not a readable JWT")
		return data
	}
	data.User = claims.DisplayName()
	if claims.ExpiresAt != nil {
		data.TokenExpiry = claims.ExpiresAt.Time.Format(time.RFC1123)
	}
	return data
}

// storedToken reads a token from the browser's storage, empty when absent
func (s *Server) storedToken(ctx context.Context, browserID, key string) string {
	value, err := storage.Scoped(s.storage, browserID).GetItem(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Err(err).Str("key", key).Msg("Failed to read stored token")
		}
		return ""
	}
	return value
}

// storedRefreshToken is the refresh token an explicit refresh is sent with
func (s *Server) storedRefreshToken(ctx context.Context, browserID string) (string, error) {
	token := s.storedToken(ctx, browserID, storage.KeyRefreshToken)
	if token == "" {
		return "", apperrors.Wrapf(apperrors.ErrMissingRefreshToken, "[Server storedRefreshToken] browser %s", browserID)
	}
	return token, nil
}
