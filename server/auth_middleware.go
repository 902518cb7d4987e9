package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyBrowserID stores the browser session id
	ContextKeyBrowserID ContextKey = "browser_id"
)

// BrowserSessionMiddleware makes sure every browser carries a session cookie.
// The cookie names the namespace its tokens and UI state live under.
func (s *Server) BrowserSessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		browserID := ""
		if cookie, err := r.Cookie(s.config.GetSessionCookieName()); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				browserID = cookie.Value
			}
		}

		if browserID == "" {
			browserID = uuid.NewString()
			s.setBrowserCookie(w, r, browserID)
		}

		ctx := context.WithValue(r.Context(), ContextKeyBrowserID, browserID)
		next(w, r.WithContext(ctx))
	}
}

// BrowserID returns the id set by BrowserSessionMiddleware
func BrowserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyBrowserID).(string)
	return id, ok && id != ""
}
