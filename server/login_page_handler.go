package server

import (
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/jrsteele09/go-qa-web/session"
	"github.com/rs/zerolog/log"
)

const (
	msgMissingCredentials = "Identifier and password are required"
	msgSignInAgain        = "Please sign in again"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	PageData
	FormError  string // Validation error from a rejected submission
	Identifier string // Preserve identifier on error
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		panic("Failed to parse login template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		browserID, _ := BrowserID(ctx)
		data := LoginPageData{
			PageData:   s.pageData(ctx, browserID),
			FormError:  r.URL.Query().Get("error"),
			Identifier: r.URL.Query().Get("identifier"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form submission. The outcome
// lands in the browser's state, the redirect only picks the next page.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		creds := session.Credentials{
			Identifier: r.FormValue("identifier"),
			Password:   r.FormValue("password"),
		}
		if err := creds.Validate(); err != nil {
			log.Debug().Err(err).Msg("Login: rejected form")
			s.renderLoginError(w, r, msgMissingCredentials, creds.Identifier)
			return
		}

		browserID, _ := BrowserID(r.Context())
		mgr, err := s.sessionManager(browserID)
		if err != nil {
			log.Err(err).Msg("Login: failed to resolve session")
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}

		var succeeded atomic.Bool
		call := mgr.Login(r.Context(), creds, func() { succeeded.Store(true) })
		if _, err := call.Wait(r.Context()); err != nil {
			log.Debug().Err(err).Msg("Login: attempt failed")
		}

		if succeeded.Load() {
			redirectSuccess(w, r, RouteHome)
			return
		}
		redirectSuccess(w, r, RouteLogin)
	}
}

// RefreshHandler renews the access token with the refresh token stored for this browser
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		browserID, _ := BrowserID(ctx)
		refreshToken, err := s.storedRefreshToken(ctx, browserID)
		if err != nil {
			log.Debug().Err(err).Msg("Refresh: nothing to refresh with")
			redirectWithError(w, r, RouteLogin, msgSignInAgain)
			return
		}

		mgr, err := s.sessionManager(browserID)
		if err != nil {
			log.Err(err).Msg("Refresh: failed to resolve session")
			http.Error(w, "Refresh failed", http.StatusInternalServerError)
			return
		}

		if _, err := mgr.Refresh(ctx, refreshToken).Wait(ctx); err != nil {
			log.Debug().Err(err).Msg("Refresh: attempt failed")
		}
		redirectSuccess(w, r, RouteHome)
	}
}

// LogoutHandler clears the stored tokens and forgets the browser's state
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		browserID, _ := BrowserID(r.Context())
		mgr, err := s.sessionManager(browserID)
		if err != nil {
			log.Err(err).Msg("Logout: failed to resolve session")
			redirectSuccess(w, r, RouteHome)
			return
		}

		if err := mgr.Logout(r.Context()); err != nil {
			log.Err(err).Msg("Logout: failed to clear stored tokens")
		}
		s.forgetSession(browserID)
		redirectSuccess(w, r, RouteHome)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, identifier string) {
	query := url.Values{"error": {errorMsg}}
	if identifier != "" {
		query.Set("identifier", identifier)
	}
	redirectSuccess(w, r, RouteLogin+"?"+query.Encode())
}
