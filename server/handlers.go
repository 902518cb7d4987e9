package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// StatusResponse is what GET /auth/status reports for the calling browser
type StatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Loading       bool   `json:"loading"`
	Error         string `json:"error,omitempty"`
}

// StatusHandler lets scripts poll the session state of their browser
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		browserID, ok := BrowserID(r.Context())
		if !ok {
			writeJSONError(w, "no_session", "browser session missing", http.StatusBadRequest)
			return
		}

		data := s.pageData(r.Context(), browserID)
		writeJSON(w, http.StatusOK, StatusResponse{
			Authenticated: data.Authenticated,
			Loading:       data.Loading,
			Error:         data.Error,
		})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
