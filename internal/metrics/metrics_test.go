package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-qa-web/internal/metrics"
	"github.com/jrsteele09/go-qa-web/session"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := metrics.New()
	r.Started(session.OperationLogin)
	r.Finished(session.OperationLogin, session.OutcomeUnauthorized)
	r.ObserveRequest(http.MethodGet, "/", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, `qaweb_session_calls_total{operation="login",outcome="unauthorized"} 1`)
	require.Contains(t, body, `qaweb_session_calls_in_flight{operation="login"} 0`)
	require.Contains(t, body, `qaweb_http_requests_total{method="GET",route="/",status="200"} 1`)
}
