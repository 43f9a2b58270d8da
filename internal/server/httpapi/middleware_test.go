package httpapi

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth_CollapsesFailures(t *testing.T) {
	e := newTestEnv(t)
	good, userID := e.register(t, "alice@example.com")

	otherIssuer, err := auth.NewTokenIssuer([]byte("another-secret"), time.Hour)
	require.NoError(t, err)
	forged, err := otherIssuer.Issue(userID, time.Now())
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tamperedClaims := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"someone-else","exp":9999999999}`))

	tests := []struct {
		name   string
		header string
		reason string
	}{
		{"no header", "", "missing"},
		{"basic scheme", "Basic dXNlcjpwYXNz", "missing"},
		{"empty bearer", "Bearer ", "missing"},
		{"garbage", "Bearer not-a-token", "malformed"},
		{"wrong secret", "Bearer " + forged, "signature"},
		{"tampered claims", "Bearer " + parts[0] + "." + tamperedClaims + "." + parts[2], "signature"},
		{"claims outside alphabet", "Bearer " + parts[0] + ".!!!!." + parts[2], "malformed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(e.metrics.AuthFailures.WithLabelValues(tt.reason))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
			assert.Equal(t, before+1, testutil.ToFloat64(e.metrics.AuthFailures.WithLabelValues(tt.reason)))
		})
	}
}

func TestRequireAuth_SchemeIsCaseInsensitive(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register(t, "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	e := newTestEnv(t)

	t.Run("allowed preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		e.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	})

	t.Run("allowed simple request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		e.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
		req.Header.Set("Origin", "https://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		e.handler.ServeHTTP(rec, req)

		assert.NotEqual(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/health", "", nil)
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	require.NoError(t, err)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", incoming)
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	assert.Equal(t, incoming, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "injected\nvalue")
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	assert.NotEqual(t, "injected\nvalue", rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/health", "200")))

	rec := e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "taskkeeper_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", errorBody(t, rec))
}
