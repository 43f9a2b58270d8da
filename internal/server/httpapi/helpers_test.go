package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("http-test-secret")

type testEnv struct {
	api     *API
	handler http.Handler
	issuer  *auth.TokenIssuer
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost, 2)
	require.NoError(t, err)
	issuer, err := auth.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	m := memory.NewRepositoryManager()
	us := services.NewUserService(nil, m, hasher, issuer, nil)
	is := services.NewItemService(nil, m, nil)
	mt := metrics.MustNew()

	a := New(us, is, WithMetrics(mt), WithAllowedOrigins([]string{"http://localhost:5173"}))
	return &testEnv{api: a, handler: a.Router(), issuer: issuer, metrics: mt}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token and user ID.
func (e *testEnv) register(t *testing.T, email string) (string, string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Email: email, Password: "hunter22", Name: "Tester"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res AuthResponse
	decode(t, rec, &res)
	return res.Token, res.User.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e ErrorResponse
	decode(t, rec, &e)
	return e.Error
}
