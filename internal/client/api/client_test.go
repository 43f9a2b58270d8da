package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newServer starts the real HTTP API over in-memory storage.
func newServer(t *testing.T) *Client {
	t.Helper()

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost, 2)
	require.NoError(t, err)
	issuer, err := auth.NewTokenIssuer([]byte("client-test-secret"), time.Hour)
	require.NoError(t, err)

	m := memory.NewRepositoryManager()
	a := httpapi.New(services.NewUserService(nil, m, hasher, issuer, nil), services.NewItemService(nil, m, nil))

	srv := httptest.NewServer(a.Router())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:3001", "ftp://host", "http://"} {
		_, err := New(u, time.Second)
		assert.Error(t, err, u)
	}
}

func TestClient_FullFlow(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	require.NoError(t, c.Ping(ctx))

	reg, err := c.Register(ctx, "alice@example.com", []byte("hunter22"), "Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.True(t, reg.ExpiresAt.After(time.Now()))
	assert.Equal(t, "Alice", reg.User.Name)

	_, err = c.Register(ctx, "alice@example.com", []byte("hunter22"), "Alice")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "User with this email already exists", apiErr.Message)

	_, err = c.Login(ctx, "alice@example.com", []byte("nope-nope"))
	require.ErrorIs(t, err, ErrUnauthorized)

	login, err := c.Login(ctx, "alice@example.com", []byte("hunter22"))
	require.NoError(t, err)
	token := login.Token

	me, err := c.Me(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, reg.User, *me)

	item, err := c.CreateItem(ctx, token, ItemInput{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "pending", item.Status)

	item, err = c.UpdateItem(ctx, token, item.ID, ItemInput{Title: "Buy milk", Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", item.Status)

	got, err := c.GetItem(ctx, token, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	list, err := c.ListItems(ctx, token)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.DeleteItem(ctx, token, item.ID))
	_, err = c.GetItem(ctx, token, item.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.ListItems(ctx, "not-a-token")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, time.Second)
	require.NoError(t, err)

	err = c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_ServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantIs  error
		wantMsg string
	}{
		{name: "opaque 500", status: http.StatusInternalServerError, body: `{"error":"internal server error"}`, wantMsg: "internal server error"},
		{name: "bare 502", status: http.StatusBadGateway, body: "<html>", wantIs: ErrUnavailable},
		{name: "validation", status: http.StatusBadRequest, body: `{"error":"title is required"}`, wantMsg: "title is required"},
		{name: "no body", status: http.StatusConflict, wantMsg: "Conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			c, err := New(srv.URL, time.Second)
			require.NoError(t, err)

			_, err = c.CreateItem(context.Background(), "tok", ItemInput{Title: "x"})
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
				return
			}
			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	items, err := c.ListItems(context.Background(), "abc.def.ghi")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "Bearer abc.def.ghi", gotAuth)
}
