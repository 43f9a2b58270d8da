package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskkeeper/internal/client/api"
)

func TestRegister_SetsSessionAndSavesToken(t *testing.T) {
	f := &fakeAPI{authRes: &api.AuthResult{
		Message: "User registered successfully",
		Token:   "tok-1",
		User:    api.User{ID: "u1", Email: "ann@example.com", Name: "Ann"},
	}}
	a, out := newTestApp(t, f, "ann@example.com\nsecret1\nAnn\n")
	a.config.TokenFile = filepath.Join(t.TempDir(), "session", "token")

	require.NoError(t, a.Register(context.Background()))

	assert.Equal(t, "ann@example.com", f.gotEmail)
	assert.Equal(t, "secret1", f.gotPassword)
	assert.Equal(t, "Ann", f.gotName)
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "User registered successfully")

	data, err := os.ReadFile(a.config.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", string(data))
}

func TestLogin_Success(t *testing.T) {
	f := &fakeAPI{authRes: &api.AuthResult{
		Message:   "Login successful",
		Token:     "tok-2",
		ExpiresAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		User:      api.User{ID: "u1", Email: "ann@example.com", Name: "Ann"},
	}}
	a, out := newTestApp(t, f, "ann@example.com\nsecret1\n")

	require.NoError(t, a.Login(context.Background()))

	assert.Equal(t, "tok-2", a.currentToken())
	assert.Contains(t, out.String(), "Hello, Ann!")
	assert.Contains(t, out.String(), "Session valid until 2026-03-0")

	a.setMode(ModeOnline)
	assert.Equal(t, "(ann@example.com online)", a.getStatus())
}

func TestLogin_Rejected(t *testing.T) {
	f := &fakeAPI{authErr: api.ErrUnauthorized}
	a, _ := newTestApp(t, f, "ann@example.com\nwrong\n")

	err := a.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, "invalid email or password", err.Error())
	assert.False(t, a.isLoggedIn())
}

func TestLogin_ServerUnavailable(t *testing.T) {
	f := &fakeAPI{authErr: api.ErrUnavailable}
	a, _ := newTestApp(t, f, "ann@example.com\nsecret1\n")

	err := a.Login(context.Background())
	require.ErrorIs(t, err, api.ErrUnavailable)
	assert.Equal(t, ModeOffline, a.mode)
}

func TestLogout(t *testing.T) {
	a, out := newTestApp(t, &fakeAPI{}, "")
	a.config.TokenFile = filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(a.config.TokenFile, []byte("tok"), 0o600))
	loggedIn(a, "tok")

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Logged out")

	_, err := os.Stat(a.config.TokenFile)
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, a.Logout(context.Background()), errNotLoggedIn)
}

func TestWhoami(t *testing.T) {
	f := &fakeAPI{meUser: &api.User{ID: "u1", Email: "ann@example.com", Name: "Ann"}}
	a, out := newTestApp(t, f, "")

	assert.ErrorIs(t, a.Whoami(context.Background()), errNotLoggedIn)

	loggedIn(a, "tok")
	require.NoError(t, a.Whoami(context.Background()))
	assert.Contains(t, out.String(), "Ann <ann@example.com> id=u1")
}

func TestWhoami_ExpiredTokenClearsSession(t *testing.T) {
	f := &fakeAPI{meErr: api.ErrUnauthorized}
	a, _ := newTestApp(t, f, "")
	loggedIn(a, "stale")

	err := a.Whoami(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please log in")
	assert.False(t, a.isLoggedIn())
}

func TestRestoreSession(t *testing.T) {
	tests := []struct {
		name       string
		meUser     *api.User
		meErr      error
		wantToken  string
		wantFile   bool
		wantOutput string
	}{
		{
			name:       "valid token",
			meUser:     &api.User{ID: "u1", Email: "ann@example.com"},
			wantToken:  "saved",
			wantFile:   true,
			wantOutput: "Restored session for ann@example.com",
		},
		{
			name:       "expired token",
			meErr:      api.ErrUnauthorized,
			wantFile:   false,
			wantOutput: "Saved session expired, please log in",
		},
		{
			name:      "server down keeps token",
			meErr:     api.ErrUnavailable,
			wantToken: "saved",
			wantFile:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out := newTestApp(t, &fakeAPI{meUser: tt.meUser, meErr: tt.meErr}, "")
			a.config.TokenFile = filepath.Join(t.TempDir(), "token")
			require.NoError(t, os.WriteFile(a.config.TokenFile, []byte("saved\n"), 0o600))

			a.restoreSession(context.Background())

			assert.Equal(t, tt.wantToken, a.currentToken())
			_, err := os.Stat(a.config.TokenFile)
			assert.Equal(t, tt.wantFile, err == nil)
			assert.Contains(t, out.String(), tt.wantOutput)
		})
	}
}

func TestRestoreSession_NoFile(t *testing.T) {
	a, _ := newTestApp(t, &fakeAPI{meErr: api.ErrUnauthorized}, "")
	a.config.TokenFile = filepath.Join(t.TempDir(), "missing")

	a.restoreSession(context.Background())
	assert.False(t, a.isLoggedIn())
}
