package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/client/api"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/filex"
)

// Indirections over the interactive input helpers, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

var errNotLoggedIn = errors.New("not logged in, use 'login' or 'register'")

// Register prompts for email, password and display name and creates an
// account. On success the returned session becomes the current one.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}

	res, err := a.api.Register(ctx, email, password, name)
	if err != nil {
		return a.sessionError(err)
	}

	a.setSession(res.Token, &res.User)
	fmt.Fprintln(a.out, res.Message)
	return nil
}

// Login prompts for credentials and authenticates against the server.
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("invalid email or password")
		}
		return a.sessionError(err)
	}

	a.setSession(res.Token, &res.User)
	fmt.Fprintf(a.out, "%s. Hello, %s!\n", res.Message, res.User.Name)
	if !res.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Session valid until %s\n", res.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// Logout forgets the current session and removes the saved token file.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	a.clearSession()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Whoami asks the server who the current token belongs to.
func (a *App) Whoami(ctx context.Context) error {
	token := a.currentToken()
	if token == "" {
		return errNotLoggedIn
	}

	u, err := a.api.Me(ctx, token)
	if err != nil {
		return a.sessionError(err)
	}

	fmt.Fprintf(a.out, "%s <%s> id=%s\n", u.Name, u.Email, u.ID)
	return nil
}

// restoreSession loads a saved token and checks it with the server.
// A token the server rejects is discarded; an unreachable server keeps it.
func (a *App) restoreSession(ctx context.Context) {
	if a.config.TokenFile == "" {
		return
	}

	data, ok, err := filex.ReadIfExists(a.config.TokenFile)
	if err != nil {
		log.Printf("read token file: %v", err)
		return
	}
	if !ok {
		return
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return
	}

	u, err := a.api.Me(ctx, token)
	switch {
	case err == nil:
		a.mu.Lock()
		a.token, a.user = token, u
		a.mu.Unlock()
		fmt.Fprintf(a.out, "Restored session for %s\n", u.Email)
	case errors.Is(err, api.ErrUnauthorized):
		fmt.Fprintln(a.out, "Saved session expired, please log in")
		a.clearSession()
	default:
		a.mu.Lock()
		a.token = token
		a.mu.Unlock()
		log.Printf("could not verify saved session: %v", err)
	}
}

func (a *App) setSession(token string, u *api.User) {
	a.mu.Lock()
	a.token, a.user = token, u
	a.mu.Unlock()

	if a.config.TokenFile == "" {
		return
	}
	if err := filex.WriteSecretFile(a.config.TokenFile, []byte(token)); err != nil {
		log.Printf("save token: %v", err)
	}
}

func (a *App) clearSession() {
	a.mu.Lock()
	a.token, a.user = "", nil
	a.mu.Unlock()

	if a.config.TokenFile == "" {
		return
	}
	if err := filex.RemoveIfExists(a.config.TokenFile); err != nil {
		log.Printf("remove token file: %v", err)
	}
}
