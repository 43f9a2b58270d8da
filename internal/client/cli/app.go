package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/api"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// apiClient is the part of *api.Client the commands use.
type apiClient interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, email string, password []byte, name string) (*api.AuthResult, error)
	Login(ctx context.Context, email string, password []byte) (*api.AuthResult, error)
	Me(ctx context.Context, token string) (*api.User, error)
	ListItems(ctx context.Context, token string) ([]api.Item, error)
	GetItem(ctx context.Context, token, id string) (*api.Item, error)
	CreateItem(ctx context.Context, token string, in api.ItemInput) (*api.Item, error)
	UpdateItem(ctx context.Context, token, id string, in api.ItemInput) (*api.Item, error)
	DeleteItem(ctx context.Context, token, id string) error
}

var _ apiClient = (*api.Client)(nil)

type App struct {
	config *config.Config
	api    apiClient
	reader *bufio.Reader
	out    io.Writer

	mu    sync.Mutex
	mode  Mode
	token string
	user  *api.User
}

func NewApp(c *config.Config) (*App, error) {
	client, err := api.New(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: client, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

// Root restores a saved session, starts the connectivity watcher and runs
// the REPL until the user exits or input ends.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to taskkeeper CLI (type 'help' for commands)")

	a.checkOnline(ctx)
	a.restoreSession(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token != ""
}

func (a *App) currentToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.user != nil {
		s = a.user.Email + " "
	}
	s += string(a.mode)
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher polls the server health endpoint every interval
// and updates the mode shown in the prompt. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// sessionError turns a rejected token into a prompt to log in again and
// drops the stale session.
func (a *App) sessionError(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		a.clearSession()
		return errors.New("session expired or invalid, please log in")
	}
	if errors.Is(err, api.ErrUnavailable) {
		a.setMode(ModeOffline)
	}
	return err
}
