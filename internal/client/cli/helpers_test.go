package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/api"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
)

// fakeAPI records calls and returns canned results.
type fakeAPI struct {
	mu sync.Mutex

	pingErr atomic.Value // error wrapper, see setPingErr

	authRes *api.AuthResult
	authErr error

	gotEmail    string
	gotPassword string
	gotName     string

	meUser *api.User
	meErr  error

	items   []api.Item
	item    *api.Item
	itemErr error

	created []api.ItemInput
	updated []api.ItemInput
	deleted []string
}

type pingResult struct{ err error }

func (f *fakeAPI) setPingErr(err error) { f.pingErr.Store(pingResult{err}) }

func (f *fakeAPI) Ping(ctx context.Context) error {
	if v, ok := f.pingErr.Load().(pingResult); ok {
		return v.err
	}
	return nil
}

func (f *fakeAPI) Register(ctx context.Context, email string, password []byte, name string) (*api.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotEmail, f.gotPassword, f.gotName = email, string(password), name
	return f.authRes, f.authErr
}

func (f *fakeAPI) Login(ctx context.Context, email string, password []byte) (*api.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotEmail, f.gotPassword = email, string(password)
	return f.authRes, f.authErr
}

func (f *fakeAPI) Me(ctx context.Context, token string) (*api.User, error) {
	return f.meUser, f.meErr
}

func (f *fakeAPI) ListItems(ctx context.Context, token string) ([]api.Item, error) {
	return f.items, f.itemErr
}

func (f *fakeAPI) GetItem(ctx context.Context, token, id string) (*api.Item, error) {
	return f.item, f.itemErr
}

func (f *fakeAPI) CreateItem(ctx context.Context, token string, in api.ItemInput) (*api.Item, error) {
	f.created = append(f.created, in)
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	return &api.Item{ID: "new-id", Title: in.Title, Description: in.Description, Status: in.Status}, nil
}

func (f *fakeAPI) UpdateItem(ctx context.Context, token, id string, in api.ItemInput) (*api.Item, error) {
	f.updated = append(f.updated, in)
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	return &api.Item{ID: id, Title: in.Title, Description: in.Description, Status: in.Status}, nil
}

func (f *fakeAPI) DeleteItem(ctx context.Context, token, id string) error {
	f.deleted = append(f.deleted, id)
	return f.itemErr
}

// newTestApp builds an App reading the given input and writing to a buffer.
// Password prompts fall back to line input.
func newTestApp(t *testing.T, f *fakeAPI, input string) (*App, *bytes.Buffer) {
	t.Helper()

	origTerm := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = origTerm })

	out := &bytes.Buffer{}
	return &App{
		config: &config.Config{OnlineCheckInterval: time.Second, RequestTimeout: time.Second},
		api:    f,
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    out,
	}, out
}

func loggedIn(a *App, token string) {
	a.mu.Lock()
	a.token = token
	a.user = &api.User{ID: "u1", Email: "ann@example.com", Name: "Ann"}
	a.mu.Unlock()
}
