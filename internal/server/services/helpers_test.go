package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/items"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	testSecret = []byte("test-signing-secret")
	testNow    = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	errDB      = errors.New("db is down")
)

func newHasher(t *testing.T) *auth.PasswordHasher {
	t.Helper()
	h, err := auth.NewPasswordHasher(bcrypt.MinCost, 2)
	require.NoError(t, err)
	return h
}

func newIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	i, err := auth.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	return i
}

func newUserService(t *testing.T, m repomanager.RepositoryManager) *UserService {
	t.Helper()
	s := NewUserService(nil, m, newHasher(t), newIssuer(t), nil)
	s.now = func() time.Time { return testNow }
	return s
}

// brokenManager returns repositories that fail every call with errDB, or
// with the configured user lookup result.
type brokenManager struct {
	user *models.User
}

func (m *brokenManager) RunMigrations(context.Context, *sql.DB) error { return errDB }
func (m *brokenManager) Users(dbx.DBTX) users.Repository { return brokenUsers{user: m.user} }
func (m *brokenManager) Items(dbx.DBTX) items.Repository { return brokenItems{} }

type brokenUsers struct{ user *models.User }

func (b brokenUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, errDB }
func (b brokenUsers) GetByEmail(context.Context, string) (*models.User, error) {
	if b.user != nil {
		return b.user, nil
	}
	return nil, errDB
}
func (b brokenUsers) GetByID(context.Context, string) (*models.User, error) { return nil, errDB }

type brokenItems struct{}

func (brokenItems) ListByUser(context.Context, string) ([]*models.Item, error) { return nil, errDB }
func (brokenItems) Get(context.Context, string, string) (*models.Item, error) { return nil, errDB }
func (brokenItems) Create(context.Context, *models.Item) (*models.Item, error) { return nil, errDB }
func (brokenItems) Update(context.Context, *models.Item) (*models.Item, error) { return nil, errDB }
func (brokenItems) Delete(context.Context, string, string) error { return errDB }

var _ repomanager.RepositoryManager = (*brokenManager)(nil)
var _ repomanager.RepositoryManager = (*memory.RepositoryManager)(nil)
