// Package memory holds map-backed implementations of the server repositories.
// They keep no state across restarts and are meant for local development and
// tests; the DBTX argument of the manager factories is ignored.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/items"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// RepositoryManager satisfies repomanager.RepositoryManager. Every call to
// Users or Items returns a view over the same underlying store.
type RepositoryManager struct {
	users *UsersRepository
	items *ItemsRepository
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{
		users: &UsersRepository{byID: map[string]*models.User{}, byEmail: map[string]string{}},
		items: &ItemsRepository{byID: map[string]*storedItem{}},
	}
}

// RunMigrations is a no-op.
func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *RepositoryManager) Items(dbx.DBTX) items.Repository { return m.items }

// UsersRepository is an in-memory users.Repository.
type UsersRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func (r *UsersRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	now := time.Now().UTC()
	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now

	r.byID[u.ID] = &u
	r.byEmail[u.Email] = u.ID

	out := u
	return &out, nil
}

func (r *UsersRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *UsersRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

type storedItem struct {
	item models.Item
	seq  uint64
}

// ItemsRepository is an in-memory items.Repository.
type ItemsRepository struct {
	mu   sync.RWMutex
	byID map[string]*storedItem
	seq  uint64
}

func (r *ItemsRepository) ListByUser(_ context.Context, userID string) ([]*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := make([]*storedItem, 0)
	for _, s := range r.byID {
		if s.item.UserID == userID {
			owned = append(owned, s)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].item.CreatedAt.Equal(owned[j].item.CreatedAt) {
			return owned[i].item.CreatedAt.After(owned[j].item.CreatedAt)
		}
		return owned[i].seq > owned[j].seq
	})

	result := make([]*models.Item, 0, len(owned))
	for _, s := range owned {
		it := s.item
		result = append(result, &it)
	}
	return result, nil
}

func (r *ItemsRepository) Get(_ context.Context, id, userID string) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok || s.item.UserID != userID {
		return nil, common.ErrorNotFound
	}
	it := s.item
	return &it, nil
}

func (r *ItemsRepository) Create(_ context.Context, item *models.Item) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	item.ID = uuid.NewString()
	item.CreatedAt, item.UpdatedAt = now, now

	r.seq++
	r.byID[item.ID] = &storedItem{item: *item, seq: r.seq}
	return item, nil
}

func (r *ItemsRepository) Update(_ context.Context, item *models.Item) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[item.ID]
	if !ok || s.item.UserID != item.UserID {
		return nil, common.ErrorNotFound
	}

	s.item.Title = item.Title
	s.item.Description = item.Description
	s.item.Status = item.Status
	s.item.UpdatedAt = time.Now().UTC()

	*item = s.item
	return item, nil
}

func (r *ItemsRepository) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok || s.item.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}
