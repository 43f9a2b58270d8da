package items

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository stores task items. Every lookup and mutation is scoped by the
// owning user's ID; rows owned by someone else behave as missing
// (common.ErrorNotFound).
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Item, error)
	Get(ctx context.Context, id, userID string) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) (*models.Item, error)
	Delete(ctx context.Context, id, userID string) error
}
