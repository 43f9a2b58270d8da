package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// ItemInput carries the caller-editable fields of an item.
type ItemInput struct {
	Title       string
	Description string
	Status      models.ItemStatus
}

type ItemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewItemService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ItemService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &ItemService{db: db, repomanager: m, logger: logger.With("module", "items")}
}

// List returns the user's items, newest first.
func (s *ItemService) List(ctx context.Context, userID string) ([]*models.Item, error) {
	list, err := s.repomanager.Items(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return list, nil
}

// Get returns one item. Missing, foreign and syntactically invalid IDs are
// all common.ErrorNotFound.
func (s *ItemService) Get(ctx context.Context, userID, id string) (*models.Item, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	item, err := s.repomanager.Items(s.db).Get(ctx, id, userID)
	if err != nil {
		return nil, passNotFound("get item", err)
	}
	return item, nil
}

func (s *ItemService) Create(ctx context.Context, userID string, in ItemInput) (*models.Item, error) {
	in, err := normalizeItem(in)
	if err != nil {
		return nil, err
	}

	item, err := s.repomanager.Items(s.db).Create(ctx, &models.Item{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.logger.Debug(ctx, "item created", "user_id", userID, "item_id", item.ID)
	return item, nil
}

// Update replaces the editable fields of the item. An omitted status resets
// it to pending.
func (s *ItemService) Update(ctx context.Context, userID, id string, in ItemInput) (*models.Item, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	in, err := normalizeItem(in)
	if err != nil {
		return nil, err
	}

	item, err := s.repomanager.Items(s.db).Update(ctx, &models.Item{
		ID:          id,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	})
	if err != nil {
		return nil, passNotFound("update item", err)
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Items(s.db).Delete(ctx, id, userID); err != nil {
		return passNotFound("delete item", err)
	}
	s.logger.Debug(ctx, "item deleted", "user_id", userID, "item_id", id)
	return nil
}

func normalizeItem(in ItemInput) (ItemInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.Title == "" {
		return in, invalid("title is required")
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		return in, invalid("title must be at most %d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		return in, invalid("description must be at most %d characters", MaxDescriptionLength)
	}
	if in.Status == "" {
		in.Status = models.StatusPending
	}
	if !in.Status.Valid() {
		return in, invalid("status must be one of %s, %s, %s",
			models.StatusPending, models.StatusInProgress, models.StatusCompleted)
	}
	return in, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func passNotFound(op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
