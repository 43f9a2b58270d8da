// Package items provides the PostgreSQL-backed task item repository.
package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns the user's items, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Item, error) {
	query := `SELECT id, user_id, title, description, status, created_at, updated_at FROM items
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Item, 0)
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Description, &item.Status,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, userID string) (*models.Item, error) {
	query := `SELECT id, user_id, title, description, status, created_at, updated_at FROM items
		WHERE id = $1 AND user_id = $2`

	var item models.Item
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&item.ID, &item.UserID, &item.Title,
		&item.Description, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &item, nil
}

// Create inserts item under a fresh ID and fills in ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	query := `INSERT INTO items (id, user_id, title, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	id := uuid.NewString()
	err := r.db.QueryRowContext(ctx, query, id, item.UserID, item.Title, item.Description, item.Status).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	item.ID = id
	return item, nil
}

// Update replaces title, description and status of the item identified by
// item.ID and item.UserID.
func (r *PostgresRepository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	query := `UPDATE items SET title = $3, description = $4, status = $5, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, item.ID, item.UserID, item.Title, item.Description, item.Status).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return item, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM items WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
