package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"fsanano/stockroom/internal/model"
)

const itemColumns = `id, name, description, quantity, user_id, created_at, updated_at`

func (s *Store) CreateItem(ctx context.Context, item *model.Item) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO items (id, name, description, quantity, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.Name, item.Description, item.Quantity, item.UserID, item.CreatedAt)
	return mapError("create item", err)
}

func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var it model.Item
	err := s.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id).
		Scan(&it.ID, &it.Name, &it.Description, &it.Quantity, &it.UserID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, mapError("get item", err)
	}
	return &it, nil
}

func (s *Store) ListItemsByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	return s.queryItems(ctx, "list items",
		`SELECT `+itemColumns+` FROM items WHERE user_id = $1 ORDER BY created_at, id`, ownerID)
}

// SearchItemsByOwner uses strpos rather than LIKE so that % and _ in the
// term are matched literally.
func (s *Store) SearchItemsByOwner(ctx context.Context, ownerID, term string) ([]model.Item, error) {
	return s.queryItems(ctx, "search items",
		`SELECT `+itemColumns+` FROM items
		 WHERE user_id = $1 AND strpos(lower(name), lower($2)) > 0
		 ORDER BY created_at, id`, ownerID, term)
}

func (s *Store) queryItems(ctx context.Context, op, query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Item, error) {
		var it model.Item
		err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Quantity, &it.UserID, &it.CreatedAt, &it.UpdatedAt)
		return it, err
	})
	if err != nil {
		return nil, mapError(op, err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func (s *Store) UpdateItem(ctx context.Context, item *model.Item) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE items SET name = $1, description = $2, quantity = $3, updated_at = $4 WHERE id = $5`,
		item.Name, item.Description, item.Quantity, item.UpdatedAt, item.ID)
	return expectOne("update item", tag, err)
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM items WHERE id = $1", id)
	return expectOne("delete item", tag, err)
}
