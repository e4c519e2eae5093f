package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vbonduro/ecoleta/internal/domain"
)

type ItemStore struct {
	db *sqlx.DB
}

func NewItemStore(db *sqlx.DB) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) List(ctx context.Context) ([]*domain.Item, error) {
	items := []*domain.Item{}
	if err := s.db.SelectContext(ctx, &items, `
		SELECT id, title, image FROM items ORDER BY id ASC
	`); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (s *ItemStore) ListByPointID(ctx context.Context, pointID int64) ([]*domain.Item, error) {
	items := []*domain.Item{}
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(`
		SELECT i.id, i.title, i.image FROM items i
		JOIN point_items pi ON pi.item_id = i.id
		WHERE pi.point_id = ?
		ORDER BY i.id ASC
	`), pointID); err != nil {
		return nil, fmt.Errorf("failed to list items for point: %w", err)
	}
	return items, nil
}

// ListIDsByPointID returns the item ids associated with a point.
func (s *ItemStore) ListIDsByPointID(ctx context.Context, pointID int64) ([]int64, error) {
	ids := []int64{}
	if err := s.db.SelectContext(ctx, &ids, s.db.Rebind(`
		SELECT item_id FROM point_items WHERE point_id = ? ORDER BY item_id ASC
	`), pointID); err != nil {
		return nil, fmt.Errorf("failed to list point item ids: %w", err)
	}
	return ids, nil
}

// CountExisting reports how many of ids name existing items. Callers pass
// distinct ids.
func (s *ItemStore) CountExisting(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM items WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to build item count query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, s.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}
