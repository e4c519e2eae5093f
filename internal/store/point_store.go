package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/vbonduro/ecoleta/internal/domain"
)

// ErrNotFound is returned by mutations that target a missing row.
var ErrNotFound = errors.New("record not found")

const pointColumns = `p.id, p.image, p.name, p.email, p.phone, p.latitude, p.longitude, p.city, p.uf, p.created_at`

type PointStore struct {
	db *sqlx.DB
}

func NewPointStore(db *sqlx.DB) *PointStore {
	return &PointStore{db: db}
}

// Create inserts the point and one point_items row per item id in a single
// transaction. Duplicate ids are collapsed.
func (s *PointStore) Create(ctx context.Context, point *domain.Point, itemIDs []int64) (*domain.Point, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to roll back point transaction", "error", err)
		}
	}()

	var id int64
	err = tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO points (image, name, email, phone, latitude, longitude, city, uf)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), point.Image, point.Name, point.Email, point.Phone, point.Latitude, point.Longitude, point.City, point.UF).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create point: %w", err)
	}

	insertItem := tx.Rebind(`INSERT INTO point_items (point_id, item_id) VALUES (?, ?)`)
	seen := make(map[int64]bool, len(itemIDs))
	for _, itemID := range itemIDs {
		if seen[itemID] {
			continue
		}
		seen[itemID] = true
		if _, err := tx.ExecContext(ctx, insertItem, id, itemID); err != nil {
			return nil, fmt.Errorf("failed to link item %d to point: %w", itemID, err)
		}
	}

	created := &domain.Point{}
	if err := tx.GetContext(ctx, created, tx.Rebind(`SELECT `+pointColumns+` FROM points p WHERE p.id = ?`), id); err != nil {
		return nil, fmt.Errorf("failed to read created point: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit point: %w", err)
	}
	return created, nil
}

func (s *PointStore) GetByID(ctx context.Context, id int64) (*domain.Point, error) {
	point := &domain.Point{}
	err := s.db.GetContext(ctx, point, s.db.Rebind(`SELECT `+pointColumns+` FROM points p WHERE p.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get point: %w", err)
	}
	return point, nil
}

// List returns the points matching filter, ordered by id.
func (s *PointStore) List(ctx context.Context, filter domain.PointFilter) ([]*domain.Point, error) {
	var (
		conds []string
		args  []any
	)
	if filter.UF != "" {
		conds = append(conds, "p.uf = ?")
		args = append(args, filter.UF)
	}
	if filter.City != "" {
		conds = append(conds, "p.city = ?")
		args = append(args, filter.City)
	}
	if len(filter.ItemIDs) > 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM point_items pi WHERE pi.point_id = p.id AND pi.item_id IN (?))")
		args = append(args, filter.ItemIDs)
	}

	query := `SELECT ` + pointColumns + ` FROM points p`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.id ASC"

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build point query: %w", err)
	}

	points := []*domain.Point{}
	if err := s.db.SelectContext(ctx, &points, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list points: %w", err)
	}
	return points, nil
}

func (s *PointStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM points WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
