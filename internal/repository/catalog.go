package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/dineout-quote/internal/domain/catalog"
)

const (
	getMenuItemSQL = `SELECT id, name, price, active
		FROM menu_items WHERE restaurant_id = $1 AND id = $2`

	listActiveMenuItemsSQL = `SELECT id, name, price, active
		FROM menu_items WHERE restaurant_id = $1 AND active ORDER BY id`
)

var _ catalog.Store = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Store backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetItem returns a single menu item of the restaurant.
// Returns catalog.ErrNotFound when no such item exists.
func (r *CatalogRepository) GetItem(ctx context.Context, restaurantID, itemID string) (*catalog.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemSQL, restaurantID, itemID)
	if err != nil {
		return nil, fmt.Errorf("getting menu item %q: %w", itemID, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting menu item %q: %w", itemID, err)
	}
	return &item, nil
}

// ListActive returns all orderable menu items of the restaurant ordered by id.
func (r *CatalogRepository) ListActive(ctx context.Context, restaurantID string) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, listActiveMenuItemsSQL, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

func scanMenuItem(row pgx.CollectableRow) (catalog.Item, error) {
	var item catalog.Item
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Active)
	return item, err
}
