// Package catalog resolves cart items into priced line items via the menu
// catalog collaborator.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by Store implementations when a menu item does not
// exist. The resolver maps it to an ItemNotFoundError carrying the item id.
var ErrNotFound = errors.New("menu item not found")

// Item represents a menu catalog entry, read-only to the pricing engine.
type Item struct {
	ID     string
	Name   string
	Price  decimal.Decimal
	Active bool
}

// Store provides read access to a restaurant's menu catalog.
type Store interface {
	GetItem(ctx context.Context, restaurantID, itemID string) (*Item, error)
	ListActive(ctx context.Context, restaurantID string) ([]Item, error)
}

// ItemNotFoundError indicates a requested cart item has no catalog entry.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item %s not found", e.ItemID)
}

// ItemInactiveError indicates a catalog entry exists but is not orderable.
type ItemInactiveError struct {
	ItemID string
}

func (e *ItemInactiveError) Error() string {
	return fmt.Sprintf("menu item %s is inactive", e.ItemID)
}

// InvalidQuantityError indicates a cart line has a non-positive quantity.
type InvalidQuantityError struct {
	ItemID   string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %s, got %d", e.ItemID, e.Quantity)
}
