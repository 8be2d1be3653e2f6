package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RequestItem is a single (itemID, quantity) pair from a cart.
type RequestItem struct {
	ItemID   string
	Quantity int
}

// LineItem is a fully priced cart line. LineTotal is UnitPrice × Quantity
// rounded to 2 decimal places.
type LineItem struct {
	ItemID    string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}

// Resolver prices cart items against the catalog Store.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver backed by the given Store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve fetches every distinct cart item concurrently, validates it, and
// returns priced line items in the caller's order.
//
// Non-positive quantities are rejected with InvalidQuantityError; quantities
// above maxQty are clamped down to maxQty. A missing or inactive item fails
// the whole resolution — a cart is never partially priced.
func (r *Resolver) Resolve(ctx context.Context, restaurantID string, items []RequestItem, maxQty int) ([]LineItem, error) {
	if maxQty < 1 {
		maxQty = 1
	}

	// Validate quantities up front and collect distinct ids so each item is
	// fetched exactly once even when it appears on multiple lines.
	distinct := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{ItemID: it.ItemID, Quantity: it.Quantity}
		}
		if _, ok := seen[it.ItemID]; ok {
			continue
		}
		seen[it.ItemID] = struct{}{}
		distinct = append(distinct, it.ItemID)
	}

	// Fan out one lookup per distinct item. The group context cancels the
	// remaining fetches as soon as any lookup fails.
	fetched := make([]*Item, len(distinct))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range distinct {
		g.Go(func() error {
			item, err := r.store.GetItem(gctx, restaurantID, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return &ItemNotFoundError{ItemID: id}
				}
				return errors.Wrapf(err, "get menu item %s", id)
			}
			if !item.Active {
				return &ItemInactiveError{ItemID: id}
			}
			fetched[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]*Item, len(fetched))
	for i, item := range fetched {
		byID[distinct[i]] = item
	}

	lines := make([]LineItem, len(items))
	for i, it := range items {
		item := byID[it.ItemID]

		qty := it.Quantity
		if qty > maxQty {
			qty = maxQty
		}

		unit := item.Price
		lines[i] = LineItem{
			ItemID:    it.ItemID,
			Name:      item.Name,
			UnitPrice: unit,
			Quantity:  qty,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(qty))).Round(2),
		}
	}
	return lines, nil
}
