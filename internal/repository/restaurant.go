package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/dineout-quote/internal/domain/restaurant"
)

const getRestaurantConfigSQL = `SELECT gst_rate, service_charge_rate, delivery_fee,
	preorder_split_percent, allow_discount_stacking, currency, max_qty_per_item
	FROM restaurants WHERE id = $1`

var _ restaurant.Provider = (*RestaurantRepository)(nil)

// RestaurantRepository implements restaurant.Provider backed by PostgreSQL.
// Unknown restaurants and NULL columns fall back to the documented defaults,
// so config lookup only fails on store I/O problems.
type RestaurantRepository struct {
	pool *pgxpool.Pool
}

// NewRestaurantRepository returns a RestaurantRepository that uses the given pool.
func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

// GetConfig returns the restaurant's pricing configuration with defaults
// applied for missing rows and unset fields.
func (r *RestaurantRepository) GetConfig(ctx context.Context, restaurantID string) (restaurant.Config, error) {
	rows, err := r.pool.Query(ctx, getRestaurantConfigSQL, restaurantID)
	if err != nil {
		return restaurant.Config{}, fmt.Errorf("getting restaurant config %q: %w", restaurantID, err)
	}

	cfg, err := pgx.CollectExactlyOneRow(rows, scanRestaurantConfig)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return restaurant.DefaultConfig(), nil
		}
		return restaurant.Config{}, fmt.Errorf("getting restaurant config %q: %w", restaurantID, err)
	}
	return cfg, nil
}

func scanRestaurantConfig(row pgx.CollectableRow) (restaurant.Config, error) {
	var (
		taxRate       decimal.NullDecimal
		serviceCharge decimal.NullDecimal
		deliveryFee   decimal.NullDecimal
		splitPercent  decimal.NullDecimal
		stacking      *bool
		currency      *string
		maxQty        *int32
	)
	err := row.Scan(&taxRate, &serviceCharge, &deliveryFee, &splitPercent, &stacking, &currency, &maxQty)
	if err != nil {
		return restaurant.Config{}, err
	}

	cfg := restaurant.DefaultConfig()
	if taxRate.Valid {
		cfg.TaxRate = taxRate.Decimal
	}
	if serviceCharge.Valid {
		cfg.ServiceChargeRate = serviceCharge.Decimal
	}
	if deliveryFee.Valid {
		cfg.DeliveryFee = deliveryFee.Decimal
	}
	if splitPercent.Valid {
		cfg.PreorderSplitPercent = splitPercent.Decimal
	}
	if stacking != nil {
		cfg.AllowDiscountStacking = *stacking
	}
	if currency != nil && *currency != "" {
		cfg.Currency = *currency
	}
	if maxQty != nil {
		cfg.MaxQtyPerItem = int(*maxQty)
	}
	return cfg.Normalize(), nil
}
