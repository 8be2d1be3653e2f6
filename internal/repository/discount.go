package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/dineout-quote/internal/domain/discount"
)

const (
	discountColumns = `id, restaurant_id, kind, discount_mode, amount, coupon_code,
		applies_to, valid_from, valid_until, slot_start, slot_end, min_spend, max_discount, active`

	getCouponByCodeSQL = `SELECT ` + discountColumns + `
		FROM discounts
		WHERE restaurant_id = $1 AND active AND kind = 'coupon' AND UPPER(coupon_code) = UPPER($2)
		ORDER BY id LIMIT 1`

	listActiveTimeSlotsSQL = `SELECT ` + discountColumns + `
		FROM discounts
		WHERE restaurant_id = $1 AND active AND kind = 'time_slot'
		ORDER BY id`
)

var _ discount.Store = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Store backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// GetCouponByCode looks up an active coupon by its code (case-insensitive).
// Returns discount.ErrNoCoupon when no matching active coupon exists.
func (r *DiscountRepository) GetCouponByCode(ctx context.Context, restaurantID, code string) (*discount.Spec, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, restaurantID, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	spec, err := pgx.CollectExactlyOneRow(rows, scanDiscountSpec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNoCoupon
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &spec, nil
}

// ListActiveTimeSlots returns all active time-slot discounts of the
// restaurant in ascending id order.
func (r *DiscountRepository) ListActiveTimeSlots(ctx context.Context, restaurantID string) ([]discount.Spec, error) {
	rows, err := r.pool.Query(ctx, listActiveTimeSlotsSQL, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("listing time-slot discounts: %w", err)
	}
	return pgx.CollectRows(rows, scanDiscountSpec)
}

func scanDiscountSpec(row pgx.CollectableRow) (discount.Spec, error) {
	var (
		spec        discount.Spec
		kind        string
		mode        string
		couponCode  *string
		appliesTo   []string
		validFrom   *time.Time
		validUntil  *time.Time
		slotStart   *string
		slotEnd     *string
		minSpend    decimal.NullDecimal
		maxDiscount decimal.NullDecimal
	)
	err := row.Scan(
		&spec.ID, &spec.RestaurantID, &kind, &mode, &spec.Amount, &couponCode,
		&appliesTo, &validFrom, &validUntil, &slotStart, &slotEnd, &minSpend, &maxDiscount, &spec.Active,
	)
	if err != nil {
		return discount.Spec{}, err
	}

	spec.Kind = discount.Kind(kind)
	spec.Mode = discount.Mode(mode)
	if couponCode != nil {
		spec.CouponCode = *couponCode
	}
	if len(appliesTo) > 0 {
		spec.AppliesTo = make([]discount.Phase, len(appliesTo))
		for i, p := range appliesTo {
			spec.AppliesTo[i] = discount.Phase(p)
		}
	}
	spec.ValidFrom = validFrom
	spec.ValidUntil = validUntil
	if slotStart != nil && slotEnd != nil {
		spec.Slot = &discount.TimeSlot{Start: *slotStart, End: *slotEnd}
	}
	if minSpend.Valid {
		spec.MinSpend = minSpend.Decimal
	}
	if maxDiscount.Valid {
		spec.MaxDiscount = maxDiscount.Decimal
	}
	return spec, nil
}
