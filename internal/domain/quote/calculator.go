package quote

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/dineout-quote/internal/domain/catalog"
	"github.com/xenking/dineout-quote/internal/domain/discount"
	"github.com/xenking/dineout-quote/internal/domain/restaurant"
)

var hundred = decimal.NewFromInt(100)

// Calculator turns quote requests into fully resolved price breakdowns.
// It is stateless: two calls with identical inputs and an unchanged store
// snapshot produce identical results.
type Calculator struct {
	restaurants restaurant.Provider
	catalog     *catalog.Resolver
	discounts   *discount.Resolver
	now         func() time.Time
}

// NewCalculator creates a Calculator with the required collaborators.
func NewCalculator(
	restaurants restaurant.Provider,
	catalogResolver *catalog.Resolver,
	discountResolver *discount.Resolver,
) *Calculator {
	return &Calculator{
		restaurants: restaurants,
		catalog:     catalogResolver,
		discounts:   discountResolver,
		now:         time.Now,
	}
}

// Quote prices the request. Catalog failures (unknown or inactive items,
// invalid quantities) fail the whole quote; discount misses never do.
func (c *Calculator) Quote(ctx context.Context, req Request) (*Result, error) {
	if req.RestaurantID == "" {
		return nil, ErrMissingRestaurantID
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	switch req.OrderType {
	case OrderDineIn, OrderPreorder, OrderDelivery:
	default:
		return nil, errors.Wrapf(ErrUnsupportedOrderType, "%q", req.OrderType)
	}

	cfg, err := c.restaurants.GetConfig(ctx, req.RestaurantID)
	if err != nil {
		return nil, errors.Wrap(err, "get restaurant config")
	}

	phase := req.Phase
	if phase == "" {
		phase = req.OrderType.DefaultPhase()
	}
	at := c.now()
	if req.BookingTime != nil {
		at = *req.BookingTime
	}

	lines, err := c.catalog.Resolve(ctx, req.RestaurantID, req.Items, cfg.MaxQtyPerItem)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, li := range lines {
		subtotal = subtotal.Add(li.LineTotal)
	}
	subtotal = subtotal.Round(2)

	resolution, err := c.discounts.Resolve(ctx, discount.ResolveInput{
		RestaurantID:  req.RestaurantID,
		Subtotal:      subtotal,
		PromoCode:     req.PromoCode,
		At:            at,
		Phase:         phase,
		AllowStacking: cfg.AllowDiscountStacking,
	})
	if err != nil {
		return nil, err
	}

	// Pipeline: discounted subtotal -> service charge -> tax -> delivery fee.
	// Each stage rounds before the next consumes it.
	discountedSub := subtotal.Sub(resolution.Total).Round(2)
	serviceCharge := discountedSub.Mul(cfg.ServiceChargeRate).Div(hundred).Round(2)
	taxable := discountedSub.Add(serviceCharge).Round(2)
	tax := taxable.Mul(cfg.TaxRate).Div(hundred).Round(2)

	deliveryFee := decimal.Zero
	if req.OrderType == OrderDelivery {
		deliveryFee = cfg.DeliveryFee.Round(2)
	}

	total := taxable.Add(tax).Add(deliveryFee).Round(2)

	split := Split{Percent: cfg.PreorderSplitPercent}
	if req.OrderType == OrderPreorder {
		// Later absorbs the rounding remainder so both halves sum exactly.
		now := total.Mul(cfg.PreorderSplitPercent).Div(hundred).Round(2)
		later := total.Sub(now)
		split = Split{
			Enabled:    true,
			Percent:    cfg.PreorderSplitPercent,
			Now:        now,
			Later:      later,
			NowMinor:   MinorUnits(now),
			LaterMinor: MinorUnits(later),
		}
	}

	return &Result{
		Meta: Meta{
			RestaurantID:          req.RestaurantID,
			UserID:                req.UserID,
			OrderType:             req.OrderType,
			Phase:                 phase,
			BookingTime:           at,
			Currency:              cfg.Currency,
			AllowDiscountStacking: cfg.AllowDiscountStacking,
		},
		Items: lines,
		Pricing: Pricing{
			Subtotal: subtotal,
			Discounts: Discounts{
				Total:   resolution.Total,
				Reason:  resolution.Reason,
				Applied: resolution.Applied,
			},
			ServiceCharge:     RateAmount{Rate: cfg.ServiceChargeRate, Amount: serviceCharge},
			TaxableAmount:     taxable,
			Tax:               RateAmount{Rate: cfg.TaxRate, Amount: tax},
			DeliveryFee:       deliveryFee,
			TotalPayable:      total,
			TotalPayableMinor: MinorUnits(total),
		},
		Split: split,
	}, nil
}
