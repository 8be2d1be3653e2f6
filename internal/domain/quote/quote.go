// Package quote composes catalog resolution, discount resolution, and
// restaurant configuration into a full price breakdown for a prospective
// order. Quotes are computed fresh per request and never persisted.
package quote

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/dineout-quote/internal/domain/catalog"
	"github.com/xenking/dineout-quote/internal/domain/discount"
)

// Sentinel errors for quote request validation.
var (
	ErrEmptyItems           = errors.New("items required")
	ErrMissingRestaurantID  = errors.New("restaurantId required")
	ErrUnsupportedOrderType = errors.New("unsupported order type")
)

// OrderType enumerates how the order will be fulfilled.
type OrderType string

const (
	OrderDineIn   OrderType = "dine-in"
	OrderPreorder OrderType = "preorder"
	OrderDelivery OrderType = "delivery"
)

// DefaultPhase returns the pricing phase implied by the order type when the
// request does not name one explicitly.
func (t OrderType) DefaultPhase() discount.Phase {
	if t == OrderPreorder {
		return discount.PhasePreorder
	}
	return discount.PhaseFinalBill
}

// Request is a cart to be priced.
type Request struct {
	RestaurantID string
	UserID       string
	Items        []catalog.RequestItem
	PromoCode    string
	OrderType    OrderType
	// BookingTime anchors time-window matching; nil means "now".
	BookingTime *time.Time
	// Phase overrides the phase derived from OrderType when set.
	Phase discount.Phase
}

// Meta echoes request context back to the caller for auditing.
type Meta struct {
	RestaurantID          string
	UserID                string
	OrderType             OrderType
	Phase                 discount.Phase
	BookingTime           time.Time
	Currency              string
	AllowDiscountStacking bool
}

// RateAmount pairs a percentage rate with the amount it produced.
type RateAmount struct {
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

// Discounts summarises discount resolution for the quote.
type Discounts struct {
	Total   decimal.Decimal
	Reason  discount.Reason
	Applied []discount.Applied
}

// Pricing is the fully resolved breakdown. Every amount is non-negative and
// rounded to 2 decimal places; TotalPayableMinor is the total in integer
// minor units (paise) for payment gateways.
type Pricing struct {
	Subtotal          decimal.Decimal
	Discounts         Discounts
	ServiceCharge     RateAmount
	TaxableAmount     decimal.Decimal
	Tax               RateAmount
	DeliveryFee       decimal.Decimal
	TotalPayable      decimal.Decimal
	TotalPayableMinor int64
}

// Split is the optional preorder partial-payment division. Now + Later always
// equals TotalPayable exactly; Later absorbs any rounding remainder.
type Split struct {
	Enabled    bool
	Percent    decimal.Decimal
	Now        decimal.Decimal
	Later      decimal.Decimal
	NowMinor   int64
	LaterMinor int64
}

// Result is a complete, auditable quote.
type Result struct {
	Meta    Meta
	Items   []catalog.LineItem
	Pricing Pricing
	Split   Split
}

var minorFactor = decimal.NewFromInt(100)

// MinorUnits converts a major-unit amount to integer minor units (paise).
func MinorUnits(d decimal.Decimal) int64 {
	return d.Mul(minorFactor).Round(0).IntPart()
}
