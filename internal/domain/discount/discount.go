// Package discount selects and evaluates coupon and time-slot discounts for
// a quote. Resolution never fails a quote: every miss degrades to a reason
// code with zero discount.
package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind discriminates the supported discount variants.
type Kind string

const (
	// KindCoupon is selected explicitly by a user-supplied code.
	KindCoupon Kind = "coupon"
	// KindTimeSlot is auto-applied when the booking time falls inside a
	// recurring HH:mm window.
	KindTimeSlot Kind = "time_slot"
	// KindGeneral is a catch-all discount without a code or slot.
	KindGeneral Kind = "general"
)

// Mode determines how a discount's Amount is interpreted.
type Mode string

const (
	// ModePercentage treats Amount as a percentage of the subtotal.
	ModePercentage Mode = "percentage"
	// ModeFlat treats Amount as a flat currency value.
	ModeFlat Mode = "flat"
)

// Phase is the point in the order lifecycle a discount may apply to.
type Phase string

const (
	PhaseBooking   Phase = "booking"
	PhasePreorder  Phase = "preorder"
	PhaseFinalBill Phase = "finalBill"
	PhasePayment   Phase = "payment"
)

// Reason codes reported alongside discount amounts for client display.
type Reason string

const (
	ReasonNone                 Reason = "NONE"
	ReasonApplied              Reason = "APPLIED"
	ReasonNoDiscount           Reason = "NO_DISCOUNT"
	ReasonMinSpendNotMet       Reason = "MIN_SPEND_NOT_MET"
	ReasonInvalidOrOutOfWindow Reason = "INVALID_OR_OUT_OF_WINDOW"
)

// ErrNoCoupon is returned by Store implementations when no active coupon
// matches the requested code. The resolver degrades it to a reason code.
var ErrNoCoupon = errors.New("coupon not found")

// TimeSlot is a recurring time-of-day window in 24-hour "HH:mm" notation.
// End may precede Start, which denotes an overnight window.
type TimeSlot struct {
	Start string
	End   string
}

// Spec describes a single discount rule as stored by the discount store.
//
// A zero MinSpend or MaxDiscount means the respective cap is unset. An empty
// AppliesTo means the discount applies in every phase. Nil ValidFrom or
// ValidUntil leaves the date range open on that side.
type Spec struct {
	ID           string
	RestaurantID string
	Kind         Kind
	Mode         Mode
	Amount       decimal.Decimal
	CouponCode   string
	AppliesTo    []Phase
	ValidFrom    *time.Time
	ValidUntil   *time.Time
	Slot         *TimeSlot
	MinSpend     decimal.Decimal
	MaxDiscount  decimal.Decimal
	Active       bool
}

// AppliesToPhase reports whether the spec may apply during the given phase.
func (s *Spec) AppliesToPhase(p Phase) bool {
	if len(s.AppliesTo) == 0 {
		return true
	}
	for _, ph := range s.AppliesTo {
		if ph == p {
			return true
		}
	}
	return false
}

// Store provides read access to a restaurant's discount rules.
type Store interface {
	// GetCouponByCode returns the active coupon matching code, or ErrNoCoupon.
	GetCouponByCode(ctx context.Context, restaurantID, code string) (*Spec, error)
	// ListActiveTimeSlots returns all active time-slot discounts ordered by id.
	ListActiveTimeSlots(ctx context.Context, restaurantID string) ([]Spec, error)
}
