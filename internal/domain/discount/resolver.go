package discount

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Applied is the audit record for one discount applied (or attempted) on a
// quote.
type Applied struct {
	ID     string
	Kind   Kind
	Code   string
	Mode   Mode
	Value  decimal.Decimal
	Amount decimal.Decimal
	Reason Reason
}

// Resolution is the combined outcome of discount resolution for one quote.
type Resolution struct {
	Total   decimal.Decimal
	Applied []Applied
	Reason  Reason
}

// ResolveInput carries everything discount selection depends on.
type ResolveInput struct {
	RestaurantID  string
	Subtotal      decimal.Decimal
	PromoCode     string
	At            time.Time
	Phase         Phase
	AllowStacking bool
}

// Resolver orchestrates discount selection against the discount Store.
//
// A coupon named by promo code takes priority. A time-slot discount is
// considered as fallback, or in addition when stacking is allowed; a stacked
// discount is evaluated against the balance remaining after the coupon, never
// against the original subtotal twice. At most one coupon and one time-slot
// discount ever apply.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver backed by the given Store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve computes the total discount for the quote. Missing, invalid, and
// out-of-window discounts are not errors; only store I/O failures are.
func (r *Resolver) Resolve(ctx context.Context, in ResolveInput) (Resolution, error) {
	res := Resolution{Total: decimal.Zero, Reason: ReasonNone}

	if in.PromoCode != "" {
		if err := r.applyCoupon(ctx, in, &res); err != nil {
			return Resolution{}, err
		}
	}

	// The automatic time-slot discount is a fallback when the coupon produced
	// nothing, and stacks on the remaining balance when the restaurant allows
	// stacking.
	if !res.Total.IsPositive() || in.AllowStacking {
		if err := r.applyTimeSlot(ctx, in, &res); err != nil {
			return Resolution{}, err
		}
	}

	res.Total = decimal.Min(res.Total, in.Subtotal).Round(2)
	return res, nil
}

func (r *Resolver) applyCoupon(ctx context.Context, in ResolveInput, res *Resolution) error {
	spec, err := r.store.GetCouponByCode(ctx, in.RestaurantID, in.PromoCode)
	if err != nil {
		if errors.Is(err, ErrNoCoupon) {
			res.Reason = ReasonInvalidOrOutOfWindow
			return nil
		}
		return errors.Wrap(err, "get coupon")
	}

	if !spec.AppliesToPhase(in.Phase) || !InWindow(in.At, spec.ValidFrom, spec.ValidUntil, spec.Slot) {
		res.Reason = ReasonInvalidOrOutOfWindow
		return nil
	}

	// Record the coupon even when it evaluates to zero so the client sees
	// why (e.g. MIN_SPEND_NOT_MET).
	eval := Evaluate(in.Subtotal, spec)
	res.Applied = append(res.Applied, Applied{
		ID:     spec.ID,
		Kind:   KindCoupon,
		Code:   spec.CouponCode,
		Mode:   spec.Mode,
		Value:  spec.Amount,
		Amount: eval.Amount,
		Reason: eval.Reason,
	})
	res.Total = res.Total.Add(eval.Amount)
	res.Reason = eval.Reason
	return nil
}

func (r *Resolver) applyTimeSlot(ctx context.Context, in ResolveInput, res *Resolution) error {
	specs, err := r.store.ListActiveTimeSlots(ctx, in.RestaurantID)
	if err != nil {
		return errors.Wrap(err, "list time-slot discounts")
	}

	// First match wins; sort by id so the winner does not depend on store
	// iteration order.
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })

	for i := range specs {
		spec := &specs[i]
		if !spec.AppliesToPhase(in.Phase) || !InWindow(in.At, spec.ValidFrom, spec.ValidUntil, spec.Slot) {
			continue
		}

		eval := Evaluate(in.Subtotal.Sub(res.Total), spec)
		if !eval.Amount.IsPositive() {
			return nil
		}

		res.Applied = append(res.Applied, Applied{
			ID:     spec.ID,
			Kind:   KindTimeSlot,
			Mode:   spec.Mode,
			Value:  spec.Amount,
			Amount: eval.Amount,
			Reason: eval.Reason,
		})
		res.Total = res.Total.Add(eval.Amount).Round(2)
		res.Reason = eval.Reason
		return nil
	}
	return nil
}
