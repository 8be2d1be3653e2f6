package discount

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	coupon    *Spec
	couponErr error
	slots     []Spec
	slotsErr  error
}

func (m *mockStore) GetCouponByCode(_ context.Context, _, _ string) (*Spec, error) {
	if m.couponErr != nil {
		return nil, m.couponErr
	}
	if m.coupon == nil {
		return nil, ErrNoCoupon
	}
	return m.coupon, nil
}

func (m *mockStore) ListActiveTimeSlots(_ context.Context, _ string) ([]Spec, error) {
	return m.slots, m.slotsErr
}

func noon() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestResolver_CouponApplied(t *testing.T) {
	store := &mockStore{
		coupon: &Spec{
			ID: "c1", Kind: KindCoupon, Mode: ModePercentage,
			Amount: d("10"), CouponCode: "SAVE10", MaxDiscount: d("100"),
		},
	}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1",
		Subtotal:     d("1000"),
		PromoCode:    "SAVE10",
		At:           noon(),
		Phase:        PhaseFinalBill,
	})
	require.NoError(t, err)

	assert.True(t, d("100").Equal(res.Total), "got %s", res.Total)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, KindCoupon, res.Applied[0].Kind)
	assert.Equal(t, "SAVE10", res.Applied[0].Code)
	assert.Equal(t, ReasonApplied, res.Reason)
}

func TestResolver_UnknownCodeDegradesToReason(t *testing.T) {
	r := NewResolver(&mockStore{})

	res, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1", Subtotal: d("500"), PromoCode: "BOGUS",
		At: noon(), Phase: PhaseFinalBill,
	})
	require.NoError(t, err)

	assert.True(t, res.Total.IsZero())
	assert.Empty(t, res.Applied)
	assert.Equal(t, ReasonInvalidOrOutOfWindow, res.Reason)
}

func TestResolver_CouponOutsidePhase(t *testing.T) {
	store := &mockStore{
		coupon: &Spec{
			ID: "c1", Kind: KindCoupon, Mode: ModeFlat, Amount: d("50"),
			CouponCode: "BOOKONLY", AppliesTo: []Phase{PhaseBooking},
		},
	}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1", Subtotal: d("500"), PromoCode: "BOOKONLY",
		At: noon(), Phase: PhaseFinalBill,
	})
	require.NoError(t, err)

	assert.True(t, res.Total.IsZero())
	assert.Equal(t, ReasonInvalidOrOutOfWindow, res.Reason)
}

func TestResolver_CouponMinSpendRecordedWithZeroAmount(t *testing.T) {
	store := &mockStore{
		coupon: &Spec{
			ID: "c1", Kind: KindCoupon, Mode: ModePercentage,
			Amount: d("10"), CouponCode: "SAVE10", MinSpend: d("500"),
		},
	}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1", Subtotal: d("400"), PromoCode: "SAVE10",
		At: noon(), Phase: PhaseFinalBill,
	})
	require.NoError(t, err)

	assert.True(t, res.Total.IsZero())
	require.Len(t, res.Applied, 1)
	assert.Equal(t, ReasonMinSpendNotMet, res.Applied[0].Reason)
	assert.Equal(t, ReasonMinSpendNotMet, res.Reason)
}

func TestResolver_TimeSlotFallback(t *testing.T) {
	store := &mockStore{
		slots: []Spec{
			{
				ID: "ts1", Kind: KindTimeSlot, Mode: ModePercentage, Amount: d("15"),
				Slot: &TimeSlot{Start: "11:00", End: "14:00"},
			},
		},
	}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1", Subtotal: d("1000"),
		At: noon(), Phase: PhaseFinalBill,
	})
	require.NoError(t, err)

	assert.True(t, d("150").Equal(res.Total), "got %s", res.Total)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, KindTimeSlot, res.Applied[0].Kind)
}

func TestResolver_TimeSlotConsideredWhenCouponYieldsZero(t *testing.T) {
	// The coupon exists but its min spend is not met, so the automatic
	// time-slot discount still applies.
	store := &mockStore{
		coupon: &Spec{
			ID: "c1", Kind: KindCoupon, Mode: ModeFlat, Amount: d("50"),
			CouponCode: "BIG", MinSpend: d("5000"),
		},
		slots: []Spec{
			{ID: "ts1", Kind: KindTimeSlot, Mode: ModePercentage, Amount: d("10")},
		},
	}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1", Subtotal: d("1000"), PromoCode: "BIG",
		At: noon(), Phase: PhaseFinalBill,
	})
	require.NoError(t, err)

	assert.True(t, d("100").Equal(res.Total), "got %s", res.Total)
	require.Len(t, res.Applied, 2)
	assert.Equal(t, KindTimeSlot, res.Applied[1].Kind)
}

func TestResolver_StackingAppliesOnRemainingBalance(t *testing.T) {
	store := &mockStore{
		coupon: &Spec{
			ID: "c1", Kind: KindCoupon, Mode: ModeFlat, Amount: d("200"), CouponCode: "FLAT200",
		},
		slots: []Spec{
			{ID: "ts1", Kind: KindTimeSlot, Mode: ModePercentage, Amount: d("10")},
		},
	}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1", Subtotal: d("1000"), PromoCode: "FLAT200",
		At: noon(), Phase: PhaseFinalBill, AllowStacking: true,
	})
	require.NoError(t, err)

	// 200 flat, then 10% of the remaining 800 = 80.
	assert.True(t, d("280").Equal(res.Total), "got %s", res.Total)
	require.Len(t, res.Applied, 2)
	assert.True(t, d("80").Equal(res.Applied[1].Amount), "got %s", res.Applied[1].Amount)
}

func TestResolver_NoStackingSkipsTimeSlotAfterCoupon(t *testing.T) {
	store := &mockStore{
		coupon: &Spec{
			ID: "c1", Kind: KindCoupon, Mode: ModeFlat, Amount: d("200"), CouponCode: "FLAT200",
		},
		slots: []Spec{
			{ID: "ts1", Kind: KindTimeSlot, Mode: ModePercentage, Amount: d("10")},
		},
	}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1", Subtotal: d("1000"), PromoCode: "FLAT200",
		At: noon(), Phase: PhaseFinalBill, AllowStacking: false,
	})
	require.NoError(t, err)

	assert.True(t, d("200").Equal(res.Total), "got %s", res.Total)
	assert.Len(t, res.Applied, 1)
}

func TestResolver_FirstMatchingSlotWinsByID(t *testing.T) {
	// Store returns slots out of order; the resolver must pick the lowest id.
	store := &mockStore{
		slots: []Spec{
			{ID: "ts9", Kind: KindTimeSlot, Mode: ModePercentage, Amount: d("20")},
			{ID: "ts1", Kind: KindTimeSlot, Mode: ModePercentage, Amount: d("5")},
		},
	}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1", Subtotal: d("100"),
		At: noon(), Phase: PhaseFinalBill,
	})
	require.NoError(t, err)

	require.Len(t, res.Applied, 1)
	assert.Equal(t, "ts1", res.Applied[0].ID)
	assert.True(t, d("5").Equal(res.Total), "got %s", res.Total)
}

func TestResolver_SlotOutsideWindowSkipped(t *testing.T) {
	store := &mockStore{
		slots: []Spec{
			{
				ID: "ts1", Kind: KindTimeSlot, Mode: ModePercentage, Amount: d("20"),
				Slot: &TimeSlot{Start: "22:00", End: "02:00"},
			},
			{
				ID: "ts2", Kind: KindTimeSlot, Mode: ModePercentage, Amount: d("10"),
				Slot: &TimeSlot{Start: "11:00", End: "14:00"},
			},
		},
	}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1", Subtotal: d("100"),
		At: noon(), Phase: PhaseFinalBill,
	})
	require.NoError(t, err)

	require.Len(t, res.Applied, 1)
	assert.Equal(t, "ts2", res.Applied[0].ID)
}

func TestResolver_TotalClampedToSubtotal(t *testing.T) {
	store := &mockStore{
		coupon: &Spec{
			ID: "c1", Kind: KindCoupon, Mode: ModeFlat, Amount: d("90"), CouponCode: "ALMOST",
		},
		slots: []Spec{
			{ID: "ts1", Kind: KindTimeSlot, Mode: ModeFlat, Amount: d("50")},
		},
	}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1", Subtotal: d("100"), PromoCode: "ALMOST",
		At: noon(), Phase: PhaseFinalBill, AllowStacking: true,
	})
	require.NoError(t, err)

	// 90 coupon + slot evaluated on remaining 10 gives at most 10 more.
	assert.True(t, res.Total.LessThanOrEqual(d("100")), "got %s", res.Total)
}

func TestResolver_StoreErrorPropagates(t *testing.T) {
	r := NewResolver(&mockStore{couponErr: errors.New("connection refused")})

	_, err := r.Resolve(context.Background(), ResolveInput{
		RestaurantID: "r1", Subtotal: d("100"), PromoCode: "ANY",
		At: noon(), Phase: PhaseFinalBill,
	})
	require.Error(t, err)
}
