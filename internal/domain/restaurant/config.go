// Package restaurant holds per-restaurant pricing configuration and the
// provider collaborator that supplies it.
package restaurant

import (
	"context"

	"github.com/shopspring/decimal"
)

// Default configuration values, applied whenever a restaurant has no stored
// configuration (or leaves individual fields unset).
const (
	DefaultCurrency      = "INR"
	DefaultMaxQtyPerItem = 20
)

var (
	// DefaultTaxRate is the GST percentage applied to the taxable amount.
	DefaultTaxRate = decimal.NewFromInt(5)
	// DefaultServiceChargeRate is the service charge percentage.
	DefaultServiceChargeRate = decimal.Zero
	// DefaultDeliveryFee is the flat delivery fee in major currency units.
	DefaultDeliveryFee = decimal.Zero
	// DefaultPreorderSplitPercent is the upfront share of a preorder split.
	DefaultPreorderSplitPercent = decimal.NewFromInt(50)
)

// Config holds the per-restaurant rates and policies the pricing pipeline
// needs. It is constructed once per quote with defaults already applied, so
// downstream code never checks for missing values.
type Config struct {
	TaxRate               decimal.Decimal
	ServiceChargeRate     decimal.Decimal
	DeliveryFee           decimal.Decimal
	PreorderSplitPercent  decimal.Decimal
	AllowDiscountStacking bool
	Currency              string
	MaxQtyPerItem         int
}

// Provider supplies restaurant configuration. Implementations return
// DefaultConfig for unknown restaurants; only collaborator I/O failures
// surface as errors.
type Provider interface {
	GetConfig(ctx context.Context, restaurantID string) (Config, error)
}

// DefaultConfig returns a Config populated with the documented defaults.
func DefaultConfig() Config {
	return Config{
		TaxRate:              DefaultTaxRate,
		ServiceChargeRate:    DefaultServiceChargeRate,
		DeliveryFee:          DefaultDeliveryFee,
		PreorderSplitPercent: DefaultPreorderSplitPercent,
		Currency:             DefaultCurrency,
		MaxQtyPerItem:        DefaultMaxQtyPerItem,
	}
}

// Normalize fills zero or invalid fields with defaults. Repositories call it
// after scanning nullable columns so the rest of the pipeline sees a complete
// configuration.
func (c Config) Normalize() Config {
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.MaxQtyPerItem < 1 {
		c.MaxQtyPerItem = DefaultMaxQtyPerItem
	}
	if c.TaxRate.IsNegative() {
		c.TaxRate = DefaultTaxRate
	}
	if c.ServiceChargeRate.IsNegative() {
		c.ServiceChargeRate = DefaultServiceChargeRate
	}
	if c.DeliveryFee.IsNegative() {
		c.DeliveryFee = DefaultDeliveryFee
	}
	if c.PreorderSplitPercent.LessThanOrEqual(decimal.Zero) ||
		c.PreorderSplitPercent.GreaterThan(decimal.NewFromInt(100)) {
		c.PreorderSplitPercent = DefaultPreorderSplitPercent
	}
	return c
}
