// Package payment selects the payable amount from a quote and hands it to a
// payment gateway collaborator. Gateway protocol details stay behind the
// Gateway interface.
package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/dineout-quote/internal/domain/quote"
)

// Type picks which part of a quote the customer is paying.
type Type string

const (
	// TypePreorder charges the upfront half of a preorder split.
	TypePreorder Type = "preorder"
	// TypeRemaining charges the deferred half of a preorder split.
	TypeRemaining Type = "remaining"
	// TypeFull charges the whole total payable.
	TypeFull Type = "full"
)

// ErrUnsupportedType is returned for unknown payment types.
var ErrUnsupportedType = errors.New("unsupported payment type")

// Gateway creates a chargeable order at an external payment provider for the
// given amount in integer minor units. It returns an opaque order reference.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
}

// AmountFor returns the amount due for the given payment type. Preorder and
// remaining fall back to the full total when the quote has no split.
func AmountFor(q *quote.Result, t Type) (decimal.Decimal, error) {
	switch t {
	case TypePreorder:
		if q.Split.Enabled {
			return q.Split.Now, nil
		}
		return q.Pricing.TotalPayable, nil
	case TypeRemaining:
		if q.Split.Enabled {
			return q.Split.Later, nil
		}
		return q.Pricing.TotalPayable, nil
	case TypeFull:
		return q.Pricing.TotalPayable, nil
	default:
		return decimal.Zero, errors.Wrapf(ErrUnsupportedType, "%q", t)
	}
}

// Order is the outcome of initiating a payment: the gateway reference plus
// the charged amount in both major and minor units.
type Order struct {
	Ref         string
	Amount      decimal.Decimal
	AmountMinor int64
	Currency    string
}

// Initiate selects the amount due and creates a gateway order for it.
func Initiate(ctx context.Context, gw Gateway, q *quote.Result, t Type, receipt string) (*Order, error) {
	amount, err := AmountFor(q, t)
	if err != nil {
		return nil, err
	}

	minor := quote.MinorUnits(amount)
	ref, err := gw.CreateOrder(ctx, minor, q.Meta.Currency, receipt)
	if err != nil {
		return nil, errors.Wrap(err, "create gateway order")
	}

	return &Order{
		Ref:         ref,
		Amount:      amount,
		AmountMinor: minor,
		Currency:    q.Meta.Currency,
	}, nil
}
