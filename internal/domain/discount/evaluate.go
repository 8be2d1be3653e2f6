package discount

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Evaluation is the outcome of applying one discount spec to a subtotal.
type Evaluation struct {
	Amount decimal.Decimal
	Reason Reason
}

// Evaluate computes the discount amount for spec against subtotal, honouring
// the minimum-spend gate and the maximum-discount cap. The result is clamped
// to the subtotal and rounded to 2 decimal places.
func Evaluate(subtotal decimal.Decimal, spec *Spec) Evaluation {
	if spec == nil {
		return Evaluation{Amount: decimal.Zero, Reason: ReasonNoDiscount}
	}

	if spec.MinSpend.IsPositive() && subtotal.LessThan(spec.MinSpend) {
		return Evaluation{Amount: decimal.Zero, Reason: ReasonMinSpendNotMet}
	}

	var amount decimal.Decimal
	switch spec.Mode {
	case ModeFlat:
		amount = spec.Amount
	default:
		amount = subtotal.Mul(spec.Amount).Div(hundred)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	if spec.MaxDiscount.IsPositive() {
		amount = decimal.Min(amount, spec.MaxDiscount)
	}
	amount = decimal.Min(amount, subtotal).Round(2)

	if amount.IsPositive() {
		return Evaluation{Amount: amount, Reason: ReasonApplied}
	}
	return Evaluation{Amount: decimal.Zero, Reason: ReasonNoDiscount}
}
