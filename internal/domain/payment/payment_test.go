package payment

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/dineout-quote/internal/domain/quote"
)

func splitQuote() *quote.Result {
	return &quote.Result{
		Meta: quote.Meta{Currency: "INR"},
		Pricing: quote.Pricing{
			TotalPayable:      decimal.RequireFromString("945"),
			TotalPayableMinor: 94500,
		},
		Split: quote.Split{
			Enabled:    true,
			Percent:    decimal.NewFromInt(50),
			Now:        decimal.RequireFromString("472.50"),
			Later:      decimal.RequireFromString("472.50"),
			NowMinor:   47250,
			LaterMinor: 47250,
		},
	}
}

func unsplitQuote() *quote.Result {
	return &quote.Result{
		Meta: quote.Meta{Currency: "INR"},
		Pricing: quote.Pricing{
			TotalPayable:      decimal.RequireFromString("945"),
			TotalPayableMinor: 94500,
		},
	}
}

func TestAmountFor(t *testing.T) {
	tests := []struct {
		name    string
		quote   *quote.Result
		typ     Type
		want    string
		wantErr error
	}{
		{name: "preorder takes now half", quote: splitQuote(), typ: TypePreorder, want: "472.50"},
		{name: "remaining takes later half", quote: splitQuote(), typ: TypeRemaining, want: "472.50"},
		{name: "full takes total", quote: splitQuote(), typ: TypeFull, want: "945"},
		{name: "preorder without split falls back to total", quote: unsplitQuote(), typ: TypePreorder, want: "945"},
		{name: "remaining without split falls back to total", quote: unsplitQuote(), typ: TypeRemaining, want: "945"},
		{name: "unknown type", quote: splitQuote(), typ: Type("partial"), wantErr: ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmountFor(tt.quote, tt.typ)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

type recordingGateway struct {
	minor    int64
	currency string
	receipt  string
	err      error
}

func (g *recordingGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (string, error) {
	g.minor = amountMinor
	g.currency = currency
	g.receipt = receipt
	if g.err != nil {
		return "", g.err
	}
	return "gw_123", nil
}

func TestInitiate(t *testing.T) {
	gw := &recordingGateway{}

	order, err := Initiate(context.Background(), gw, splitQuote(), TypePreorder, "rcpt-1")
	require.NoError(t, err)

	assert.Equal(t, "gw_123", order.Ref)
	assert.Equal(t, int64(47250), order.AmountMinor)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, int64(47250), gw.minor)
	assert.Equal(t, "INR", gw.currency)
	assert.Equal(t, "rcpt-1", gw.receipt)
}

func TestInitiate_GatewayError(t *testing.T) {
	gw := &recordingGateway{err: errors.New("gateway timeout")}

	_, err := Initiate(context.Background(), gw, splitQuote(), TypeFull, "rcpt-2")
	require.Error(t, err)
}

func TestLocalGateway(t *testing.T) {
	var gw Gateway = LocalGateway{}

	ref, err := gw.CreateOrder(context.Background(), 100, "INR", "rcpt-3")
	require.NoError(t, err)
	assert.Equal(t, "local_rcpt-3", ref)
}
