package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/dineout-quote/internal/domain/catalog"
	"github.com/xenking/dineout-quote/internal/domain/discount"
	"github.com/xenking/dineout-quote/internal/domain/quote"
)

// Quote prices a cart and returns the full breakdown. Catalog problems fail
// the request; discount problems surface as reason codes in the body.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	req, err := decodeQuoteRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "CalculateQuote")
	result, err := h.calculator.Quote(ctx, req)
	span.End()
	if err != nil {
		h.writeQuoteError(w, r, err)
		return
	}
	h.quotes.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("restaurant_id", req.RestaurantID),
	))

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeQuoteResult(e, result)
	})
}

// writeQuoteError maps engine errors to HTTP status codes. Validation and
// catalog errors are the caller's fault; everything else is a retryable
// collaborator failure.
func (h *Handler) writeQuoteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, quote.ErrEmptyItems),
		errors.Is(err, quote.ErrMissingRestaurantID),
		errors.Is(err, quote.ErrUnsupportedOrderType):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		iqErr  *catalog.InvalidQuantityError
		nfErr  *catalog.ItemNotFoundError
		inaErr *catalog.ItemInactiveError
	)
	switch {
	case errors.As(err, &iqErr), errors.As(err, &nfErr), errors.As(err, &inaErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	zctx.From(r.Context()).Error("quote failed", zap.Error(err))
	writeError(w, http.StatusServiceUnavailable, "store unavailable, try again")
}

func decodeQuoteRequest(body []byte) (quote.Request, error) {
	var req quote.Request
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "restaurantId":
			req.RestaurantID, err = optStr(d)
		case "userId":
			req.UserID, err = optStr(d)
		case "promoCode":
			req.PromoCode, err = optStr(d)
		case "orderType":
			var s string
			s, err = optStr(d)
			req.OrderType = quote.OrderType(s)
		case "pricingPhase":
			var s string
			s, err = optStr(d)
			req.Phase = discount.Phase(s)
		case "bookingTime":
			req.BookingTime, err = optTime(d)
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				var item catalog.RequestItem
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "itemId":
						item.ItemID, err = optStr(d)
					case "qty", "quantity":
						item.Quantity, err = d.Int()
					default:
						err = d.Skip()
					}
					return err
				}); err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return quote.Request{}, err
	}

	if req.OrderType == "" {
		req.OrderType = quote.OrderDineIn
	}
	return req, nil
}

func encodeQuoteResult(e *jx.Encoder, q *quote.Result) {
	e.ObjStart()

	e.FieldStart("meta")
	e.ObjStart()
	e.FieldStart("restaurantId")
	e.Str(q.Meta.RestaurantID)
	e.FieldStart("userId")
	if q.Meta.UserID == "" {
		e.Null()
	} else {
		e.Str(q.Meta.UserID)
	}
	e.FieldStart("orderType")
	e.Str(string(q.Meta.OrderType))
	e.FieldStart("pricingPhase")
	e.Str(string(q.Meta.Phase))
	e.FieldStart("bookingTime")
	e.Str(q.Meta.BookingTime.UTC().Format(time.RFC3339))
	e.FieldStart("currency")
	e.Str(q.Meta.Currency)
	e.FieldStart("allowDiscountStacking")
	e.Bool(q.Meta.AllowDiscountStacking)
	e.ObjEnd()

	e.FieldStart("items")
	e.ArrStart()
	for _, li := range q.Items {
		e.ObjStart()
		e.FieldStart("itemId")
		e.Str(li.ItemID)
		e.FieldStart("name")
		e.Str(li.Name)
		e.FieldStart("unitPrice")
		money(e, li.UnitPrice)
		e.FieldStart("qty")
		e.Int(li.Quantity)
		e.FieldStart("lineTotal")
		money(e, li.LineTotal)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("pricing")
	e.ObjStart()
	e.FieldStart("subtotal")
	money(e, q.Pricing.Subtotal)

	e.FieldStart("discounts")
	e.ObjStart()
	e.FieldStart("total")
	money(e, q.Pricing.Discounts.Total)
	e.FieldStart("reason")
	e.Str(string(q.Pricing.Discounts.Reason))
	e.FieldStart("applied")
	e.ArrStart()
	for _, a := range q.Pricing.Discounts.Applied {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(a.ID)
		e.FieldStart("type")
		e.Str(string(a.Kind))
		if a.Code != "" {
			e.FieldStart("code")
			e.Str(a.Code)
		}
		e.FieldStart("mode")
		e.Str(string(a.Mode))
		e.FieldStart("value")
		money(e, a.Value)
		e.FieldStart("amount")
		money(e, a.Amount)
		e.FieldStart("reason")
		e.Str(string(a.Reason))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()

	e.FieldStart("serviceCharge")
	e.ObjStart()
	e.FieldStart("rate")
	money(e, q.Pricing.ServiceCharge.Rate)
	e.FieldStart("amount")
	money(e, q.Pricing.ServiceCharge.Amount)
	e.ObjEnd()

	e.FieldStart("taxableAmount")
	money(e, q.Pricing.TaxableAmount)

	e.FieldStart("gst")
	e.ObjStart()
	e.FieldStart("rate")
	money(e, q.Pricing.Tax.Rate)
	e.FieldStart("amount")
	money(e, q.Pricing.Tax.Amount)
	e.ObjEnd()

	e.FieldStart("deliveryFee")
	money(e, q.Pricing.DeliveryFee)
	e.FieldStart("totalPayable")
	money(e, q.Pricing.TotalPayable)
	e.FieldStart("totalPayablePaise")
	e.Int64(q.Pricing.TotalPayableMinor)
	e.ObjEnd()

	e.FieldStart("split")
	e.ObjStart()
	e.FieldStart("enabled")
	e.Bool(q.Split.Enabled)
	e.FieldStart("percent")
	money(e, q.Split.Percent)
	e.FieldStart("now")
	money(e, q.Split.Now)
	e.FieldStart("later")
	money(e, q.Split.Later)
	e.FieldStart("nowPaise")
	e.Int64(q.Split.NowMinor)
	e.FieldStart("laterPaise")
	e.Int64(q.Split.LaterMinor)
	e.ObjEnd()

	e.ObjEnd()
}
