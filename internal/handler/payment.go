package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/dineout-quote/internal/domain/payment"
	"github.com/xenking/dineout-quote/internal/domain/quote"
)

// InitiatePayment re-quotes the cart server-side, selects the amount due for
// the requested payment type, and creates a gateway order for it. The quote
// is never trusted from the client.
func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	req, paymentType, err := decodePaymentRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.calculator.Quote(r.Context(), req)
	if err != nil {
		h.writeQuoteError(w, r, err)
		return
	}

	order, err := payment.Initiate(r.Context(), h.gateway, result, paymentType, uuid.New().String())
	if err != nil {
		if errors.Is(err, payment.ErrUnsupportedType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		zctx.From(r.Context()).Error("initiate payment failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "payment gateway unavailable, try again")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("orderRef")
		e.Str(order.Ref)
		e.FieldStart("amount")
		money(e, order.Amount)
		e.FieldStart("amountPaise")
		e.Int64(order.AmountMinor)
		e.FieldStart("currency")
		e.Str(order.Currency)
		e.ObjEnd()
	})
}

// decodePaymentRequest reads a quote request plus the paymentType selector.
func decodePaymentRequest(body []byte) (quote.Request, payment.Type, error) {
	paymentType := payment.TypeFull

	req, err := decodeQuoteRequest(body)
	if err != nil {
		return quote.Request{}, "", err
	}

	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		if key != "paymentType" {
			return d.Skip()
		}
		s, err := optStr(d)
		if s != "" {
			paymentType = payment.Type(s)
		}
		return err
	})
	if err != nil {
		return quote.Request{}, "", err
	}
	return req, paymentType, nil
}
