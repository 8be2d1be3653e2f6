// Package handler exposes the quoting engine over HTTP with a hand-written
// JSON surface.
package handler

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/dineout-quote/internal/domain/catalog"
	"github.com/xenking/dineout-quote/internal/domain/payment"
	"github.com/xenking/dineout-quote/internal/domain/quote"
)

const scopeName = "github.com/xenking/dineout-quote/internal/handler"

// Handler serves the quote, menu, and payment endpoints.
type Handler struct {
	calculator *quote.Calculator
	catalog    catalog.Store
	gateway    payment.Gateway
	tracer     trace.Tracer
	quotes     metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(calculator *quote.Calculator, catalogStore catalog.Store, gateway payment.Gateway) *Handler {
	quotes, _ := otel.Meter(scopeName).Int64Counter("quotes_computed",
		metric.WithDescription("Quotes computed, by restaurant."),
	)
	return &Handler{
		calculator: calculator,
		catalog:    catalogStore,
		gateway:    gateway,
		tracer:     otel.Tracer(scopeName),
		quotes:     quotes,
	}
}

// Register attaches all API routes to the mux under the /api prefix.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/quote", h.Quote)
	mux.HandleFunc("POST /api/payments", h.InitiatePayment)
	mux.HandleFunc("GET /api/menu/{restaurantID}", h.ListMenu)
}
