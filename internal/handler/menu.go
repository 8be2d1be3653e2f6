package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// ListMenu returns the restaurant's active menu items.
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.PathValue("restaurantID")
	if restaurantID == "" {
		writeError(w, http.StatusBadRequest, "restaurantID required")
		return
	}

	items, err := h.catalog.ListActive(r.Context(), restaurantID)
	if err != nil {
		zctx.From(r.Context()).Error("list menu failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store unavailable, try again")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, item := range items {
			e.ObjStart()
			e.FieldStart("id")
			e.Str(item.ID)
			e.FieldStart("name")
			e.Str(item.Name)
			e.FieldStart("price")
			money(e, item.Price)
			e.ObjEnd()
		}
		e.ArrEnd()
	})
}
