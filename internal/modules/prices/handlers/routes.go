package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all price history routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/prices", func(r chi.Router) {
		r.Get("/chart", h.HandleGetPriceChart)
		r.Get("/{ticker}", func(w http.ResponseWriter, r *http.Request) {
			ticker := chi.URLParam(r, "ticker")
			h.HandleGetPrices(w, r, ticker)
		})
	})

	r.Route("/dividends", func(r chi.Router) {
		r.Get("/{ticker}", func(w http.ResponseWriter, r *http.Request) {
			ticker := chi.URLParam(r, "ticker")
			h.HandleGetDividends(w, r, ticker)
		})
	})
}
