package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all fundamentals routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/fundamentals", func(r chi.Router) {
		r.Get("/{ticker}", func(w http.ResponseWriter, r *http.Request) {
			ticker := chi.URLParam(r, "ticker")
			h.HandleGetFundamentals(w, r, ticker)
		})
		r.Get("/{ticker}/chart", func(w http.ResponseWriter, r *http.Request) {
			ticker := chi.URLParam(r, "ticker")
			h.HandleGetMetricChart(w, r, ticker)
		})
	})
}
