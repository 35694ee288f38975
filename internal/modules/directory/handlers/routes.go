package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all ticker directory routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/directory", func(r chi.Router) {
		r.Get("/options", h.HandleGetOptions)
	})
}
