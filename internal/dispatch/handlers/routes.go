package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all dispatch routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dispatch", func(r chi.Router) {
		r.Post("/", h.HandleDispatch)
		r.Post("/session", h.HandleNewSession)
		r.Delete("/session/{session_id}", h.HandleEndSession)
		r.Get("/ws", h.HandleDispatchWS)
	})
}
