// Package handlers provides HTTP handlers for company profile operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/finmetrix/finmetrix/internal/modules/profile"
	"github.com/rs/zerolog"
)

// Handler handles company profile HTTP requests
type Handler struct {
	profile *profile.Service
	log     zerolog.Logger
}

// NewHandler creates a new profile handler
func NewHandler(profileService *profile.Service, log zerolog.Logger) *Handler {
	return &Handler{
		profile: profileService,
		log:     log.With().Str("handler", "profile").Logger(),
	}
}

// HandleGetProfile handles GET /api/profile/{ticker}
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request, ticker string) {
	p, err := h.profile.GetProfile(r.Context(), ticker)
	if err != nil {
		if domain.IsTransient(err) {
			h.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to get profile")
			http.Error(w, "Data provider temporarily unavailable, please retry", http.StatusServiceUnavailable)
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to get profile")
		http.Error(w, "Failed to get profile", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": p,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
