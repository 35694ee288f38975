// Package handlers provides HTTP handlers for the ticker directory.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/finmetrix/finmetrix/internal/modules/directory"
	"github.com/rs/zerolog"
)

// Handler handles ticker directory HTTP requests
type Handler struct {
	directory *directory.Service
	log       zerolog.Logger
}

// NewHandler creates a new directory handler
func NewHandler(directoryService *directory.Service, log zerolog.Logger) *Handler {
	return &Handler{
		directory: directoryService,
		log:       log.With().Str("handler", "directory").Logger(),
	}
}

// HandleGetOptions handles GET /api/directory/options
func (h *Handler) HandleGetOptions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 50 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	options, err := h.directory.Options(r.Context(), query, limit)
	if err != nil {
		if domain.IsTransient(err) {
			h.log.Warn().Err(err).Msg("Failed to get directory options")
			http.Error(w, "Symbol directory temporarily unavailable, please retry", http.StatusServiceUnavailable)
			return
		}
		h.log.Error().Err(err).Msg("Failed to get directory options")
		http.Error(w, "Failed to get directory options", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"options": options,
			"count":   len(options),
		},
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
