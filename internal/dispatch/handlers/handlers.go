// Package handlers provides HTTP and WebSocket endpoints for selection
// dispatch.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/finmetrix/finmetrix/internal/dispatch"
	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Handler handles selection dispatch requests
type Handler struct {
	dispatcher *dispatch.Dispatcher
	devMode    bool
	log        zerolog.Logger
}

// NewHandler creates a new dispatch handler
func NewHandler(dispatcher *dispatch.Dispatcher, devMode bool, log zerolog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		devMode:    devMode,
		log:        log.With().Str("handler", "dispatch").Logger(),
	}
}

// HandleNewSession handles POST /api/dispatch/session
func (h *Handler) HandleNewSession(w http.ResponseWriter, r *http.Request) {
	sessionID := h.dispatcher.NewSession()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"session_id": sessionID,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleEndSession handles DELETE /api/dispatch/session/{session_id}. The
// dashboard calls it on page unload so the session's generation counter is
// released promptly rather than waiting for idle eviction.
func (h *Handler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		http.Error(w, "Missing session ID", http.StatusBadRequest)
		return
	}

	h.dispatcher.EndSession(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDispatch handles POST /api/dispatch
func (h *Handler) HandleDispatch(w http.ResponseWriter, r *http.Request) {
	var sel dispatch.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		http.Error(w, "Invalid selection payload", http.StatusBadRequest)
		return
	}

	payload, err := h.dispatcher.Dispatch(r.Context(), sel)
	if err != nil {
		if domain.IsTransient(err) {
			h.log.Warn().Err(err).Msg("Dispatch hit transient provider failure")
			http.Error(w, "Data provider temporarily unavailable, please retry", http.StatusServiceUnavailable)
			return
		}
		h.log.Error().Err(err).Msg("Dispatch failed")
		http.Error(w, "Dispatch failed", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": payload,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// wsError is the error message shape sent over the WebSocket channel.
type wsError struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// HandleDispatchWS handles GET /api/dispatch/ws. The client sends Selection
// messages; each one produces a RenderPayload (or an error message) on the
// same connection. Transient provider failures keep the connection open so
// the client can retry the selection.
func (h *Handler) HandleDispatchWS(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if h.devMode {
		// The dev frontend runs on a different origin.
		opts.InsecureSkipVerify = true
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection closed")

	ctx := r.Context()

	// Sessions served over this connection end with it.
	served := make(map[string]bool)
	defer func() {
		for id := range served {
			h.dispatcher.EndSession(id)
		}
	}()

	for {
		var sel dispatch.Selection
		if err := wsjson.Read(ctx, conn, &sel); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			h.log.Debug().Err(err).Msg("WebSocket read failed")
			return
		}

		if sel.SessionID != "" {
			served[sel.SessionID] = true
		}

		payload, err := h.dispatcher.Dispatch(ctx, sel)
		if err != nil {
			msg := wsError{Error: "Dispatch failed"}
			if domain.IsTransient(err) {
				msg = wsError{Error: "Data provider temporarily unavailable, please retry", Retryable: true}
				h.log.Warn().Err(err).Msg("Dispatch hit transient provider failure")
			} else {
				h.log.Error().Err(err).Msg("Dispatch failed")
			}
			if writeErr := wsjson.Write(ctx, conn, msg); writeErr != nil {
				return
			}
			continue
		}

		if err := wsjson.Write(ctx, conn, payload); err != nil {
			h.log.Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
