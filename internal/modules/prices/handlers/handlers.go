// Package handlers provides HTTP handlers for price history operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/finmetrix/finmetrix/internal/modules/charts"
	"github.com/finmetrix/finmetrix/internal/modules/prices"
	"github.com/rs/zerolog"
)

// Handler handles price history HTTP requests
type Handler struct {
	prices *prices.Service
	charts *charts.Service
	log    zerolog.Logger
}

// NewHandler creates a new prices handler
func NewHandler(pricesService *prices.Service, chartsService *charts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		prices: pricesService,
		charts: chartsService,
		log:    log.With().Str("handler", "prices").Logger(),
	}
}

// HandleGetPrices handles GET /api/prices/{ticker}
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request, ticker string) {
	start, end := parseRangeParams(r)

	series, err := h.prices.FetchPrices(r.Context(), ticker, start, end)
	if err != nil {
		h.writeError(w, err, "Failed to get prices", ticker)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"ticker": series.Ticker,
			"points": series.Points,
			"count":  len(series.Points),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetPriceChart handles GET /api/prices/chart
func (h *Handler) HandleGetPriceChart(w http.ResponseWriter, r *http.Request) {
	tickersStr := r.URL.Query().Get("tickers")
	if tickersStr == "" {
		http.Error(w, "tickers parameter is required", http.StatusBadRequest)
		return
	}

	start, end := parseRangeParams(r)

	opts := charts.PriceChartOptions{}
	if smaStr := r.URL.Query().Get("sma"); smaStr != "" {
		if sma, err := strconv.Atoi(smaStr); err == nil && sma > 1 {
			opts.SMAWindow = sma
		}
	}
	if trendStr := r.URL.Query().Get("trend"); trendStr != "" {
		opts.Trendline = trendStr == "1" || trendStr == "true"
	}

	var seriesList []domain.TickerSeries
	for _, ticker := range strings.Split(tickersStr, ",") {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" {
			continue
		}

		series, err := h.prices.FetchPrices(r.Context(), ticker, start, end)
		if err != nil {
			h.writeError(w, err, "Failed to get prices", ticker)
			return
		}
		if !series.Empty() {
			seriesList = append(seriesList, series)
		}
	}

	chart := h.charts.PriceChart(seriesList, opts)

	response := map[string]interface{}{
		"data": chart,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetDividends handles GET /api/dividends/{ticker}
func (h *Handler) HandleGetDividends(w http.ResponseWriter, r *http.Request, ticker string) {
	start, end := parseRangeParams(r)

	series, err := h.prices.FetchDividends(r.Context(), ticker, start, end)
	if err != nil {
		h.writeError(w, err, "Failed to get dividends", ticker)
		return
	}

	chart := h.charts.DividendChart(series)

	response := map[string]interface{}{
		"data": chart,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// parseRangeParams reads start/end query parameters, defaulting to the
// trailing year. Malformed dates fall back to the defaults; the availability
// floor is applied by the prices service.
func parseRangeParams(r *http.Request) (time.Time, time.Time) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(-1, 0, 0)

	if endStr := r.URL.Query().Get("end"); endStr != "" {
		if t, err := time.Parse("2006-01-02", endStr); err == nil {
			end = t
		}
	}
	if startStr := r.URL.Query().Get("start"); startStr != "" {
		if t, err := time.Parse("2006-01-02", startStr); err == nil {
			start = t
		}
	}

	return start, end
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg, ticker string) {
	if domain.IsTransient(err) {
		h.log.Warn().Err(err).Str("ticker", ticker).Msg(msg)
		http.Error(w, "Data provider temporarily unavailable, please retry", http.StatusServiceUnavailable)
		return
	}
	h.log.Error().Err(err).Str("ticker", ticker).Msg(msg)
	http.Error(w, msg, http.StatusInternalServerError)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
