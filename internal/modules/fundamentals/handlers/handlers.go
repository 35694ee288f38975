// Package handlers provides HTTP handlers for fundamentals operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/finmetrix/finmetrix/internal/modules/charts"
	"github.com/finmetrix/finmetrix/internal/modules/fundamentals"
	"github.com/rs/zerolog"
)

// Handler handles fundamentals HTTP requests
type Handler struct {
	fundamentals *fundamentals.Service
	charts       *charts.Service
	log          zerolog.Logger
}

// NewHandler creates a new fundamentals handler
func NewHandler(fundamentalsService *fundamentals.Service, chartsService *charts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		fundamentals: fundamentalsService,
		charts:       chartsService,
		log:          log.With().Str("handler", "fundamentals").Logger(),
	}
}

// periodView is the JSON shape of one reporting period. Not-available
// metrics serialize as null, never as zero.
type periodView struct {
	EndDate string              `json:"end_date"`
	Kind    domain.PeriodKind   `json:"kind"`
	Metrics map[string]*float64 `json:"metrics"`
}

// recordView is the JSON shape of a normalized record.
type recordView struct {
	Ticker   string          `json:"ticker"`
	Currency domain.Currency `json:"currency"`
	Periods  []periodView    `json:"periods"`
}

func newRecordView(record domain.FundamentalsRecord, kind domain.PeriodKind) recordView {
	view := recordView{
		Ticker:   record.Ticker,
		Currency: record.Currency,
		Periods:  []periodView{},
	}

	for _, key := range record.PeriodsOf(kind) {
		pv := periodView{
			EndDate: key.EndDate,
			Kind:    key.Kind,
			Metrics: make(map[string]*float64, len(domain.CanonicalMetrics)),
		}
		for _, metric := range domain.CanonicalMetrics {
			if value := record.Metric(key, metric); value.Valid {
				v := value.V
				pv.Metrics[metric] = &v
			} else {
				pv.Metrics[metric] = nil
			}
		}
		view.Periods = append(view.Periods, pv)
	}

	return view
}

// HandleGetFundamentals handles GET /api/fundamentals/{ticker}
func (h *Handler) HandleGetFundamentals(w http.ResponseWriter, r *http.Request, ticker string) {
	record, err := h.fundamentals.FetchFundamentals(r.Context(), ticker)
	if err != nil {
		h.writeError(w, err, "Failed to get fundamentals", ticker)
		return
	}

	response := map[string]interface{}{
		"data": newRecordView(record, parsePeriodKind(r)),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetMetricChart handles GET /api/fundamentals/{ticker}/chart
func (h *Handler) HandleGetMetricChart(w http.ResponseWriter, r *http.Request, ticker string) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		http.Error(w, "metric parameter is required", http.StatusBadRequest)
		return
	}

	record, err := h.fundamentals.FetchFundamentals(r.Context(), ticker)
	if err != nil {
		h.writeError(w, err, "Failed to get fundamentals", ticker)
		return
	}

	kind := parsePeriodKind(r)

	var chart charts.ChartData
	if metric == "debt_to_equity" {
		chart = h.charts.DebtEquityChart(record, kind)
	} else {
		chart = h.charts.MetricChart(record, metric, kind)
	}

	response := map[string]interface{}{
		"data": chart,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

func parsePeriodKind(r *http.Request) domain.PeriodKind {
	if r.URL.Query().Get("period") == string(domain.PeriodQuarterly) {
		return domain.PeriodQuarterly
	}
	return domain.PeriodAnnual
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
