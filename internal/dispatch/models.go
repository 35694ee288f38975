// Package dispatch routes dashboard selection events through the
// fetch-normalize-present pipeline.
package dispatch

import (
	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/finmetrix/finmetrix/internal/modules/charts"
)

// Dashboard tabs. Each tab maps to one pipeline run shape.
const (
	TabPrices        = "prices"
	TabProfile       = "profile"
	TabRevenue       = "revenue"
	TabProfitability = "profitability"
	TabEPS           = "eps"
	TabDebt          = "debt"
	TabCashflow      = "cashflow"
	TabAssets        = "assets"
	TabDividends     = "dividends"
)

// DateRange bounds a selection in calendar dates (YYYY-MM-DD, inclusive).
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Selection is one user interaction: the full dashboard state needed to
// produce a render. It replaces per-widget callbacks; every input change
// submits a whole Selection.
type Selection struct {
	SessionID string    `json:"session_id"`
	Tickers   []string  `json:"tickers"`
	DateRange DateRange `json:"date_range"`
	ActiveTab string    `json:"active_tab"`
	Period    string    `json:"period,omitempty"`     // annual (default) or quarterly
	SMAWindow int       `json:"sma_window,omitempty"` // price chart overlay
	Trendline bool      `json:"trendline,omitempty"`  // price chart overlay
}

// RenderPayload is the pipeline output for one Selection. Generation tags the
// session state the payload was computed for; clients drop payloads whose
// generation is below the session's current one (latest selection wins).
type RenderPayload struct {
	SessionID  string                  `json:"session_id"`
	Generation uint64                  `json:"generation"`
	ActiveTab  string                  `json:"active_tab"`
	Charts     []charts.ChartData      `json:"charts,omitempty"`
	Profiles   []domain.CompanyProfile `json:"profiles,omitempty"`
	Message    string                  `json:"message,omitempty"` // empty-state text
}
