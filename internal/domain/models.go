// Package domain provides core domain models and types.
package domain

import "sort"

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// PricePoint is one daily close for a ticker. Date is a calendar date
// ("YYYY-MM-DD"); intraday time of day is not tracked.
type PricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// TickerSeries holds the daily closes for one ticker, strictly ascending by
// date with no duplicate dates. An empty Points slice is a valid value and
// means "no data", not an error.
type TickerSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// Empty reports whether the series carries no data points.
func (s TickerSeries) Empty() bool {
	return len(s.Points) == 0
}

// PeriodKind distinguishes annual from quarterly reporting periods. The two
// kinds are never merged into one axis.
type PeriodKind string

const (
	PeriodAnnual    PeriodKind = "annual"
	PeriodQuarterly PeriodKind = "quarterly"
)

// PeriodKey identifies one reporting period by its end date ("YYYY-MM-DD")
// and kind.
type PeriodKey struct {
	EndDate string     `json:"end_date"`
	Kind    PeriodKind `json:"kind"`
}

// Canonical metric names for normalized fundamentals. Every provider field
// maps to one of these or is dropped.
const (
	MetricRevenue           = "revenue"
	MetricNetIncome         = "net_income"
	MetricEPSBasic          = "eps_basic"
	MetricEPSDiluted        = "eps_diluted"
	MetricTotalAssets       = "total_assets"
	MetricTotalDebt         = "total_debt"
	MetricEquity            = "equity"
	MetricOperatingCashFlow = "operating_cash_flow"
	MetricFreeCashFlow      = "free_cash_flow"
	MetricDividendPerShare  = "dividend_per_share"
)

// CanonicalMetrics lists every canonical metric in display order.
var CanonicalMetrics = []string{
	MetricRevenue,
	MetricNetIncome,
	MetricEPSBasic,
	MetricEPSDiluted,
	MetricTotalAssets,
	MetricTotalDebt,
	MetricEquity,
	MetricOperatingCashFlow,
	MetricFreeCashFlow,
	MetricDividendPerShare,
}

// Value is a metric value that may be explicitly not available. A missing
// provider field is represented as Valid=false, never as a silent zero.
type Value struct {
	V     float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// NA is the explicit not-available value.
func NA() Value { return Value{} }

// Some wraps a present value.
func Some(v float64) Value { return Value{V: v, Valid: true} }

// Metrics maps canonical metric name to value for one period. Keys outside
// CanonicalMetrics never appear here.
type Metrics map[string]Value

// FundamentalsRecord holds the normalized statement history for one company.
// All monetary metrics share the provider-reported currency; no unit
// conversion is performed.
type FundamentalsRecord struct {
	Ticker   string                `json:"ticker"`
	Currency Currency              `json:"currency"`
	Periods  map[PeriodKey]Metrics `json:"-"`
}

// NewFundamentalsRecord creates an empty record for a ticker.
func NewFundamentalsRecord(ticker string, currency Currency) FundamentalsRecord {
	return FundamentalsRecord{
		Ticker:   ticker,
		Currency: currency,
		Periods:  make(map[PeriodKey]Metrics),
	}
}

// Empty reports whether the record carries no periods.
func (r FundamentalsRecord) Empty() bool {
	return len(r.Periods) == 0
}

// Metric returns the value for a canonical metric in a period. Unknown
// periods and unset metrics both return the not-available value.
func (r FundamentalsRecord) Metric(key PeriodKey, metric string) Value {
	m, ok := r.Periods[key]
	if !ok {
		return NA()
	}
	v, ok := m[metric]
	if !ok {
		return NA()
	}
	return v
}

// PeriodsOf returns the period keys of one kind sorted ascending by end date.
func (r FundamentalsRecord) PeriodsOf(kind PeriodKind) []PeriodKey {
	keys := make([]PeriodKey, 0, len(r.Periods))
	for k := range r.Periods {
		if k.Kind == kind {
			keys = append(keys, k)
		}
	}
	sortPeriodKeys(keys)
	return keys
}

func sortPeriodKeys(keys []PeriodKey) {
	// End dates are ISO formatted so string order is date order.
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].EndDate < keys[j].EndDate
	})
}

// Officer is one executive officer from the company profile.
type Officer struct {
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Age        int     `json:"age,omitempty"`
	FiscalYear int     `json:"fiscal_year,omitempty"`
	TotalPay   float64 `json:"total_pay,omitempty"`
}

// Coordinates is a headquarters location. Present only when the profile ZIP
// code could be geocoded.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CompanyProfile holds static company metadata. It is immutable for the
// lifetime of a dashboard session.
type CompanyProfile struct {
	Ticker       string       `json:"ticker"`
	Name         string       `json:"name"`
	Sector       string       `json:"sector"`
	Industry     string       `json:"industry"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	Zip          string       `json:"zip"`
	Country      string       `json:"country"`
	Website      string       `json:"website"`
	Summary      string       `json:"summary"`
	Officers     []Officer    `json:"officers"`
	Headquarters *Coordinates `json:"headquarters,omitempty"`
}
