package fundamentals

import (
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/finmetrix/finmetrix/internal/domain"
)

// fieldAliases maps provider field names to canonical metric names. The
// provider mixes camelCase API keys with human-readable statement labels, so
// both spellings are listed. Every canonical name aliases to itself, which is
// what makes Normalize a no-op on already-normalized input.
var fieldAliases = map[string]string{
	// revenue
	domain.MetricRevenue: domain.MetricRevenue,
	"totalRevenue":       domain.MetricRevenue,
	"Total Revenue":      domain.MetricRevenue,

	// net income
	domain.MetricNetIncome:              domain.MetricNetIncome,
	"netIncome":                         domain.MetricNetIncome,
	"Net Income":                        domain.MetricNetIncome,
	"netIncomeApplicableToCommonShares": domain.MetricNetIncome,

	// earnings per share
	domain.MetricEPSBasic:   domain.MetricEPSBasic,
	"basicEPS":              domain.MetricEPSBasic,
	"Basic EPS":             domain.MetricEPSBasic,
	domain.MetricEPSDiluted: domain.MetricEPSDiluted,
	"dilutedEPS":            domain.MetricEPSDiluted,
	"Diluted EPS":           domain.MetricEPSDiluted,

	// balance sheet
	domain.MetricTotalAssets: domain.MetricTotalAssets,
	"totalAssets":            domain.MetricTotalAssets,
	"Total Assets":           domain.MetricTotalAssets,
	domain.MetricTotalDebt:   domain.MetricTotalDebt,
	"totalDebt":              domain.MetricTotalDebt,
	"Total Debt":             domain.MetricTotalDebt,
	domain.MetricEquity:      domain.MetricEquity,
	"totalStockholderEquity": domain.MetricEquity,
	"stockholdersEquity":     domain.MetricEquity,
	"Stockholders Equity":    domain.MetricEquity,

	// cash flow
	domain.MetricOperatingCashFlow:       domain.MetricOperatingCashFlow,
	"totalCashFromOperatingActivities":   domain.MetricOperatingCashFlow,
	"operatingCashFlow":                  domain.MetricOperatingCashFlow,
	"Operating Cash Flow":                domain.MetricOperatingCashFlow,
	domain.MetricFreeCashFlow:            domain.MetricFreeCashFlow,
	"freeCashflow":                       domain.MetricFreeCashFlow,
	"freeCashFlow":                       domain.MetricFreeCashFlow,
	"Free Cash Flow":                     domain.MetricFreeCashFlow,

	// dividends
	domain.MetricDividendPerShare: domain.MetricDividendPerShare,
	"dividendsPerShare":           domain.MetricDividendPerShare,
	"dividendRate":                domain.MetricDividendPerShare,
	"Dividend Per Share":          domain.MetricDividendPerShare,
}

// Normalize converts a raw statement into a canonical FundamentalsRecord.
// It is pure and deterministic: provider fields map through the alias table,
// unrecognized fields are dropped, and every canonical metric absent from a
// period becomes an explicit not-available value. Values pass through in the
// provider's reported unit; no arithmetic is performed.
func Normalize(raw RawStatement) domain.FundamentalsRecord {
	record := domain.NewFundamentalsRecord(raw.Ticker, domain.Currency(raw.Currency))

	for _, period := range raw.Periods {
		if period.EndDate == "" {
			continue
		}
		kind := period.Kind
		if kind == "" {
			kind = domain.PeriodAnnual
		}

		key := domain.PeriodKey{EndDate: period.EndDate, Kind: kind}
		metrics, ok := record.Periods[key]
		if !ok {
			metrics = make(domain.Metrics, len(domain.CanonicalMetrics))
			for _, metric := range domain.CanonicalMetrics {
				metrics[metric] = domain.NA()
			}
			record.Periods[key] = metrics
		}

		for field, value := range period.Fields {
			metric, ok := fieldAliases[field]
			if !ok {
				continue
			}
			if num, ok := extractNumber(value); ok {
				metrics[metric] = domain.Some(num)
			}
		}
	}

	return record
}

// extractNumber pulls a float out of a provider value, which is either a
// plain number or a {raw, fmt} value object.
func extractNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case map[string]interface{}:
		jval, err := jsonpath.Get("$.raw", value)
		if err != nil {
			return 0, false
		}
		// jsonpath is never clear about whether it returns a list of one
		// answer or a single answer; keep the first one if any.
		if jlist, ok := jval.([]interface{}); ok && len(jlist) > 0 {
			jval = jlist[0]
		}
		if num, ok := jval.(float64); ok {
			return num, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// extractEndDate pulls the period end date out of a raw statement entry.
// The provider reports it as {"raw": <unix>, "fmt": "YYYY-MM-DD"}.
func extractEndDate(entry map[string]interface{}) string {
	jval, err := jsonpath.Get("$.endDate.fmt", interface{}(entry))
	if err == nil {
		if jlist, ok := jval.([]interface{}); ok && len(jlist) > 0 {
			jval = jlist[0]
		}
		if s, ok := jval.(string); ok && s != "" {
			return s
		}
	}

	jval, err = jsonpath.Get("$.endDate.raw", interface{}(entry))
	if err == nil {
		if jlist, ok := jval.([]interface{}); ok && len(jlist) > 0 {
			jval = jlist[0]
		}
		if unix, ok := jval.(float64); ok {
			return time.Unix(int64(unix), 0).UTC().Format("2006-01-02")
		}
	}

	if s, ok := entry["endDate"].(string); ok {
		return s
	}

	return ""
}
