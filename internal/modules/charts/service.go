package charts

import (
	"fmt"
	"sort"

	"github.com/finmetrix/finmetrix/internal/domain"
	talib "github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// metricTitles maps canonical metric names to chart titles.
var metricTitles = map[string]string{
	domain.MetricRevenue:           "Total Revenue",
	domain.MetricNetIncome:         "Net Income",
	domain.MetricEPSBasic:          "Basic EPS",
	domain.MetricEPSDiluted:        "Diluted EPS",
	domain.MetricTotalAssets:       "Total Assets",
	domain.MetricTotalDebt:         "Total Debt",
	domain.MetricEquity:            "Stockholders Equity",
	domain.MetricOperatingCashFlow: "Operating Cash Flow",
	domain.MetricFreeCashFlow:      "Free Cash Flow",
	domain.MetricDividendPerShare:  "Dividend Per Share",
}

// perShareMetrics report currency-per-share rather than plain currency.
var perShareMetrics = map[string]bool{
	domain.MetricEPSBasic:         true,
	domain.MetricEPSDiluted:       true,
	domain.MetricDividendPerShare: true,
}

// trimmedMetrics come from balance-sheet and cash-flow statements, where only
// the most recent periods are meaningful on a bar chart.
var trimmedMetrics = map[string]bool{
	domain.MetricTotalAssets:       true,
	domain.MetricTotalDebt:         true,
	domain.MetricEquity:            true,
	domain.MetricOperatingCashFlow: true,
	domain.MetricFreeCashFlow:      true,
}

// maxStatementPeriods caps the bars shown for trimmed metrics.
const maxStatementPeriods = 4

// PriceChartOptions controls the optional overlays on a price chart.
type PriceChartOptions struct {
	SMAWindow int  // 0 disables the moving-average overlay
	Trendline bool // least-squares trendline per ticker
}

// Service shapes fetched data into chart payloads. It is a pure mapping
// layer: no fetching, no state.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new charts service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "charts").Logger(),
	}
}

// PriceChart builds a line chart from one or more ticker series. Each ticker
// keeps its own sorted series; all series share one x-axis date domain (the
// union of all dates), with nil points where a ticker has no observation.
func (s *Service) PriceChart(seriesList []domain.TickerSeries, opts PriceChartOptions) ChartData {
	chart := ChartData{
		Title: "Closing Prices",
		XAxis: unionDates(seriesList),
	}

	slot := make(map[string]int, len(chart.XAxis))
	for i, date := range chart.XAxis {
		slot[date] = i
	}

	for _, ts := range seriesList {
		if ts.Empty() {
			continue
		}

		points := make([]ChartDataPoint, len(chart.XAxis))
		for i, date := range chart.XAxis {
			points[i] = ChartDataPoint{Time: date}
		}
		for _, p := range ts.Points {
			v := p.Close
			points[slot[p.Date]].Value = &v
		}

		chart.Series = append(chart.Series, ChartSeries{
			Name:   ts.Ticker,
			Kind:   KindLine,
			Points: points,
		})

		if opts.SMAWindow > 1 && len(ts.Points) >= opts.SMAWindow {
			chart.Series = append(chart.Series, smaSeries(ts, opts.SMAWindow, slot, len(chart.XAxis)))
		}
		if opts.Trendline && len(ts.Points) >= 2 {
			chart.Series = append(chart.Series, trendSeries(ts, slot, len(chart.XAxis)))
		}
	}

	return chart
}

// smaSeries computes a simple moving average overlay for one ticker.
func smaSeries(ts domain.TickerSeries, window int, slot map[string]int, width int) ChartSeries {
	closes := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		closes[i] = p.Close
	}

	sma := talib.Sma(closes, window)

	points := make([]ChartDataPoint, width)
	for i, p := range ts.Points {
		j := slot[p.Date]
		points[j].Time = p.Date
		if i >= window-1 {
			v := sma[i]
			points[j].Value = &v
		}
	}
	fillTimes(points, slotDates(slot))

	return ChartSeries{
		Name:   fmt.Sprintf("%s SMA(%d)", ts.Ticker, window),
		Kind:   KindLine,
		Points: points,
	}
}

// trendSeries fits a least-squares line through one ticker's closes.
func trendSeries(ts domain.TickerSeries, slot map[string]int, width int) ChartSeries {
	xs := make([]float64, len(ts.Points))
	ys := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		xs[i] = float64(i)
		ys[i] = p.Close
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	points := make([]ChartDataPoint, width)
	for i, p := range ts.Points {
		j := slot[p.Date]
		points[j].Time = p.Date
		v := alpha + beta*float64(i)
		points[j].Value = &v
	}
	fillTimes(points, slotDates(slot))

	return ChartSeries{
		Name:   ts.Ticker + " trend",
		Kind:   KindLine,
		Points: points,
	}
}

func slotDates(slot map[string]int) []string {
	dates := make([]string, len(slot))
	for date, i := range slot {
		dates[i] = date
	}
	return dates
}

func fillTimes(points []ChartDataPoint, dates []string) {
	for i := range points {
		if points[i].Time == "" && i < len(dates) {
			points[i].Time = dates[i]
		}
	}
}

// MetricChart builds a bar chart of one canonical metric for one company.
// Periods where the metric is not available are omitted rather than drawn as
// zero. Balance-sheet and cash-flow metrics are trimmed to the most recent
// periods.
func (s *Service) MetricChart(record domain.FundamentalsRecord, metric string, kind domain.PeriodKind) ChartData {
	title, ok := metricTitles[metric]
	if !ok {
		title = metric
	}

	chart := ChartData{
		Title: title,
		Unit:  metricUnit(record.Currency, metric),
	}

	keys := record.PeriodsOf(kind)
	if trimmedMetrics[metric] && len(keys) > maxStatementPeriods {
		keys = keys[len(keys)-maxStatementPeriods:]
	}

	var points []ChartDataPoint
	for _, key := range keys {
		value := record.Metric(key, metric)
		if !value.Valid {
			continue
		}
		v := value.V
		chart.XAxis = append(chart.XAxis, key.EndDate)
		points = append(points, ChartDataPoint{Time: key.EndDate, Value: &v})
	}

	if len(points) > 0 {
		chart.Series = append(chart.Series, ChartSeries{
			Name:   record.Ticker,
			Kind:   KindBar,
			Points: points,
		})
	}

	return chart
}

// DebtEquityChart builds a derived debt-to-equity ratio bar chart. Only
// periods where both inputs are available produce a bar; the division happens
// here at presentation time, never during normalization.
func (s *Service) DebtEquityChart(record domain.FundamentalsRecord, kind domain.PeriodKind) ChartData {
	chart := ChartData{
		Title: "Debt to Equity",
		Unit:  "ratio",
	}

	keys := record.PeriodsOf(kind)
	if len(keys) > maxStatementPeriods {
		keys = keys[len(keys)-maxStatementPeriods:]
	}

	var points []ChartDataPoint
	for _, key := range keys {
		debt := record.Metric(key, domain.MetricTotalDebt)
		equity := record.Metric(key, domain.MetricEquity)
		if !debt.Valid || !equity.Valid || equity.V == 0 {
			continue
		}
		v := debt.V / equity.V
		chart.XAxis = append(chart.XAxis, key.EndDate)
		points = append(points, ChartDataPoint{Time: key.EndDate, Value: &v})
	}

	if len(points) > 0 {
		chart.Series = append(chart.Series, ChartSeries{
			Name:   record.Ticker,
			Kind:   KindBar,
			Points: points,
		})
	}

	return chart
}

// DividendChart builds a dividend history bar chart from a per-share payout
// series.
func (s *Service) DividendChart(series domain.TickerSeries) ChartData {
	chart := ChartData{
		Title: "Dividend History",
		Unit:  "per share",
	}

	if series.Empty() {
		return chart
	}

	points := make([]ChartDataPoint, 0, len(series.Points))
	for _, p := range series.Points {
		v := p.Close
		chart.XAxis = append(chart.XAxis, p.Date)
		points = append(points, ChartDataPoint{Time: p.Date, Value: &v})
	}

	chart.Series = append(chart.Series, ChartSeries{
		Name:   series.Ticker,
		Kind:   KindBar,
		Points: points,
	})

	return chart
}

// metricUnit labels the y axis for a metric given the reporting currency.
func metricUnit(currency domain.Currency, metric string) string {
	unit := string(currency)
	if unit == "" {
		return ""
	}
	if perShareMetrics[metric] {
		return unit + "/share"
	}
	return unit
}

// unionDates merges the date domains of all series, sorted ascending.
func unionDates(seriesList []domain.TickerSeries) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, ts := range seriesList {
		for _, p := range ts.Points {
			if !seen[p.Date] {
				seen[p.Date] = true
				dates = append(dates, p.Date)
			}
		}
	}
	sort.Strings(dates)
	return dates
}
