// Package yahoo provides a Yahoo Finance API client with persistent caching.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/finmetrix/finmetrix/internal/clientdata"
	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/rs/zerolog"
)

const (
	chartBaseURL   = "https://query1.finance.yahoo.com/v8/finance/chart/"
	summaryBaseURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary/"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// summaryModules is the quoteSummary module list fetched per company.
var summaryModules = strings.Join([]string{
	"assetProfile",
	"price",
	"summaryDetail",
	"incomeStatementHistory",
	"incomeStatementHistoryQuarterly",
	"balanceSheetHistory",
	"balanceSheetHistoryQuarterly",
	"cashflowStatementHistory",
	"cashflowStatementHistoryQuarterly",
}, ",")

// Client is a Yahoo Finance API client
type Client struct {
	chartURL   string
	summaryURL string
	client     *http.Client
	log        zerolog.Logger
	cacheRepo  *clientdata.Repository
}

// NewClient creates a new Yahoo Finance client
// cacheRepo is optional - if nil, caching is disabled
func NewClient(cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		chartURL:   chartBaseURL,
		summaryURL: summaryBaseURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("client", "yahoo").Logger(),
		cacheRepo:  cacheRepo,
	}
}

// GetDailyBars fetches daily OHLCV bars for [start, end] from the chart API.
// Null bars are skipped. An unknown symbol or empty range returns
// domain.ErrNoData; network and provider failures return a transient error
// unless stale cached data can stand in.
func (c *Client) GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	cacheKey := fmt.Sprintf("%s|%s|%s", symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))

	if c.cacheRepo != nil {
		var cached []Bar
		if ok, err := c.cacheRepo.GetIfFresh("yahoo_chart", cacheKey, &cached); err == nil && ok {
			c.log.Debug().Str("symbol", symbol).Int("count", len(cached)).Msg("Chart cache hit")
			return cached, nil
		}
	}

	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("period1", fmt.Sprintf("%d", start.Unix()))
	params.Add("period2", fmt.Sprintf("%d", end.Unix()))

	body, err := c.get(ctx, c.chartURL+url.PathEscape(symbol)+"?"+params.Encode())
	if err != nil {
		var stale []Bar
		if c.staleFromCache("yahoo_chart", cacheKey, &stale) {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Chart fetch failed, using stale cache")
			return stale, nil
		}
		return nil, err
	}

	bars, err := parseChartBars(body)
	if err != nil {
		return nil, err
	}

	if c.cacheRepo != nil && len(bars) > 0 {
		if err := c.cacheRepo.Store("yahoo_chart", cacheKey, bars, clientdata.TTLPriceHistory); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache chart data")
		}
	}

	c.log.Info().
		Str("symbol", symbol).
		Int("count", len(bars)).
		Msg("Fetched daily bars")

	return bars, nil
}

// GetDividends fetches cash dividend events for [start, end] from the chart
// API event stream.
func (c *Client) GetDividends(ctx context.Context, symbol string, start, end time.Time) ([]DividendEvent, error) {
	cacheKey := fmt.Sprintf("%s|%s|%s", symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))

	if c.cacheRepo != nil {
		var cached []DividendEvent
		if ok, err := c.cacheRepo.GetIfFresh("yahoo_dividends", cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("period1", fmt.Sprintf("%d", start.Unix()))
	params.Add("period2", fmt.Sprintf("%d", end.Unix()))
	params.Add("events", "div")

	body, err := c.get(ctx, c.chartURL+url.PathEscape(symbol)+"?"+params.Encode())
	if err != nil {
		var stale []DividendEvent
		if c.staleFromCache("yahoo_dividends", cacheKey, &stale) {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Dividend fetch failed, using stale cache")
			return stale, nil
		}
		return nil, err
	}

	events, err := parseDividendEvents(body)
	if err != nil {
		return nil, err
	}

	if c.cacheRepo != nil && len(events) > 0 {
		if err := c.cacheRepo.Store("yahoo_dividends", cacheKey, events, clientdata.TTLDividends); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache dividend data")
		}
	}

	return events, nil
}

// GetQuoteSummary fetches the company profile and raw statement history.
func (c *Client) GetQuoteSummary(ctx context.Context, symbol string) (*QuoteSummary, error) {
	if c.cacheRepo != nil {
		var cached QuoteSummary
		if ok, err := c.cacheRepo.GetIfFresh("yahoo_quote_summary", symbol, &cached); err == nil && ok {
			c.log.Debug().Str("symbol", symbol).Msg("Quote summary cache hit")
			return &cached, nil
		}
	}

	params := url.Values{}
	params.Add("modules", summaryModules)

	body, err := c.get(ctx, c.summaryURL+url.PathEscape(symbol)+"?"+params.Encode())
	if err != nil {
		var stale QuoteSummary
		if c.staleFromCache("yahoo_quote_summary", symbol, &stale) {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Summary fetch failed, using stale cache")
			return &stale, nil
		}
		return nil, err
	}

	summary, err := parseQuoteSummary(symbol, body)
	if err != nil {
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("yahoo_quote_summary", symbol, summary, clientdata.TTLStatements); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache quote summary")
		}
	}

	return summary, nil
}

// get performs a GET request with browser-like headers and classifies
// failures: 404 means no data for the symbol, everything else network- or
// server-side is transient.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.Transient("yahoo request", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNoData
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, domain.Transient("yahoo request", fmt.Errorf("status %d", resp.StatusCode))
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yahoo API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Transient("yahoo response read", err)
	}

	return body, nil
}

func (c *Client) staleFromCache(table, key string, dest interface{}) bool {
	if c.cacheRepo == nil {
		return false
	}
	ok, err := c.cacheRepo.Get(table, key, dest)
	return err == nil && ok
}

// chartResponse mirrors the chart API envelope.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

func parseChartEnvelope(body []byte) (*chartResponse, error) {
	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if result.Chart.Error != nil {
		// The chart API reports unknown symbols inside the envelope.
		if errMap, ok := result.Chart.Error.(map[string]interface{}); ok {
			if code, _ := errMap["code"].(string); code == "Not Found" {
				return nil, domain.ErrNoData
			}
		}
		return nil, fmt.Errorf("yahoo chart API error: %v", result.Chart.Error)
	}

	if len(result.Chart.Result) == 0 {
		return nil, domain.ErrNoData
	}

	return &result, nil
}

func parseChartBars(body []byte) ([]Bar, error) {
	result, err := parseChartEnvelope(body)
	if err != nil {
		return nil, err
	}

	chartData := result.Chart.Result[0]
	timestamps := chartData.Timestamp
	if len(chartData.Indicators.Quote) == 0 {
		return []Bar{}, nil
	}

	quote := chartData.Indicators.Quote[0]

	var adjCloseData []float64
	if len(chartData.Indicators.AdjClose) > 0 {
		adjCloseData = chartData.Indicators.AdjClose[0].AdjClose
	}

	var bars []Bar
	for i := range timestamps {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			continue
		}

		// Yahoo sometimes returns null values
		if quote.Open[i] == 0 && quote.High[i] == 0 && quote.Low[i] == 0 && quote.Close[i] == 0 {
			continue
		}

		adjClose := quote.Close[i]
		if i < len(adjCloseData) && adjCloseData[i] != 0 {
			adjClose = adjCloseData[i]
		}

		volume := int64(0)
		if i < len(quote.Volume) {
			volume = quote.Volume[i]
		}

		bars = append(bars, Bar{
			Date:     time.Unix(timestamps[i], 0).UTC(),
			Open:     quote.Open[i],
			High:     quote.High[i],
			Low:      quote.Low[i],
			Close:    quote.Close[i],
			Volume:   volume,
			AdjClose: adjClose,
		})
	}

	return bars, nil
}

func parseDividendEvents(body []byte) ([]DividendEvent, error) {
	result, err := parseChartEnvelope(body)
	if err != nil {
		return nil, err
	}

	divs := result.Chart.Result[0].Events.Dividends

	events := make([]DividendEvent, 0, len(divs))
	for _, d := range divs {
		if d.Amount <= 0 {
			continue
		}
		events = append(events, DividendEvent{
			Date:   time.Unix(d.Date, 0).UTC(),
			Amount: d.Amount,
		})
	}

	return events, nil
}

// summaryResponse mirrors the quoteSummary API envelope.
type summaryResponse struct {
	QuoteSummary struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteSummary"`
}

func parseQuoteSummary(symbol string, body []byte) (*QuoteSummary, error) {
	var result summaryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse quote summary response: %w", err)
	}

	if result.QuoteSummary.Error != nil {
		if errMap, ok := result.QuoteSummary.Error.(map[string]interface{}); ok {
			if code, _ := errMap["code"].(string); code == "Not Found" {
				return nil, domain.ErrNoData
			}
		}
		return nil, fmt.Errorf("yahoo quoteSummary API error: %v", result.QuoteSummary.Error)
	}

	if len(result.QuoteSummary.Result) == 0 {
		return nil, domain.ErrNoData
	}

	modules := result.QuoteSummary.Result[0]

	summary := &QuoteSummary{
		Ticker:       symbol,
		AssetProfile: asMap(modules["assetProfile"]),
		SummaryData:  asMap(modules["summaryDetail"]),
		Price:        asMap(modules["price"]),
		Statements: RawStatements{
			Ticker:            symbol,
			Income:            statementEntries(modules, "incomeStatementHistory", "incomeStatementHistory"),
			IncomeQuarterly:   statementEntries(modules, "incomeStatementHistoryQuarterly", "incomeStatementHistory"),
			Balance:           statementEntries(modules, "balanceSheetHistory", "balanceSheetStatements"),
			BalanceQuarterly:  statementEntries(modules, "balanceSheetHistoryQuarterly", "balanceSheetStatements"),
			Cashflow:          statementEntries(modules, "cashflowStatementHistory", "cashflowStatements"),
			CashflowQuarterly: statementEntries(modules, "cashflowStatementHistoryQuarterly", "cashflowStatements"),
		},
	}

	if currency, ok := summary.Price["currency"].(string); ok {
		summary.Statements.Currency = currency
	}

	return summary, nil
}

// statementEntries extracts the per-period statement objects from a
// quoteSummary module, e.g. incomeStatementHistory.incomeStatementHistory[].
func statementEntries(modules map[string]interface{}, module, list string) []map[string]interface{} {
	m := asMap(modules[module])
	if m == nil {
		return nil
	}

	items, ok := m[list].([]interface{})
	if !ok {
		return nil
	}

	entries := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if entry := asMap(item); entry != nil {
			entries = append(entries, entry)
		}
	}

	return entries
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}
