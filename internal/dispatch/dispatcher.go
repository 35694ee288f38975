package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/finmetrix/finmetrix/internal/modules/charts"
	"github.com/finmetrix/finmetrix/internal/modules/prices"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxTickers caps one selection; the dashboard compares a handful of
// companies, not a screener universe.
const maxTickers = 10

// sessionIdleTTL bounds the sessions map: counters for sessions with no
// dispatch activity inside the window are evicted. Clients that outlive it
// get a fresh counter on their next dispatch, which is harmless since only
// relative ordering within a session matters.
const sessionIdleTTL = time.Hour

// PriceFetcher provides price and dividend series.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, ticker string, start, end time.Time) (domain.TickerSeries, error)
	FetchDividends(ctx context.Context, ticker string, start, end time.Time) (domain.TickerSeries, error)
}

// FundamentalsFetcher provides normalized statement records.
type FundamentalsFetcher interface {
	FetchFundamentals(ctx context.Context, ticker string) (domain.FundamentalsRecord, error)
}

// ProfileFetcher provides company profiles.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, ticker string) (domain.CompanyProfile, error)
}

// Presenter shapes fetched data into chart payloads.
type Presenter interface {
	PriceChart(seriesList []domain.TickerSeries, opts charts.PriceChartOptions) charts.ChartData
	MetricChart(record domain.FundamentalsRecord, metric string, kind domain.PeriodKind) charts.ChartData
	DebtEquityChart(record domain.FundamentalsRecord, kind domain.PeriodKind) charts.ChartData
	DividendChart(series domain.TickerSeries) charts.ChartData
}

// sessionState is one session's generation counter plus the last time a
// dispatch touched it, used for idle eviction.
type sessionState struct {
	generation uint64
	lastSeen   time.Time
}

// Dispatcher runs the fetch-normalize-present pipeline for selection events.
// It also owns the per-session generation counters that let clients discard
// superseded renders.
type Dispatcher struct {
	prices       PriceFetcher
	fundamentals FundamentalsFetcher
	profiles     ProfileFetcher
	presenter    Presenter
	defaults     []string // watchlist tickers rendered for an empty selection
	log          zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*sessionState
}

// NewDispatcher creates a new dispatcher
// defaultTickers is the optional watchlist shown before any selection is made
func NewDispatcher(
	priceFetcher PriceFetcher,
	fundamentalsFetcher FundamentalsFetcher,
	profileFetcher ProfileFetcher,
	presenter Presenter,
	defaultTickers []string,
	log zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		prices:       priceFetcher,
		fundamentals: fundamentalsFetcher,
		profiles:     profileFetcher,
		presenter:    presenter,
		defaults:     defaultTickers,
		log:          log.With().Str("component", "dispatcher").Logger(),
		sessions:     make(map[string]*sessionState),
	}
}

// NewSession allocates a session ID with a fresh generation counter.
func (d *Dispatcher) NewSession() string {
	id := uuid.New().String()
	d.mu.Lock()
	d.sessions[id] = &sessionState{lastSeen: time.Now()}
	d.mu.Unlock()
	return id
}

// Generation returns the current generation for a session, 0 for an unknown
// or ended session.
func (d *Dispatcher) Generation(sessionID string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.sessions[sessionID]; ok {
		return s.generation
	}
	return 0
}

// EndSession forgets a session's generation counter.
func (d *Dispatcher) EndSession(sessionID string) {
	d.mu.Lock()
	delete(d.sessions, sessionID)
	d.mu.Unlock()
}

// nextGeneration bumps and returns the session's generation counter.
// Unknown session IDs get a counter implicitly; sessions are cheap. Sessions
// idle past sessionIdleTTL are evicted on the way so the map stays bounded by
// recent activity.
func (d *Dispatcher) nextGeneration(sessionID string) uint64 {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := now.Add(-sessionIdleTTL)
	for id, s := range d.sessions {
		if id != sessionID && s.lastSeen.Before(cutoff) {
			delete(d.sessions, id)
		}
	}

	s, ok := d.sessions[sessionID]
	if !ok {
		s = &sessionState{}
		d.sessions[sessionID] = s
	}
	s.generation++
	s.lastSeen = now
	return s.generation
}

// Dispatch runs one selection through the pipeline and returns its render
// payload. Empty provider results yield empty-state payloads; transient
// fetch failures return an error the caller surfaces as a retry prompt.
func (d *Dispatcher) Dispatch(ctx context.Context, sel Selection) (*RenderPayload, error) {
	sel = d.normalizeSelection(sel)

	payload := &RenderPayload{
		SessionID:  sel.SessionID,
		Generation: d.nextGeneration(sel.SessionID),
		ActiveTab:  sel.ActiveTab,
	}

	if len(sel.Tickers) == 0 {
		payload.Message = "Select one or more tickers to begin."
		return payload, nil
	}

	start, end, err := parseRange(sel.DateRange)
	if err != nil {
		return nil, fmt.Errorf("invalid date range: %w", err)
	}

	d.log.Debug().
		Strs("tickers", sel.Tickers).
		Str("tab", sel.ActiveTab).
		Uint64("generation", payload.Generation).
		Msg("Dispatching selection")

	switch sel.ActiveTab {
	case TabPrices:
		err = d.renderPrices(ctx, sel, start, end, payload)
	case TabProfile:
		err = d.renderProfiles(ctx, sel, payload)
	case TabDividends:
		err = d.renderDividends(ctx, sel, start, end, payload)
	default:
		err = d.renderMetrics(ctx, sel, payload)
	}
	if err != nil {
		return nil, err
	}

	if len(payload.Charts) == 0 && len(payload.Profiles) == 0 {
		payload.Message = "No data available for the current selection."
	}

	return payload, nil
}

func (d *Dispatcher) renderPrices(ctx context.Context, sel Selection, start, end time.Time, payload *RenderPayload) error {
	var seriesList []domain.TickerSeries
	for _, ticker := range sel.Tickers {
		series, err := d.prices.FetchPrices(ctx, ticker, start, end)
		if err != nil {
			return err
		}
		if !series.Empty() {
			seriesList = append(seriesList, series)
		}
	}

	if len(seriesList) == 0 {
		return nil
	}

	chart := d.presenter.PriceChart(seriesList, charts.PriceChartOptions{
		SMAWindow: sel.SMAWindow,
		Trendline: sel.Trendline,
	})
	payload.Charts = append(payload.Charts, chart)
	return nil
}

func (d *Dispatcher) renderProfiles(ctx context.Context, sel Selection, payload *RenderPayload) error {
	for _, ticker := range sel.Tickers {
		p, err := d.profiles.GetProfile(ctx, ticker)
		if err != nil {
			return err
		}
		if p.Name != "" {
			payload.Profiles = append(payload.Profiles, p)
		}
	}
	return nil
}

func (d *Dispatcher) renderDividends(ctx context.Context, sel Selection, start, end time.Time, payload *RenderPayload) error {
	for _, ticker := range sel.Tickers {
		series, err := d.prices.FetchDividends(ctx, ticker, start, end)
		if err != nil {
			return err
		}
		if series.Empty() {
			continue
		}
		if chart := d.presenter.DividendChart(series); !chart.Empty() {
			payload.Charts = append(payload.Charts, chart)
		}
	}
	return nil
}

// tabMetrics maps fundamentals tabs to the canonical metrics they chart.
var tabMetrics = map[string][]string{
	TabRevenue:       {domain.MetricRevenue},
	TabProfitability: {domain.MetricNetIncome},
	TabEPS:           {domain.MetricEPSBasic, domain.MetricEPSDiluted},
	TabDebt:          {domain.MetricTotalDebt, domain.MetricEquity},
	TabCashflow:      {domain.MetricOperatingCashFlow, domain.MetricFreeCashFlow},
	TabAssets:        {domain.MetricTotalAssets},
}

func (d *Dispatcher) renderMetrics(ctx context.Context, sel Selection, payload *RenderPayload) error {
	metrics, ok := tabMetrics[sel.ActiveTab]
	if !ok {
		return fmt.Errorf("unknown tab: %s", sel.ActiveTab)
	}

	kind := domain.PeriodAnnual
	if sel.Period == string(domain.PeriodQuarterly) {
		kind = domain.PeriodQuarterly
	}

	for _, ticker := range sel.Tickers {
		record, err := d.fundamentals.FetchFundamentals(ctx, ticker)
		if err != nil {
			return err
		}
		if record.Empty() {
			continue
		}

		for _, metric := range metrics {
			if chart := d.presenter.MetricChart(record, metric, kind); !chart.Empty() {
				payload.Charts = append(payload.Charts, chart)
			}
		}

		// The debt tab carries the derived ratio alongside its inputs.
		if sel.ActiveTab == TabDebt {
			if chart := d.presenter.DebtEquityChart(record, kind); !chart.Empty() {
				payload.Charts = append(payload.Charts, chart)
			}
		}
	}

	return nil
}

// normalizeSelection uppercases and dedupes tickers, caps their count,
// defaults the tab, and substitutes the watchlist for an empty selection.
func (d *Dispatcher) normalizeSelection(sel Selection) Selection {
	sel.Tickers = cleanTickers(sel.Tickers)
	if len(sel.Tickers) == 0 {
		sel.Tickers = cleanTickers(d.defaults)
	}

	if sel.ActiveTab == "" {
		sel.ActiveTab = TabPrices
	}

	return sel
}

func cleanTickers(raw []string) []string {
	seen := make(map[string]bool)
	var tickers []string
	for _, t := range raw {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
		if len(tickers) == maxTickers {
			break
		}
	}
	return tickers
}

// parseRange parses the selection date range, defaulting to the trailing
// year. The availability floor is applied downstream by the prices service.
func parseRange(dr DateRange) (time.Time, time.Time, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(-1, 0, 0)

	if dr.End != "" {
		t, err := time.Parse("2006-01-02", dr.End)
		if err != nil {
			return start, end, fmt.Errorf("end date %q: %w", dr.End, err)
		}
		end = t
	}
	if dr.Start != "" {
		t, err := time.Parse("2006-01-02", dr.Start)
		if err != nil {
			return start, end, fmt.Errorf("start date %q: %w", dr.Start, err)
		}
		start = t
	}

	start, end = prices.ClampRange(start, end)
	return start, end, nil
}
