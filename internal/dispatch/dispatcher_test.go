package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/finmetrix/finmetrix/internal/modules/charts"
)

type fakePrices struct {
	series map[string]domain.TickerSeries
	err    error
}

func (f *fakePrices) FetchPrices(ctx context.Context, ticker string, start, end time.Time) (domain.TickerSeries, error) {
	if f.err != nil {
		return domain.TickerSeries{Ticker: ticker}, f.err
	}
	return f.series[ticker], nil
}

func (f *fakePrices) FetchDividends(ctx context.Context, ticker string, start, end time.Time) (domain.TickerSeries, error) {
	if f.err != nil {
		return domain.TickerSeries{Ticker: ticker}, f.err
	}
	return f.series[ticker], nil
}

type fakeFundamentals struct {
	records map[string]domain.FundamentalsRecord
}

func (f *fakeFundamentals) FetchFundamentals(ctx context.Context, ticker string) (domain.FundamentalsRecord, error) {
	if r, ok := f.records[ticker]; ok {
		return r, nil
	}
	return domain.NewFundamentalsRecord(ticker, ""), nil
}

type fakeProfiles struct {
	profiles map[string]domain.CompanyProfile
}

func (f *fakeProfiles) GetProfile(ctx context.Context, ticker string) (domain.CompanyProfile, error) {
	return f.profiles[ticker], nil
}

func testDispatcher(p *fakePrices, f *fakeFundamentals, pr *fakeProfiles) *Dispatcher {
	if p == nil {
		p = &fakePrices{}
	}
	if f == nil {
		f = &fakeFundamentals{}
	}
	if pr == nil {
		pr = &fakeProfiles{}
	}
	return NewDispatcher(p, f, pr, charts.NewService(zerolog.Nop()), nil, zerolog.Nop())
}

func priceSeries(ticker string) domain.TickerSeries {
	return domain.TickerSeries{
		Ticker: ticker,
		Points: []domain.PricePoint{
			{Date: "2024-01-01", Close: 100},
			{Date: "2024-01-02", Close: 101},
		},
	}
}

func TestDispatchEmptyTickers(t *testing.T) {
	d := testDispatcher(nil, nil, nil)

	payload, err := d.Dispatch(context.Background(), Selection{SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, "Select one or more tickers to begin.", payload.Message)
	assert.Empty(t, payload.Charts)
	assert.Equal(t, uint64(1), payload.Generation)
}

func TestDispatchPricesTab(t *testing.T) {
	p := &fakePrices{series: map[string]domain.TickerSeries{
		"AAPL": priceSeries("AAPL"),
		"MSFT": priceSeries("MSFT"),
	}}
	d := testDispatcher(p, nil, nil)

	payload, err := d.Dispatch(context.Background(), Selection{
		SessionID: "s1",
		Tickers:   []string{"aapl", "msft"},
		ActiveTab: TabPrices,
	})
	require.NoError(t, err)

	require.Len(t, payload.Charts, 1)
	assert.Len(t, payload.Charts[0].Series, 2)
	assert.Empty(t, payload.Message)
}

func TestDispatchGenerationMonotonic(t *testing.T) {
	d := testDispatcher(nil, nil, nil)

	session := d.NewSession()
	assert.Equal(t, uint64(0), d.Generation(session))

	for want := uint64(1); want <= 3; want++ {
		payload, err := d.Dispatch(context.Background(), Selection{SessionID: session})
		require.NoError(t, err)
		assert.Equal(t, want, payload.Generation)
	}
	assert.Equal(t, uint64(3), d.Generation(session))

	d.EndSession(session)
	assert.Equal(t, uint64(0), d.Generation(session))
}

func TestDispatchSessionsIndependent(t *testing.T) {
	d := testDispatcher(nil, nil, nil)

	s1 := d.NewSession()
	s2 := d.NewSession()

	_, err := d.Dispatch(context.Background(), Selection{SessionID: s1})
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), Selection{SessionID: s1})
	require.NoError(t, err)

	payload, err := d.Dispatch(context.Background(), Selection{SessionID: s2})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), payload.Generation)
	assert.Equal(t, uint64(2), d.Generation(s1))
}

func TestDispatchUnknownTab(t *testing.T) {
	d := testDispatcher(nil, nil, nil)

	_, err := d.Dispatch(context.Background(), Selection{
		SessionID: "s1",
		Tickers:   []string{"AAPL"},
		ActiveTab: "sentiment",
	})
	assert.Error(t, err)
}

func TestDispatchUnknownTickerEmptyState(t *testing.T) {
	d := testDispatcher(&fakePrices{}, nil, nil)

	payload, err := d.Dispatch(context.Background(), Selection{
		SessionID: "s1",
		Tickers:   []string{"NOPE"},
		ActiveTab: TabPrices,
	})
	require.NoError(t, err)

	assert.Empty(t, payload.Charts)
	assert.Equal(t, "No data available for the current selection.", payload.Message)
}

func TestDispatchTransientErrorPropagates(t *testing.T) {
	p := &fakePrices{err: domain.Transient("fetch", assert.AnError)}
	d := testDispatcher(p, nil, nil)

	_, err := d.Dispatch(context.Background(), Selection{
		SessionID: "s1",
		Tickers:   []string{"AAPL"},
		ActiveTab: TabPrices,
	})
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}

func TestDispatchProfileTab(t *testing.T) {
	pr := &fakeProfiles{profiles: map[string]domain.CompanyProfile{
		"AAPL": {Ticker: "AAPL", Name: "Apple Inc.", Sector: "Technology"},
	}}
	d := testDispatcher(nil, nil, pr)

	payload, err := d.Dispatch(context.Background(), Selection{
		SessionID: "s1",
		Tickers:   []string{"AAPL", "NOPE"},
		ActiveTab: TabProfile,
	})
	require.NoError(t, err)

	require.Len(t, payload.Profiles, 1)
	assert.Equal(t, "Apple Inc.", payload.Profiles[0].Name)
}

func TestDispatchDebtTabIncludesRatio(t *testing.T) {
	record := domain.NewFundamentalsRecord("AAPL", domain.CurrencyUSD)
	key := domain.PeriodKey{EndDate: "2023-12-31", Kind: domain.PeriodAnnual}
	record.Periods[key] = domain.Metrics{
		domain.MetricTotalDebt: domain.Some(50),
		domain.MetricEquity:    domain.Some(100),
	}
	f := &fakeFundamentals{records: map[string]domain.FundamentalsRecord{"AAPL": record}}
	d := testDispatcher(nil, f, nil)

	payload, err := d.Dispatch(context.Background(), Selection{
		SessionID: "s1",
		Tickers:   []string{"AAPL"},
		ActiveTab: TabDebt,
	})
	require.NoError(t, err)

	// Total debt, equity, and the derived ratio
	require.Len(t, payload.Charts, 3)
	assert.Equal(t, "Debt to Equity", payload.Charts[2].Title)
}

func TestDispatchInvalidDateRange(t *testing.T) {
	d := testDispatcher(nil, nil, nil)

	_, err := d.Dispatch(context.Background(), Selection{
		SessionID: "s1",
		Tickers:   []string{"AAPL"},
		DateRange: DateRange{Start: "01/02/2024"},
	})
	assert.Error(t, err)
}

func TestNormalizeSelection(t *testing.T) {
	d := testDispatcher(nil, nil, nil)
	sel := d.normalizeSelection(Selection{
		Tickers: []string{" aapl ", "AAPL", "msft", ""},
	})

	assert.Equal(t, []string{"AAPL", "MSFT"}, sel.Tickers)
	assert.Equal(t, TabPrices, sel.ActiveTab)
}

func TestNormalizeSelectionCapsTickers(t *testing.T) {
	d := testDispatcher(nil, nil, nil)
	tickers := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	sel := d.normalizeSelection(Selection{Tickers: tickers})

	assert.Len(t, sel.Tickers, maxTickers)
	assert.Equal(t, "J", sel.Tickers[maxTickers-1])
}

func TestDispatchEmptySelectionUsesWatchlist(t *testing.T) {
	p := &fakePrices{series: map[string]domain.TickerSeries{
		"AAPL": priceSeries("AAPL"),
		"MSFT": priceSeries("MSFT"),
	}}
	d := NewDispatcher(p, &fakeFundamentals{}, &fakeProfiles{}, charts.NewService(zerolog.Nop()), []string{"aapl", "msft"}, zerolog.Nop())

	payload, err := d.Dispatch(context.Background(), Selection{SessionID: "s1"})
	require.NoError(t, err)

	require.Len(t, payload.Charts, 1)
	assert.Len(t, payload.Charts[0].Series, 2)
	assert.Empty(t, payload.Message)
}

func TestDispatchEvictsIdleSessions(t *testing.T) {
	d := testDispatcher(nil, nil, nil)

	d.mu.Lock()
	d.sessions["idle"] = &sessionState{generation: 4, lastSeen: time.Now().Add(-2 * sessionIdleTTL)}
	d.sessions["recent"] = &sessionState{generation: 2, lastSeen: time.Now()}
	d.mu.Unlock()

	_, err := d.Dispatch(context.Background(), Selection{SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, uint64(0), d.Generation("idle"))
	assert.Equal(t, uint64(2), d.Generation("recent"))
	assert.Equal(t, uint64(1), d.Generation("s1"))
}
