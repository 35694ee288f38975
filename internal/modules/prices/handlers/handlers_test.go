package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finmetrix/finmetrix/internal/clients/yahoo"
	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/finmetrix/finmetrix/internal/modules/charts"
	"github.com/finmetrix/finmetrix/internal/modules/prices"
)

type fakeBarProvider struct {
	bars map[string][]yahoo.Bar
	err  error
}

func (f *fakeBarProvider) GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]yahoo.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}
	if bars, ok := f.bars[symbol]; ok {
		return bars, nil
	}
	return nil, domain.ErrNoData
}

func (f *fakeBarProvider) GetDividends(ctx context.Context, symbol string, start, end time.Time) ([]yahoo.DividendEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []yahoo.DividendEvent{
		{Date: time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), Amount: 0.24},
	}, nil
}

func testRouter(provider *fakeBarProvider) *chi.Mux {
	pricesService := prices.NewService(provider, zerolog.Nop())
	chartsService := charts.NewService(zerolog.Nop())
	h := NewHandler(pricesService, chartsService, zerolog.Nop())

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func testBars() []yahoo.Bar {
	return []yahoo.Bar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 186.0},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: 184.2},
	}
}

func TestHandleGetPrices(t *testing.T) {
	router := testRouter(&fakeBarProvider{bars: map[string][]yahoo.Bar{"AAPL": testBars()}})

	req := httptest.NewRequest(http.MethodGet, "/prices/AAPL?start=2024-01-01&end=2024-06-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var response struct {
		Data struct {
			Ticker string              `json:"ticker"`
			Points []domain.PricePoint `json:"points"`
			Count  int                 `json:"count"`
		} `json:"data"`
		Metadata struct {
			Timestamp string `json:"timestamp"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	assert.Equal(t, "AAPL", response.Data.Ticker)
	assert.Equal(t, 2, response.Data.Count)
	assert.Equal(t, "2024-01-02", response.Data.Points[0].Date)
	assert.NotEmpty(t, response.Metadata.Timestamp)
}

func TestHandleGetPricesUnknownTicker(t *testing.T) {
	router := testRouter(&fakeBarProvider{})

	req := httptest.NewRequest(http.MethodGet, "/prices/NOPE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Unknown tickers are an empty result, not an error
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 0, response.Data.Count)
}

func TestHandleGetPricesTransientError(t *testing.T) {
	router := testRouter(&fakeBarProvider{err: domain.Transient("fetch", assert.AnError)})

	req := httptest.NewRequest(http.MethodGet, "/prices/AAPL", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "temporarily unavailable")
}

func TestHandleGetPriceChart(t *testing.T) {
	router := testRouter(&fakeBarProvider{bars: map[string][]yahoo.Bar{
		"AAPL": testBars(),
		"MSFT": testBars(),
	}})

	req := httptest.NewRequest(http.MethodGet, "/prices/chart?tickers=aapl,msft&trend=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data charts.ChartData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	// Two price lines plus a trendline each
	assert.Len(t, response.Data.Series, 4)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, response.Data.XAxis)
}

func TestHandleGetPriceChartMissingTickers(t *testing.T) {
	router := testRouter(&fakeBarProvider{})

	req := httptest.NewRequest(http.MethodGet, "/prices/chart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetDividends(t *testing.T) {
	router := testRouter(&fakeBarProvider{})

	req := httptest.NewRequest(http.MethodGet, "/dividends/AAPL", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data charts.ChartData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	assert.Equal(t, "Dividend History", response.Data.Title)
	require.Len(t, response.Data.Series, 1)
	assert.Len(t, response.Data.Series[0].Points, 1)
}
