// Package prices assembles daily close series for dashboard tickers.
package prices

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/finmetrix/finmetrix/internal/clients/yahoo"
	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/rs/zerolog"
)

// EarliestDate is the data-availability floor. Requested ranges starting
// before it are clamped, not rejected.
var EarliestDate = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// BarProvider fetches daily bars from the market-data provider.
type BarProvider interface {
	GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]yahoo.Bar, error)
	GetDividends(ctx context.Context, symbol string, start, end time.Time) ([]yahoo.DividendEvent, error)
}

// Service fetches and shapes price history.
type Service struct {
	provider BarProvider
	log      zerolog.Logger
}

// NewService creates a new prices service
func NewService(provider BarProvider, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		log:      log.With().Str("service", "prices").Logger(),
	}
}

// ClampRange applies the data-availability floor and fixes inverted ranges.
func ClampRange(start, end time.Time) (time.Time, time.Time) {
	if start.Before(EarliestDate) {
		start = EarliestDate
	}
	if end.Before(start) {
		end = start
	}
	return start, end
}

// FetchPrices returns the daily close series for a ticker over [start, end].
// The result is strictly ascending by date with no duplicate dates. An
// unknown ticker or empty range yields an empty series, not an error;
// transient provider failures propagate so the caller can prompt a retry.
func (s *Service) FetchPrices(ctx context.Context, ticker string, start, end time.Time) (domain.TickerSeries, error) {
	series := domain.TickerSeries{Ticker: ticker}

	start, end = ClampRange(start, end)

	bars, err := s.provider.GetDailyBars(ctx, ticker, start, end)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			s.log.Debug().Str("ticker", ticker).Msg("No price data for ticker")
			return series, nil
		}
		return series, err
	}

	points := make([]domain.PricePoint, 0, len(bars))
	for _, bar := range bars {
		points = append(points, domain.PricePoint{
			Date:  bar.Date.Format("2006-01-02"),
			Close: bar.Close,
		})
	}

	series.Points = SortDedupe(points)
	return series, nil
}

// FetchDividends returns the dividend history for a ticker as a series of
// per-share cash amounts.
func (s *Service) FetchDividends(ctx context.Context, ticker string, start, end time.Time) (domain.TickerSeries, error) {
	series := domain.TickerSeries{Ticker: ticker}

	start, end = ClampRange(start, end)

	events, err := s.provider.GetDividends(ctx, ticker, start, end)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			return series, nil
		}
		return series, err
	}

	points := make([]domain.PricePoint, 0, len(events))
	for _, ev := range events {
		points = append(points, domain.PricePoint{
			Date:  ev.Date.Format("2006-01-02"),
			Close: ev.Amount,
		})
	}

	series.Points = SortDedupe(points)
	return series, nil
}

// SortDedupe sorts points ascending by date and drops duplicate dates,
// keeping the last value seen for each date.
func SortDedupe(points []domain.PricePoint) []domain.PricePoint {
	if len(points) == 0 {
		return points
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	out := points[:0]
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Date == p.Date {
			out[len(out)-1] = p // last value wins
			continue
		}
		out = append(out, p)
	}

	return out
}
