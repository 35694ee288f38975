// Package profile assembles company profiles with headquarters coordinates.
package profile

import (
	"context"
	"errors"

	"github.com/finmetrix/finmetrix/internal/clients/yahoo"
	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/rs/zerolog"
)

// SummaryProvider fetches quote summaries from the market-data provider.
type SummaryProvider interface {
	GetQuoteSummary(ctx context.Context, symbol string) (*yahoo.QuoteSummary, error)
}

// Geocoder resolves a US ZIP code to coordinates.
type Geocoder interface {
	Lookup(ctx context.Context, zip string) (*domain.Coordinates, error)
}

// Service builds company profiles.
type Service struct {
	provider SummaryProvider
	geocoder Geocoder
	log      zerolog.Logger
}

// NewService creates a new profile service
// geocoder is optional - if nil, headquarters coordinates are omitted
func NewService(provider SummaryProvider, geocoder Geocoder, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		geocoder: geocoder,
		log:      log.With().Str("service", "profile").Logger(),
	}
}

// GetProfile returns the company profile for a ticker. An unknown ticker
// yields an empty profile, not an error. Geocoding failures degrade to a
// profile without coordinates.
func (s *Service) GetProfile(ctx context.Context, ticker string) (domain.CompanyProfile, error) {
	profile := domain.CompanyProfile{Ticker: ticker}

	summary, err := s.provider.GetQuoteSummary(ctx, ticker)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			s.log.Debug().Str("ticker", ticker).Msg("No profile for ticker")
			return profile, nil
		}
		return profile, err
	}

	info := summary.AssetProfile
	profile.Name = stringField(summary.Price, "longName")
	if profile.Name == "" {
		profile.Name = stringField(summary.Price, "shortName")
	}
	profile.Sector = stringField(info, "sector")
	profile.Industry = stringField(info, "industry")
	profile.Address = stringField(info, "address1")
	profile.City = stringField(info, "city")
	profile.State = stringField(info, "state")
	profile.Zip = stringField(info, "zip")
	profile.Country = stringField(info, "country")
	profile.Website = stringField(info, "website")
	profile.Summary = stringField(info, "longBusinessSummary")
	profile.Officers = parseOfficers(info)

	// US headquarters only; the geocoding dataset is ZIP-code based.
	if s.geocoder != nil && profile.Zip != "" && (profile.Country == "" || profile.Country == "United States") {
		coords, err := s.geocoder.Lookup(ctx, profile.Zip)
		if err != nil {
			s.log.Debug().Err(err).Str("ticker", ticker).Str("zip", profile.Zip).Msg("Headquarters location unavailable")
		} else {
			profile.Headquarters = coords
		}
	}

	return profile, nil
}

func parseOfficers(info map[string]interface{}) []domain.Officer {
	items, ok := info["companyOfficers"].([]interface{})
	if !ok {
		return nil
	}

	officers := make([]domain.Officer, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		officer := domain.Officer{
			Name:  stringField(entry, "name"),
			Title: stringField(entry, "title"),
		}
		if officer.Name == "" {
			continue
		}

		officer.Age = intField(entry, "age")
		officer.FiscalYear = intField(entry, "fiscalYear")
		officer.TotalPay = rawField(entry, "totalPay")

		officers = append(officers, officer)
	}

	return officers
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

// rawField reads a number that may be wrapped in a {raw, fmt} value object.
func rawField(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case map[string]interface{}:
		if raw, ok := v["raw"].(float64); ok {
			return raw
		}
	}
	return 0
}
