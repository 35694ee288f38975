package profile

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finmetrix/finmetrix/internal/clients/yahoo"
	"github.com/finmetrix/finmetrix/internal/domain"
)

type fakeSummaryProvider struct {
	summary *yahoo.QuoteSummary
	err     error
}

func (f *fakeSummaryProvider) GetQuoteSummary(ctx context.Context, symbol string) (*yahoo.QuoteSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type fakeGeocoder struct {
	coords  *domain.Coordinates
	err     error
	lookups []string
}

func (f *fakeGeocoder) Lookup(ctx context.Context, zip string) (*domain.Coordinates, error) {
	f.lookups = append(f.lookups, zip)
	if f.err != nil {
		return nil, f.err
	}
	return f.coords, nil
}

func appleSummary() *yahoo.QuoteSummary {
	return &yahoo.QuoteSummary{
		Ticker: "AAPL",
		Price: map[string]interface{}{
			"longName": "Apple Inc.",
			"currency": "USD",
		},
		AssetProfile: map[string]interface{}{
			"sector":              "Technology",
			"industry":            "Consumer Electronics",
			"address1":            "One Apple Park Way",
			"city":                "Cupertino",
			"state":               "CA",
			"zip":                 "95014",
			"country":             "United States",
			"website":             "https://www.apple.com",
			"longBusinessSummary": "Designs, manufactures, and markets smartphones.",
			"companyOfficers": []interface{}{
				map[string]interface{}{
					"name":     "Mr. Timothy D. Cook",
					"title":    "CEO & Director",
					"age":      float64(62),
					"totalPay": map[string]interface{}{"raw": float64(16239562)},
				},
				map[string]interface{}{
					"title": "orphan entry without a name",
				},
			},
		},
	}
}

func TestGetProfile(t *testing.T) {
	geocoder := &fakeGeocoder{coords: &domain.Coordinates{Latitude: 37.32, Longitude: -122.03}}
	svc := NewService(&fakeSummaryProvider{summary: appleSummary()}, geocoder, zerolog.Nop())

	profile, err := svc.GetProfile(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc.", profile.Name)
	assert.Equal(t, "Technology", profile.Sector)
	assert.Equal(t, "Cupertino", profile.City)
	assert.Equal(t, "95014", profile.Zip)

	require.Len(t, profile.Officers, 1)
	assert.Equal(t, "Mr. Timothy D. Cook", profile.Officers[0].Name)
	assert.Equal(t, 62, profile.Officers[0].Age)
	assert.InEpsilon(t, 16239562, profile.Officers[0].TotalPay, 1e-9)

	require.NotNil(t, profile.Headquarters)
	assert.InEpsilon(t, 37.32, profile.Headquarters.Latitude, 1e-9)
	assert.Equal(t, []string{"95014"}, geocoder.lookups)
}

func TestGetProfileFallsBackToShortName(t *testing.T) {
	summary := appleSummary()
	delete(summary.Price, "longName")
	summary.Price["shortName"] = "Apple"

	svc := NewService(&fakeSummaryProvider{summary: summary}, nil, zerolog.Nop())

	profile, err := svc.GetProfile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple", profile.Name)
}

func TestGetProfileUnknownTicker(t *testing.T) {
	svc := NewService(&fakeSummaryProvider{err: domain.ErrNoData}, nil, zerolog.Nop())

	profile, err := svc.GetProfile(context.Background(), "NOPE")
	require.NoError(t, err)

	assert.Equal(t, "NOPE", profile.Ticker)
	assert.Empty(t, profile.Name)
}

func TestGetProfileTransientError(t *testing.T) {
	svc := NewService(&fakeSummaryProvider{err: domain.Transient("fetch", assert.AnError)}, nil, zerolog.Nop())

	_, err := svc.GetProfile(context.Background(), "AAPL")
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}

func TestGetProfileGeocodeFailureDegrades(t *testing.T) {
	geocoder := &fakeGeocoder{err: domain.ErrNoData}
	svc := NewService(&fakeSummaryProvider{summary: appleSummary()}, geocoder, zerolog.Nop())

	profile, err := svc.GetProfile(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc.", profile.Name)
	assert.Nil(t, profile.Headquarters)
}

func TestGetProfileSkipsGeocodeForForeignHQ(t *testing.T) {
	summary := appleSummary()
	summary.AssetProfile["country"] = "Germany"

	geocoder := &fakeGeocoder{coords: &domain.Coordinates{}}
	svc := NewService(&fakeSummaryProvider{summary: summary}, geocoder, zerolog.Nop())

	profile, err := svc.GetProfile(context.Background(), "SAP")
	require.NoError(t, err)

	assert.Nil(t, profile.Headquarters)
	assert.Empty(t, geocoder.lookups)
}

func TestGetProfileNilGeocoder(t *testing.T) {
	svc := NewService(&fakeSummaryProvider{summary: appleSummary()}, nil, zerolog.Nop())

	profile, err := svc.GetProfile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, profile.Headquarters)
}
