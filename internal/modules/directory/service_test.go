package directory

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finmetrix/finmetrix/internal/clients/nasdaq"
	"github.com/finmetrix/finmetrix/internal/domain"
)

type fakeListingProvider struct {
	listings []nasdaq.Listing
	err      error
}

func (f *fakeListingProvider) GetListings(ctx context.Context) ([]nasdaq.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listings, nil
}

func testListings() []nasdaq.Listing {
	return []nasdaq.Listing{
		{Symbol: "AAPL", Name: "Apple Inc. - Common Stock"},
		{Symbol: "AMZN", Name: "Amazon.com, Inc. - Common Stock"},
		{Symbol: "MSFT", Name: "Microsoft Corporation - Common Stock"},
		{Symbol: "QQQ", Name: "Invesco QQQ Trust", ETF: true},
	}
}

func TestOptionsNoQuery(t *testing.T) {
	svc := NewService(&fakeListingProvider{listings: testListings()}, zerolog.Nop())

	options, err := svc.Options(context.Background(), "", 0)
	require.NoError(t, err)

	require.Len(t, options, 4)
	assert.Equal(t, "AAPL - Apple Inc. - Common Stock", options[0].Label)
	assert.Equal(t, "AAPL", options[0].Value)
}

func TestOptionsFilterBySymbol(t *testing.T) {
	svc := NewService(&fakeListingProvider{listings: testListings()}, zerolog.Nop())

	options, err := svc.Options(context.Background(), "msft", 0)
	require.NoError(t, err)

	require.Len(t, options, 1)
	assert.Equal(t, "MSFT", options[0].Value)
}

func TestOptionsFilterByName(t *testing.T) {
	svc := NewService(&fakeListingProvider{listings: testListings()}, zerolog.Nop())

	options, err := svc.Options(context.Background(), "micro", 0)
	require.NoError(t, err)

	require.Len(t, options, 1)
	assert.Equal(t, "MSFT", options[0].Value)
}

func TestOptionsLimit(t *testing.T) {
	svc := NewService(&fakeListingProvider{listings: testListings()}, zerolog.Nop())

	options, err := svc.Options(context.Background(), "", 2)
	require.NoError(t, err)

	assert.Len(t, options, 2)
}

func TestOptionsNoMatch(t *testing.T) {
	svc := NewService(&fakeListingProvider{listings: testListings()}, zerolog.Nop())

	options, err := svc.Options(context.Background(), "zzzz", 0)
	require.NoError(t, err)

	assert.Empty(t, options)
}

func TestOptionsProviderError(t *testing.T) {
	svc := NewService(&fakeListingProvider{err: domain.Transient("fetch", assert.AnError)}, zerolog.Nop())

	_, err := svc.Options(context.Background(), "", 0)
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}
