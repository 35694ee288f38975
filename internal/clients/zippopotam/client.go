// Package zippopotam resolves US ZIP codes to coordinates via api.zippopotam.us.
package zippopotam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/finmetrix/finmetrix/internal/clientdata"
	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/rs/zerolog"
)

const baseURL = "https://api.zippopotam.us/us/"

// Client geocodes ZIP codes.
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new geocoding client
// cacheRepo is optional - if nil, caching is disabled
func NewClient(cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "zippopotam").Logger(),
		cacheRepo: cacheRepo,
	}
}

type zipResponse struct {
	Places []struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"places"`
}

type cachedCoordinates struct {
	Latitude  float64 `msgpack:"latitude"`
	Longitude float64 `msgpack:"longitude"`
}

// Lookup returns coordinates for a five-digit US ZIP code.
// Unknown ZIPs return domain.ErrNoData.
func (c *Client) Lookup(ctx context.Context, zip string) (*domain.Coordinates, error) {
	if len(zip) < 5 {
		return nil, domain.ErrNoData
	}
	zip = zip[:5] // ZIP+4 suffixes are not in the dataset

	if c.cacheRepo != nil {
		var cached cachedCoordinates
		if ok, err := c.cacheRepo.GetIfFresh("geocode", zip, &cached); err == nil && ok {
			return &domain.Coordinates{Latitude: cached.Latitude, Longitude: cached.Longitude}, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+zip, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.Transient("geocode request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.Transient("geocode request", fmt.Errorf("status %d", resp.StatusCode))
	}

	var result zipResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse geocode response: %w", err)
	}

	if len(result.Places) == 0 {
		return nil, domain.ErrNoData
	}

	lat, err := strconv.ParseFloat(result.Places[0].Latitude, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in geocode response: %w", err)
	}
	lon, err := strconv.ParseFloat(result.Places[0].Longitude, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in geocode response: %w", err)
	}

	if c.cacheRepo != nil {
		cached := cachedCoordinates{Latitude: lat, Longitude: lon}
		if err := c.cacheRepo.Store("geocode", zip, cached, clientdata.TTLGeocode); err != nil {
			c.log.Warn().Err(err).Str("zip", zip).Msg("Failed to cache coordinates")
		}
	}

	return &domain.Coordinates{Latitude: lat, Longitude: lon}, nil
}
