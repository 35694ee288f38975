// Package nasdaq fetches the Nasdaq Trader symbol directory.
package nasdaq

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finmetrix/finmetrix/internal/clientdata"
	"github.com/finmetrix/finmetrix/internal/domain"
	"github.com/rs/zerolog"
)

const directoryURL = "https://www.nasdaqtrader.com/dynamic/SymDir/nasdaqlisted.txt"

// Listing is one tradeable symbol from the directory.
type Listing struct {
	Symbol string `json:"symbol" msgpack:"symbol"`
	Name   string `json:"name" msgpack:"name"`
	ETF    bool   `json:"etf" msgpack:"etf"`
}

// Client fetches the pipe-delimited Nasdaq symbol directory.
type Client struct {
	url       string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new symbol directory client
// cacheRepo is optional - if nil, caching is disabled
func NewClient(cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		url:       directoryURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log.With().Str("client", "nasdaq").Logger(),
		cacheRepo: cacheRepo,
	}
}

// GetListings returns the current symbol directory. Test issues and the file
// trailer row are filtered out. The directory changes rarely, so it is cached
// with a long TTL and stale data serves as a fallback on fetch failure.
func (c *Client) GetListings(ctx context.Context) ([]Listing, error) {
	const cacheKey = "nasdaqlisted"

	if c.cacheRepo != nil {
		var cached []Listing
		if ok, err := c.cacheRepo.GetIfFresh("nasdaq_directory", cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	listings, err := c.fetch(ctx)
	if err != nil {
		if c.cacheRepo != nil {
			var stale []Listing
			if ok, cacheErr := c.cacheRepo.Get("nasdaq_directory", cacheKey, &stale); cacheErr == nil && ok {
				c.log.Warn().Err(err).Msg("Directory fetch failed, using stale cache")
				return stale, nil
			}
		}
		return nil, err
	}

	if c.cacheRepo != nil && len(listings) > 0 {
		if err := c.cacheRepo.Store("nasdaq_directory", cacheKey, listings, clientdata.TTLDirectory); err != nil {
			c.log.Warn().Err(err).Msg("Failed to cache symbol directory")
		}
	}

	c.log.Info().Int("count", len(listings)).Msg("Fetched symbol directory")

	return listings, nil
}

func (c *Client) fetch(ctx context.Context) ([]Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.Transient("nasdaq directory request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Transient("nasdaq directory request", fmt.Errorf("status %d", resp.StatusCode))
	}

	var listings []Listing
	scanner := bufio.NewScanner(resp.Body)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false // header row
			continue
		}
		if strings.HasPrefix(line, "File Creation Time") {
			continue // trailer row
		}

		// Symbol|Security Name|Market Category|Test Issue|Financial Status|Round Lot Size|ETF|NextShares
		fields := strings.Split(line, "|")
		if len(fields) < 7 {
			continue
		}
		if fields[3] == "Y" {
			continue // test issue
		}

		listings = append(listings, Listing{
			Symbol: strings.TrimSpace(fields[0]),
			Name:   strings.TrimSpace(fields[1]),
			ETF:    fields[6] == "Y",
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.Transient("nasdaq directory read", err)
	}

	return listings, nil
}
