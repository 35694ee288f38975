// Package directory serves the ticker dropdown options.
package directory

import (
	"context"
	"strings"

	"github.com/finmetrix/finmetrix/internal/clients/nasdaq"
	"github.com/rs/zerolog"
)

// Option is one dropdown entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ListingProvider fetches the exchange symbol directory.
type ListingProvider interface {
	GetListings(ctx context.Context) ([]nasdaq.Listing, error)
}

// Service builds ticker dropdown options from the symbol directory.
type Service struct {
	provider ListingProvider
	log      zerolog.Logger
}

// NewService creates a new directory service
func NewService(provider ListingProvider, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		log:      log.With().Str("service", "directory").Logger(),
	}
}

// Options returns dropdown options, optionally filtered by a case-insensitive
// substring match on the symbol or company name. A zero limit means no cap.
func (s *Service) Options(ctx context.Context, query string, limit int) ([]Option, error) {
	listings, err := s.provider.GetListings(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToUpper(strings.TrimSpace(query))

	options := make([]Option, 0, 64)
	for _, l := range listings {
		if query != "" &&
			!strings.Contains(strings.ToUpper(l.Symbol), query) &&
			!strings.Contains(strings.ToUpper(l.Name), query) {
			continue
		}

		options = append(options, Option{
			Label: l.Symbol + " - " + l.Name,
			Value: l.Symbol,
		})

		if limit > 0 && len(options) >= limit {
			break
		}
	}

	return options, nil
}
