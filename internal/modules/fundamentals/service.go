package fundamentals

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

// Service fetches raw statements and normalizes them.
type Service struct {
	provider SummaryProvider
	log      zerolog.Logger
}

// NewService creates a new fundamentals service
func NewService(provider SummaryProvider, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		log:      log.With().Str("service", "fundamentals").Logger(),
	}
}

// FetchFundamentals returns the normalized statement history for a ticker.
// An unknown ticker yields an empty record, not an error; transient provider
// failures propagate so the caller can prompt a retry.
func (s *Service) FetchFundamentals(ctx context.Context, ticker string) (domain.FundamentalsRecord, error) {
	summary, err := s.provider.GetQuoteSummary(ctx, ticker)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			s.log.Debug().Str("ticker", ticker).Msg("No fundamentals for ticker")
			return domain.NewFundamentalsRecord(ticker, ""), nil
		}
		return domain.NewFundamentalsRecord(ticker, ""), err
	}

	record := Normalize(FromProvider(summary.Statements))
	s.log.Debug().
		Str("ticker", ticker).
		Int("periods", len(record.Periods)).
		Msg("Normalized fundamentals")

	return record, nil
}
