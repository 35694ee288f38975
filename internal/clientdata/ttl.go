package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Very stable data (rarely changes)
	TTLDirectory = 30 * 24 * time.Hour // 30 days - exchange symbol directory
	TTLGeocode   = 30 * 24 * time.Hour // 30 days - ZIP code coordinates never move

	// Quarterly financial data (updates with filings)
	TTLStatements = 45 * 24 * time.Hour // 45 days - income/balance/cashflow statements

	// Weekly-ish data (changes more frequently but not critical)
	TTLProfile   = 7 * 24 * time.Hour // 7 days - company profile and officers
	TTLDividends = 7 * 24 * time.Hour // 7 days - dividend history

	// Short-lived data (changes every trading day)
	TTLPriceHistory = 12 * time.Hour // half a day - daily close series
)
